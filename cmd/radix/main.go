package main

import (
	_ "net/http/pprof"
	"os"

	cmd "github.com/radixdlt/radix-go/cmd/radix/commands"
)

func main() {
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cmd.VersionCmd,
		cmd.NewAddressCmd(),
		cmd.NewRunCmd(),
		cmd.NewWatchCmd(),
	)

	//Do not print usage when error occurs
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
