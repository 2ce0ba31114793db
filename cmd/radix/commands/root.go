package commands

import (
	"github.com/spf13/cobra"
)

var (
	_config = NewDefaultCLIConfig()
)

//RootCmd is the root command for Radix
var RootCmd = &cobra.Command{
	Use:              "radix",
	Short:            "radix ledger client",
	TraverseChildren: true,
}
