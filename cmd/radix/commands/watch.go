package commands

import (
	"fmt"

	"github.com/radixdlt/radix-go/src/atom"
	"github.com/spf13/cobra"
)

//NewWatchCmd returns the command that prints the atoms of an address
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch [address]",
		Short:   "Follow the atoms of an address",
		Args:    cobra.ExactArgs(1),
		PreRunE: loadConfig,
		RunE:    watch,
	}
	AddClientFlags(cmd)
	return cmd
}

func watch(cmd *cobra.Command, args []string) error {
	address, err := atom.ParseAddress(args[0])
	if err != nil {
		return err
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	go shutdownOnSignal(engine)

	engine.Start()
	defer engine.Shutdown()

	sub := engine.Ledger.AtomPuller.Pull(address)
	defer sub.Close()

	for o := range sub.C() {
		if o.HasAtom() {
			fmt.Printf("%s %s soft=%v\n", o.Type(), o.Atom().HID(), o.IsSoft())
		} else {
			fmt.Println(o.Type())
		}
	}

	return sub.Err()
}
