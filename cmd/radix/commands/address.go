package commands

import (
	"fmt"

	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/crypto/keys"
	"github.com/spf13/cobra"
)

var magic int64

// NewAddressCmd produces a command that prints the address of a new key, or
// of a public key given in hex.
func NewAddressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address [public key]",
		Short: "Print the address of a public key, or of a new one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  address,
	}

	cmd.Flags().Int64Var(&magic, "magic", magic, "Universe magic")

	return cmd
}

func address(cmd *cobra.Command, args []string) error {
	var (
		key keys.PublicKey
		err error
	)

	if len(args) == 1 {
		key, err = keys.ParsePublicKeyHex(args[0])
	} else {
		key, err = keys.GenerateKey()
	}
	if err != nil {
		return err
	}

	universe := atom.UniverseConfig{Magic: magic}

	fmt.Println("PublicKey:")
	fmt.Println(key.Hex())
	fmt.Println("Address:")
	fmt.Println(universe.Address(key))
	fmt.Println("Shard:")
	fmt.Println(universe.Address(key).Shard())

	return nil
}
