package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/spf13/cobra"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/crypto/secp256k1"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate and inspect secp256k1 account keys",
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new private key and print it with its address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := secp256k1.GenerateKey()
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]string{
			"private_key": secp256k1.EncodePrivateKey(key),
			"address":     secp256k1.KeyAddress(key).Hex(),
		})
	},
}

var keysAddressCmd = &cobra.Command{
	Use:   "address <private-key-hex | key-file>",
	Short: "Print the address of a private key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := loadKey(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), secp256k1.KeyAddress(key).Hex())
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysGenerateCmd, keysAddressCmd)
	rootCmd.AddCommand(keysCmd)
}

// loadKey accepts a hex private key or the path of a file holding one.
func loadKey(s string) (*btcec.PrivateKey, error) {
	if key, err := secp256k1.ParsePrivateKey(s); err == nil {
		return key, nil
	}
	data, err := os.ReadFile(s)
	if err != nil {
		return nil, fmt.Errorf("%q is neither a private key nor a readable key file", s)
	}
	return secp256k1.ParsePrivateKey(strings.TrimSpace(string(data)))
}
