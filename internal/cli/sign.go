package cli

import (
	"encoding/hex"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/amount"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/metatx"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/crypto/secp256k1"
)

var (
	signKey      string
	signTo       string
	signAmount   string
	signNonce    uint64
	signDeadline uint64
)

var signTransferCmd = &cobra.Command{
	Use:   "sign-transfer",
	Short: "Sign a transfer authorization for a relayer to submit",
	Long: `Sign a transfer authorization offline. The output carries the signer and
the 65-byte signature a relayer passes to transfer_with_signature. The nonce
must equal the signer's current nonce on the node; amount is in smallest units.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if signKey == "" {
			return errors.New("--key is required")
		}
		key, err := loadKey(signKey)
		if err != nil {
			return err
		}
		to, err := address.Parse(signTo)
		if err != nil {
			return err
		}
		amt, err := amount.Parse(signAmount)
		if err != nil {
			return err
		}

		auth := metatx.Authorization{
			Signer:    secp256k1.KeyAddress(key),
			Recipient: to,
			Amount:    amt,
			Nonce:     signNonce,
			Deadline:  signDeadline,
		}
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"signer":    auth.Signer.Hex(),
			"to":        to.Hex(),
			"amount":    amt.Dec(),
			"nonce":     signNonce,
			"deadline":  signDeadline,
			"signature": "0x" + hex.EncodeToString(auth.Sign(key)),
		})
	},
}

func init() {
	f := signTransferCmd.Flags()
	f.StringVar(&signKey, "key", "", "signer private key hex or key file")
	f.StringVar(&signTo, "to", "", "recipient address")
	f.StringVar(&signAmount, "amount", "", "amount in smallest units")
	f.Uint64Var(&signNonce, "nonce", 0, "signer nonce")
	f.Uint64Var(&signDeadline, "deadline", 0, "unix time after which the signature is rejected")
	_ = signTransferCmd.MarkFlagRequired("to")
	_ = signTransferCmd.MarkFlagRequired("amount")
	_ = signTransferCmd.MarkFlagRequired("deadline")
	rootCmd.AddCommand(signTransferCmd)
}
