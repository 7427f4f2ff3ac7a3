package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/keyfort/go-passkey-wallet/util"
)

var outputFile string

func init() {
	keysCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default is stdout)")
	rootCmd.AddCommand(keysCmd)
}

// keysCmd generates a P-256 keypair in the same shape a passkey attests to.
// Useful for exercising address resolution and the factory without a real
// authenticator.
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate a P-256 keypair",
	Long:  "Generate a P-256 keypair and print its coordinates and SPKI key info",
	Run: func(cmd *cobra.Command, args []string) {
		private, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		check(err)

		x := private.PublicKey.X.FillBytes(make([]byte, util.CoordinateLength))
		y := private.PublicKey.Y.FillBytes(make([]byte, util.CoordinateLength))
		keyInfo, err := util.MarshalKeyInfo(append(append([]byte{}, x...), y...))
		check(err)

		keysJson := map[string]interface{}{
			"type":       "passkey_wallet_keys_p256",
			"privateKey": hexutil.Encode(private.D.FillBytes(make([]byte, util.CoordinateLength))),
			"publicKeyX": hexutil.Encode(x),
			"publicKeyY": hexutil.Encode(y),
			"keyInfo":    hexutil.Encode(keyInfo),
			"created":    time.Now().UnixMilli(),
		}
		fileBytes, err := json.MarshalIndent(keysJson, "", "  ")
		check(err)
		if outputFile != "" {
			// fail if file already exists
			if _, err := os.Stat(outputFile); !errors.Is(err, os.ErrNotExist) {
				fmt.Printf("File already exists: %s\n", outputFile)
				os.Exit(1)
			}
			err = os.WriteFile(outputFile, fileBytes, 0644)
			check(err)
			fmt.Printf("Output file: %s\n", outputFile)
		} else {
			fmt.Printf("\n%s\n", string(fileBytes))
		}
	},
}
