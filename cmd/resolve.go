package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/keyfort/go-passkey-wallet/util"
)

var (
	resolveX string
	resolveY string
)

func init() {
	resolveCmd.Flags().StringVar(&resolveX, "x", "", "public key x coordinate (0x-hex, 32 bytes)")
	resolveCmd.Flags().StringVar(&resolveY, "y", "", "public key y coordinate (0x-hex, 32 bytes)")
	resolveCmd.MarkFlagRequired("x")
	resolveCmd.MarkFlagRequired("y")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the counterfactual account address",
	Long:  "Resolve the counterfactual account address the factory would deploy for a public key",
	Run: func(cmd *cobra.Command, args []string) {
		loadConf()

		x, err := hexutil.Decode(resolveX)
		check(err)
		y, err := hexutil.Decode(resolveY)
		check(err)
		if len(x) != util.CoordinateLength || len(y) != util.CoordinateLength {
			check(fmt.Errorf("coordinates must be %d bytes each", util.CoordinateLength))
		}

		address, err := newAddressService().Resolve(context.Background(), x, y)
		check(err)
		fmt.Printf("%s\n", address.Hex())
	},
}
