package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keyfort/go-passkey-wallet/types"
)

func init() {
	rootCmd.AddCommand(gasPriceCmd)
}

var gasPriceCmd = &cobra.Command{
	Use:   "gas-price",
	Short: "Print the relay's suggested fee tiers",
	Run: func(cmd *cobra.Command, args []string) {
		loadConf()

		tiers, err := newRelayService().GetUserOperationGasPrice(context.Background())
		check(err)
		printTier("slow", tiers.Slow)
		printTier("standard", tiers.Standard)
		printTier("fast", tiers.Fast)
	},
}

func printTier(name string, fee types.GasFee) {
	fmt.Printf("%-9s maxFeePerGas=%s maxPriorityFeePerGas=%s\n", name, fee.MaxFeePerGas.String(), fee.MaxPriorityFeePerGas.String())
}
