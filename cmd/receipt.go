package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(receiptCmd)
}

var receiptCmd = &cobra.Command{
	Use:   "receipt <userOpHash>",
	Short: "Fetch the inclusion receipt of a user operation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		loadConf()

		receipt, err := newRelayService().GetUserOperationReceipt(context.Background(), common.HexToHash(args[0]))
		check(err)
		if receipt == nil {
			fmt.Println("pending: no receipt yet")
			return
		}
		fmt.Printf("userOpHash:      %s\n", receipt.UserOpHash.Hex())
		fmt.Printf("transactionHash: %s\n", receipt.TransactionHash.Hex())
		fmt.Printf("blockNumber:     %s\n", receipt.BlockNumber.String())
		fmt.Printf("success:         %t\n", receipt.Success)
	},
}
