package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// UserOperationReceipt is the relay's record of an included operation.
// Produced once, immutable. A not-yet-included operation is represented by
// the absence of a receipt (nil), not by an error.
type UserOperationReceipt struct {
	UserOpHash      common.Hash
	TransactionHash common.Hash
	BlockNumber     *big.Int
	Success         bool
}

// UserOperationReceiptWire mirrors the relay's eth_getUserOperationReceipt
// result. Only the fields this core reconciles are mapped.
type UserOperationReceiptWire struct {
	UserOpHash string `json:"userOpHash"`
	Success    bool   `json:"success"`
	Receipt    struct {
		TransactionHash string `json:"transactionHash"`
		BlockNumber     string `json:"blockNumber"`
	} `json:"receipt"`
}
