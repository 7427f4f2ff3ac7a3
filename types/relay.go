package types

import "math/big"

// GasEstimate is the relay's answer to eth_estimateUserOperationGas.
type GasEstimate struct {
	PreVerificationGas   *big.Int
	VerificationGasLimit *big.Int
	CallGasLimit         *big.Int
}

// GasFee is a (maxFeePerGas, maxPriorityFeePerGas) pair.
type GasFee struct {
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// GasPriceTiers are the relay's fee hints. Callers wanting responsive
// inclusion should pick Fast.
type GasPriceTiers struct {
	Slow     GasFee
	Standard GasFee
	Fast     GasFee
}
