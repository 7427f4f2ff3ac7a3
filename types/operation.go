package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// UserOperation represents an ERC-4337 (EntryPoint v0.7) user operation for a
// smart contract account. Structural fields are filled by the operation
// builder, Signature by the signer; the struct is never mutated after
// submission. A failed send builds a fresh operation with a fresh nonce.
type UserOperation struct {
	Sender                        common.Address
	Nonce                         *big.Int
	Factory                       *common.Address
	FactoryData                   []byte
	CallData                      []byte
	CallGasLimit                  *big.Int
	VerificationGasLimit          *big.Int
	PreVerificationGas            *big.Int
	MaxFeePerGas                  *big.Int
	MaxPriorityFeePerGas          *big.Int
	Paymaster                     *common.Address
	PaymasterVerificationGasLimit *big.Int
	PaymasterPostOpGasLimit       *big.Int
	PaymasterData                 []byte
	Signature                     []byte
}

// HasFactory returns true when account deployment is bundled with the
// operation.
func (op *UserOperation) HasFactory() bool {
	return op.Factory != nil
}

// HasPaymaster returns true if this operation has a gas sponsor.
func (op *UserOperation) HasPaymaster() bool {
	return op.Paymaster != nil
}

// InitCode returns the concatenated factory address and factory data, the
// byte segment the entry point hashes for bundled deployments. Empty when the
// account is already deployed.
func (op *UserOperation) InitCode() []byte {
	if !op.HasFactory() {
		return []byte{}
	}
	out := make([]byte, 0, 20+len(op.FactoryData))
	out = append(out, op.Factory.Bytes()...)
	out = append(out, op.FactoryData...)
	return out
}

// PaymasterAndData returns the concatenated paymaster address, its two
// 16-byte gas limits and the paymaster data. Empty without a sponsor.
func (op *UserOperation) PaymasterAndData() []byte {
	if !op.HasPaymaster() {
		return []byte{}
	}
	out := make([]byte, 0, 52+len(op.PaymasterData))
	out = append(out, op.Paymaster.Bytes()...)
	out = append(out, PackUint128(op.PaymasterVerificationGasLimit)...)
	out = append(out, PackUint128(op.PaymasterPostOpGasLimit)...)
	out = append(out, op.PaymasterData...)
	return out
}

// PackUint128 packs a non-negative integer into 16 big-endian bytes.
// Values wider than 128 bits are cropped from the left.
func PackUint128(v *big.Int) []byte {
	out := make([]byte, 16)
	if v == nil {
		return out
	}
	b := v.Bytes()
	if len(b) > 16 {
		b = b[len(b)-16:]
	}
	copy(out[16-len(b):], b)
	return out
}

// UserOperationWire is the JSON shape the relay expects: every integer wider
// than 32 bits travels as a 0x-prefixed hex string, and unused factory and
// paymaster fields are omitted entirely (some relays reject empty
// placeholders).
type UserOperationWire struct {
	Sender                        string `json:"sender"`
	Nonce                         string `json:"nonce"`
	Factory                       string `json:"factory,omitempty"`
	FactoryData                   string `json:"factoryData,omitempty"`
	CallData                      string `json:"callData"`
	CallGasLimit                  string `json:"callGasLimit"`
	VerificationGasLimit          string `json:"verificationGasLimit"`
	PreVerificationGas            string `json:"preVerificationGas"`
	MaxFeePerGas                  string `json:"maxFeePerGas"`
	MaxPriorityFeePerGas          string `json:"maxPriorityFeePerGas"`
	Paymaster                     string `json:"paymaster,omitempty"`
	PaymasterVerificationGasLimit string `json:"paymasterVerificationGasLimit,omitempty"`
	PaymasterPostOpGasLimit       string `json:"paymasterPostOpGasLimit,omitempty"`
	PaymasterData                 string `json:"paymasterData,omitempty"`
	Signature                     string `json:"signature"`
}

func MapUserOperationToWire(op *UserOperation) *UserOperationWire {
	wire := &UserOperationWire{
		Sender:               op.Sender.Hex(),
		Nonce:                hexutil.EncodeBig(orZero(op.Nonce)),
		CallData:             hexutil.Encode(op.CallData),
		CallGasLimit:         hexutil.EncodeBig(orZero(op.CallGasLimit)),
		VerificationGasLimit: hexutil.EncodeBig(orZero(op.VerificationGasLimit)),
		PreVerificationGas:   hexutil.EncodeBig(orZero(op.PreVerificationGas)),
		MaxFeePerGas:         hexutil.EncodeBig(orZero(op.MaxFeePerGas)),
		MaxPriorityFeePerGas: hexutil.EncodeBig(orZero(op.MaxPriorityFeePerGas)),
		Signature:            hexutil.Encode(op.Signature),
	}
	if op.HasFactory() {
		wire.Factory = op.Factory.Hex()
		wire.FactoryData = hexutil.Encode(op.FactoryData)
	}
	if op.HasPaymaster() {
		wire.Paymaster = op.Paymaster.Hex()
		wire.PaymasterVerificationGasLimit = hexutil.EncodeBig(orZero(op.PaymasterVerificationGasLimit))
		wire.PaymasterPostOpGasLimit = hexutil.EncodeBig(orZero(op.PaymasterPostOpGasLimit))
		wire.PaymasterData = hexutil.Encode(op.PaymasterData)
	}
	return wire
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
