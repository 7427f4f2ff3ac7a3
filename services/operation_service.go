package services

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/keyfort/go-passkey-wallet/global"
	"github.com/keyfort/go-passkey-wallet/types"
)

// OperationService assembles user operations and computes their canonical
// signing hash for the configured entry point and chain.
type OperationService struct {
	entryPoint common.Address
	chainID    *big.Int
	gas        global.GasModelConfig
}

func NewOperationService(conf global.ChainConfig, gas global.GasModelConfig) *OperationService {
	return &OperationService{
		entryPoint: common.HexToAddress(conf.EntryPointAddress),
		chainID:    big.NewInt(conf.ChainID),
		gas:        gas,
	}
}

// BuildCallData encodes a plain value transfer as a single-call batch
// execute with empty payload data.
func (os *OperationService) BuildCallData(destination common.Address, value *big.Int) ([]byte, error) {
	call := []struct {
		Target common.Address `abi:"target"`
		Value  *big.Int       `abi:"value"`
		Data   []byte         `abi:"data"`
	}{
		{Target: destination, Value: value, Data: []byte{}},
	}
	data, err := accountABI.Pack("executeBatch", call)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrInternal, err.Error())
	}
	return data, nil
}

// BuildFactoryData encodes the factory's createAccount call with the same
// fixed parameters the address resolver uses, so the bundled deployment
// lands on the counterfactual address.
func (os *OperationService) BuildFactoryData(x []byte, y []byte) ([]byte, error) {
	zero := big.NewInt(0)
	data, err := factoryABI.Pack("createAccount",
		os.chainID, zero, zero, zero, zero,
		new(big.Int).SetBytes(x), new(big.Int).SetBytes(y), zero)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrInternal, err.Error())
	}
	return data, nil
}

// NewOperation fills the structural fields of a fresh operation with the
// default gas model. Verification is priced higher when deployment is
// bundled since the factory run happens inside validation.
func (os *OperationService) NewOperation(sender common.Address, nonce *big.Int, callData []byte, factory *common.Address, factoryData []byte) *types.UserOperation {
	verificationGas := os.gas.VerificationGasLimit
	if factory != nil {
		verificationGas = os.gas.VerificationGasLimitDeploy
	}
	return &types.UserOperation{
		Sender:               sender,
		Nonce:                nonce,
		Factory:              factory,
		FactoryData:          factoryData,
		CallData:             callData,
		CallGasLimit:         new(big.Int).SetUint64(os.gas.CallGasLimit),
		VerificationGasLimit: new(big.Int).SetUint64(verificationGas),
		PreVerificationGas:   new(big.Int).SetUint64(os.gas.PreVerificationGas),
		MaxFeePerGas:         big.NewInt(0),
		MaxPriorityFeePerGas: big.NewInt(0),
		Signature:            []byte{},
	}
}

// ApplyGasEstimate overwrites the default limits with the relay's estimate.
func (os *OperationService) ApplyGasEstimate(op *types.UserOperation, estimate *types.GasEstimate) {
	if estimate == nil {
		return
	}
	if estimate.CallGasLimit != nil {
		op.CallGasLimit = estimate.CallGasLimit
	}
	if estimate.VerificationGasLimit != nil {
		op.VerificationGasLimit = estimate.VerificationGasLimit
	}
	if estimate.PreVerificationGas != nil {
		op.PreVerificationGas = estimate.PreVerificationGas
	}
}

// GetUserOpHash computes the canonical signing hash of the operation. The
// hash is two-level: variable-length segments (init code, call data,
// paymaster data) are hashed independently, the fixed-width tuple of those
// hashes and the packed gas words is hashed, and that digest is hashed once
// more together with the entry point address and chain id. The verifying
// contract computes exactly this; a single-level variant is incompatible.
func (os *OperationService) GetUserOpHash(op *types.UserOperation) (common.Hash, error) {
	accountGasLimits := packGasPair(op.VerificationGasLimit, op.CallGasLimit)
	gasFees := packGasPair(op.MaxPriorityFeePerGas, op.MaxFeePerGas)

	inner := abi.Arguments{
		{Type: typeAddress}, {Type: typeUint256},
		{Type: typeBytes32}, {Type: typeBytes32},
		{Type: typeBytes32}, {Type: typeUint256},
		{Type: typeBytes32}, {Type: typeBytes32},
	}
	packed, err := inner.Pack(
		op.Sender,
		zeroIfNil(op.Nonce),
		common.BytesToHash(crypto.Keccak256(op.InitCode())),
		common.BytesToHash(crypto.Keccak256(op.CallData)),
		accountGasLimits,
		zeroIfNil(op.PreVerificationGas),
		gasFees,
		common.BytesToHash(crypto.Keccak256(op.PaymasterAndData())),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %s", types.ErrInternal, err.Error())
	}

	outer := abi.Arguments{
		{Type: typeBytes32}, {Type: typeAddress}, {Type: typeUint256},
	}
	envelope, err := outer.Pack(common.BytesToHash(crypto.Keccak256(packed)), os.entryPoint, os.chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %s", types.ErrInternal, err.Error())
	}
	return common.BytesToHash(crypto.Keccak256(envelope)), nil
}

// packGasPair packs two gas words into one 32-byte slot, 16 bytes each.
func packGasPair(high *big.Int, low *big.Int) [32]byte {
	var out [32]byte
	copy(out[:16], types.PackUint128(high))
	copy(out[16:], types.PackUint128(low))
	return out
}

func zeroIfNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
