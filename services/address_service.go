package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/keyfort/go-passkey-wallet/global"
	"github.com/keyfort/go-passkey-wallet/types"
)

// AddressService resolves the deterministic pre-deployment account address
// for a public key by asking the factory contract. CREATE2 semantics: the
// same coordinates on the same chain always resolve to the same address,
// deployed or not.
type AddressService struct {
	chain   ChainReader
	factory common.Address
	chainID *big.Int
}

func NewAddressService(chain ChainReader, conf global.ChainConfig) *AddressService {
	if chain == nil {
		panic("chain reader cannot be nil")
	}
	return &AddressService{
		chain:   chain,
		factory: common.HexToAddress(conf.FactoryAddress),
		chainID: big.NewInt(conf.ChainID),
	}
}

// Factory returns the configured account factory address.
func (as *AddressService) Factory() common.Address {
	return as.factory
}

// Resolve performs the read-only getAddress call with key slot 0 and salt 0.
// Any RPC failure propagates unchanged as a chain read error.
func (as *AddressService) Resolve(ctx context.Context, x []byte, y []byte) (common.Address, error) {
	zero := big.NewInt(0)
	data, err := factoryABI.Pack("getAddress",
		as.chainID, zero, zero, zero, zero,
		new(big.Int).SetBytes(x), new(big.Int).SetBytes(y), zero)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %s", types.ErrInternal, err.Error())
	}
	out, err := as.chain.Call(ctx, as.factory, data)
	if err != nil {
		return common.Address{}, err
	}
	if len(out) != 32 {
		return common.Address{}, fmt.Errorf("%w: unexpected getAddress return of %d bytes", types.ErrChainRead, len(out))
	}
	return common.BytesToAddress(out[12:]), nil
}
