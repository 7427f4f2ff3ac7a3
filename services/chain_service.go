package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/keyfort/go-passkey-wallet/global"
	"github.com/keyfort/go-passkey-wallet/types"
)

// getNonceSelector is the entry point's getNonce(address,uint192) selector
var getNonceSelector = []byte{0x35, 0x56, 0x7e, 0x1a}

// ChainReader is the contract this core needs from the chain-reading client:
// bytecode existence, balance, read-only contract calls and the entry point
// nonce read. Backed by an Ethereum JSON-RPC node in production and stubbed
// in tests.
type ChainReader interface {
	IsDeployed(ctx context.Context, addr common.Address) (bool, error)
	Balance(ctx context.Context, addr common.Address) (*big.Int, error)
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	GetNonce(ctx context.Context, sender common.Address, key *big.Int) (*big.Int, error)
}

// ChainService implements ChainReader over go-ethereum's ethclient.
type ChainService struct {
	client     *ethclient.Client
	entryPoint common.Address
}

func NewChainService(conf global.ChainConfig) (*ChainService, error) {
	client, err := ethclient.Dial(conf.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrChainRead, err.Error())
	}
	return &ChainService{
		client:     client,
		entryPoint: common.HexToAddress(conf.EntryPointAddress),
	}, nil
}

// IsDeployed reports whether bytecode exists at the address.
func (cs *ChainService) IsDeployed(ctx context.Context, addr common.Address) (bool, error) {
	code, err := cs.client.CodeAt(ctx, addr, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %s", types.ErrChainRead, err.Error())
	}
	return len(code) > 0, nil
}

// Balance returns the current balance of the address.
func (cs *ChainService) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	balance, err := cs.client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrChainRead, err.Error())
	}
	return balance, nil
}

// Call performs a read-only contract call at the latest block.
func (cs *ChainService) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := cs.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrChainRead, err.Error())
	}
	return out, nil
}

// GetNonce reads the entry point's nonce-tracking state for the sender and
// key directly, without going through the relay. The nonce is two-part: a
// 192-bit key and a 64-bit sequence; this core always uses key 0.
func (cs *ChainService) GetNonce(ctx context.Context, sender common.Address, key *big.Int) (*big.Int, error) {
	if key == nil {
		key = big.NewInt(0)
	}
	data := make([]byte, 0, 4+64)
	data = append(data, getNonceSelector...)
	data = append(data, common.LeftPadBytes(sender.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(key.Bytes(), 32)...)

	out, err := cs.Call(ctx, cs.entryPoint, data)
	if err != nil {
		return nil, err
	}
	if len(out) != 32 {
		return nil, fmt.Errorf("%w: unexpected getNonce return of %d bytes", types.ErrChainRead, len(out))
	}
	return new(big.Int).SetBytes(out), nil
}
