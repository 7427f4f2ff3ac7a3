package services

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/keyfort/go-passkey-wallet/types"
)

// stubChainReader is a canned ChainReader for tests that never touch a node.
type stubChainReader struct {
	deployed   bool
	balance    *big.Int
	nonce      *big.Int
	callResult []byte
	callErr    error
	lastCallTo common.Address
	callData   [][]byte
}

func (s *stubChainReader) IsDeployed(ctx context.Context, addr common.Address) (bool, error) {
	return s.deployed, nil
}

func (s *stubChainReader) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return s.balance, nil
}

func (s *stubChainReader) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	if s.callErr != nil {
		return nil, s.callErr
	}
	s.lastCallTo = to
	s.callData = append(s.callData, data)
	return s.callResult, nil
}

func (s *stubChainReader) GetNonce(ctx context.Context, sender common.Address, key *big.Int) (*big.Int, error) {
	return s.nonce, nil
}

func TestResolveAddress(t *testing.T) {
	account := common.HexToAddress("0x5555555555555555555555555555555555555555")
	chain := &stubChainReader{callResult: common.LeftPadBytes(account.Bytes(), 32)}
	as := NewAddressService(chain, testChainConfig())

	x := bytes.Repeat([]byte{0x11}, 32)
	y := bytes.Repeat([]byte{0x22}, 32)
	resolved, err := as.Resolve(context.Background(), x, y)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, account, resolved)
	assert.Equal(t, common.HexToAddress(testChainConfig().FactoryAddress), chain.lastCallTo)
	assert.Equal(t, factoryABI.Methods["getAddress"].ID, chain.callData[0][:4])
}

func TestResolveAddressDeterministic(t *testing.T) {
	account := common.HexToAddress("0x5555555555555555555555555555555555555555")
	chain := &stubChainReader{callResult: common.LeftPadBytes(account.Bytes(), 32)}
	as := NewAddressService(chain, testChainConfig())

	x := bytes.Repeat([]byte{0x11}, 32)
	y := bytes.Repeat([]byte{0x22}, 32)
	first, err := as.Resolve(context.Background(), x, y)
	if err != nil {
		t.Fatal(err)
	}
	second, err := as.Resolve(context.Background(), x, y)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, first, second)
	// identical inputs produce byte-identical call data
	assert.Equal(t, chain.callData[0], chain.callData[1])
}

func TestResolveAddressPropagatesChainError(t *testing.T) {
	chain := &stubChainReader{callErr: types.ErrChainRead}
	as := NewAddressService(chain, testChainConfig())

	_, err := as.Resolve(context.Background(), make([]byte, 32), make([]byte, 32))
	if !errors.Is(err, types.ErrChainRead) {
		t.Fatalf("expected chain read error, got %v", err)
	}
}
