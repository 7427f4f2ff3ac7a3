package services

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-kit/log/level"

	"github.com/keyfort/go-passkey-wallet/global"
	"github.com/keyfort/go-passkey-wallet/metrics"
	"github.com/keyfort/go-passkey-wallet/types"
	"github.com/keyfort/go-passkey-wallet/util"
)

// WalletService drives the two top-level flows: creating a passkey-backed
// account and sending a value transfer from it. Persistence of credentials
// and history is the caller's job.
type WalletService struct {
	chain         ChainReader
	addresses     *AddressService
	operations    *OperationService
	signer        *SignerService
	relay         *RelayService
	authenticator types.Authenticator
}

func NewWalletService(chain ChainReader, addresses *AddressService, operations *OperationService, signer *SignerService, relay *RelayService, authenticator types.Authenticator) *WalletService {
	if chain == nil || addresses == nil || operations == nil || signer == nil || relay == nil {
		panic("wallet service dependencies cannot be nil")
	}
	if authenticator == nil {
		panic("authenticator cannot be nil")
	}
	return &WalletService{
		chain:         chain,
		addresses:     addresses,
		operations:    operations,
		signer:        signer,
		relay:         relay,
		authenticator: authenticator,
	}
}

// CreateAccount requests a new platform credential, extracts the attested
// public key and resolves the counterfactual account address. Nothing is
// deployed yet; deployment is bundled with the first send.
func (ws *WalletService) CreateAccount(ctx context.Context, user string) (*types.PasskeyCredential, error) {
	attestationObject, credentialID, err := ws.authenticator.Create(ctx, user)
	if err != nil {
		level.Error(global.Logger).Log("msg", "passkey creation failed", "error", err)
		return nil, err
	}

	x, y, err := util.ParsePublicKey(attestationObject)
	if err != nil {
		return nil, err
	}
	rawKey := make([]byte, 0, util.RawKeyLength)
	rawKey = append(rawKey, x...)
	rawKey = append(rawKey, y...)
	keyInfo, err := util.MarshalKeyInfo(rawKey)
	if err != nil {
		return nil, err
	}

	address, err := ws.addresses.Resolve(ctx, x, y)
	if err != nil {
		return nil, err
	}

	return &types.PasskeyCredential{
		CredentialID: credentialID,
		KeyInfo:      keyInfo,
		PublicKeyX:   x,
		PublicKeyY:   y,
		Address:      address.Hex(),
	}, nil
}

// Balance reads the current balance of the credential's account.
func (ws *WalletService) Balance(ctx context.Context, credential *types.PasskeyCredential) (*big.Int, error) {
	return ws.chain.Balance(ctx, common.HexToAddress(credential.Address))
}

// Send builds, signs and submits a value transfer from the account, then
// waits for its inclusion receipt. Each attempt builds a fresh operation
// with a freshly read nonce; concurrent sends from the same sender are not
// serialized here and can race on the nonce, in which case the relay rejects
// the stale one.
func (ws *WalletService) Send(ctx context.Context, credential *types.PasskeyCredential, to common.Address, value *big.Int) (*types.UserOperationReceipt, error) {
	sender := common.HexToAddress(credential.Address)

	deployed, err := ws.chain.IsDeployed(ctx, sender)
	if err != nil {
		return nil, err
	}
	nonce, err := ws.chain.GetNonce(ctx, sender, big.NewInt(0))
	if err != nil {
		return nil, err
	}

	callData, err := ws.operations.BuildCallData(to, value)
	if err != nil {
		return nil, err
	}
	var factory *common.Address
	var factoryData []byte
	if !deployed {
		factoryData, err = ws.operations.BuildFactoryData(credential.PublicKeyX, credential.PublicKeyY)
		if err != nil {
			return nil, err
		}
		factoryAddress := ws.addresses.Factory()
		factory = &factoryAddress
	}
	op := ws.operations.NewOperation(sender, nonce, callData, factory, factoryData)

	prices, err := ws.relay.GetUserOperationGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	op.MaxFeePerGas = prices.Fast.MaxFeePerGas
	op.MaxPriorityFeePerGas = prices.Fast.MaxPriorityFeePerGas

	// estimation refines the default limits; failure here is a fallback,
	// not a fatal error
	estimate, err := ws.relay.EstimateUserOperationGas(ctx, op)
	if err != nil {
		metrics.GasEstimateFallbacksTotal.Inc()
		level.Warn(global.Logger).Log("msg", "gas estimation failed, using default limits", "error", err)
	} else {
		ws.operations.ApplyGasEstimate(op, estimate)
	}

	signature, err := ws.signer.Sign(ctx, op, credential.CredentialID, 0, 0)
	if err != nil {
		return nil, err
	}
	op.Signature = signature

	userOpHash, err := ws.relay.SendUserOperation(ctx, op)
	if err != nil {
		return nil, err
	}
	level.Info(global.Logger).Log("msg", "user operation submitted", "userOpHash", userOpHash.Hex(), "sender", sender.Hex())

	return ws.relay.WaitForReceipt(ctx, userOpHash)
}
