package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-kit/log/level"

	"github.com/keyfort/go-passkey-wallet/global"
	"github.com/keyfort/go-passkey-wallet/types"
	"github.com/keyfort/go-passkey-wallet/util"
)

// validUntilLength is the byte width of the validity-window prefix: a 48-bit
// big-endian timestamp, 0 meaning no expiry.
const validUntilLength = 6

// SignerService turns an assembled operation into the signature blob the
// verifying contract expects, using the platform passkey capability.
type SignerService struct {
	authenticator types.Authenticator
	operations    *OperationService
}

func NewSignerService(authenticator types.Authenticator, operations *OperationService) *SignerService {
	if authenticator == nil {
		panic("authenticator cannot be nil")
	}
	if operations == nil {
		panic("operation service cannot be nil")
	}
	return &SignerService{
		authenticator: authenticator,
		operations:    operations,
	}
}

// BuildChallenge produces the exact 38 bytes the passkey signs: the 6-byte
// big-endian validUntil window followed by the 32-byte operation hash.
func BuildChallenge(hash common.Hash, validUntil uint64) []byte {
	challenge := make([]byte, validUntilLength+common.HashLength)
	for i := 0; i < validUntilLength; i++ {
		challenge[validUntilLength-1-i] = byte(validUntil >> (8 * i))
	}
	copy(challenge[validUntilLength:], hash.Bytes())
	return challenge
}

// Sign computes the operation hash, prompts the passkey for the challenge
// and packages the normalized signature with its authentication metadata.
// The layout is fixed by the verifying contract: a 6-byte validUntil prefix
// followed by abi.encode(keySlot, authenticatorData, clientDataJSON, r, s).
// A dismissed prompt surfaces as a user-cancelled outcome, not a generic
// failure, so callers can offer a retry.
func (ss *SignerService) Sign(ctx context.Context, op *types.UserOperation, credentialID string, keySlot uint64, validUntil uint64) ([]byte, error) {
	hash, err := ss.operations.GetUserOpHash(op)
	if err != nil {
		return nil, err
	}
	challenge := BuildChallenge(hash, validUntil)

	assertion, err := ss.authenticator.Sign(ctx, credentialID, challenge)
	if err != nil {
		level.Error(global.Logger).Log("msg", "passkey signing failed", "error", err)
		return nil, err
	}

	r, s, err := parseAssertionSignature(assertion.Signature)
	if err != nil {
		return nil, err
	}

	args := abi.Arguments{
		{Type: typeUint256}, {Type: typeBytes}, {Type: typeString},
		{Type: typeUint256}, {Type: typeUint256},
	}
	packed, err := args.Pack(
		new(big.Int).SetUint64(keySlot),
		assertion.AuthenticatorData,
		assertion.ClientDataJSON,
		new(big.Int).SetBytes(r),
		new(big.Int).SetBytes(s),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrInternal, err.Error())
	}

	signature := make([]byte, 0, validUntilLength+len(packed))
	signature = append(signature, challenge[:validUntilLength]...)
	signature = append(signature, packed...)
	return signature, nil
}

// parseAssertionSignature decodes the raw DER signature returned by the
// authenticator and canonicalizes it to the low-S form the verifier
// requires.
func parseAssertionSignature(der []byte) (r []byte, s []byte, err error) {
	r, s, err = util.ParseDERSignature(der)
	if err != nil {
		return nil, nil, err
	}
	r, s = util.NormalizeLowS(r, s)
	return r, s, nil
}
