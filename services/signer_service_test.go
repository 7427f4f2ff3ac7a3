package services

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/keyfort/go-passkey-wallet/types"
)

// fakeAuthenticator is a deterministic stand-in for the platform passkey.
type fakeAuthenticator struct {
	attestationObject []byte
	credentialID      string
	assertion         *types.AssertionResponse
	err               error
	lastChallenge     []byte
}

func (f *fakeAuthenticator) Create(ctx context.Context, user string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.attestationObject, f.credentialID, nil
}

func (f *fakeAuthenticator) Sign(ctx context.Context, credentialID string, challenge []byte) (*types.AssertionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastChallenge = append([]byte{}, challenge...)
	return f.assertion, nil
}

func TestBuildChallenge(t *testing.T) {
	hash := common.HexToHash("0x0303030303030303030303030303030303030303030303030303030303030303")

	noExpiry := BuildChallenge(hash, 0)
	assert.Len(t, noExpiry, 38)
	assert.Equal(t, make([]byte, 6), noExpiry[:6])
	assert.Equal(t, hash.Bytes(), noExpiry[6:])

	windowed := BuildChallenge(hash, 0xABCDEF012345)
	assert.Equal(t, []byte{0xab, 0xcd, 0xef, 0x01, 0x23, 0x45}, windowed[:6])
	assert.Equal(t, hash.Bytes(), windowed[6:])
}

func TestSignPackagesSignatureBlob(t *testing.T) {
	authData := []byte{0x01, 0x02, 0x03, 0x04}
	clientData := `{"type":"webauthn.get","challenge":"test"}`
	auth := &fakeAuthenticator{
		assertion: &types.AssertionResponse{
			AuthenticatorData: authData,
			ClientDataJSON:    clientData,
			// SEQUENCE { INTEGER 5, INTEGER 7 }
			Signature: []byte{0x30, 0x06, 0x02, 0x01, 0x05, 0x02, 0x01, 0x07},
		},
	}
	os := newTestOperationService()
	ss := NewSignerService(auth, os)

	op := sampleOperation()
	signature, err := ss.Sign(context.Background(), op, "credential-1", 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	// the challenge handed to the passkey is validUntil || opHash
	expectedHash, err := os.GetUserOpHash(op)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, BuildChallenge(expectedHash, 0), auth.lastChallenge)

	// 6-byte validUntil prefix, then the abi-encoded verifier payload
	assert.Equal(t, make([]byte, 6), signature[:6])
	args := abi.Arguments{
		{Type: typeUint256}, {Type: typeBytes}, {Type: typeString},
		{Type: typeUint256}, {Type: typeUint256},
	}
	decoded, err := args.Unpack(signature[6:])
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, big.NewInt(0), decoded[0])
	assert.Equal(t, authData, decoded[1])
	assert.Equal(t, clientData, decoded[2])
	assert.Equal(t, big.NewInt(5), decoded[3])
	assert.Equal(t, big.NewInt(7), decoded[4])
}

func TestSignSurfacesUserCancellation(t *testing.T) {
	auth := &fakeAuthenticator{err: types.ErrUserCancelled}
	ss := NewSignerService(auth, newTestOperationService())

	_, err := ss.Sign(context.Background(), sampleOperation(), "credential-1", 0, 0)
	if !errors.Is(err, types.ErrUserCancelled) {
		t.Fatalf("expected user cancellation, got %v", err)
	}
}

func TestSignRejectsMalformedAssertionSignature(t *testing.T) {
	auth := &fakeAuthenticator{
		assertion: &types.AssertionResponse{
			AuthenticatorData: []byte{0x01},
			ClientDataJSON:    "{}",
			Signature:         []byte{0xde, 0xad},
		},
	}
	ss := NewSignerService(auth, newTestOperationService())

	_, err := ss.Sign(context.Background(), sampleOperation(), "credential-1", 0, 0)
	if !errors.Is(err, types.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}
