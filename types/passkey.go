package types

import "context"

// PasskeyCredential binds a platform credential to the P-256 public key it
// attested at creation time. Immutable after creation; owned by the external
// account record.
type PasskeyCredential struct {
	CredentialID string `json:"credentialId" validate:"required"`
	KeyInfo      []byte `json:"keyInfo" validate:"required"`      // 91-byte SPKI blob
	PublicKeyX   []byte `json:"publicKeyX" validate:"required"`   // 32 bytes, big-endian
	PublicKeyY   []byte `json:"publicKeyY" validate:"required"`   // 32 bytes, big-endian
	Address      string `json:"address,omitempty"`                // counterfactual account address
}

// AssertionResponse is what the platform passkey returns for a signed
// challenge. Signature is the raw DER blob; it still needs parsing and low-S
// normalization before it can go on chain.
type AssertionResponse struct {
	AuthenticatorData []byte
	ClientDataJSON    string
	Signature         []byte
}

// Authenticator is the opaque platform passkey capability. Implementations
// live outside this module (platform bridge, hardware token, test double).
// A dismissed prompt must surface as ErrUserCancelled and a missing platform
// capability as ErrPasskeyUnavailable so callers can branch on the outcome.
type Authenticator interface {
	// Create requests a new credential for the user and returns the raw
	// attestation object together with the platform credential id.
	Create(ctx context.Context, user string) (attestationObject []byte, credentialID string, err error)

	// Sign prompts the user to sign the challenge with the credential.
	Sign(ctx context.Context, credentialID string, challenge []byte) (*AssertionResponse, error)
}
