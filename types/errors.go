package types

import "errors"

var (
	// ErrFormat is returned for malformed binary input (key blob, DER
	// signature, attestation bytes). Never retried.
	ErrFormat = errors.New("malformed binary input")

	// ErrChainRead is returned when a read-only chain call fails
	ErrChainRead = errors.New("chain read failed")

	// ErrRelay is returned when a relay JSON-RPC call fails
	ErrRelay = errors.New("relay request failed")

	// ErrTimeout is returned when a receipt never appeared within budget
	ErrTimeout = errors.New("timed out waiting for receipt")

	// ErrUserCancelled is returned when the user dismissed the passkey prompt
	ErrUserCancelled = errors.New("user cancelled passkey prompt")

	// ErrPasskeyUnavailable is returned when no platform passkey capability
	// can serve the request
	ErrPasskeyUnavailable = errors.New("passkey capability unavailable")

	// ErrInternal (for unhandled exceptions)
	ErrInternal = errors.New("internal error")
)
