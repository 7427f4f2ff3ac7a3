package util

import (
	"crypto/elliptic"
	"math/big"

	"github.com/keyfort/go-passkey-wallet/types"
)

const (
	derSequenceTag = 0x30
	derIntegerTag  = 0x02
)

// p256HalfOrder is N/2 for the P-256 curve; any s above it gets flipped to
// its canonical low form.
var p256HalfOrder = new(big.Int).Rsh(elliptic.P256().Params().N, 1)

// ParseDERSignature parses an ASN.1 DER ECDSA signature (SEQUENCE of two
// INTEGERs) into fixed 32-byte big-endian r and s values. A single leading
// zero byte (DER sign padding) is stripped from each integer before
// left-padding to 32 bytes.
func ParseDERSignature(der []byte) (r []byte, s []byte, err error) {
	if len(der) < 2 || der[0] != derSequenceTag {
		return nil, nil, types.ErrFormat
	}
	if int(der[1]) != len(der)-2 {
		return nil, nil, types.ErrFormat
	}
	cursor := 2
	r, cursor, err = readDERInteger(der, cursor)
	if err != nil {
		return nil, nil, err
	}
	s, cursor, err = readDERInteger(der, cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != len(der) {
		return nil, nil, types.ErrFormat
	}
	return r, s, nil
}

// readDERInteger reads one INTEGER field at cursor and returns it left-padded
// to 32 bytes.
func readDERInteger(der []byte, cursor int) ([]byte, int, error) {
	if cursor+2 > len(der) || der[cursor] != derIntegerTag {
		return nil, 0, types.ErrFormat
	}
	length := int(der[cursor+1])
	cursor += 2
	if length == 0 || cursor+length > len(der) {
		return nil, 0, types.ErrFormat
	}
	value := der[cursor : cursor+length]
	cursor += length
	// strip the sign-padding zero of a 33-byte positive integer
	if len(value) == CoordinateLength+1 && value[0] == 0x00 {
		value = value[1:]
	}
	if len(value) > CoordinateLength {
		return nil, 0, types.ErrFormat
	}
	padded := make([]byte, CoordinateLength)
	copy(padded[CoordinateLength-len(value):], value)
	return padded, cursor, nil
}

// NormalizeLowS canonicalizes the s component of a P-256 signature: when
// s > N/2 it is replaced with N - s, closing the signature malleability the
// on-chain verifier rejects. r is returned unchanged. Idempotent.
func NormalizeLowS(r []byte, s []byte) ([]byte, []byte) {
	sInt := new(big.Int).SetBytes(s)
	if sInt.Cmp(p256HalfOrder) <= 0 {
		return r, s
	}
	sInt.Sub(elliptic.P256().Params().N, sInt)
	normalized := make([]byte, CoordinateLength)
	sInt.FillBytes(normalized)
	return r, normalized
}
