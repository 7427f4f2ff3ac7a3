package util

import (
	"bytes"

	"github.com/keyfort/go-passkey-wallet/types"
)

const (
	CoordinateLength = 32 // bytes, per P-256 coordinate
	RawKeyLength     = 64 // bytes, x || y
	KeyInfoLength    = 91 // bytes, header + point tag + x || y
)

// spkiHeaderP256 is the fixed 26-byte SubjectPublicKeyInfo header for an
// uncompressed P-256 public key (id-ecPublicKey, prime256v1). Any key info
// blob produced or accepted by this module starts with exactly these bytes.
var spkiHeaderP256 = []byte{
	0x30, 0x59, 0x30, 0x13, 0x06, 0x07, 0x2a, 0x86,
	0x48, 0xce, 0x3d, 0x02, 0x01, 0x06, 0x08, 0x2a,
	0x86, 0x48, 0xce, 0x3d, 0x03, 0x01, 0x07, 0x03,
	0x42, 0x00,
}

// uncompressedPointTag marks the SEC1 uncompressed point encoding
const uncompressedPointTag = 0x04

// MarshalKeyInfo wraps a raw 64-byte coordinate pair (x || y) into the
// 91-byte SPKI key info blob used for storage and interchange.
func MarshalKeyInfo(rawKey []byte) ([]byte, error) {
	if len(rawKey) != RawKeyLength {
		return nil, types.ErrFormat
	}
	blob := make([]byte, 0, KeyInfoLength)
	blob = append(blob, spkiHeaderP256...)
	blob = append(blob, uncompressedPointTag)
	blob = append(blob, rawKey...)
	return blob, nil
}

// UnmarshalKeyInfo extracts the two 32-byte coordinates from a 91-byte SPKI
// key info blob.
func UnmarshalKeyInfo(blob []byte) (x []byte, y []byte, err error) {
	if len(blob) != KeyInfoLength {
		return nil, nil, types.ErrFormat
	}
	if !bytes.HasPrefix(blob, spkiHeaderP256) {
		return nil, nil, types.ErrFormat
	}
	if blob[len(spkiHeaderP256)] != uncompressedPointTag {
		return nil, nil, types.ErrFormat
	}
	raw := blob[len(spkiHeaderP256)+1:]
	x = make([]byte, CoordinateLength)
	y = make([]byte, CoordinateLength)
	copy(x, raw[:CoordinateLength])
	copy(y, raw[CoordinateLength:])
	return x, y, nil
}
