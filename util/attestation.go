package util

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/keyfort/go-passkey-wallet/types"
)

// CBOR major types, the full vocabulary this parser accepts
const (
	cborUnsigned   = 0
	cborNegative   = 1
	cborByteString = 2
	cborTextString = 3
	cborArray      = 4
	cborMap        = 5
	cborSimple     = 7
)

// authDataPrefixLength covers rpIdHash (32) + flags (1) + signCount (4)
const authDataPrefixLength = 37

// aaguidLength is the fixed authenticator id inside attested credential data
const aaguidLength = 16

// COSE EC2 map keys for the coordinates
const (
	coseKeyX = -2
	coseKeyY = -3
)

// attestationEnvelope is the WebAuthn attestation object envelope.
type attestationEnvelope struct {
	Fmt      string          `cbor:"fmt"`
	AttStmt  cbor.RawMessage `cbor:"attStmt"`
	AuthData []byte          `cbor:"authData"`
}

// ParsePublicKey extracts the P-256 coordinate pair from a raw WebAuthn
// attestation object. The envelope is decoded with the cbor library when it
// is well formed; the manual walker below is the fallback for authenticators
// producing envelopes the struct decoder chokes on.
func ParsePublicKey(attestationObject []byte) (x []byte, y []byte, err error) {
	var envelope attestationEnvelope
	if dErr := cbor.Unmarshal(attestationObject, &envelope); dErr == nil && len(envelope.AuthData) > 0 {
		return parseAuthData(envelope.AuthData)
	}
	return ParseAttestationObject(attestationObject)
}

// ParseAttestationObject walks the attestation object with an explicit cursor
// and no reflection: the top-level map is scanned for the "authData" byte
// string, everything else is skipped. The small fixed tag vocabulary makes a
// hand-written decoder the right shape here; any tag outside it is a format
// error, never a silent skip.
func ParseAttestationObject(attestationObject []byte) (x []byte, y []byte, err error) {
	c := &cborCursor{buf: attestationObject}
	major, entries, err := c.readHeader()
	if err != nil {
		return nil, nil, err
	}
	if major != cborMap {
		return nil, nil, fmt.Errorf("%w: attestation object is not a map", types.ErrFormat)
	}
	for i := uint64(0); i < entries; i++ {
		keyMajor, keyLen, kErr := c.readHeader()
		if kErr != nil {
			return nil, nil, kErr
		}
		if keyMajor != cborTextString {
			return nil, nil, fmt.Errorf("%w: non-text attestation map key", types.ErrFormat)
		}
		key, kErr := c.readBytes(keyLen)
		if kErr != nil {
			return nil, nil, kErr
		}
		if string(key) == "authData" {
			valMajor, valLen, vErr := c.readHeader()
			if vErr != nil {
				return nil, nil, vErr
			}
			if valMajor != cborByteString {
				return nil, nil, fmt.Errorf("%w: authData is not a byte string", types.ErrFormat)
			}
			authData, vErr := c.readBytes(valLen)
			if vErr != nil {
				return nil, nil, vErr
			}
			return parseAuthData(authData)
		}
		if sErr := c.skipItem(); sErr != nil {
			return nil, nil, sErr
		}
	}
	return nil, nil, fmt.Errorf("%w: attestation object has no authData", types.ErrFormat)
}

// parseAuthData skips the fixed authenticator data prefix and the credential
// id to reach the COSE key map holding the coordinates.
func parseAuthData(authData []byte) (x []byte, y []byte, err error) {
	offset := authDataPrefixLength + aaguidLength
	if len(authData) < offset+2 {
		return nil, nil, fmt.Errorf("%w: authData too short", types.ErrFormat)
	}
	credentialIDLength := int(binary.BigEndian.Uint16(authData[offset : offset+2]))
	offset += 2 + credentialIDLength
	if len(authData) < offset {
		return nil, nil, fmt.Errorf("%w: truncated credential id", types.ErrFormat)
	}
	return parseCOSEKey(authData[offset:])
}

// parseCOSEKey iterates the declared entries of the COSE_Key map and picks
// out the -2 (x) and -3 (y) byte strings.
func parseCOSEKey(coseKey []byte) (x []byte, y []byte, err error) {
	c := &cborCursor{buf: coseKey}
	major, entries, err := c.readHeader()
	if err != nil {
		return nil, nil, err
	}
	if major != cborMap {
		return nil, nil, fmt.Errorf("%w: credential key is not a map", types.ErrFormat)
	}
	for i := uint64(0); i < entries; i++ {
		keyMajor, keyVal, kErr := c.readHeader()
		if kErr != nil {
			return nil, nil, kErr
		}
		var key int64
		switch keyMajor {
		case cborUnsigned:
			key = int64(keyVal)
		case cborNegative:
			key = -1 - int64(keyVal)
		default:
			return nil, nil, fmt.Errorf("%w: non-integer COSE key", types.ErrFormat)
		}
		switch key {
		case coseKeyX:
			x, err = c.readCoordinate()
		case coseKeyY:
			y, err = c.readCoordinate()
		default:
			err = c.skipItem()
		}
		if err != nil {
			return nil, nil, err
		}
	}
	if x == nil || y == nil {
		return nil, nil, fmt.Errorf("%w: COSE key missing coordinate", types.ErrFormat)
	}
	return x, y, nil
}

// readCoordinate reads a 32-byte byte string, either in the short form or
// with the one-byte length prefix encoding.
func (c *cborCursor) readCoordinate() ([]byte, error) {
	major, length, err := c.readHeader()
	if err != nil {
		return nil, err
	}
	if major != cborByteString || length != CoordinateLength {
		return nil, fmt.Errorf("%w: coordinate is not a 32-byte string", types.ErrFormat)
	}
	value, err := c.readBytes(length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, CoordinateLength)
	copy(out, value)
	return out, nil
}

// cborCursor is an index cursor into a CBOR buffer.
type cborCursor struct {
	buf []byte
	pos int
}

// readHeader decodes one item header: the major type and its argument (value
// for integers, length for strings and containers). Only definite lengths up
// to 32 bits are in this format's vocabulary.
func (c *cborCursor) readHeader() (byte, uint64, error) {
	if c.pos >= len(c.buf) {
		return 0, 0, fmt.Errorf("%w: unexpected end of CBOR input", types.ErrFormat)
	}
	initial := c.buf[c.pos]
	c.pos++
	major := initial >> 5
	additional := initial & 0x1f
	switch {
	case additional < 24:
		return major, uint64(additional), nil
	case additional == 24:
		b, err := c.readBytes(1)
		if err != nil {
			return 0, 0, err
		}
		return major, uint64(b[0]), nil
	case additional == 25:
		b, err := c.readBytes(2)
		if err != nil {
			return 0, 0, err
		}
		return major, uint64(binary.BigEndian.Uint16(b)), nil
	case additional == 26:
		b, err := c.readBytes(4)
		if err != nil {
			return 0, 0, err
		}
		return major, uint64(binary.BigEndian.Uint32(b)), nil
	default:
		return 0, 0, fmt.Errorf("%w: unsupported CBOR additional info %d", types.ErrFormat, additional)
	}
}

func (c *cborCursor) readBytes(n uint64) ([]byte, error) {
	if uint64(len(c.buf)-c.pos) < n {
		return nil, fmt.Errorf("%w: unexpected end of CBOR input", types.ErrFormat)
	}
	out := c.buf[c.pos : c.pos+int(n)]
	c.pos += int(n)
	return out, nil
}

// skipItem advances the cursor past one complete item, recursing into arrays
// and maps. Unknown major types are a format error.
func (c *cborCursor) skipItem() error {
	major, value, err := c.readHeader()
	if err != nil {
		return err
	}
	switch major {
	case cborUnsigned, cborNegative, cborSimple:
		return nil
	case cborByteString, cborTextString:
		_, err = c.readBytes(value)
		return err
	case cborArray:
		for i := uint64(0); i < value; i++ {
			if err := c.skipItem(); err != nil {
				return err
			}
		}
		return nil
	case cborMap:
		for i := uint64(0); i < value; i++ {
			if err := c.skipItem(); err != nil {
				return err
			}
			if err := c.skipItem(); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported CBOR major type %d", types.ErrFormat, major)
	}
}
