package util

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/keyfort/go-passkey-wallet/types"
	"github.com/stretchr/testify/assert"
)

func TestKeyInfoRoundTrip(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	rawKey := make([]byte, RawKeyLength)
	priv.PublicKey.X.FillBytes(rawKey[:CoordinateLength])
	priv.PublicKey.Y.FillBytes(rawKey[CoordinateLength:])

	blob, err := MarshalKeyInfo(rawKey)
	if err != nil {
		t.Fatal(err)
	}
	if len(blob) != KeyInfoLength {
		t.Fatalf("key info blob is %d bytes, expected %d", len(blob), KeyInfoLength)
	}
	x, y, err := UnmarshalKeyInfo(blob)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, rawKey[:CoordinateLength], x)
	assert.Equal(t, rawKey[CoordinateLength:], y)
}

func TestKeyInfoKnownVector(t *testing.T) {
	rawKey := make([]byte, RawKeyLength)
	for i := 0; i < CoordinateLength; i++ {
		rawKey[i] = 0x01
		rawKey[CoordinateLength+i] = 0x02
	}
	blob, err := MarshalKeyInfo(rawKey)
	if err != nil {
		t.Fatal(err)
	}
	expected := append([]byte{}, spkiHeaderP256...)
	expected = append(expected, 0x04)
	expected = append(expected, rawKey...)
	if !bytes.Equal(blob, expected) {
		t.Fatalf("unexpected key info encoding: %x", blob)
	}

	x, y, err := UnmarshalKeyInfo(blob)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, bytes.Repeat([]byte{0x01}, CoordinateLength), x)
	assert.Equal(t, bytes.Repeat([]byte{0x02}, CoordinateLength), y)
}

func TestMarshalKeyInfoRejectsWrongLength(t *testing.T) {
	_, err := MarshalKeyInfo(make([]byte, 63))
	if !errors.Is(err, types.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestUnmarshalKeyInfoRejectsBadPrefix(t *testing.T) {
	blob := make([]byte, KeyInfoLength)
	blob[0] = 0x31 // not a SEQUENCE
	_, _, err := UnmarshalKeyInfo(blob)
	if !errors.Is(err, types.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}

	_, _, err = UnmarshalKeyInfo(make([]byte, 90))
	if !errors.Is(err, types.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}
