package util

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"math/big"
	"testing"

	"github.com/keyfort/go-passkey-wallet/types"
	"github.com/stretchr/testify/assert"
)

func TestParseDERSignatureKnownVector(t *testing.T) {
	// SEQUENCE { INTEGER 5, INTEGER 7 }
	der := []byte{0x30, 0x06, 0x02, 0x01, 0x05, 0x02, 0x01, 0x07}
	r, s, err := ParseDERSignature(der)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(5), new(big.Int).SetBytes(r).Int64())
	assert.Equal(t, int64(7), new(big.Int).SetBytes(s).Int64())
	assert.Len(t, r, CoordinateLength)
	assert.Len(t, s, CoordinateLength)

	// 7 is far below N/2 so normalization must not touch either value
	nr, ns := NormalizeLowS(r, s)
	assert.Equal(t, r, nr)
	assert.Equal(t, s, ns)
}

func TestParseDERSignatureRealSignature(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	digest := sha256.Sum256([]byte("challenge bytes"))
	der, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	if err != nil {
		t.Fatal(err)
	}
	r, s, err := ParseDERSignature(der)
	if err != nil {
		t.Fatal(err)
	}
	valid := ecdsa.Verify(&priv.PublicKey, digest[:], new(big.Int).SetBytes(r), new(big.Int).SetBytes(s))
	if !valid {
		t.Fatal("parsed r/s do not verify against the signing key")
	}
}

func TestParseDERSignatureRejectsMalformed(t *testing.T) {
	cases := map[string][]byte{
		"empty":             {},
		"wrong outer tag":   {0x31, 0x06, 0x02, 0x01, 0x05, 0x02, 0x01, 0x07},
		"wrong inner tag":   {0x30, 0x06, 0x03, 0x01, 0x05, 0x02, 0x01, 0x07},
		"truncated integer": {0x30, 0x06, 0x02, 0x04, 0x05, 0x02},
		"length mismatch":   {0x30, 0x20, 0x02, 0x01, 0x05, 0x02, 0x01, 0x07},
		"trailing bytes":    {0x30, 0x07, 0x02, 0x01, 0x05, 0x02, 0x01, 0x07, 0xff},
	}
	for name, der := range cases {
		_, _, err := ParseDERSignature(der)
		if !errors.Is(err, types.ErrFormat) {
			t.Fatalf("%s: expected format error, got %v", name, err)
		}
	}
}

func TestNormalizeLowSFlipsHighS(t *testing.T) {
	order := elliptic.P256().Params().N
	highS := new(big.Int).Sub(order, big.NewInt(7)) // N - 7, above N/2
	s := make([]byte, CoordinateLength)
	highS.FillBytes(s)
	r := make([]byte, CoordinateLength)
	r[CoordinateLength-1] = 0x05

	nr, ns := NormalizeLowS(r, s)
	assert.Equal(t, r, nr)
	assert.Equal(t, int64(7), new(big.Int).SetBytes(ns).Int64())

	// idempotent
	nr2, ns2 := NormalizeLowS(nr, ns)
	assert.Equal(t, nr, nr2)
	assert.Equal(t, ns, ns2)
}
