package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignOrderData(t *testing.T) {
	key := generateRSAKey(t)
	data := []byte("<Document>payment</Document>")

	for _, version := range []string{SignatureVersionA005, SignatureVersionA006} {
		t.Run(version, func(t *testing.T) {
			sig, err := SignOrderData(rand.Reader, key, version, data)
			require.NoError(t, err)
			assert.Len(t, sig, key.Size())

			require.NoError(t, VerifyOrderSignature(&key.PublicKey, version, data, sig))
			assert.ErrorIs(t, VerifyOrderSignature(&key.PublicKey, version, []byte("other"), sig), ErrSignature)
		})
	}
}

func TestSignOrderData_A005Deterministic(t *testing.T) {
	key := generateRSAKey(t)

	a, err := SignOrderData(nil, key, SignatureVersionA005, []byte(" "))
	require.NoError(t, err)
	b, err := SignOrderData(nil, key, SignatureVersionA005, []byte(" "))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSignOrderData_LineEndingsIgnored(t *testing.T) {
	key := generateRSAKey(t)

	sig, err := SignOrderData(rand.Reader, key, SignatureVersionA005, []byte("line1\r\nline2\n\x1a"))
	require.NoError(t, err)

	assert.NoError(t, VerifyOrderSignature(&key.PublicKey, SignatureVersionA005, []byte("line1line2"), sig))
}

func TestOrderDataDigest(t *testing.T) {
	assert.Equal(t, OrderDataDigest([]byte("ab")), OrderDataDigest([]byte("a\r\nb")))
	assert.Equal(t, OrderDataDigest([]byte("ab")), OrderDataDigest([]byte("\na\x1ab\r")))
	assert.NotEqual(t, OrderDataDigest([]byte("ab")), OrderDataDigest([]byte("a b")))
}

func TestSignOrderData_Errors(t *testing.T) {
	key := generateRSAKey(t)

	_, err := SignOrderData(rand.Reader, key, "A004", []byte("x"))
	assert.ErrorIs(t, err, ErrSignature)

	_, err = SignOrderData(rand.Reader, nil, SignatureVersionA005, []byte("x"))
	assert.ErrorIs(t, err, ErrSignature)

	ec, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	_, err = SignOrderData(rand.Reader, ec, SignatureVersionA005, []byte("x"))
	assert.ErrorIs(t, err, ErrSignature)

	assert.ErrorIs(t, VerifyOrderSignature(nil, SignatureVersionA005, nil, nil), ErrSignature)
	assert.ErrorIs(t, VerifyOrderSignature(&key.PublicKey, "A004", nil, nil), ErrSignature)
}
