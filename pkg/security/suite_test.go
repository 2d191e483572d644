package security

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-ebics/pkg/security/securitytest"
)

func TestSuite_NonceUniqueness(t *testing.T) {
	suite := NewSuite()
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		nonce, err := suite.Nonce()
		require.NoError(t, err)
		require.Len(t, nonce, NonceSize)

		key := EncodeHex(nonce)
		_, dup := seen[key]
		require.False(t, dup, "nonce %s repeated after %d draws", key, i)
		seen[key] = struct{}{}
	}
}

func TestSuite_TransactionKeyIndependentOfNonce(t *testing.T) {
	reader := securitytest.NewSequenceReader("seed", securitytest.Counter(1), securitytest.Counter(2))
	suite := NewSuite(WithRandom(reader))

	nonce, err := suite.Nonce()
	require.NoError(t, err)
	key, err := suite.TransactionKey()
	require.NoError(t, err)

	assert.Equal(t, securitytest.Counter(1), nonce)
	assert.Equal(t, securitytest.Counter(2), key)
	assert.NotEqual(t, nonce, key)
	assert.Equal(t, 0, reader.Remaining())
}

func TestSuite_AllZeroTransactionKey(t *testing.T) {
	suite := NewSuite(WithRandom(bytes.NewReader(make([]byte, TransactionKeySize))))

	_, err := suite.TransactionKey()
	assert.ErrorIs(t, err, ErrRNG)
}

func TestSuite_RandomSourceFailure(t *testing.T) {
	suite := NewSuite(WithRandom(securitytest.FailingReader{Err: errors.New("entropy exhausted")}))

	_, err := suite.Nonce()
	assert.ErrorIs(t, err, ErrRNG)
	assert.Contains(t, err.Error(), "entropy exhausted")

	_, err = suite.TransactionKey()
	assert.ErrorIs(t, err, ErrRNG)
}

func TestSuite_ShortRandomSource(t *testing.T) {
	suite := NewSuite(WithRandom(bytes.NewReader([]byte{1, 2, 3})))

	_, err := suite.Nonce()
	assert.ErrorIs(t, err, ErrRNG)
}

func TestSuite_EnvelopeRoundTrip(t *testing.T) {
	bank, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	suite := NewSuite()
	sizes := []int{1, 15, 16, 17, 1024, 100 * 1024}

	for _, size := range sizes {
		payload := make([]byte, size)
		_, err := rand.Read(payload)
		require.NoError(t, err)

		key, err := suite.TransactionKey()
		require.NoError(t, err)

		compressed, err := suite.Compress(payload)
		require.NoError(t, err)
		encrypted, err := suite.Encrypt(compressed, key)
		require.NoError(t, err)
		wrapped, err := suite.WrapKey(key, &bank.PublicKey)
		require.NoError(t, err)

		unwrapped, err := UnwrapKey(wrapped, bank)
		require.NoError(t, err)
		require.Equal(t, key, unwrapped)

		decrypted, err := Decrypt(encrypted, unwrapped)
		require.NoError(t, err)
		require.Equal(t, compressed, decrypted)

		decompressed, err := suite.Decompress(decrypted)
		require.NoError(t, err)
		assert.Equal(t, payload, decompressed, "size %d", size)
	}
}

func TestSuite_DecompressMalformed(t *testing.T) {
	_, err := NewSuite().Decompress([]byte("not zlib"))
	assert.ErrorIs(t, err, ErrCompression)
}

func TestSuite_CompressionLevel(t *testing.T) {
	data := bytes.Repeat([]byte("EBICS "), 1000)

	fast, err := NewSuite(WithCompressionLevel(1)).Compress(data)
	require.NoError(t, err)
	best, err := NewSuite(WithCompressionLevel(9)).Compress(data)
	require.NoError(t, err)

	assert.Less(t, len(best), len(data))
	assert.Less(t, len(fast), len(data))
}
