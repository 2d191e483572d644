package security

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"
)

// PublicKeyDigest computes the EBICS H004 hash of an RSA public key: SHA-256
// over the ASCII string "<exponent> <modulus>", both in lower-case hex
// without leading zeros. This is the value banks print on initialisation
// letters and the value pinned in BankPubKeyDigests.
func PublicKeyDigest(pub *rsa.PublicKey) []byte {
	text := fmt.Sprintf("%x %s", pub.E, pub.N.Text(16))
	sum := sha256.Sum256([]byte(text))
	return sum[:]
}

// ResolveByDigest returns the key whose digest equals the pinned digest.
func ResolveByDigest(keys []*rsa.PublicKey, digest []byte) (*rsa.PublicKey, error) {
	if len(digest) != DigestSize {
		return nil, fmt.Errorf("%w: pinned digest must be %d bytes, got %d", ErrKeyResolution, DigestSize, len(digest))
	}
	for _, key := range keys {
		if key == nil {
			continue
		}
		if bytes.Equal(PublicKeyDigest(key), digest) {
			return key, nil
		}
	}
	return nil, fmt.Errorf("%w: %s (%d candidate keys)", ErrKeyResolution, EncodeHex(digest), len(keys))
}

// WrapKey encrypts a transaction key for the recipient with RSA PKCS#1 v1.5,
// the E002 key transport.
func WrapKey(random io.Reader, key []byte, recipient *rsa.PublicKey) ([]byte, error) {
	if recipient == nil {
		return nil, fmt.Errorf("%w: recipient key not set", ErrKeyResolution)
	}
	if random == nil {
		random = rand.Reader
	}

	wrapped, err := rsa.EncryptPKCS1v15(random, recipient, key)
	if err != nil {
		return nil, fmt.Errorf("%w: RSA key transport failed: %w", ErrEncryption, err)
	}
	return wrapped, nil
}

// UnwrapKey recovers a transaction key wrapped by WrapKey. It is what the
// bank does on receipt and is used to check envelopes locally.
func UnwrapKey(wrapped []byte, private *rsa.PrivateKey) ([]byte, error) {
	if private == nil {
		return nil, fmt.Errorf("%w: private key not set", ErrEncryption)
	}

	key, err := rsa.DecryptPKCS1v15(nil, private, wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: RSA key transport failed: %w", ErrEncryption, err)
	}
	if len(key) != TransactionKeySize {
		return nil, fmt.Errorf("%w: unwrapped key has %d bytes", ErrEncryption, len(key))
	}
	return key, nil
}
