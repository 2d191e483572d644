package envelope

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/base64"
	"fmt"

	"github.com/sirosfoundation/go-ebics/pkg/compression"
	"github.com/sirosfoundation/go-ebics/pkg/security"
	"github.com/sirosfoundation/go-ebics/pkg/signature"
)

// SegmentSize is the maximum size of one order data segment
const SegmentSize = 1024 * 1024

// KeySource supplies the bank public keys digests are resolved against
type KeySource interface {
	BankKeys(ctx context.Context) ([]*rsa.PublicKey, error)
}

// Envelope is the encrypted form of a signed payload
type Envelope struct {
	// WrappedKey is the transaction key encrypted for the bank
	WrappedKey []byte

	// EncryptedPayload is the compressed and encrypted UserSignatureData
	EncryptedPayload []byte

	// EncryptionDigest is the pinned digest of the key used for wrapping
	EncryptionDigest []byte

	// Segments holds base64 encoded, encrypted order data for uploads
	Segments []string
}

// NumSegments returns the number of order data segments
func (e *Envelope) NumSegments() int {
	return len(e.Segments)
}

// Builder creates envelopes
type Builder struct {
	prims security.Primitives
	keys  KeySource
}

// NewBuilder creates an envelope builder
func NewBuilder(prims security.Primitives, keys KeySource) *Builder {
	return &Builder{prims: prims, keys: keys}
}

// Build encrypts a validated signature payload for the bank key matching
// digest. Either a complete envelope or an error is returned.
func (b *Builder) Build(ctx context.Context, payload signature.Validated, digest []byte) (*Envelope, error) {
	return b.seal(ctx, payload, nil, digest)
}

// Seal is Build for uploads: the order data is encrypted under the same
// transaction key and split into segments.
func (b *Builder) Seal(ctx context.Context, payload signature.Validated, orderData []byte, digest []byte) (*Envelope, error) {
	if len(orderData) == 0 {
		return nil, fmt.Errorf("%w: order data is empty", security.ErrEncryption)
	}
	return b.seal(ctx, payload, orderData, digest)
}

func (b *Builder) seal(ctx context.Context, payload signature.Validated, orderData []byte, digest []byte) (*Envelope, error) {
	if payload.IsZero() {
		return nil, fmt.Errorf("%w: signature payload was not validated", security.ErrSignature)
	}

	key, err := b.prims.TransactionKey()
	if err != nil {
		return nil, err
	}
	defer clear(key)

	encrypted, err := b.compressAndEncrypt(payload.Bytes(), key)
	if err != nil {
		return nil, err
	}

	var segments []string
	if orderData != nil {
		encryptedData, err := b.compressAndEncrypt(orderData, key)
		if err != nil {
			return nil, err
		}
		segments = split(base64.StdEncoding.EncodeToString(encryptedData), SegmentSize)
	}

	recipient, err := b.resolve(ctx, digest)
	if err != nil {
		return nil, err
	}
	wrapped, err := b.prims.WrapKey(key, recipient)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		WrappedKey:       wrapped,
		EncryptedPayload: encrypted,
		EncryptionDigest: append([]byte(nil), digest...),
		Segments:         segments,
	}, nil
}

func (b *Builder) compressAndEncrypt(data, key []byte) ([]byte, error) {
	compressed, err := b.prims.Compress(data)
	if err != nil {
		return nil, err
	}
	return b.prims.Encrypt(compressed, key)
}

func (b *Builder) resolve(ctx context.Context, digest []byte) (*rsa.PublicKey, error) {
	if b.keys == nil {
		return nil, fmt.Errorf("%w: no bank key source", security.ErrKeyResolution)
	}
	keys, err := b.keys.BankKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: loading bank keys: %w", security.ErrKeyResolution, err)
	}
	return security.ResolveByDigest(keys, digest)
}

func split(s string, size int) []string {
	var out []string
	for len(s) > size {
		out = append(out, s[:size])
		s = s[size:]
	}
	return append(out, s)
}

// Open reverses Build with the bank's private key and returns the
// UserSignatureData document.
func Open(env *Envelope, bank *rsa.PrivateKey) ([]byte, error) {
	if err := checkDigest(env, bank); err != nil {
		return nil, err
	}
	key, err := security.UnwrapKey(env.WrappedKey, bank)
	if err != nil {
		return nil, err
	}
	defer clear(key)
	return decryptAndInflate(env.EncryptedPayload, key)
}

// OpenOrderData reassembles and decrypts the order data segments
func OpenOrderData(env *Envelope, bank *rsa.PrivateKey) ([]byte, error) {
	if err := checkDigest(env, bank); err != nil {
		return nil, err
	}
	if len(env.Segments) == 0 {
		return nil, fmt.Errorf("%w: envelope carries no order data", security.ErrEncryption)
	}
	key, err := security.UnwrapKey(env.WrappedKey, bank)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	var joined bytes.Buffer
	for _, segment := range env.Segments {
		joined.WriteString(segment)
	}
	encrypted, err := base64.StdEncoding.DecodeString(joined.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", security.ErrEncoding, err)
	}
	return decryptAndInflate(encrypted, key)
}

func checkDigest(env *Envelope, bank *rsa.PrivateKey) error {
	if env == nil || bank == nil {
		return fmt.Errorf("%w: envelope and key are required", security.ErrEncryption)
	}
	if !bytes.Equal(security.PublicKeyDigest(&bank.PublicKey), env.EncryptionDigest) {
		return fmt.Errorf("%w: envelope was sealed for another key", security.ErrKeyResolution)
	}
	return nil
}

func decryptAndInflate(encrypted, key []byte) ([]byte, error) {
	compressed, err := security.Decrypt(encrypted, key)
	if err != nil {
		return nil, err
	}
	data, err := compression.NewCompressor().Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", security.ErrCompression, err)
	}
	return data, nil
}
