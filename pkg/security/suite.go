package security

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"

	"github.com/sirosfoundation/go-ebics/pkg/compression"
)

// Primitives is the set of stateless operations the request builders need.
// Builders receive it as a capability so tests can substitute a scripted
// random source.
type Primitives interface {
	// Nonce returns NonceSize fresh random bytes
	Nonce() ([]byte, error)

	// TransactionKey returns a fresh AES-128 key, independent of any nonce
	TransactionKey() ([]byte, error)

	// Compress deflates data into the zlib format
	Compress(data []byte) ([]byte, error)

	// Encrypt encrypts data with the transaction key (E002)
	Encrypt(plaintext, key []byte) ([]byte, error)

	// WrapKey encrypts the transaction key for the recipient (E002)
	WrapKey(key []byte, recipient *rsa.PublicKey) ([]byte, error)

	// Random exposes the random source for signature schemes that need one
	Random() io.Reader
}

// Suite is the default Primitives implementation
type Suite struct {
	random     io.Reader
	compressor *compression.Compressor
}

// SuiteOption configures a Suite
type SuiteOption func(*Suite)

// WithRandom replaces crypto/rand.Reader. The reader must be safe for
// concurrent use if the suite is shared between goroutines.
func WithRandom(r io.Reader) SuiteOption {
	return func(s *Suite) {
		s.random = r
	}
}

// WithCompressionLevel sets the zlib compression level
func WithCompressionLevel(level int) SuiteOption {
	return func(s *Suite) {
		s.compressor = compression.NewCompressorWithLevel(level)
	}
}

// NewSuite creates a suite reading from crypto/rand
func NewSuite(opts ...SuiteOption) *Suite {
	s := &Suite{
		random:     rand.Reader,
		compressor: compression.NewCompressor(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Nonce returns NonceSize random bytes
func (s *Suite) Nonce() ([]byte, error) {
	return s.read(NonceSize, "nonce")
}

// TransactionKey returns TransactionKeySize random bytes. An all-zero draw
// signals a broken source and is rejected.
func (s *Suite) TransactionKey() ([]byte, error) {
	key, err := s.read(TransactionKeySize, "transaction key")
	if err != nil {
		return nil, err
	}
	if allZero(key) {
		return nil, fmt.Errorf("%w: all-zero transaction key", ErrRNG)
	}
	return key, nil
}

// Compress deflates data
func (s *Suite) Compress(data []byte) ([]byte, error) {
	out, err := s.compressor.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompression, err)
	}
	return out, nil
}

// Decompress inflates data produced by Compress
func (s *Suite) Decompress(data []byte) ([]byte, error) {
	out, err := s.compressor.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompression, err)
	}
	return out, nil
}

// Encrypt encrypts with the transaction key
func (s *Suite) Encrypt(plaintext, key []byte) ([]byte, error) {
	return Encrypt(plaintext, key)
}

// WrapKey wraps the transaction key for the recipient
func (s *Suite) WrapKey(key []byte, recipient *rsa.PublicKey) ([]byte, error) {
	return WrapKey(s.random, key, recipient)
}

// Random returns the suite's random source
func (s *Suite) Random() io.Reader {
	return s.random
}

func (s *Suite) read(n int, what string) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(s.random, b); err != nil {
		return nil, fmt.Errorf("%w: generating %s: %w", ErrRNG, what, err)
	}
	return b, nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
