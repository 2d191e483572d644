package security

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// EncodeHex renders bytes as upper-case hexBinary, the form used for nonces
// and for key hashes printed on bank initialisation letters.
func EncodeHex(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}

// DecodeHex parses hex in either case. Blanks are ignored so that hashes
// copied from an initialisation letter ("A1 B2 ...") decode as-is.
func DecodeHex(s string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
	if compact == "" {
		return nil, fmt.Errorf("%w: empty hex string", ErrEncoding)
	}

	data, err := hex.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return data, nil
}

// DecodeDigest decodes a hex encoded SHA-256 digest and checks its length.
func DecodeDigest(s string) ([]byte, error) {
	digest, err := DecodeHex(s)
	if err != nil {
		return nil, err
	}
	if len(digest) != DigestSize {
		return nil, fmt.Errorf("%w: digest must be %d bytes, got %d", ErrEncoding, DigestSize, len(digest))
	}
	return digest, nil
}
