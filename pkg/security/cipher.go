package security

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// Encrypt encrypts data with AES-128 in CBC mode under an all-zero IV, the
// E002 data encryption. The transaction key is used once, which is what
// makes the fixed IV safe. Padding follows ANSI X9.23: zero bytes followed by
// a final byte holding the padding length, always at least one byte.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	if len(key) != TransactionKeySize {
		return nil, fmt.Errorf("%w: transaction key must be %d bytes, got %d", ErrEncryption, TransactionKeySize, len(key))
	}
	if len(plaintext) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: plaintext size %d exceeds maximum %d bytes", ErrEncryption, len(plaintext), MaxPayloadSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncryption, err)
	}

	padLen := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := make([]byte, len(plaintext)+padLen)
	copy(padded, plaintext)
	padded[len(padded)-1] = byte(padLen)

	iv := make([]byte, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return ciphertext, nil
}

// Decrypt reverses Encrypt. Only the final length byte of the padding is
// interpreted, so ISO 10126 padded input from other implementations is
// accepted as well.
func Decrypt(ciphertext, key []byte) ([]byte, error) {
	if len(key) != TransactionKeySize {
		return nil, fmt.Errorf("%w: transaction key must be %d bytes, got %d", ErrEncryption, TransactionKeySize, len(key))
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a positive multiple of the block size", ErrEncryption, len(ciphertext))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncryption, err)
	}

	iv := make([]byte, aes.BlockSize)
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	padLen := int(plaintext[len(plaintext)-1])
	if padLen == 0 || padLen > aes.BlockSize {
		return nil, fmt.Errorf("%w: invalid padding", ErrEncryption)
	}

	return plaintext[:len(plaintext)-padLen], nil
}
