package keystore

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// SealedBlockType is the PEM type of a passphrase-sealed private key
const SealedBlockType = "EBICS SEALED PRIVATE KEY"

// scrypt parameters for key sealing
const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	sealSaltSize = 16
)

// SealPrivateKey encrypts a PKCS#8 encoding of key under a key derived from
// passphrase with scrypt. The block body is salt || nonce || ciphertext.
func SealPrivateKey(key *rsa.PrivateKey, passphrase []byte) (*pem.Block, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("encoding private key: %w", err)
	}
	defer clear(der)

	salt := make([]byte, sealSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	aead, err := sealingAEAD(passphrase, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	body := make([]byte, 0, len(salt)+len(nonce)+len(der)+aead.Overhead())
	body = append(body, salt...)
	body = append(body, nonce...)
	body = aead.Seal(body, nonce, der, []byte(SealedBlockType))

	return &pem.Block{Type: SealedBlockType, Bytes: body}, nil
}

func unseal(body, passphrase []byte) ([]byte, error) {
	if len(body) < sealSaltSize+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return nil, fmt.Errorf("%w: sealed key too short", ErrBadPassphrase)
	}
	salt := body[:sealSaltSize]
	aead, err := sealingAEAD(passphrase, salt)
	if err != nil {
		return nil, err
	}

	nonce := body[sealSaltSize : sealSaltSize+aead.NonceSize()]
	der, err := aead.Open(nil, nonce, body[sealSaltSize+aead.NonceSize():], []byte(SealedBlockType))
	if err != nil {
		return nil, ErrBadPassphrase
	}
	return der, nil
}

func sealingAEAD(passphrase, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(passphrase, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("deriving sealing key: %w", err)
	}
	defer clear(key)
	return chacha20poly1305.NewX(key)
}
