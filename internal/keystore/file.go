package keystore

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileProvider implements Provider using PEM files on disk.
//
// Key files are expected at {keyDir}/{userID}/{role}.pem. A file holds
// either a plain private key or a block sealed with SealPrivateKey.
type FileProvider struct {
	keyDir     string
	passphrase []byte
	mu         sync.RWMutex
	signers    map[string]crypto.Signer
}

// NewFileProvider creates a new file-based provider. The passphrase is only
// needed for sealed keys.
func NewFileProvider(keyDir, passphrase string) (*FileProvider, error) {
	info, err := os.Stat(keyDir)
	if err != nil {
		return nil, fmt.Errorf("checking key directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("key directory is not a directory: %s", keyDir)
	}

	return &FileProvider{
		keyDir:     keyDir,
		passphrase: []byte(passphrase),
		signers:    make(map[string]crypto.Signer),
	}, nil
}

// KeyPath returns where the key of a user and role is stored
func (p *FileProvider) KeyPath(userID string, role Role) string {
	return filepath.Join(p.keyDir, userID, string(role)+".pem")
}

// Signer returns the key of a user for a role
func (p *FileProvider) Signer(ctx context.Context, userID string, role Role) (crypto.Signer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cacheKey := userID + ":" + string(role)

	// Check cache first
	p.mu.RLock()
	if signer, ok := p.signers[cacheKey]; ok {
		p.mu.RUnlock()
		return signer, nil
	}
	p.mu.RUnlock()

	data, err := os.ReadFile(p.KeyPath(userID, role))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s key of %s", ErrKeyNotFound, role, userID)
		}
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	signer, err := ParsePrivateKey(data, p.passphrase)
	if err != nil {
		return nil, fmt.Errorf("%s key of %s: %w", role, userID, err)
	}

	p.mu.Lock()
	p.signers[cacheKey] = signer
	p.mu.Unlock()

	return signer, nil
}

// Close drops cached keys
func (p *FileProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signers = make(map[string]crypto.Signer)
	return nil
}

// ParsePrivateKey decodes a PEM private key. Sealed blocks are opened with
// the passphrase. Only RSA keys are accepted.
func ParsePrivateKey(pemData, passphrase []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	der := block.Bytes
	switch block.Type {
	case SealedBlockType:
		if len(passphrase) == 0 {
			return nil, ErrKeyLocked
		}
		opened, err := unseal(block.Bytes, passphrase)
		if err != nil {
			return nil, err
		}
		defer clear(opened)
		der = opened
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(der)
	case "PRIVATE KEY":
	default:
		return nil, fmt.Errorf("%w: PEM type %s", ErrUnsupported, block.Type)
	}

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, key)
	}
	return rsaKey, nil
}

// WritePrivateKey stores key at path, sealed when a passphrase is given
func WritePrivateKey(path string, key *rsa.PrivateKey, passphrase []byte) error {
	var block *pem.Block
	if len(passphrase) > 0 {
		sealed, err := SealPrivateKey(key, passphrase)
		if err != nil {
			return err
		}
		block = sealed
	} else {
		der, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			return err
		}
		block = &pem.Block{Type: "PRIVATE KEY", Bytes: der}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}
	return os.WriteFile(path, pem.EncodeToMemory(block), 0o600)
}
