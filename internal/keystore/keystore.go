// Package keystore loads the subscriber's private keys and the bank's
// public keys.
//
// Subscriber keys are looked up by user id and role. Two backends exist:
//
//   - File: PEM files on disk, optionally sealed with a passphrase
//   - PKCS#11: keys stored in hardware security modules (HSM) or smart cards
//
// The request builders only see crypto.Signer values and never learn where
// a key is kept.
package keystore

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"strings"

	"github.com/sirosfoundation/go-ebics/internal/config"
)

// Common errors
var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrKeyLocked     = errors.New("key is sealed and no passphrase was given")
	ErrBadPassphrase = errors.New("key could not be unsealed")
	ErrUnsupported   = errors.New("unsupported key")
)

// Role names the purpose of a subscriber key
type Role string

const (
	// RoleSignature is the A005/A006 electronic signature key
	RoleSignature Role = "signature"
	// RoleAuthentication is the X002 authentication key
	RoleAuthentication Role = "authentication"
	// RoleEncryption is the E002 encryption key
	RoleEncryption Role = "encryption"
)

// ParseRole converts a role name
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(s)); r {
	case RoleSignature, RoleAuthentication, RoleEncryption:
		return r, nil
	}
	return "", fmt.Errorf("unknown key role %q", s)
}

// Provider supplies subscriber keys.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Signer returns the private key of a user for a role
	Signer(ctx context.Context, userID string, role Role) (crypto.Signer, error)

	// Close releases any resources held by the provider
	Close() error
}

// NewProvider creates a Provider based on the configuration
func NewProvider(cfg *config.KeystoreConfig) (Provider, error) {
	switch cfg.Mode {
	case "pkcs11":
		p11cfg := &PKCS11Config{
			ModulePath:      cfg.PKCS11.ModulePath,
			SlotLabel:       cfg.PKCS11.SlotLabel,
			PIN:             cfg.PKCS11.PIN,
			KeyLabelPattern: cfg.PKCS11.KeyLabelPattern,
		}
		if cfg.PKCS11.SlotID > 0 {
			slotID := cfg.PKCS11.SlotID
			p11cfg.SlotID = &slotID
		}
		return NewPKCS11Provider(p11cfg)
	case "file", "":
		keyDir := cfg.File.KeyDir
		if keyDir == "" {
			keyDir = "./keys"
		}
		return NewFileProvider(keyDir, cfg.File.Passphrase)
	default:
		return nil, fmt.Errorf("unknown keystore mode: %s", cfg.Mode)
	}
}
