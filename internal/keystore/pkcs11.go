//go:build pkcs11

package keystore

import (
	"context"
	"crypto"
	"fmt"
	"strings"
	"sync"

	"github.com/ThalesIgnite/crypto11"
)

// PKCS11Provider implements Provider using a PKCS#11 token (HSM/smart card)
type PKCS11Provider struct {
	ctx             *crypto11.Context
	keyLabelPattern string
	mu              sync.RWMutex
	signers         map[string]crypto.Signer
}

// PKCS11Config holds configuration for the PKCS#11 provider
type PKCS11Config struct {
	// ModulePath is the path to the PKCS#11 library (.so/.dylib/.dll)
	ModulePath string

	// SlotID is the slot number to use (optional if SlotLabel is provided)
	SlotID *uint

	// SlotLabel is the token label to search for (optional if SlotID is provided)
	SlotLabel string

	// PIN is the user PIN for authentication
	PIN string

	// KeyLabelPattern is the pattern for key labels, with {user-id} and
	// {role} placeholders, e.g. "ebics-{user-id}-{role}"
	KeyLabelPattern string
}

// NewPKCS11Provider creates a new PKCS#11 provider
func NewPKCS11Provider(cfg *PKCS11Config) (*PKCS11Provider, error) {
	config := &crypto11.Config{
		Path: cfg.ModulePath,
		Pin:  cfg.PIN,
	}

	if cfg.SlotID != nil {
		slotID := int(*cfg.SlotID)
		config.SlotNumber = &slotID
	}
	if cfg.SlotLabel != "" {
		config.TokenLabel = cfg.SlotLabel
	}

	ctx, err := crypto11.Configure(config)
	if err != nil {
		return nil, fmt.Errorf("configuring PKCS#11: %w", err)
	}

	pattern := cfg.KeyLabelPattern
	if pattern == "" {
		pattern = "ebics-{user-id}-{role}"
	}

	return &PKCS11Provider{
		ctx:             ctx,
		keyLabelPattern: pattern,
		signers:         make(map[string]crypto.Signer),
	}, nil
}

// Signer returns the token key of a user for a role
func (p *PKCS11Provider) Signer(ctx context.Context, userID string, role Role) (crypto.Signer, error) {
	label := keyLabel(p.keyLabelPattern, userID, role)

	p.mu.RLock()
	if signer, ok := p.signers[label]; ok {
		p.mu.RUnlock()
		return signer, nil
	}
	p.mu.RUnlock()

	key, err := p.ctx.FindKeyPair(nil, []byte(label))
	if err != nil {
		return nil, fmt.Errorf("finding key pair: %w", err)
	}
	if key == nil {
		return nil, fmt.Errorf("%w: label %s", ErrKeyNotFound, label)
	}

	p.mu.Lock()
	p.signers[label] = key
	p.mu.Unlock()

	return key, nil
}

// Close releases PKCS#11 resources
func (p *PKCS11Provider) Close() error {
	return p.ctx.Close()
}

func keyLabel(pattern, userID string, role Role) string {
	return strings.NewReplacer("{user-id}", userID, "{role}", string(role)).Replace(pattern)
}
