// Package subscriber assembles a session.Registry from configuration.
//
// The registry answers the request builders from three sources: the
// configuration (identity, product, pinned digests), a keystore.Provider
// (subscriber keys) and a storage.CounterStore (order ids).
package subscriber

import (
	"context"
	"crypto"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sirosfoundation/go-ebics/internal/config"
	"github.com/sirosfoundation/go-ebics/internal/keystore"
	"github.com/sirosfoundation/go-ebics/internal/storage"
	"github.com/sirosfoundation/go-ebics/pkg/security"
	"github.com/sirosfoundation/go-ebics/pkg/session"
)

// Registry implements session.Registry
type Registry struct {
	identity session.Identity
	digests  session.BankKeyDigests
	product  session.Product
	revision int
	version  string

	keys     keystore.Provider
	counters storage.CounterStore
	logger   *slog.Logger

	mu       sync.RWMutex
	bankKeys []*rsa.PublicKey
}

var _ session.Registry = (*Registry)(nil)

// New creates a registry. Bank keys are loaded from cfg.Bank.KeyFiles and
// must match the pinned digests.
func New(cfg *config.Config, keys keystore.Provider, counters storage.CounterStore, logger *slog.Logger) (*Registry, error) {
	if keys == nil {
		return nil, errors.New("key provider is required")
	}
	if counters == nil {
		return nil, errors.New("counter store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	digests, err := cfg.BankKeyDigests()
	if err != nil {
		return nil, err
	}

	r := &Registry{
		identity: cfg.Identity(),
		digests:  digests,
		product:  cfg.Product(),
		revision: cfg.EBICS.Revision,
		version:  cfg.EBICS.Version,
		keys:     keys,
		counters: counters,
		logger:   logger.With(slog.String("partner_id", cfg.EBICS.PartnerID), slog.String("user_id", cfg.EBICS.UserID)),
	}

	if len(cfg.Bank.KeyFiles) > 0 {
		bankKeys, err := keystore.LoadBankKeys(cfg.Bank.KeyFiles...)
		if err != nil {
			return nil, err
		}
		if err := r.SetBankKeys(bankKeys...); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// SetBankKeys replaces the bank keys. Every pinned digest must be matched
// by one of the keys.
func (r *Registry) SetBankKeys(keys ...*rsa.PublicKey) error {
	for name, digest := range map[string][]byte{
		"authentication": r.digests.Authentication,
		"encryption":     r.digests.Encryption,
	} {
		if _, err := security.ResolveByDigest(keys, digest); err != nil {
			return fmt.Errorf("bank %s key: %w", name, err)
		}
	}

	r.mu.Lock()
	r.bankKeys = append([]*rsa.PublicKey(nil), keys...)
	r.mu.Unlock()

	r.logger.Debug("bank keys loaded", slog.Int("count", len(keys)))
	return nil
}

// CurrentUser implements session.Registry
func (r *Registry) CurrentUser(ctx context.Context) (session.Identity, error) {
	return r.identity, ctx.Err()
}

// BankKeyDigests implements session.Registry
func (r *Registry) BankKeyDigests(ctx context.Context) (session.BankKeyDigests, error) {
	return session.BankKeyDigests{
		Authentication: append([]byte(nil), r.digests.Authentication...),
		Encryption:     append([]byte(nil), r.digests.Encryption...),
	}, ctx.Err()
}

// BankKeys implements session.Registry
func (r *Registry) BankKeys(ctx context.Context) ([]*rsa.PublicKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*rsa.PublicKey(nil), r.bankKeys...), nil
}

// NextOrderID implements session.Registry
func (r *Registry) NextOrderID(ctx context.Context, partnerID string) (uint64, error) {
	return r.counters.NextOrderID(ctx, partnerID)
}

// Product implements session.Registry
func (r *Registry) Product() session.Product {
	return r.product
}

// ProtocolRevisionAndVersion implements session.Registry
func (r *Registry) ProtocolRevisionAndVersion() (int, string) {
	return r.revision, r.version
}

// SignatureKey implements session.Registry
func (r *Registry) SignatureKey(ctx context.Context) (crypto.Signer, error) {
	return r.signer(ctx, keystore.RoleSignature)
}

// AuthenticationKey implements session.Registry
func (r *Registry) AuthenticationKey(ctx context.Context) (crypto.Signer, error) {
	return r.signer(ctx, keystore.RoleAuthentication)
}

func (r *Registry) signer(ctx context.Context, role keystore.Role) (crypto.Signer, error) {
	signer, err := r.keys.Signer(ctx, r.identity.UserID, role)
	if errors.Is(err, keystore.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %w", session.ErrNoKey, err)
	}
	return signer, err
}
