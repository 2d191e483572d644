package session

import (
	"context"
	"crypto"
	"crypto/rsa"
	"fmt"
	"sync"
)

// MemoryRegistry is a Registry backed by values held in memory
type MemoryRegistry struct {
	mu       sync.RWMutex
	user     Identity
	digests  BankKeyDigests
	keys     []*rsa.PublicKey
	signer   crypto.Signer
	auth     crypto.Signer
	product  Product
	revision int
	version  string
	orderIDs OrderIDSource
}

// MemoryOption configures a MemoryRegistry
type MemoryOption func(*MemoryRegistry)

// WithBankKeys sets the bank public keys available for digest resolution
func WithBankKeys(keys ...*rsa.PublicKey) MemoryOption {
	return func(r *MemoryRegistry) {
		r.keys = append([]*rsa.PublicKey(nil), keys...)
	}
}

// WithSignatureKey sets the subscriber's signature key
func WithSignatureKey(signer crypto.Signer) MemoryOption {
	return func(r *MemoryRegistry) {
		r.signer = signer
	}
}

// WithAuthenticationKey sets the subscriber's authentication key
func WithAuthenticationKey(signer crypto.Signer) MemoryOption {
	return func(r *MemoryRegistry) {
		r.auth = signer
	}
}

// WithProduct overrides DefaultProduct
func WithProduct(p Product) MemoryOption {
	return func(r *MemoryRegistry) {
		r.product = p
	}
}

// WithProtocol overrides the revision and version reported to builders
func WithProtocol(revision int, version string) MemoryOption {
	return func(r *MemoryRegistry) {
		r.revision = revision
		r.version = version
	}
}

// WithOrderIDs replaces the in-process counter
func WithOrderIDs(src OrderIDSource) MemoryOption {
	return func(r *MemoryRegistry) {
		r.orderIDs = src
	}
}

// NewMemoryRegistry creates a registry. Order ids start at 1 unless
// WithOrderIDs supplies another source.
func NewMemoryRegistry(user Identity, digests BankKeyDigests, opts ...MemoryOption) *MemoryRegistry {
	r := &MemoryRegistry{
		user:     user,
		digests:  digests,
		product:  DefaultProduct,
		revision: DefaultRevision,
		version:  DefaultVersion,
		orderIDs: NewCounter(1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CurrentUser implements Registry
func (r *MemoryRegistry) CurrentUser(ctx context.Context) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.user, nil
}

// BankKeyDigests implements Registry. The returned slices are copies.
func (r *MemoryRegistry) BankKeyDigests(ctx context.Context) (BankKeyDigests, error) {
	if err := ctx.Err(); err != nil {
		return BankKeyDigests{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return BankKeyDigests{
		Authentication: append([]byte(nil), r.digests.Authentication...),
		Encryption:     append([]byte(nil), r.digests.Encryption...),
	}, nil
}

// BankKeys implements Registry
func (r *MemoryRegistry) BankKeys(ctx context.Context) ([]*rsa.PublicKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*rsa.PublicKey(nil), r.keys...), nil
}

// NextOrderID implements Registry
func (r *MemoryRegistry) NextOrderID(ctx context.Context, partnerID string) (uint64, error) {
	r.mu.RLock()
	src := r.orderIDs
	r.mu.RUnlock()
	return src.NextOrderID(ctx, partnerID)
}

// Product implements Registry
func (r *MemoryRegistry) Product() Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.product
}

// ProtocolRevisionAndVersion implements Registry
func (r *MemoryRegistry) ProtocolRevisionAndVersion() (int, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revision, r.version
}

// SignatureKey implements Registry
func (r *MemoryRegistry) SignatureKey(ctx context.Context) (crypto.Signer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.signer == nil {
		return nil, fmt.Errorf("%w: signature key for user %s", ErrNoKey, r.user.UserID)
	}
	return r.signer, nil
}

// AuthenticationKey implements Registry
func (r *MemoryRegistry) AuthenticationKey(ctx context.Context) (crypto.Signer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.auth == nil {
		return nil, fmt.Errorf("%w: authentication key for user %s", ErrNoKey, r.user.UserID)
	}
	return r.auth, nil
}

// SetBankKeys replaces the bank keys, e.g. after an HPB download
func (r *MemoryRegistry) SetBankKeys(keys ...*rsa.PublicKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append([]*rsa.PublicKey(nil), keys...)
}
