package session

import (
	"context"
	"crypto"
	"crypto/rsa"
	"errors"
)

var (
	// ErrSequence is returned when the next order id cannot be obtained
	ErrSequence = errors.New("order id sequence failure")
	// ErrNoKey is returned when a registry has no key for the requested role
	ErrNoKey = errors.New("key not configured")
)

// Protocol defaults for H004
const (
	DefaultRevision = 1
	DefaultVersion  = "H004"
)

// Registry exposes the identity and key state a request is built from.
// Implementations must be safe for concurrent use.
type Registry interface {
	// CurrentUser returns the subscriber identity
	CurrentUser(ctx context.Context) (Identity, error)

	// BankKeyDigests returns the pinned bank key hashes
	BankKeyDigests(ctx context.Context) (BankKeyDigests, error)

	// BankKeys returns the bank public keys known locally. The builders only
	// use a key whose digest matches a pinned one.
	BankKeys(ctx context.Context) ([]*rsa.PublicKey, error)

	// NextOrderID atomically returns the next order id for the partner.
	// Values are strictly increasing per partner.
	NextOrderID(ctx context.Context, partnerID string) (uint64, error)

	// Product describes the client software
	Product() Product

	// ProtocolRevisionAndVersion returns the schema revision and version
	ProtocolRevisionAndVersion() (int, string)

	// SignatureKey returns the subscriber's electronic signature key
	SignatureKey(ctx context.Context) (crypto.Signer, error)

	// AuthenticationKey returns the subscriber's X002 key
	AuthenticationKey(ctx context.Context) (crypto.Signer, error)
}

// OrderIDSource hands out order ids. Counter and the MongoDB store
// implement it.
type OrderIDSource interface {
	NextOrderID(ctx context.Context, partnerID string) (uint64, error)
}
