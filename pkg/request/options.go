package request

import (
	"log/slog"
	"time"

	"github.com/sirosfoundation/go-ebics/pkg/security"
)

// NonceGuard rejects nonces that were already used by a subscriber
type NonceGuard interface {
	Register(subscriber string, nonce []byte) error
}

type options struct {
	prims     security.Primitives
	clock     func() time.Time
	logger    *slog.Logger
	nonces    NonceGuard
	orderData []byte
}

// Option configures request construction
type Option func(*options)

// WithPrimitives replaces the default security.Suite
func WithPrimitives(p security.Primitives) Option {
	return func(o *options) {
		o.prims = p
	}
}

// WithClock sets the time source of the header timestamp
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithNonceGuard enables replay protection for generated nonces
func WithNonceGuard(guard NonceGuard) Option {
	return func(o *options) {
		o.nonces = guard
	}
}

// WithOrderData attaches the business data of an upload. The data is signed
// and transmitted in segments.
func WithOrderData(data []byte) Option {
	return func(o *options) {
		o.orderData = clone(data)
	}
}

func newOptions(opts []Option) options {
	o := options{
		prims:  security.NewSuite(),
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
