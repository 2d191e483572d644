package request

import "github.com/sirosfoundation/go-ebics/pkg/session"

// NewRevocation creates an SPR request. SPR suspends the subscriber at the
// bank: the request carries only a signature over a placeholder and no
// order data.
func NewRevocation(sess session.Session, registry session.Registry, opts ...Option) *Created {
	return New(sess, registry, Revocation, opts...)
}
