package request

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sirosfoundation/go-ebics/pkg/envelope"
	"github.com/sirosfoundation/go-ebics/pkg/security"
	"github.com/sirosfoundation/go-ebics/pkg/session"
	"github.com/sirosfoundation/go-ebics/pkg/signature"
)

// Created is a request that has not been built yet. It holds only the
// session, the registry and the order spec.
type Created struct {
	session  session.Session
	registry session.Registry
	spec     OrderSpec
	opts     options
}

// New creates a request for an arbitrary order spec
func New(sess session.Session, registry session.Registry, spec OrderSpec, opts ...Option) *Created {
	return &Created{
		session:  sess,
		registry: registry,
		spec:     spec,
		opts:     newOptions(opts),
	}
}

// Spec returns the order spec
func (c *Created) Spec() OrderSpec {
	return c.spec
}

// Build runs every construction step and returns the assembled document.
// On failure c is unchanged and can be built again.
func (c *Created) Build(ctx context.Context) (*Built, error) {
	if c.registry == nil {
		return nil, stageError(StageHeader, errors.New("no registry"))
	}
	if err := c.session.Validate(); err != nil {
		return nil, stageError(StageHeader, err)
	}
	if err := c.spec.Validate(); err != nil {
		return nil, stageError(StageHeader, err)
	}
	if c.spec.CarriesOrderData() != (len(c.opts.orderData) > 0) {
		return nil, stageError(StagePayload, fmt.Errorf("order attribute %s does not match the supplied order data", c.spec.Attribute))
	}

	user, err := c.registry.CurrentUser(ctx)
	if err != nil {
		return nil, stageError(StageHeader, err)
	}

	payload, err := c.signedPayload(ctx, user)
	if err != nil {
		return nil, stageError(StagePayload, err)
	}

	digests, err := c.registry.BankKeyDigests(ctx)
	if err != nil {
		return nil, stageError(StageHeader, err)
	}
	if err := digests.Validate(); err != nil {
		return nil, stageError(StageHeader, err)
	}

	revision, version := c.registry.ProtocolRevisionAndVersion()
	if err := checkProtocol(revision, version); err != nil {
		return nil, stageError(StageDocument, err)
	}

	nonce, err := c.opts.prims.Nonce()
	if err != nil {
		return nil, stageError(StageHeader, err)
	}
	if c.opts.nonces != nil {
		if err := c.opts.nonces.Register(user.PartnerID+"/"+user.UserID, nonce); err != nil {
			return nil, stageError(StageHeader, err)
		}
	}

	env, err := c.seal(ctx, payload, digests.Encryption)
	if err != nil {
		return nil, stageError(StageEnvelope, err)
	}

	orderID, err := c.registry.NextOrderID(ctx, user.PartnerID)
	if err != nil {
		return nil, stageError(StageSequence, fmt.Errorf("%w: %w", session.ErrSequence, err))
	}

	static, err := BuildStaticHeader(HeaderInput{
		Session:     c.session,
		Identity:    user,
		Product:     c.registry.Product(),
		Nonce:       nonce,
		Timestamp:   c.opts.clock(),
		OrderID:     orderID,
		Spec:        c.spec,
		Digests:     digests,
		NumSegments: env.NumSegments(),
	})
	if err != nil {
		return nil, stageError(StageHeader, err)
	}

	doc := &Document{
		Revision: revision,
		Version:  version,
		Mutable:  BuildMutableHeader(PhaseInitialisation, 0, false),
		Static:   static,
		Body: Body{
			EncryptionDigest: KeyDigest{
				Version:   c.session.EncryptionVersion,
				Algorithm: security.AlgorithmSHA256,
				Digest:    env.EncryptionDigest,
			},
			TransactionKey: env.WrappedKey,
			SignatureData:  env.EncryptedPayload,
		},
	}

	c.opts.logger.Debug("request built",
		slog.String("order_type", c.spec.Type),
		slog.String("order_id", static.OrderDetails.OrderID),
		slog.String("partner_id", user.PartnerID),
		slog.String("user_id", user.UserID),
		slog.String("nonce", security.EncodeHex(nonce)),
		slog.Int("segments", env.NumSegments()))

	return &Built{doc: doc, segments: env.Segments, opts: c.opts}, nil
}

func (c *Created) signedPayload(ctx context.Context, user session.Identity) (signature.Validated, error) {
	signer, err := c.registry.SignatureKey(ctx)
	if err != nil {
		return signature.Validated{}, err
	}

	data := signature.Placeholder
	if len(c.opts.orderData) > 0 {
		data = c.opts.orderData
	}

	p, err := signature.Build(c.opts.prims.Random(), user, c.session.SignatureVersion, data, signer)
	if err != nil {
		return signature.Validated{}, err
	}
	return signature.Validate(p)
}

func (c *Created) seal(ctx context.Context, payload signature.Validated, digest []byte) (*envelope.Envelope, error) {
	b := envelope.NewBuilder(c.opts.prims, c.registry)
	if len(c.opts.orderData) > 0 {
		return b.Seal(ctx, payload, c.opts.orderData, digest)
	}
	return b.Build(ctx, payload, digest)
}

// Built is an assembled request that has not been validated
type Built struct {
	doc      *Document
	segments []string
	opts     options
}

// Document returns a copy of the assembled document
func (b *Built) Document() *Document {
	return b.doc.clone()
}

// Segments returns the encrypted order data segments of an upload, to be
// sent in the transfer phase.
func (b *Built) Segments() []string {
	return append([]string(nil), b.segments...)
}

// Validate checks the document for structural completeness
func (b *Built) Validate() (*Validated, error) {
	if err := validateDocument(b.doc); err != nil {
		return nil, stageError(StageValidate, err)
	}
	return &Validated{doc: b.doc.clone(), segments: b.Segments(), opts: b.opts}, nil
}

// Validated is a document that passed validation
type Validated struct {
	doc      *Document
	segments []string
	opts     options
}

// Document returns a copy of the validated document
func (v *Validated) Document() *Document {
	return v.doc.clone()
}

// Segments returns the encrypted order data segments
func (v *Validated) Segments() []string {
	return append([]string(nil), v.segments...)
}

// Authenticate adds the X002 authentication signature. The receiver is not
// modified.
func (v *Validated) Authenticate(signer crypto.Signer) (*Validated, error) {
	auth, err := security.NewAuthSigner(signer, v.opts.prims.Random())
	if err != nil {
		return nil, stageError(StageAuthenticate, err)
	}

	doc := v.doc.clone()
	doc.auth = nil
	sig, err := auth.Sign(doc.Tree().Root())
	if err != nil {
		return nil, stageError(StageAuthenticate, err)
	}
	doc.auth = sig

	return &Validated{doc: doc, segments: v.Segments(), opts: v.opts}, nil
}

// Serialize renders the wire form. Repeated calls return identical bytes.
func (v *Validated) Serialize() (*Serialized, error) {
	out, err := v.doc.Tree().WriteToBytes()
	if err != nil {
		return nil, stageError(StageSerialize, err)
	}
	return &Serialized{doc: v.doc.clone(), data: out}, nil
}

// Serialized is the terminal state: a document and its wire form
type Serialized struct {
	doc  *Document
	data []byte
}

// Bytes returns the serialized document
func (s *Serialized) Bytes() []byte {
	return clone(s.data)
}

// Document returns a copy of the document that was serialized
func (s *Serialized) Document() *Document {
	return s.doc.clone()
}
