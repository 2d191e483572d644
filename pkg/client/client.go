package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sirosfoundation/go-ebics/pkg/reliability"
	"github.com/sirosfoundation/go-ebics/pkg/request"
	"github.com/sirosfoundation/go-ebics/pkg/security"
	"github.com/sirosfoundation/go-ebics/pkg/session"
	"github.com/sirosfoundation/go-ebics/pkg/transport"
)

// Sender delivers a serialized request and returns the raw response
type Sender interface {
	Send(ctx context.Context, endpoint string, message []byte) ([]byte, error)
}

// Journal status values
const (
	StatusBuilt    = "built"
	StatusAnswered = "answered"
	StatusFailed   = "failed"
)

// JournalEntry describes one sent message. Key material is never recorded.
type JournalEntry struct {
	ID        string
	HostID    string
	PartnerID string
	UserID    string
	OrderType string
	OrderID   string
	Phase     string
	Nonce     string
	Segment   int
	Status    string
	Error     string
	CreatedAt time.Time
}

// Journal persists JournalEntry values
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
}

// Config holds client configuration
type Config struct {
	// URL of the bank's EBICS endpoint
	URL string

	Session  session.Session
	Registry session.Registry

	// Sender defaults to an HTTPS client built from HTTPSConfig
	Sender      Sender
	HTTPSConfig *transport.HTTPSConfig

	Journal    Journal
	Nonces     request.NonceGuard
	Primitives security.Primitives
	Logger     *slog.Logger
}

// Client builds, authenticates and sends EBICS requests
type Client struct {
	url      string
	session  session.Session
	registry session.Registry
	sender   Sender
	journal  Journal
	tracker  *reliability.RequestTracker
	opts     []request.Option
	logger   *slog.Logger
}

// Result is the outcome of a sent initialisation message
type Result struct {
	ID        string
	OrderID   string
	Request   []byte
	Response  []byte
	// Segments holds the order data still to be sent with Transfer
	Segments  []string
	orderType string
}

// Pending is the part of an upload still to be sent with Transfer
type Pending struct {
	OrderType string
	OrderID   string
	Segments  []string
}

// Pending returns what Transfer needs to complete the upload
func (r *Result) Pending() Pending {
	return Pending{
		OrderType: r.orderType,
		OrderID:   r.OrderID,
		Segments:  append([]string(nil), r.Segments...),
	}
}

// New creates a new EBICS client
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("URL is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if err := cfg.Session.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sender := cfg.Sender
	if sender == nil {
		sender = transport.NewHTTPSClient(cfg.HTTPSConfig)
	}

	opts := []request.Option{request.WithLogger(logger)}
	if cfg.Primitives != nil {
		opts = append(opts, request.WithPrimitives(cfg.Primitives))
	}
	if cfg.Nonces != nil {
		opts = append(opts, request.WithNonceGuard(cfg.Nonces))
	}

	return &Client{
		url:      cfg.URL,
		session:  cfg.Session,
		registry: cfg.Registry,
		sender:   sender,
		journal:  cfg.Journal,
		tracker:  reliability.NewRequestTracker(),
		opts:     opts,
		logger:   logger,
	}, nil
}

// Tracker exposes the state of messages sent by this client
func (c *Client) Tracker() *reliability.RequestTracker {
	return c.tracker
}

// NewRevocation returns an unbuilt SPR request bound to the client's session
func (c *Client) NewRevocation() *request.Created {
	return request.NewRevocation(c.session, c.registry, c.opts...)
}

// NewUpload returns an unbuilt upload request bound to the client's session
func (c *Client) NewUpload(orderType string, data []byte) *request.Created {
	return request.NewUpload(c.session, c.registry, orderType, data, c.opts...)
}

// NewFileUpload returns an unbuilt FUL request bound to the client's session
func (c *Client) NewFileUpload(params request.FileParams, data []byte) *request.Created {
	return request.NewFileUpload(c.session, c.registry, params, data, c.opts...)
}

// Prepare builds, validates, authenticates and serializes a request without
// sending it. The returned segments belong to the transfer phase.
func (c *Client) Prepare(ctx context.Context, created *request.Created) (*request.Serialized, []string, error) {
	built, err := created.Build(ctx)
	if err != nil {
		return nil, nil, err
	}
	serialized, err := c.finish(ctx, built)
	if err != nil {
		return nil, nil, err
	}
	return serialized, built.Segments(), nil
}

// Revoke sends an SPR request, suspending the subscriber
func (c *Client) Revoke(ctx context.Context) (*Result, error) {
	return c.send(ctx, c.NewRevocation())
}

// Upload sends the initialisation message of an upload order. The bank's
// response carries the transaction id needed for Transfer.
func (c *Client) Upload(ctx context.Context, orderType string, data []byte) (*Result, error) {
	return c.send(ctx, c.NewUpload(orderType, data))
}

// UploadFile sends the initialisation message of a FUL order
func (c *Client) UploadFile(ctx context.Context, params request.FileParams, data []byte) (*Result, error) {
	return c.send(ctx, c.NewFileUpload(params, data))
}

// Transfer sends every order data segment of an upload and returns the
// responses in order. It stops at the first failure.
func (c *Client) Transfer(ctx context.Context, transactionID []byte, pending Pending) ([][]byte, error) {
	user, err := c.registry.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve subscriber: %w", err)
	}

	segments := pending.Segments
	responses := make([][]byte, 0, len(segments))
	for i := range segments {
		built, err := request.NewTransfer(c.session, c.registry, transactionID, segments, i+1, c.opts...)
		if err != nil {
			return responses, err
		}
		serialized, err := c.finish(ctx, built)
		if err != nil {
			return responses, err
		}

		entry := JournalEntry{
			ID:        uuid.New().String(),
			HostID:    c.session.HostID,
			PartnerID: user.PartnerID,
			UserID:    user.UserID,
			OrderType: pending.OrderType,
			OrderID:   pending.OrderID,
			Phase:     string(request.PhaseTransfer),
			Segment:   i + 1,
			CreatedAt: time.Now().UTC(),
		}
		response, err := c.deliver(ctx, entry, serialized.Bytes())
		if err != nil {
			return responses, err
		}
		responses = append(responses, response)
	}
	return responses, nil
}

func (c *Client) finish(ctx context.Context, built *request.Built) (*request.Serialized, error) {
	valid, err := built.Validate()
	if err != nil {
		return nil, err
	}
	authKey, err := c.registry.AuthenticationKey(ctx)
	if err != nil {
		return nil, &request.BuildError{Stage: request.StageAuthenticate, Err: err}
	}
	signed, err := valid.Authenticate(authKey)
	if err != nil {
		return nil, err
	}
	return signed.Serialize()
}

func (c *Client) send(ctx context.Context, created *request.Created) (*Result, error) {
	serialized, segments, err := c.Prepare(ctx, created)
	if err != nil {
		return nil, err
	}

	doc := serialized.Document()
	entry := JournalEntry{
		ID:        uuid.New().String(),
		HostID:    doc.Static.HostID,
		PartnerID: doc.Static.PartnerID,
		UserID:    doc.Static.UserID,
		OrderType: doc.Static.OrderDetails.Spec.Type,
		OrderID:   doc.Static.OrderDetails.OrderID,
		Phase:     string(doc.Mutable.Phase),
		Nonce:     security.EncodeHex(doc.Static.Nonce),
		CreatedAt: time.Now().UTC(),
	}

	response, err := c.deliver(ctx, entry, serialized.Bytes())
	if err != nil {
		return nil, err
	}

	return &Result{
		ID:        entry.ID,
		OrderID:   entry.OrderID,
		Request:   serialized.Bytes(),
		Response:  response,
		Segments:  segments,
		orderType: entry.OrderType,
	}, nil
}

// deliver sends one message and keeps tracker and journal in step
func (c *Client) deliver(ctx context.Context, entry JournalEntry, message []byte) ([]byte, error) {
	c.tracker.Track(entry.ID, entry.OrderType, entry.OrderID)
	entry.Status = StatusBuilt
	c.record(ctx, entry)

	if err := c.tracker.MarkSending(entry.ID); err != nil {
		return nil, err
	}
	c.logger.Info("sending request",
		slog.String("id", entry.ID),
		slog.String("order_type", entry.OrderType),
		slog.String("order_id", entry.OrderID),
		slog.String("phase", entry.Phase))

	response, err := c.sender.Send(ctx, c.url, message)
	if err != nil {
		_ = c.tracker.RecordError(entry.ID, err)
		entry.Status = StatusFailed
		entry.Error = err.Error()
		c.record(ctx, entry)
		c.logger.Error("request failed", slog.String("id", entry.ID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	_ = c.tracker.RecordResponse(entry.ID, response)
	entry.Status = StatusAnswered
	c.record(ctx, entry)
	c.logger.Debug("response received", slog.String("id", entry.ID), slog.Int("bytes", len(response)))

	return response, nil
}

func (c *Client) record(ctx context.Context, entry JournalEntry) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Record(ctx, entry); err != nil {
		c.logger.Warn("failed to record request", slog.String("id", entry.ID), slog.String("error", err.Error()))
	}
}
