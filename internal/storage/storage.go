// Package storage provides persistence for the EBICS client.
//
// # Interface Design
//
//   - [CounterStore]: per-partner order id sequences
//   - [JournalStore]: a record of every message sent to a bank
//
// The [Store] interface combines both.
//
// # Implementations
//
// [MemoryStore] keeps everything in process and is used when no database
// is configured. The mongodb sub-package provides a MongoDB implementation
// whose counters survive restarts and are shared between processes.
//
// # Concurrency
//
// All store implementations must be safe for concurrent use from multiple
// goroutines.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a journal record does not exist
var ErrNotFound = errors.New("not found")

// Store is the main storage interface combining all sub-stores
type Store interface {
	CounterStore
	JournalStore

	// Close releases storage resources
	Close(ctx context.Context) error

	// Ping checks database connectivity
	Ping(ctx context.Context) error
}

// CounterStore hands out order ids
type CounterStore interface {
	// NextOrderID atomically increments and returns the partner's sequence.
	// The first value is 1.
	NextOrderID(ctx context.Context, partnerID string) (uint64, error)
}

// JournalStore records sent messages
type JournalStore interface {
	// RecordRequest inserts or replaces the record with the same ID
	RecordRequest(ctx context.Context, req *Request) error

	// GetRequest retrieves a record by ID
	GetRequest(ctx context.Context, id string) (*Request, error)

	// ListRequests returns records, newest first
	ListRequests(ctx context.Context, filter *RequestFilter) ([]*Request, error)
}

// RequestStatus is the last known state of a journaled message
type RequestStatus string

const (
	RequestStatusBuilt    RequestStatus = "built"
	RequestStatusAnswered RequestStatus = "answered"
	RequestStatusFailed   RequestStatus = "failed"
)

// Request is the journal record of one message. Key material and payloads
// are never stored.
type Request struct {
	ID        string        `bson:"_id" json:"id"`
	HostID    string        `bson:"host_id" json:"hostId"`
	PartnerID string        `bson:"partner_id,omitempty" json:"partnerId,omitempty"`
	UserID    string        `bson:"user_id,omitempty" json:"userId,omitempty"`
	OrderType string        `bson:"order_type,omitempty" json:"orderType,omitempty"`
	OrderID   string        `bson:"order_id,omitempty" json:"orderId,omitempty"`
	Phase     string        `bson:"phase" json:"phase"`
	Segment   int           `bson:"segment,omitempty" json:"segment,omitempty"`
	Nonce     string        `bson:"nonce,omitempty" json:"nonce,omitempty"`
	Status    RequestStatus `bson:"status" json:"status"`
	Error     string        `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updatedAt"`
}

// RequestFilter for listing journal records
type RequestFilter struct {
	PartnerID string
	OrderType string
	Status    RequestStatus
	Since     *time.Time
	Limit     int
}

func (f *RequestFilter) matches(r *Request) bool {
	if f == nil {
		return true
	}
	if f.PartnerID != "" && r.PartnerID != f.PartnerID {
		return false
	}
	if f.OrderType != "" && r.OrderType != f.OrderType {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Since != nil && r.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}
