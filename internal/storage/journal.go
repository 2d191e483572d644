package storage

import (
	"context"
	"time"

	"github.com/sirosfoundation/go-ebics/pkg/client"
)

// Journal adapts a JournalStore to client.Journal
type Journal struct {
	store JournalStore
}

// NewJournal wraps store
func NewJournal(store JournalStore) *Journal {
	return &Journal{store: store}
}

// Record implements client.Journal
func (j *Journal) Record(ctx context.Context, entry client.JournalEntry) error {
	return j.store.RecordRequest(ctx, &Request{
		ID:        entry.ID,
		HostID:    entry.HostID,
		PartnerID: entry.PartnerID,
		UserID:    entry.UserID,
		OrderType: entry.OrderType,
		OrderID:   entry.OrderID,
		Phase:     entry.Phase,
		Segment:   entry.Segment,
		Nonce:     entry.Nonce,
		Status:    RequestStatus(entry.Status),
		Error:     entry.Error,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	})
}
