package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-ebics/pkg/client"
)

var _ Store = (*MemoryStore)(nil)
var _ client.Journal = (*Journal)(nil)

func TestMemoryStore_NextOrderID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.NextOrderID(ctx, "P1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, first)

	other, err := s.NextOrderID(ctx, "P2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, other)

	var wg sync.WaitGroup
	seen := make(chan uint64, 50)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.NextOrderID(ctx, "P1")
			assert.NoError(t, err)
			seen <- n
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[uint64]bool)
	for n := range seen {
		assert.False(t, unique[n], "duplicate order id %d", n)
		unique[n] = true
	}
	assert.Len(t, unique, 50)
}

func TestJournal(t *testing.T) {
	s := NewMemoryStore()
	j := NewJournal(s)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	entry := client.JournalEntry{
		ID:        "r1",
		HostID:    "EBIXHOST",
		PartnerID: "P1",
		UserID:    "U1",
		OrderType: "SPR",
		OrderID:   "A001",
		Phase:     "Initialisation",
		Nonce:     "00112233445566778899AABBCCDDEEFF",
		Status:    client.StatusBuilt,
		CreatedAt: base,
	}
	require.NoError(t, j.Record(ctx, entry))

	entry.Status = client.StatusAnswered
	require.NoError(t, j.Record(ctx, entry))

	require.NoError(t, j.Record(ctx, client.JournalEntry{
		ID:        "r2",
		HostID:    "EBIXHOST",
		PartnerID: "P2",
		OrderType: "CCT",
		Status:    client.StatusFailed,
		Error:     "connection refused",
		CreatedAt: base.Add(time.Minute),
	}))

	got, err := s.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, RequestStatusAnswered, got.Status)
	assert.Equal(t, "A001", got.OrderID)
	assert.False(t, got.UpdatedAt.IsZero())

	_, err = s.GetRequest(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.ListRequests(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "r2", all[0].ID)

	failed, err := s.ListRequests(ctx, &RequestFilter{Status: RequestStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "connection refused", failed[0].Error)

	since := base.Add(30 * time.Second)
	recent, err := s.ListRequests(ctx, &RequestFilter{Since: &since})
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	limited, err := s.ListRequests(ctx, &RequestFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	byPartner, err := s.ListRequests(ctx, &RequestFilter{PartnerID: "P1", OrderType: "SPR"})
	require.NoError(t, err)
	assert.Len(t, byPartner, 1)
}
