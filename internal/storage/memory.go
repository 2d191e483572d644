package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirosfoundation/go-ebics/pkg/session"
)

// MemoryStore implements Store in process memory
type MemoryStore struct {
	counter  *session.Counter
	mu       sync.RWMutex
	requests map[string]*Request
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counter:  session.NewCounter(1),
		requests: make(map[string]*Request),
	}
}

// NextOrderID implements CounterStore
func (s *MemoryStore) NextOrderID(ctx context.Context, partnerID string) (uint64, error) {
	return s.counter.NextOrderID(ctx, partnerID)
}

// RecordRequest implements JournalStore
func (s *MemoryStore) RecordRequest(ctx context.Context, req *Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := *req
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[c.ID] = &c
	return nil
}

// GetRequest implements JournalStore
func (s *MemoryStore) GetRequest(ctx context.Context, id string) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *r
	return &c, nil
}

// ListRequests implements JournalStore
func (s *MemoryStore) ListRequests(ctx context.Context, filter *RequestFilter) ([]*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Request
	for _, r := range s.requests {
		if filter.matches(r) {
			c := *r
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter != nil && filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Close implements Store
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ping implements Store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
