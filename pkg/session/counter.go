package session

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// Counter is an in-process OrderIDSource with one sequence per partner
type Counter struct {
	mu    sync.Mutex
	next  map[string]uint64
	start uint64
}

// NewCounter creates a counter whose first id for every partner is start
func NewCounter(start uint64) *Counter {
	return &Counter{
		next:  make(map[string]uint64),
		start: start,
	}
}

// NextOrderID returns the current value for the partner and advances it
func (c *Counter) NextOrderID(ctx context.Context, partnerID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSequence, err)
	}
	if partnerID == "" {
		return 0, fmt.Errorf("%w: partner id is required", ErrSequence)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.next[partnerID]
	if !ok {
		value = c.start
	}
	if value == math.MaxUint64 {
		return 0, fmt.Errorf("%w: sequence for partner %s exhausted", ErrSequence, partnerID)
	}
	c.next[partnerID] = value + 1
	return value, nil
}

// Peek returns the value the next call will return without advancing
func (c *Counter) Peek(partnerID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value, ok := c.next[partnerID]; ok {
		return value
	}
	return c.start
}
