package session

import (
	"context"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_PerPartner(t *testing.T) {
	ctx := context.Background()
	c := NewCounter(10)

	a1, err := c.NextOrderID(ctx, "P1")
	require.NoError(t, err)
	a2, err := c.NextOrderID(ctx, "P1")
	require.NoError(t, err)
	b1, err := c.NextOrderID(ctx, "P2")
	require.NoError(t, err)

	assert.Equal(t, uint64(10), a1)
	assert.Equal(t, uint64(11), a2)
	assert.Equal(t, uint64(10), b1)
	assert.Equal(t, uint64(12), c.Peek("P1"))
	assert.Equal(t, uint64(10), c.Peek("P3"))
}

func TestCounter_ConcurrentMonotonic(t *testing.T) {
	ctx := context.Background()
	c := NewCounter(1)

	const workers = 16
	const perWorker = 200

	var mu sync.Mutex
	var all []uint64
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var prev uint64
			for i := 0; i < perWorker; i++ {
				id, err := c.NextOrderID(ctx, "P1")
				if err != nil {
					t.Error(err)
					return
				}
				if id <= prev {
					t.Errorf("order id went backwards: %d after %d", id, prev)
				}
				prev = id
				mu.Lock()
				all = append(all, id)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, all, workers*perWorker)
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	for i, id := range all {
		assert.Equal(t, uint64(i+1), id)
	}
}

func TestCounter_Errors(t *testing.T) {
	c := NewCounter(1)

	_, err := c.NextOrderID(context.Background(), "")
	assert.ErrorIs(t, err, ErrSequence)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.NextOrderID(ctx, "P1")
	assert.ErrorIs(t, err, ErrSequence)
	assert.ErrorIs(t, err, context.Canceled)

	exhausted := NewCounter(math.MaxUint64)
	_, err = exhausted.NextOrderID(context.Background(), "P1")
	assert.ErrorIs(t, err, ErrSequence)
}
