package reliability

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrReplay is returned when a nonce is registered twice within the window
var ErrReplay = errors.New("nonce already used")

// NonceTracker remembers the nonces issued per subscriber so that a broken
// random source can never produce a replayable request.
type NonceTracker struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
	now    func() time.Time
	stop   chan struct{}
	once   sync.Once
}

// NewNonceTracker creates a tracker that forgets nonces after window and
// sweeps expired entries every sweep interval. Close stops the sweeper.
func NewNonceTracker(window, sweep time.Duration) *NonceTracker {
	t := &NonceTracker{
		seen:   make(map[string]time.Time),
		window: window,
		now:    time.Now,
		stop:   make(chan struct{}),
	}

	if sweep > 0 {
		go t.cleanupExpired(sweep)
	}

	return t
}

// Register records a nonce for the subscriber. It fails with ErrReplay if
// the same nonce was registered within the window.
func (t *NonceTracker) Register(subscriber string, nonce []byte) error {
	key := nonceKey(subscriber, nonce)

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if at, exists := t.seen[key]; exists && now.Sub(at) < t.window {
		return fmt.Errorf("%w: %s for %s", ErrReplay, hex.EncodeToString(nonce), subscriber)
	}
	t.seen[key] = now
	return nil
}

// Seen reports whether the nonce is currently remembered for the subscriber
func (t *NonceTracker) Seen(subscriber string, nonce []byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	at, exists := t.seen[nonceKey(subscriber, nonce)]
	return exists && t.now().Sub(at) < t.window
}

// Len returns the number of remembered nonces
func (t *NonceTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

// Sweep drops expired entries
func (t *NonceTracker) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for key, at := range t.seen {
		if now.Sub(at) >= t.window {
			delete(t.seen, key)
		}
	}
}

// Close stops the background sweeper
func (t *NonceTracker) Close() {
	t.once.Do(func() { close(t.stop) })
}

func (t *NonceTracker) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.Sweep()
		case <-t.stop:
			return
		}
	}
}

// nonceKey hashes subscriber and nonce so that keys have a fixed size
func nonceKey(subscriber string, nonce []byte) string {
	h := sha256.New()
	h.Write([]byte(subscriber))
	h.Write([]byte{0})
	h.Write(nonce)
	return hex.EncodeToString(h.Sum(nil))
}
