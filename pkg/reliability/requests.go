package reliability

import (
	"fmt"
	"sync"
	"time"
)

// RequestState is the state of a request in the client
type RequestState int

const (
	StateBuilt    RequestState = iota // Request built and authenticated
	StateSending                      // Request is being sent
	StateAnswered                     // Bank returned a response
	StateFailed                       // Sending failed
)

func (s RequestState) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateSending:
		return "sending"
	case StateAnswered:
		return "answered"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("RequestState(%d)", int(s))
	}
}

// TrackedRequest is a request known to the tracker
type TrackedRequest struct {
	ID            string
	OrderType     string
	OrderID       string
	State         RequestState
	BuiltAt       time.Time
	LastAttemptAt time.Time
	AttemptCount  int
	Response      []byte
	Errors        []string
}

// RequestTracker follows requests from construction to the bank's answer.
// Requests are never resent automatically.
type RequestTracker struct {
	mu       sync.RWMutex
	requests map[string]*TrackedRequest
}

// NewRequestTracker creates an empty tracker
func NewRequestTracker() *RequestTracker {
	return &RequestTracker{requests: make(map[string]*TrackedRequest)}
}

// Track starts tracking a built request
func (t *RequestTracker) Track(id, orderType, orderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.requests[id] = &TrackedRequest{
		ID:        id,
		OrderType: orderType,
		OrderID:   orderID,
		State:     StateBuilt,
		BuiltAt:   time.Now(),
		Errors:    make([]string, 0),
	}
}

// MarkSending records a send attempt
func (t *RequestTracker) MarkSending(id string) error {
	return t.update(id, func(r *TrackedRequest) {
		r.State = StateSending
		r.LastAttemptAt = time.Now()
		r.AttemptCount++
	})
}

// RecordResponse stores the bank's raw response
func (t *RequestTracker) RecordResponse(id string, response []byte) error {
	return t.update(id, func(r *TrackedRequest) {
		r.State = StateAnswered
		r.Response = append([]byte(nil), response...)
	})
}

// RecordError marks the request as failed
func (t *RequestTracker) RecordError(id string, err error) error {
	return t.update(id, func(r *TrackedRequest) {
		r.State = StateFailed
		r.Errors = append(r.Errors, err.Error())
	})
}

// Get returns a copy of a tracked request
func (t *RequestTracker) Get(id string) (TrackedRequest, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, exists := t.requests[id]
	if !exists {
		return TrackedRequest{}, false
	}
	c := *r
	c.Errors = append([]string(nil), r.Errors...)
	return c, true
}

// Remove stops tracking a request
func (t *RequestTracker) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.requests, id)
}

func (t *RequestTracker) update(id string, fn func(*TrackedRequest)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, exists := t.requests[id]
	if !exists {
		return fmt.Errorf("request %s not tracked", id)
	}
	fn(r)
	return nil
}
