// Package securitytest provides deterministic random sources for tests that
// need reproducible nonces and transaction keys.
package securitytest

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"
)

// SequenceReader is an io.Reader that first returns the scripted chunks in
// order, one chunk per Read call, and then an endless deterministic stream
// derived from the seed. It is safe for concurrent use.
type SequenceReader struct {
	mu      sync.Mutex
	chunks  [][]byte
	seed    []byte
	counter uint64
	buf     []byte
}

// NewSequenceReader creates a reader that yields chunks before falling back
// to the seeded stream.
func NewSequenceReader(seed string, chunks ...[]byte) *SequenceReader {
	copied := make([][]byte, len(chunks))
	for i, c := range chunks {
		copied[i] = append([]byte(nil), c...)
	}
	return &SequenceReader{chunks: copied, seed: []byte(seed)}
}

// Read implements io.Reader. A scripted chunk larger than p is split over
// several reads.
func (r *SequenceReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.chunks) > 0 {
		n := copy(p, r.chunks[0])
		if n < len(r.chunks[0]) {
			r.chunks[0] = r.chunks[0][n:]
		} else {
			r.chunks = r.chunks[1:]
		}
		return n, nil
	}

	n := 0
	for n < len(p) {
		if len(r.buf) == 0 {
			r.refill()
		}
		c := copy(p[n:], r.buf)
		r.buf = r.buf[c:]
		n += c
	}
	return n, nil
}

// Remaining reports how many scripted chunks have not been consumed
func (r *SequenceReader) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chunks)
}

func (r *SequenceReader) refill() {
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], r.counter)
	r.counter++

	h := sha256.New()
	h.Write(r.seed)
	h.Write(ctr[:])
	r.buf = h.Sum(nil)
}

// Counter returns a 16 byte value whose last byte is b, the shape used for
// scripted nonces and keys such as 0x00..01.
func Counter(b byte) []byte {
	v := make([]byte, 16)
	v[15] = b
	return v
}

// FailingReader always fails with Err
type FailingReader struct {
	Err error
}

// Read implements io.Reader
func (r FailingReader) Read([]byte) (int, error) {
	return 0, r.Err
}
