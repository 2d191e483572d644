package securitytest

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceReader_ScriptedThenStream(t *testing.T) {
	r := NewSequenceReader("seed", Counter(1), Counter(2))

	buf := make([]byte, 16)
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, Counter(1), buf)

	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, Counter(2), buf)
	assert.Equal(t, 0, r.Remaining())

	a := make([]byte, 40)
	_, err = io.ReadFull(r, a)
	require.NoError(t, err)

	b := make([]byte, 40)
	_, err = io.ReadFull(NewSequenceReader("seed"), b)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSequenceReader_SplitsLargeChunks(t *testing.T) {
	r := NewSequenceReader("seed", []byte{1, 2, 3, 4})

	buf := make([]byte, 3)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{1, 2, 3}, buf)

	n, err = r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte(4), buf[0])
}

func TestSequenceReader_DifferentSeeds(t *testing.T) {
	a := make([]byte, 32)
	b := make([]byte, 32)
	_, _ = io.ReadFull(NewSequenceReader("one"), a)
	_, _ = io.ReadFull(NewSequenceReader("two"), b)
	assert.NotEqual(t, a, b)
}

func TestCounter(t *testing.T) {
	c := Counter(2)
	assert.Len(t, c, 16)
	assert.Equal(t, byte(2), c[15])
	assert.Equal(t, make([]byte, 15), c[:15])
}
