package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressor_CompressDecompress(t *testing.T) {
	compressor := NewCompressor()

	repeated := "<OrderSignatureData><SignatureVersion>A005</SignatureVersion></OrderSignatureData>"
	testData := []byte(repeated + repeated + repeated + repeated + repeated)

	compressed, err := compressor.Compress(testData)
	require.NoError(t, err)
	assert.NotEmpty(t, compressed)
	assert.Less(t, len(compressed), len(testData))

	// zlib header: CMF 0x78 (deflate, 32K window)
	assert.Equal(t, byte(0x78), compressed[0])

	decompressed, err := compressor.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, testData, decompressed)
}

func TestCompressor_Deterministic(t *testing.T) {
	compressor := NewCompressor()
	data := bytes.Repeat([]byte("CCT pain.001 "), 500)

	first, err := compressor.Compress(data)
	require.NoError(t, err)
	second, err := compressor.Compress(data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompressor_SingleByte(t *testing.T) {
	compressor := NewCompressor()

	compressed, err := compressor.Compress([]byte(" "))
	require.NoError(t, err)

	decompressed, err := compressor.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, []byte(" "), decompressed)
}

func TestCompressor_EmptyData(t *testing.T) {
	compressor := NewCompressor()

	compressed, err := compressor.Compress([]byte{})
	require.NoError(t, err)
	assert.NotEmpty(t, compressed)

	decompressed, err := compressor.Decompress(compressed)
	require.NoError(t, err)
	assert.Empty(t, decompressed)
}

func TestCompressor_LargeData(t *testing.T) {
	compressor := NewCompressorWithLevel(9)

	largeData := bytes.Repeat([]byte("test data "), 100000)

	compressed, err := compressor.Compress(largeData)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(largeData)/10)

	decompressed, err := compressor.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, largeData, decompressed)
}

func TestCompressor_InvalidCompressedData(t *testing.T) {
	compressor := NewCompressor()

	_, err := compressor.Decompress([]byte("this is not zlib compressed data"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCompressor_TruncatedData(t *testing.T) {
	compressor := NewCompressor()

	compressed, err := compressor.Compress(bytes.Repeat([]byte("abcdef"), 200))
	require.NoError(t, err)

	_, err = compressor.Decompress(compressed[:len(compressed)/2])
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCompressor_DecompressLimit(t *testing.T) {
	compressor := NewCompressor()
	compressor.maxOutput = 1024

	compressed, err := compressor.Compress(bytes.Repeat([]byte{'A'}, 1025))
	require.NoError(t, err)
	_, err = compressor.Decompress(compressed)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.NotErrorIs(t, err, ErrMalformed)

	compressed, err = compressor.Compress(bytes.Repeat([]byte{'A'}, 1024))
	require.NoError(t, err)
	out, err := compressor.Decompress(compressed)
	require.NoError(t, err)
	assert.Len(t, out, 1024)
}
