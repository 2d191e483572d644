// Package compression implements zlib payload compression for EBICS
package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// MaxDecompressedSize bounds the output of Decompress (100 MB), matching the
// largest payload the cipher accepts
const MaxDecompressedSize = 100 * 1024 * 1024

var (
	// ErrMalformed is returned when compressed input cannot be inflated
	ErrMalformed = errors.New("malformed zlib data")
	// ErrTooLarge is returned when inflated data exceeds the output limit
	ErrTooLarge = errors.New("decompressed data too large")
)

// Compressor handles payload compression
type Compressor struct {
	compressionLevel int
	maxOutput        int64
}

// NewCompressor creates a new compressor with default compression level
func NewCompressor() *Compressor {
	return NewCompressorWithLevel(zlib.DefaultCompression)
}

// NewCompressorWithLevel creates a new compressor with specified compression level
func NewCompressorWithLevel(level int) *Compressor {
	return &Compressor{
		compressionLevel: level,
		maxOutput:        MaxDecompressedSize,
	}
}

// Compress compresses data into the zlib format. The output only depends on
// the input and the compression level.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := zlib.NewWriterLevel(&buf, c.compressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zlib writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress inflates zlib data. Output larger than MaxDecompressedSize is
// rejected with ErrTooLarge.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(reader, c.maxOutput+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if n > c.maxOutput {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, c.maxOutput)
	}

	return buf.Bytes(), nil
}
