package security

import "errors"

// Failure classes of the cryptographic stages. Callers match them with
// errors.Is; the wrapped error carries the underlying cause.
var (
	// ErrRNG is returned when the random source cannot deliver bytes
	ErrRNG = errors.New("random source failure")
	// ErrEncoding is returned for malformed hex or digest input
	ErrEncoding = errors.New("encoding error")
	// ErrKeyResolution is returned when no key matches a pinned digest
	ErrKeyResolution = errors.New("no key matches pinned digest")
	// ErrEncryption is returned when symmetric or asymmetric encryption fails
	ErrEncryption = errors.New("encryption error")
	// ErrCompression is returned when compression or decompression fails
	ErrCompression = errors.New("compression error")
	// ErrSignature is returned when a signature cannot be created or verified
	ErrSignature = errors.New("signature error")
)
