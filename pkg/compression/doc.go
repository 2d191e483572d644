// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package compression provides the zlib compression applied to EBICS order data
and signature payloads before encryption.

EBICS H004 requires the ZLIB format (RFC 1950, deflate with the zlib header and
Adler-32 trailer) for everything carried in SignatureData and OrderData.

# Compression

	compressor := compression.NewCompressor()
	compressed, err := compressor.Compress(payload)

Decompress data produced by the counterparty:

	decompressed, err := compressor.Decompress(compressed)

# References

  - EBICS Specification 2.5, chapter 11 (compression and encryption)
  - ZLIB RFC 1950: https://datatracker.ietf.org/doc/html/rfc1950
*/
package compression
