// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import "fmt"

// Sentinel errors returned by the reader and writer. Wrapped I/O failures
// from the underlying source/sink are returned as-is (use errors.Is against
// the standard io/os error values), everything else in this package resolves
// to one of these.
var (
	// ErrNoHeader means the byte source was scanned in full and neither an
	// MPQ header nor a user-data shunt pointing at one was found.
	ErrNoHeader = fmt.Errorf("mpq: no header found")

	// ErrUnsupportedVersion means the header's format_version field was not 0.
	// Only Version-1 MPQ archives are supported.
	ErrUnsupportedVersion = fmt.Errorf("mpq: unsupported format version")

	// ErrCorrupted covers arithmetic or bounds violations, truncated tables,
	// decompressor rejections, and offsets that fall outside the source.
	ErrCorrupted = fmt.Errorf("mpq: corrupted archive")

	// ErrFileNotFound means the hash table probe for a name terminated
	// without a match, or the matched entry's block index was out of range.
	ErrFileNotFound = fmt.Errorf("mpq: file not found")
)

// UnsupportedCompressionError is returned when a sector's compression
// bitmask names a method this package does not implement.
type UnsupportedCompressionError struct {
	Kind string
}

func (e *UnsupportedCompressionError) Error() string {
	return fmt.Sprintf("mpq: unsupported compression: %s", e.Kind)
}
