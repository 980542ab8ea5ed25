// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import "io"

// archiveGeometry records where inside the byte source the archive actually
// lives: the offset the header's own fields are relative to, the header
// itself, and the total size of the source (used for bounds checks).
type archiveGeometry struct {
	archiveOffset int64
	header        fileHeader
	sourceSize    int64
}

// findHeader scans src at 512-byte boundaries looking for a user-data shunt
// or an MPQ header directly. Most archives have the header at offset 0; the
// scan exists for archives with an arbitrary executable or media prefix
// glued on the front, which is common in the wild.
func findHeader(src io.ReadSeeker) (archiveGeometry, error) {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return archiveGeometry{}, err
	}

	for boundary := int64(0); boundary+4 <= size; boundary += headerBoundary {
		if _, err := src.Seek(boundary, io.SeekStart); err != nil {
			return archiveGeometry{}, err
		}

		var magic uint32
		if err := readUint32(src, &magic); err != nil {
			return archiveGeometry{}, err
		}

		switch magic {
		case headerMPQMagic:
			h, err := readFileHeader(src)
			if err != nil {
				if err == ErrUnsupportedVersion {
					return archiveGeometry{}, err
				}
				continue
			}
			return archiveGeometry{archiveOffset: boundary, header: h, sourceSize: size}, nil

		case headerUserMagic:
			uh, err := readUserHeader(src)
			if err != nil {
				continue
			}
			innerOffset := boundary + int64(uh.HeaderOffset)
			if uh.HeaderOffset == 0 || innerOffset >= size {
				return archiveGeometry{}, ErrCorrupted
			}
			if _, err := src.Seek(innerOffset, io.SeekStart); err != nil {
				return archiveGeometry{}, err
			}
			var innerMagic uint32
			if err := readUint32(src, &innerMagic); err != nil {
				return archiveGeometry{}, err
			}
			if innerMagic != headerMPQMagic {
				return archiveGeometry{}, ErrCorrupted
			}
			h, err := readFileHeader(src)
			if err != nil {
				return archiveGeometry{}, err
			}
			return archiveGeometry{archiveOffset: innerOffset, header: h, sourceSize: size}, nil
		}
	}

	return archiveGeometry{}, ErrNoHeader
}

func readUint32(r io.Reader, out *uint32) error {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return ErrCorrupted
	}
	*out = uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	return nil
}

// readAt reads size bytes at an archive-relative offset, bounds-checked
// against the source's actual length.
func (g archiveGeometry) readAt(src io.ReadSeeker, offset int64, size int64) ([]byte, error) {
	abs := g.archiveOffset + offset
	if abs < g.archiveOffset || abs+size > g.sourceSize {
		return nil, ErrCorrupted
	}
	if _, err := src.Seek(abs, io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, ErrCorrupted
	}
	return buf, nil
}
