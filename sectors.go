// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"bytes"
	"compress/bzip2"
	"compress/zlib"
	"encoding/binary"
	"io"
)

// sectorCount returns how many sectors a file of fileSize bytes occupies
// under sectorSize. A zero-length file always occupies zero sectors; naively
// computing (fileSize-1)/sectorSize+1 underflows uint32 arithmetic at
// fileSize==0, so that case is handled explicitly.
func sectorCount(fileSize, sectorSize uint32) uint32 {
	if fileSize == 0 {
		return 0
	}
	return (fileSize-1)/sectorSize + 1
}

// readSectorOffsetTable reads the (sectorCount+1)-entry table of sector end
// offsets (relative to the start of the table itself) that precedes a
// compressed file's sector data. When the file is encrypted the table is
// encrypted under key-1.
func readSectorOffsetTable(raw []byte, count uint32, encrypted bool, key uint32) ([]uint32, error) {
	want := (count + 1) * 4
	if uint32(len(raw)) < want {
		return nil, ErrCorrupted
	}
	buf := append([]byte(nil), raw[:want]...)
	if encrypted {
		decryptBytes(buf, key-1)
	}
	offsets := make([]uint32, count+1)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(buf[i*4 : i*4+4])
	}
	return offsets, nil
}

// decodeSector decompresses one sector's stored bytes into uncompressedSize
// bytes. When the stored form is exactly as large as the uncompressed form
// the sector was written verbatim (compression that didn't shrink a sector
// is discarded rather than kept, per the writer's construction order) and
// no method byte is present.
func decodeSector(stored []byte, uncompressedSize int) ([]byte, error) {
	if len(stored) == uncompressedSize {
		return stored, nil
	}
	if len(stored) == 0 {
		if uncompressedSize == 0 {
			return stored, nil
		}
		return nil, ErrCorrupted
	}

	method := stored[0]
	payload := stored[1:]

	switch method {
	case compressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, ErrCorrupted
		}
		defer zr.Close()
		out := make([]byte, uncompressedSize)
		if _, err := io.ReadFull(zr, out); err != nil {
			return nil, ErrCorrupted
		}
		return out, nil

	case compressionBzip2:
		br := bzip2.NewReader(bytes.NewReader(payload))
		out := make([]byte, uncompressedSize)
		if _, err := io.ReadFull(br, out); err != nil {
			return nil, ErrCorrupted
		}
		return out, nil

	case compressionHuffman:
		return nil, &UnsupportedCompressionError{Kind: "Huffman"}
	case compressionPKWareDCL:
		return nil, &UnsupportedCompressionError{Kind: "PKWare DCL"}
	case compressionIMAADPCM1:
		return nil, &UnsupportedCompressionError{Kind: "IMA ADPCM Mono"}
	case compressionIMAADPCM2:
		return nil, &UnsupportedCompressionError{Kind: "IMA ADPCM Stereo"}
	default:
		return nil, &UnsupportedCompressionError{Kind: "unknown"}
	}
}

// encodeSector compresses one sector with deflate and returns the
// method-byte-prefixed form, unless that form would not be smaller than the
// input, in which case it returns plain unprefixed verbatim bytes.
func encodeSector(plain []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(compressionZlib)

	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(plain); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	if buf.Len() >= len(plain) {
		return append([]byte(nil), plain...), nil
	}
	return buf.Bytes(), nil
}
