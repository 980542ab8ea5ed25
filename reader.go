// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"bytes"
	"io"
	"strings"
)

// Archive is an opened Version-1 MPQ archive. It holds no open file handles
// of its own; all reads go through the io.ReadSeeker it was opened with, so
// callers own the lifetime of that source.
type Archive struct {
	src        io.ReadSeeker
	geo        archiveGeometry
	hashTable  []hashEntry
	blockTable []blockEntry
}

// Open scans src for a Version-1 MPQ header and loads its hash and block
// tables. src is retained and read from lazily as files are requested.
func Open(src io.ReadSeeker) (*Archive, error) {
	geo, err := findHeader(src)
	if err != nil {
		return nil, err
	}
	h := geo.header

	hashRaw, err := geo.readAt(src, int64(h.HashTableOffset), int64(h.HashTableEntries)*16)
	if err != nil {
		return nil, err
	}
	hashTable, err := readHashTable(hashRaw, hashTableKey, h.HashTableEntries)
	if err != nil {
		return nil, err
	}

	blockRaw, err := geo.readAt(src, int64(h.BlockTableOffset), int64(h.BlockTableEntries)*16)
	if err != nil {
		return nil, err
	}
	blockTable, err := readBlockTable(blockRaw, blockTableKey, h.BlockTableEntries)
	if err != nil {
		return nil, err
	}

	return &Archive{src: src, geo: geo, hashTable: hashTable, blockTable: blockTable}, nil
}

// ReadFile returns the fully decrypted, decompressed contents of name.
// name is matched case-insensitively and with '/' and '\\' treated as the
// same separator.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	blockIdx, ok := findBlockIndex(a.hashTable, name)
	if !ok {
		return nil, ErrFileNotFound
	}
	if blockIdx >= uint32(len(a.blockTable)) {
		return nil, ErrFileNotFound
	}
	block := a.blockTable[blockIdx]
	if !block.exists() {
		return nil, ErrFileNotFound
	}
	if block.Flags&flagSingleUnit != 0 {
		return nil, &UnsupportedCompressionError{Kind: "single-unit file"}
	}
	if block.Flags&flagImplode != 0 {
		return nil, &UnsupportedCompressionError{Kind: "PKWare implode"}
	}

	sectorSize := a.geo.header.sectorSize()
	count := sectorCount(block.FileSize, sectorSize)
	if count == 0 {
		return []byte{}, nil
	}

	stored, err := a.geo.readAt(a.src, int64(block.FilePos), int64(block.CompressedSize))
	if err != nil {
		return nil, err
	}

	var key uint32
	if block.encrypted() {
		key = fileKey(name, block.FilePos, block.FileSize, block.adjustKey())
	}

	if block.compressed() {
		return a.readCompressed(stored, block, count, sectorSize, key)
	}
	return a.readStored(stored, block, count, sectorSize, key)
}

func (a *Archive) readCompressed(stored []byte, block blockEntry, count, sectorSize, key uint32) ([]byte, error) {
	offsets, err := readSectorOffsetTable(stored, count, block.encrypted(), key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, block.FileSize)
	remaining := block.FileSize
	for i := uint32(0); i < count; i++ {
		start, end := offsets[i], offsets[i+1]
		if end < start || int64(end) > int64(len(stored)) {
			return nil, ErrCorrupted
		}
		sectorBytes := append([]byte(nil), stored[start:end]...)
		if block.encrypted() {
			decryptBytes(sectorBytes, key+i)
		}

		want := sectorSize
		if remaining < want {
			want = remaining
		}
		plain, err := decodeSector(sectorBytes, int(want))
		if err != nil {
			return nil, err
		}
		out = append(out, plain...)
		remaining -= want
	}
	return out, nil
}

func (a *Archive) readStored(stored []byte, block blockEntry, count, sectorSize, key uint32) ([]byte, error) {
	out := make([]byte, 0, block.FileSize)
	remaining := block.FileSize
	pos := uint32(0)
	for i := uint32(0); i < count; i++ {
		want := sectorSize
		if remaining < want {
			want = remaining
		}
		if int64(pos)+int64(want) > int64(len(stored)) {
			return nil, ErrCorrupted
		}
		sectorBytes := append([]byte(nil), stored[pos:pos+want]...)
		if block.encrypted() {
			decryptBytes(sectorBytes, key+i)
		}
		out = append(out, sectorBytes...)
		pos += want
		remaining -= want
	}
	return out, nil
}

// Files returns the archive's file list, parsed from the special
// "(listfile)" member. Its second result is false when no listfile is
// present; that is not an error; many archives omit it and must still be
// usable by explicit, pre-known names.
func (a *Archive) Files() ([]string, bool) {
	data, err := a.ReadFile("(listfile)")
	if err != nil {
		return nil, false
	}

	text := string(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n")))
	var names []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			names = append(names, line)
		}
	}
	return names, true
}

// HasFile reports whether name resolves to an existing block entry, without
// reading or decompressing its contents.
func (a *Archive) HasFile(name string) bool {
	blockIdx, ok := findBlockIndex(a.hashTable, name)
	if !ok || blockIdx >= uint32(len(a.blockTable)) {
		return false
	}
	return a.blockTable[blockIdx].exists()
}
