// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"encoding/binary"
	"io"
)

var (
	hashTableKey  = hashString("(hash table)", hashKindFileKey)
	blockTableKey = hashString("(block table)", hashKindFileKey)
)

// hashEntry is one slot of the hash table: the two name-hash halves used to
// disambiguate collisions, the locale/platform pair (this package only ever
// writes neutral/neutral and ignores the rest on read), and the index into
// the block table the slot currently resolves to.
type hashEntry struct {
	NameHashA uint32
	NameHashB uint32
	Locale    uint16
	Platform  uint16
	BlockIndex uint32
}

func (e hashEntry) isEmpty() bool  { return e.BlockIndex == hashTableEmptyBlockIndex }
func (e hashEntry) isDeleted() bool { return e.BlockIndex == hashTableDeletedBlockIndex }

// blankHashEntry is the sentinel written to every slot before insertion: all
// bits set except Platform, which stays 0x00FF (the platform field is never
// a full 0xFFFF in a true "never used" slot).
func blankHashEntry() hashEntry {
	return hashEntry{
		NameHashA:  0xFFFFFFFF,
		NameHashB:  0xFFFFFFFF,
		Locale:     0xFFFF,
		Platform:   0x00FF,
		BlockIndex: hashTableEmptyBlockIndex,
	}
}

// blockEntry is one slot of the block table: where the file's stored bytes
// begin (archive-relative), how big the stored and uncompressed forms are,
// and the flag bitmask describing encryption/compression/existence.
type blockEntry struct {
	FilePos        uint32
	CompressedSize uint32
	FileSize       uint32
	Flags          uint32
}

func (e blockEntry) exists() bool     { return e.Flags&flagExists != 0 }
func (e blockEntry) encrypted() bool  { return e.Flags&flagEncrypted != 0 }
func (e blockEntry) compressed() bool { return e.Flags&flagCompress != 0 }
func (e blockEntry) adjustKey() bool  { return e.Flags&flagAdjustKey != 0 }

func readHashTable(raw []byte, key uint32, count uint32) ([]hashEntry, error) {
	if uint32(len(raw)) != count*16 {
		return nil, ErrCorrupted
	}
	decryptBytes(raw, key)

	entries := make([]hashEntry, count)
	for i := range entries {
		row := raw[i*16 : i*16+16]
		entries[i] = hashEntry{
			NameHashA:  binary.LittleEndian.Uint32(row[0:4]),
			NameHashB:  binary.LittleEndian.Uint32(row[4:8]),
			Locale:     binary.LittleEndian.Uint16(row[8:10]),
			Platform:   binary.LittleEndian.Uint16(row[10:12]),
			BlockIndex: binary.LittleEndian.Uint32(row[12:16]),
		}
	}
	return entries, nil
}

func readBlockTable(raw []byte, key uint32, count uint32) ([]blockEntry, error) {
	if uint32(len(raw)) != count*16 {
		return nil, ErrCorrupted
	}
	decryptBytes(raw, key)

	entries := make([]blockEntry, count)
	for i := range entries {
		row := raw[i*16 : i*16+16]
		entries[i] = blockEntry{
			FilePos:        binary.LittleEndian.Uint32(row[0:4]),
			CompressedSize: binary.LittleEndian.Uint32(row[4:8]),
			FileSize:       binary.LittleEndian.Uint32(row[8:12]),
			Flags:          binary.LittleEndian.Uint32(row[12:16]),
		}
	}
	return entries, nil
}

// findBlockIndex probes the hash table for name starting at its table-offset
// hash, following the open-addressed linear-probe chain used when the table
// was built. It stops at the first empty slot (names are never removed from
// a freshly-built archive, so a deleted-tombstone slot just continues the
// probe) or after a full cycle of the table. A slot only matches when its
// locale is neutral; this package never writes any other locale, but a
// foreign archive may carry locale-specific duplicates at the same hash.
func findBlockIndex(table []hashEntry, name string) (uint32, bool) {
	if len(table) == 0 {
		return 0, false
	}
	mask := uint32(len(table)) - 1
	start := hashString(name, hashKindTableOffset) & mask
	hashA := hashString(name, hashKindNameA)
	hashB := hashString(name, hashKindNameB)

	for i := uint32(0); i < uint32(len(table)); i++ {
		idx := (start + i) & mask
		e := table[idx]
		if e.isEmpty() {
			return 0, false
		}
		if e.isDeleted() {
			continue
		}
		if e.NameHashA == hashA && e.NameHashB == hashB && e.Locale == localeNeutral {
			return e.BlockIndex, true
		}
	}
	return 0, false
}

// writeHashTable serializes a freshly-built hash table (already populated by
// the writer's open-addressed insertion) and encrypts it with the
// well-known "(hash table)" key.
func writeHashTable(w io.Writer, table []hashEntry) error {
	raw := make([]byte, len(table)*16)
	for i, e := range table {
		row := raw[i*16 : i*16+16]
		binary.LittleEndian.PutUint32(row[0:4], e.NameHashA)
		binary.LittleEndian.PutUint32(row[4:8], e.NameHashB)
		binary.LittleEndian.PutUint16(row[8:10], e.Locale)
		binary.LittleEndian.PutUint16(row[10:12], e.Platform)
		binary.LittleEndian.PutUint32(row[12:16], e.BlockIndex)
	}
	encryptBytes(raw, hashTableKey)
	_, err := w.Write(raw)
	return err
}

func writeBlockTable(w io.Writer, table []blockEntry) error {
	raw := make([]byte, len(table)*16)
	for i, e := range table {
		row := raw[i*16 : i*16+16]
		binary.LittleEndian.PutUint32(row[0:4], e.FilePos)
		binary.LittleEndian.PutUint32(row[4:8], e.CompressedSize)
		binary.LittleEndian.PutUint32(row[8:12], e.FileSize)
		binary.LittleEndian.PutUint32(row[12:16], e.Flags)
	}
	encryptBytes(raw, blockTableKey)
	_, err := w.Write(raw)
	return err
}

// insertHashEntry places name into the first empty-or-deleted slot found by
// linear probing from its table-offset hash, matching the read-side probe
// exactly so entries written this way are always found again.
func insertHashEntry(table []hashEntry, name string, blockIndex uint32) {
	mask := uint32(len(table)) - 1
	start := hashString(name, hashKindTableOffset) & mask
	hashA := hashString(name, hashKindNameA)
	hashB := hashString(name, hashKindNameB)

	for i := uint32(0); i < uint32(len(table)); i++ {
		idx := (start + i) & mask
		if table[idx].isEmpty() || table[idx].isDeleted() {
			table[idx] = hashEntry{
				NameHashA:  hashA,
				NameHashB:  hashB,
				Locale:     localeNeutral,
				Platform:   0,
				BlockIndex: blockIndex,
			}
			return
		}
	}
}

// nextPowerOfTwo returns the smallest power of two >= n, floored at
// minHashTableSize.
func nextPowerOfTwo(n uint32) uint32 {
	p := uint32(minHashTableSize)
	for p < n {
		p <<= 1
	}
	return p
}
