// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"io"
	"strings"
)

// FileOptions controls how a single file is stored.
type FileOptions struct {
	// Compress runs each sector through deflate before writing it, keeping
	// the compressed form only when it is actually smaller.
	Compress bool
	// Encrypt derives a per-file key from the stored name and encrypts
	// every sector (and, when Compress is also set, the sector offset
	// table) with it.
	Encrypt bool
	// AdjustKey folds the file's archive offset and size into its
	// encryption key. Only meaningful when Encrypt is set.
	AdjustKey bool
}

type fileKeyIdentity struct {
	hashA uint32
	hashB uint32
}

type pendingFile struct {
	name    string
	data    []byte
	options FileOptions
}

// Writer accumulates files in memory and serializes them into a single
// Version-1 MPQ archive on Write. A Writer is not reusable for more than one
// archive.
type Writer struct {
	sectorSize uint32
	files      []pendingFile
	seen       map[fileKeyIdentity]bool
}

// NewWriter returns a Writer using the default logical sector size.
func NewWriter() *Writer {
	return &Writer{
		sectorSize: defaultSectorSize,
		seen:       make(map[fileKeyIdentity]bool),
	}
}

// normalizeName canonicalizes a stored path to use '\\' separators, the
// convention MPQ tools use on disk; lookups fold either separator anyway.
func normalizeName(name string) string {
	return strings.ReplaceAll(name, "/", "\\")
}

// AddFile queues name to be written with data and options. Names collide by
// their hashed identity, not their literal text; a second AddFile under a
// name that hashes the same as one already queued is silently dropped, so
// the first caller always wins. This mirrors the archive's own hash table,
// which has no way to represent two entries at the same hash slot.
func (w *Writer) AddFile(name string, data []byte, options FileOptions) {
	name = normalizeName(name)
	key := fileKeyIdentity{
		hashA: hashString(name, hashKindNameA),
		hashB: hashString(name, hashKindNameB),
	}
	if w.seen[key] {
		return
	}
	w.seen[key] = true
	w.files = append(w.files, pendingFile{name: name, data: data, options: options})
}

// Write serializes every queued file into dst: header space is reserved
// first, then the (listfile) member is synthesized, then each file's sector
// data is emitted, then the hash and block tables, and finally the header
// itself is rewritten over the reserved space with its real offsets.
func (w *Writer) Write(dst io.WriteSeeker) error {
	sectorSize := w.sectorSize
	if sectorSize == 0 {
		sectorSize = defaultSectorSize
	}

	headerSpan := int64(4 + fileHeaderSize)
	if _, err := dst.Seek(headerSpan, io.SeekStart); err != nil {
		return err
	}

	files := w.files
	if !w.hasFile("(listfile)") {
		listing := w.listFileBytes()
		files = append(files, pendingFile{
			name: "(listfile)",
			data: listing,
			options: FileOptions{
				Compress:  true,
				Encrypt:   true,
				AdjustKey: true,
			},
		})
	}

	blockTable := make([]blockEntry, len(files))
	for i, f := range files {
		be, err := writeFileSectors(dst, f.name, f.data, f.options, sectorSize)
		if err != nil {
			return err
		}
		blockTable[i] = be
	}

	// Size strictly larger than len(files): a table sized exactly to the
	// entry count would fill to load factor 1.0, violating the documented
	// invariant even though it matches the reference creator's sizing.
	hashTableSize := nextPowerOfTwo(uint32(len(files)) + 1)
	hashTable := make([]hashEntry, hashTableSize)
	for i := range hashTable {
		hashTable[i] = blankHashEntry()
	}
	for i, f := range files {
		insertHashEntry(hashTable, f.name, uint32(i))
	}

	hashTableOffset, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := writeHashTable(dst, hashTable); err != nil {
		return err
	}

	blockTableOffset, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := writeBlockTable(dst, blockTable); err != nil {
		return err
	}

	archiveEnd, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	h := fileHeader{
		HeaderSize:        uint32(headerSpan),
		ArchiveSize:       uint32(archiveEnd),
		FormatVersion:     formatVersion1,
		SectorSizeShift:   sectorSizeShiftFor(sectorSize),
		HashTableOffset:   uint32(hashTableOffset),
		BlockTableOffset:  uint32(blockTableOffset),
		HashTableEntries:  hashTableSize,
		BlockTableEntries: uint32(len(files)),
	}

	if _, err := dst.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return writeFileHeader(dst, h)
}

func (w *Writer) hasFile(name string) bool {
	name = normalizeName(name)
	for _, f := range w.files {
		if f.name == name {
			return true
		}
	}
	return false
}

func (w *Writer) listFileBytes() []byte {
	var sb strings.Builder
	for _, f := range w.files {
		sb.WriteString(f.name)
		sb.WriteString("\r\n")
	}
	return []byte(sb.String())
}

// writeFileSectors writes one file's sector data (and, if compressed, its
// sector offset table) at the sink's current position and returns the
// block table entry describing it.
func writeFileSectors(dst io.WriteSeeker, name string, data []byte, opts FileOptions, sectorSize uint32) (blockEntry, error) {
	startPos, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return blockEntry{}, err
	}

	flags := uint32(flagExists)
	if opts.Compress {
		flags |= flagCompress
	}
	if opts.Encrypt {
		flags |= flagEncrypted
	}
	if opts.AdjustKey {
		flags |= flagAdjustKey
	}

	if len(data) == 0 {
		return blockEntry{
			FilePos:        uint32(startPos),
			CompressedSize: 0,
			FileSize:       0,
			Flags:          flags,
		}, nil
	}

	var key uint32
	if opts.Encrypt {
		key = fileKey(name, uint32(startPos), uint32(len(data)), opts.AdjustKey)
	}

	count := sectorCount(uint32(len(data)), sectorSize)

	if opts.Compress {
		sotPos, err := dst.Seek(0, io.SeekCurrent)
		if err != nil {
			return blockEntry{}, err
		}
		sotSize := int64(count+1) * 4
		if _, err := dst.Seek(sotSize, io.SeekCurrent); err != nil {
			return blockEntry{}, err
		}

		offsets := make([]uint32, count+1)
		offsets[0] = uint32(sotSize)
		for i := uint32(0); i < count; i++ {
			lo := i * sectorSize
			hi := lo + sectorSize
			if hi > uint32(len(data)) {
				hi = uint32(len(data))
			}
			stored, err := encodeSector(data[lo:hi])
			if err != nil {
				return blockEntry{}, err
			}
			if opts.Encrypt {
				decrypted := append([]byte(nil), stored...)
				encryptBytes(decrypted, key+i)
				stored = decrypted
			}
			if _, err := dst.Write(stored); err != nil {
				return blockEntry{}, err
			}
			offsets[i+1] = offsets[i] + uint32(len(stored))
		}

		endPos, err := dst.Seek(0, io.SeekCurrent)
		if err != nil {
			return blockEntry{}, err
		}

		sot := make([]byte, sotSize)
		for i, o := range offsets {
			sot[i*4] = byte(o)
			sot[i*4+1] = byte(o >> 8)
			sot[i*4+2] = byte(o >> 16)
			sot[i*4+3] = byte(o >> 24)
		}
		if opts.Encrypt {
			decryptSOT := append([]byte(nil), sot...)
			encryptBytes(decryptSOT, key-1)
			sot = decryptSOT
		}
		if _, err := dst.Seek(sotPos, io.SeekStart); err != nil {
			return blockEntry{}, err
		}
		if _, err := dst.Write(sot); err != nil {
			return blockEntry{}, err
		}
		if _, err := dst.Seek(endPos, io.SeekStart); err != nil {
			return blockEntry{}, err
		}

		return blockEntry{
			FilePos:        uint32(startPos),
			CompressedSize: uint32(endPos - startPos),
			FileSize:       uint32(len(data)),
			Flags:          flags,
		}, nil
	}

	for i := uint32(0); i < count; i++ {
		lo := i * sectorSize
		hi := lo + sectorSize
		if hi > uint32(len(data)) {
			hi = uint32(len(data))
		}
		sectorBytes := append([]byte(nil), data[lo:hi]...)
		if opts.Encrypt {
			encryptBytes(sectorBytes, key+i)
		}
		if _, err := dst.Write(sectorBytes); err != nil {
			return blockEntry{}, err
		}
	}

	return blockEntry{
		FilePos:        uint32(startPos),
		CompressedSize: uint32(len(data)),
		FileSize:       uint32(len(data)),
		Flags:          flags,
	}, nil
}
