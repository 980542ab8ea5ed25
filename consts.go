// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

// Magic signatures, little-endian on disk.
const (
	headerMPQMagic  = 0x1A51504D // "MPQ\x1A"
	headerUserMagic = 0x1B51504D // "MPQ\x1B"
)

// headerBoundary is the alignment the seeker scans at when looking for a header.
const headerBoundary = 512

// formatVersion1 is the only FormatVersion field value this package accepts.
const formatVersion1 = 0

// fileHeaderSize is the size in bytes of the on-disk V1 header fields that
// follow the magic word. The header's own HeaderSize field counts the magic
// too, so it is always fileHeaderSize+4 (0x20).
const fileHeaderSize = 0x1C

// minHashTableSize is the smallest hash table the writer will ever allocate.
const minHashTableSize = 4

// Block table entry flags.
const (
	flagImplode    = 0x00000100 // legacy PKWare implode; unsupported, rejected in ReadFile.
	flagCompress   = 0x00000200 // one or more of the bitmask compression methods.
	flagEncrypted  = 0x00010000
	flagAdjustKey  = 0x00020000 // per-file key derivation includes file offset.
	flagSingleUnit = 0x01000000 // unsupported; rejected in ReadFile.
	flagExists     = 0x80000000
)

// Hash table entry sentinels.
const (
	hashTableEmptyBlockIndex   = 0xFFFFFFFF
	hashTableDeletedBlockIndex = 0xFFFFFFFE
)

// localeNeutral is the only locale this package ever writes, and the only
// one it treats as a match on read.
const localeNeutral = 0

// Hash kinds select which row of the key table a name hash is derived from.
const (
	hashKindTableOffset = 0x000
	hashKindNameA       = 0x100
	hashKindNameB       = 0x200
	hashKindFileKey     = 0x300
)

// Compression method bits, found in the leading byte of a compressed sector.
const (
	compressionHuffman    = 0x01
	compressionZlib       = 0x02
	compressionPKWareDCL  = 0x08
	compressionBzip2      = 0x10
	compressionIMAADPCM1  = 0x40 // mono
	compressionIMAADPCM2  = 0x80 // stereo
)

// defaultSectorSize is the writer's default logical sector size (0x10000 bytes),
// matching the value the spec calls for when the writer is not otherwise configured.
const defaultSectorSize = 0x10000
