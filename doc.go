// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package mpq provides pure Go support for reading and writing Version-1 MPQ
(Mo'PaQ) archives, the format Blizzard used for Warcraft III custom maps.

# Features

  - Pure Go implementation, no CGO
  - Byte-oriented API: archives are opened from an io.ReadSeeker and built
    onto an io.WriteSeeker, so callers are free to use files, in-memory
    buffers, or anything else that satisfies those interfaces
  - Deflate and bzip2 sector decompression on read; deflate on write
  - Encrypted and plain files, single- and multi-sector files

# Basic Usage

Reading an archive:

	f, err := os.Open("map.w3x")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	archive, err := mpq.Open(f)
	if err != nil {
		log.Fatal(err)
	}

	data, err := archive.ReadFile("war3map.j")
	if err != nil {
		log.Fatal(err)
	}

Building an archive:

	w := mpq.NewWriter()
	w.AddFile("war3map.j", script, mpq.FileOptions{Compress: true})

	f, err := os.Create("out.w3x")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	if err := w.Write(f); err != nil {
		log.Fatal(err)
	}

# Path Conventions

MPQ archives use backslash (\) as the path separator on disk. Names are
hashed the same way regardless of which separator a caller uses, so
"Data/file.txt" and "Data\\file.txt" refer to the same stored entry.

# Limitations

This package implements only what a Warcraft III map reader or builder
needs:

  - Version-1 archives only; no V2/V3/V4 extended headers
  - No PKWare implode, Huffman, or ADPCM sector decompression
  - No file attributes, checksums, digital signatures, or patch chains
  - No in-place modification of an existing archive; Writer always builds
    a fresh one
*/
package mpq
