// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildArchive(t *testing.T, build func(w *Writer)) *Archive {
	t.Helper()

	w := NewWriter()
	build(w)

	path := filepath.Join(t.TempDir(), "out.mpq")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(f))
	require.NoError(t, f.Close())

	f, err = os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	archive, err := Open(f)
	require.NoError(t, err)
	return archive
}

func TestRoundTripSmallStoredFile(t *testing.T) {
	archive := buildArchive(t, func(w *Writer) {
		w.AddFile("war3map.j", []byte("function main takes nothing returns nothing\nendfunction\n"), FileOptions{})
	})

	data, err := archive.ReadFile("war3map.j")
	require.NoError(t, err)
	require.Equal(t, "function main takes nothing returns nothing\nendfunction\n", string(data))
}

func TestRoundTripCompressedFile(t *testing.T) {
	payload := make([]byte, 3*defaultSectorSize+37)
	for i := range payload {
		payload[i] = byte(i % 251)
	}

	archive := buildArchive(t, func(w *Writer) {
		w.AddFile("war3map.wts", payload, FileOptions{Compress: true})
	})

	got, err := archive.ReadFile("war3map.wts")
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestRoundTripEncryptedFile(t *testing.T) {
	payload := []byte("secret unit data that should not be stored in the clear")

	archive := buildArchive(t, func(w *Writer) {
		w.AddFile("war3mapUnits.doo", payload, FileOptions{Compress: true, Encrypt: true, AdjustKey: true})
	})

	got, err := archive.ReadFile("war3mapUnits.doo")
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestRoundTripZeroLengthFile(t *testing.T) {
	archive := buildArchive(t, func(w *Writer) {
		w.AddFile("war3map.shd", []byte{}, FileOptions{Compress: true})
	})

	got, err := archive.ReadFile("war3map.shd")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRoundTripSeparatorsAreInterchangeable(t *testing.T) {
	archive := buildArchive(t, func(w *Writer) {
		w.AddFile("Data/Sub/file.txt", []byte("hi"), FileOptions{})
	})

	got, err := archive.ReadFile(`Data\Sub\file.txt`)
	require.NoError(t, err)
	require.Equal(t, "hi", string(got))
}

func TestRoundTripDuplicateAddFirstWins(t *testing.T) {
	archive := buildArchive(t, func(w *Writer) {
		w.AddFile("file.txt", []byte("first"), FileOptions{})
		w.AddFile("file.txt", []byte("second"), FileOptions{})
	})

	got, err := archive.ReadFile("file.txt")
	require.NoError(t, err)
	require.Equal(t, "first", string(got))
}

func TestRoundTripListFile(t *testing.T) {
	archive := buildArchive(t, func(w *Writer) {
		w.AddFile("a.txt", []byte("a"), FileOptions{})
		w.AddFile("b.txt", []byte("b"), FileOptions{})
	})

	names, ok := archive.Files()
	require.True(t, ok)
	require.Contains(t, names, "a.txt")
	require.Contains(t, names, "b.txt")
}

func TestFileNotFound(t *testing.T) {
	archive := buildArchive(t, func(w *Writer) {
		w.AddFile("a.txt", []byte("a"), FileOptions{})
	})

	_, err := archive.ReadFile("missing.txt")
	require.ErrorIs(t, err, ErrFileNotFound)
}
