// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"bytes"
	"testing"
)

func TestFindHeaderNoHeader(t *testing.T) {
	src := bytes.NewReader(make([]byte, 2048))
	_, err := findHeader(src)
	if err != ErrNoHeader {
		t.Fatalf("findHeader = %v, want ErrNoHeader", err)
	}
}

func TestFindHeaderAtOffsetZero(t *testing.T) {
	archive := buildArchiveBytes(t, func(w *Writer) {
		w.AddFile("a.txt", []byte("a"), FileOptions{})
	})

	geo, err := findHeader(bytes.NewReader(archive))
	if err != nil {
		t.Fatalf("findHeader: %v", err)
	}

	if geo.archiveOffset != 0 {
		t.Errorf("archiveOffset = %d, want 0", geo.archiveOffset)
	}
	if geo.sourceSize != int64(len(archive)) {
		t.Errorf("sourceSize = %d, want %d", geo.sourceSize, len(archive))
	}
}

func buildArchiveBytes(t *testing.T, build func(w *Writer)) []byte {
	t.Helper()
	w := NewWriter()
	build(w)

	var buf seekBuffer
	if err := w.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.data
}

// seekBuffer is a minimal in-memory io.WriteSeeker, since bytes.Buffer alone
// does not implement Seek.
type seekBuffer struct {
	data []byte
	pos  int64
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	n := copy(b.data[b.pos:end], p)
	b.pos = end
	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case 0:
		base = 0
	case 1:
		base = b.pos
	case 2:
		base = int64(len(b.data))
	}
	b.pos = base + offset
	return b.pos, nil
}
