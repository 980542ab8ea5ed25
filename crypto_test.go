// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import "testing"

func TestCryptTableGoldenVector(t *testing.T) {
	table := keyTable()
	if table[0] != 0x55C636E2 {
		t.Fatalf("cryptTable[0] = %#08x, want 0x55C636E2", table[0])
	}
}

func TestHashStringGoldenVectors(t *testing.T) {
	cases := []struct {
		name string
		kind uint32
		want uint32
	}{
		{"(hash table)", hashKindFileKey, 0xC3AF3770},
		{"(block table)", hashKindFileKey, 0xEC83B3A3},
	}
	for _, c := range cases {
		if got := hashString(c.name, c.kind); got != c.want {
			t.Errorf("hashString(%q, %#x) = %#08x, want %#08x", c.name, c.kind, got, c.want)
		}
	}
}

func TestHashStringFoldsSeparators(t *testing.T) {
	a := hashString("data/file.txt", hashKindNameA)
	b := hashString(`data\file.txt`, hashKindNameA)
	if a != b {
		t.Errorf("hashString should fold '/' and '\\\\' to the same value, got %#08x != %#08x", a, b)
	}
}

func TestHashStringIsCaseInsensitive(t *testing.T) {
	a := hashString("War3Map.j", hashKindTableOffset)
	b := hashString("WAR3MAP.J", hashKindTableOffset)
	if a != b {
		t.Errorf("hashString should be case-insensitive, got %#08x != %#08x", a, b)
	}
}

func TestBlockCipherRoundTrip(t *testing.T) {
	plain := make([]byte, 16)
	for i := range plain {
		plain[i] = byte(i * 7)
	}

	const key = 0x12345678
	buf := append([]byte(nil), plain...)

	encryptBytes(buf, key)
	if string(buf) == string(plain) {
		t.Fatalf("encryptBytes left data unchanged")
	}

	decryptBytes(buf, key)
	if string(buf) != string(plain) {
		t.Fatalf("round trip mismatch: got %x, want %x", buf, plain)
	}
}

func TestBlockCipherLeavesTrailingBytesAlone(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	tail := data[4:6]
	wantTail := append([]byte(nil), tail...)

	encryptBytes(data, 0xDEADBEEF)
	if string(data[4:6]) != string(wantTail) {
		t.Fatalf("trailing bytes were modified: got %v, want %v", data[4:6], wantTail)
	}
}

func TestFileKeyAdjust(t *testing.T) {
	base := fileKey(`Data\War3Map.j`, 0, 0, false)
	adjusted := fileKey(`Data\War3Map.j`, 0x1000, 0x200, true)
	if base == adjusted {
		t.Errorf("adjusted key should differ from base key")
	}
}

func TestPlainName(t *testing.T) {
	cases := map[string]string{
		"war3map.j":            "war3map.j",
		`Data\war3map.j`:       "war3map.j",
		"Data/Sub/war3map.j":   "war3map.j",
		`Mixed/Sub\war3map.j`:  "war3map.j",
	}
	for in, want := range cases {
		if got := plainName(in); got != want {
			t.Errorf("plainName(%q) = %q, want %q", in, got, want)
		}
	}
}
