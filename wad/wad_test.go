// SPDX-License-Identifier: GPL-2.0-or-later

package wad

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"hlbsp/palette"
	"hlbsp/texture"
)

type testEntry struct {
	name       string
	data       []byte
	compressed bool
}

func buildWad(magic string, entries []testEntry) []byte {
	var body bytes.Buffer
	pos := []int32{}
	for _, e := range entries {
		pos = append(pos, int32(12+body.Len()))
		body.Write(e.data)
	}
	var buf bytes.Buffer
	buf.WriteString(magic)
	binary.Write(&buf, binary.LittleEndian, int32(len(entries)))
	binary.Write(&buf, binary.LittleEndian, int32(12+body.Len()))
	buf.Write(body.Bytes())
	for i, e := range entries {
		binary.Write(&buf, binary.LittleEndian, pos[i])
		binary.Write(&buf, binary.LittleEndian, int32(len(e.data)))
		binary.Write(&buf, binary.LittleEndian, uint32(len(e.data)))
		buf.WriteByte(TypMipTex)
		if e.compressed {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		binary.Write(&buf, binary.LittleEndian, int16(0))
		var n [16]byte
		copy(n[:], e.name)
		buf.Write(n[:])
	}
	return buf.Bytes()
}

func mipTex(name string, w, h int, rgb [3]byte) []byte {
	var buf bytes.Buffer
	var n [16]byte
	copy(n[:], name)
	buf.Write(n[:])
	binary.Write(&buf, binary.LittleEndian, uint32(w))
	binary.Write(&buf, binary.LittleEndian, uint32(h))
	off := uint32(texture.MipTexSize)
	for l := 0; l < 4; l++ {
		binary.Write(&buf, binary.LittleEndian, off)
		off += uint32((w >> l) * (h >> l))
	}
	for l := 0; l < 4; l++ {
		buf.Write(make([]byte, (w>>l)*(h>>l)))
	}
	buf.Write([]byte{0, 1})
	p := make([]byte, palette.Size)
	copy(p, rgb[:])
	buf.Write(p)
	return buf.Bytes()
}

func TestCaseInsensitiveLookup(t *testing.T) {
	data := buildWad("WAD3", []testEntry{{name: "FOO", data: mipTex("FOO", 8, 8, [3]byte{1, 2, 3})}})
	w, err := NewReader(bytes.NewReader(data), "test.wad", nil)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	m, err := w.LoadTexture("foo")
	if err != nil {
		t.Fatalf("LoadTexture(foo): %v", err)
	}
	if m.Width() != 8 || m.Height() != 8 {
		t.Errorf("texture is %dx%d", m.Width(), m.Height())
	}
	if got := m.Levels[0].Data[:4]; !bytes.Equal(got, []byte{1, 2, 3, 255}) {
		t.Errorf("first texel = %v", got)
	}
}

func TestShortNames(t *testing.T) {
	data := buildWad("WAD2", []testEntry{
		{name: "A", data: []byte{1}},
		{name: "LONGERNAME_15CH", data: []byte{2}},
	})
	w, err := NewReader(bytes.NewReader(data), "test.wad", nil)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	want := []string{"A", "LONGERNAME_15CH"}
	got := w.Names()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	b, err := w.Lump("longername_15ch")
	if err != nil || !bytes.Equal(b, []byte{2}) {
		t.Errorf("Lump = %v, %v", b, err)
	}
}

func TestMissAndCompressed(t *testing.T) {
	data := buildWad("WAD3", []testEntry{{name: "PACKED", data: []byte{1, 2}, compressed: true}})
	w, err := NewReader(bytes.NewReader(data), "test.wad", nil)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := w.LoadTexture("nothere"); !errors.Is(err, ErrNotFound) || !IsMiss(err) {
		t.Errorf("LoadTexture(nothere) = %v, want ErrNotFound", err)
	}
	if _, err := w.LoadTexture("packed"); !errors.Is(err, ErrCompressed) || !IsMiss(err) {
		t.Errorf("LoadTexture(packed) = %v, want ErrCompressed", err)
	}
}

func TestBadMagic(t *testing.T) {
	data := buildWad("PACK", nil)
	if _, err := NewReader(bytes.NewReader(data), "bad.wad", nil); !errors.Is(err, ErrBadMagic) {
		t.Errorf("NewReader(PACK) = %v, want ErrBadMagic", err)
	}
}

func TestTruncatedDirectory(t *testing.T) {
	data := buildWad("WAD3", []testEntry{{name: "A", data: []byte{1}}})
	if _, err := NewReader(bytes.NewReader(data[:len(data)-4]), "short.wad", nil); err == nil {
		t.Errorf("NewReader accepted a truncated directory")
	}
}

func TestEntryOutsideFile(t *testing.T) {
	tests := []struct {
		name          string
		pos, diskSize int32
		size          uint32
		compressed    bool
	}{
		{"huge", 12, 1, 1 << 30, false},
		{"negpos", -1, 1, 1, false},
		{"negdisk", 12, -1, 1, false},
		{"packed", 12, 1 << 30, 1, true},
	}
	for _, tc := range tests {
		data := buildWad("WAD3", []testEntry{{name: "BIG", data: []byte{1}, compressed: tc.compressed}})
		dir := data[len(data)-dirEntrySize:]
		binary.LittleEndian.PutUint32(dir[0:], uint32(tc.pos))
		binary.LittleEndian.PutUint32(dir[4:], uint32(tc.diskSize))
		binary.LittleEndian.PutUint32(dir[8:], tc.size)
		if _, err := NewReader(bytes.NewReader(data), tc.name+".wad", nil); !errors.Is(err, ErrBadEntry) {
			t.Errorf("NewReader(%s) = %v, want ErrBadEntry", tc.name, err)
		}
	}

	// a compressed entry may be smaller on disk than unpacked
	data := buildWad("WAD3", []testEntry{{name: "PACKED", data: []byte{1}, compressed: true}})
	binary.LittleEndian.PutUint32(data[len(data)-dirEntrySize+8:], 1<<20)
	if _, err := NewReader(bytes.NewReader(data), "packed.wad", nil); err != nil {
		t.Errorf("NewReader(packed.wad) = %v", err)
	}
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "decals.wad")
	data := buildWad("WAD3", []testEntry{{name: "{BLOOD1", data: mipTex("{BLOOD1", 8, 8, [3]byte{})}})
	if err := os.WriteFile(p, data, 0644); err != nil {
		t.Fatal(err)
	}
	w, err := Open(p, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()
	if _, err := w.LoadDecalTexture("{blood1"); err != nil {
		t.Errorf("LoadDecalTexture: %v", err)
	}
	if _, err := Open(filepath.Join(dir, "missing.wad"), nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) = %v", err)
	}
}
