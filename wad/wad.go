// SPDX-License-Identifier: GPL-2.0-or-later

// Package wad reads WAD2 and WAD3 texture archives.
package wad

import (
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"hlbsp/qio"
	"hlbsp/texture"
)

var (
	ErrNotFound   = errors.New("texture not found")
	ErrCompressed = errors.New("compressed wad entries are not supported")
	ErrBadMagic   = errors.New("not a WAD2 or WAD3 file")
	ErrBadEntry   = errors.New("directory entry outside of the file")
)

const (
	TypPalette    = 0x40
	TypQPic       = 0x42
	TypMipTex     = 0x44
	TypConsolePic = 0x45

	// on disk size of a directory entry
	dirEntrySize = 32
)

type header struct {
	Magic     [4]byte
	DirCount  int32
	DirOffset int32
}

type DirEntry struct {
	FilePos    int32
	DiskSize   int32
	Size       uint32
	Type       uint8
	Compressed bool
	Dummy      int16
	Name       string
}

func readDirEntry(r *qio.Reader) (DirEntry, error) {
	var raw struct {
		FilePos     int32
		DiskSize    int32
		Size        uint32
		Type        uint8
		Compression uint8
		Dummy       int16
	}
	if err := r.Read(&raw); err != nil {
		return DirEntry{}, err
	}
	name, err := r.ReadCharArray(texture.NameSize)
	if err != nil {
		return DirEntry{}, err
	}
	return DirEntry{
		FilePos:    raw.FilePos,
		DiskSize:   raw.DiskSize,
		Size:       raw.Size,
		Type:       raw.Type,
		Compressed: raw.Compression != 0,
		Dummy:      raw.Dummy,
		Name:       name,
	}, nil
}

// check rejects entries whose data does not lie within a file of the given
// size. Compressed entries are only checked by their disk size.
func (e *DirEntry) check(size int64) error {
	end := int64(e.FilePos) + int64(e.DiskSize)
	if !e.Compressed {
		end = max(end, int64(e.FilePos)+int64(e.Size))
	}
	if e.FilePos < 0 || e.DiskSize < 0 || end > size {
		return errors.Wrapf(ErrBadEntry, "%s at %d, %d bytes on disk, %d bytes, file size %d",
			e.Name, e.FilePos, e.DiskSize, e.Size, size)
	}
	return nil
}

// Wad is an open archive. Lookups are case insensitive.
type Wad struct {
	f       io.ReadSeeker
	c       io.Closer
	name    string
	entries map[string]DirEntry
	log     *slog.Logger
}

// Open opens the WAD at path and reads its directory.
func Open(path string, log *slog.Logger) (*Wad, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	w, err := NewReader(f, path, log)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.c = f
	return w, nil
}

// NewReader reads the directory of a WAD provided as a stream. If r is an
// io.Closer Close will close it.
func NewReader(r io.ReadSeeker, name string, log *slog.Logger) (*Wad, error) {
	if log == nil {
		log = slog.Default()
	}
	w := &Wad{f: r, name: name, log: log}
	if c, ok := r.(io.Closer); ok {
		w.c = c
	}
	if err := w.init(); err != nil {
		return nil, errors.Wrapf(err, "wad %s", name)
	}
	return w, nil
}

func (w *Wad) init() error {
	r := qio.NewReader(w.f)
	var h header
	if err := r.Read(&h); err != nil {
		return errors.Wrap(err, "header")
	}
	if h.Magic != [4]byte{'W', 'A', 'D', '2'} && h.Magic != [4]byte{'W', 'A', 'D', '3'} {
		return errors.Wrapf(ErrBadMagic, "magic %q", h.Magic[:])
	}
	if h.DirCount < 0 || h.DirOffset < 0 {
		return errors.Errorf("bad directory count %d at %d", h.DirCount, h.DirOffset)
	}
	size, err := r.Size()
	if err != nil {
		return err
	}
	if int64(h.DirOffset)+int64(h.DirCount)*dirEntrySize > size {
		return errors.Errorf("directory of %d entries at %d exceeds file size %d",
			h.DirCount, h.DirOffset, size)
	}
	if err := r.Seek(int64(h.DirOffset)); err != nil {
		return err
	}
	w.entries = make(map[string]DirEntry, h.DirCount)
	for i := int32(0); i < h.DirCount; i++ {
		e, err := readDirEntry(r)
		if err != nil {
			return errors.Wrapf(err, "directory entry %d", i)
		}
		if err := e.check(size); err != nil {
			return err
		}
		w.entries[strings.ToUpper(e.Name)] = e
	}
	return nil
}

func (w *Wad) String() string {
	return w.name
}

func (w *Wad) Close() error {
	if w.c == nil {
		return nil
	}
	return w.c.Close()
}

// Names returns the upper cased entry names, sorted.
func (w *Wad) Names() []string {
	n := make([]string, 0, len(w.entries))
	for k := range w.entries {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

func (w *Wad) Lookup(name string) (DirEntry, bool) {
	e, ok := w.entries[strings.ToUpper(name)]
	return e, ok
}

// Lump returns the raw bytes of the named entry.
func (w *Wad) Lump(name string) ([]byte, error) {
	e, ok := w.Lookup(name)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s in %s", strings.ToUpper(name), w.name)
	}
	if e.Compressed {
		w.log.Warn("Cannot load compressed WAD texture", "texture", name, "wad", w.name)
		return nil, errors.Wrapf(ErrCompressed, "%s in %s", name, w.name)
	}
	r := qio.NewReader(w.f)
	if err := r.Seek(int64(e.FilePos)); err != nil {
		return nil, err
	}
	b, err := r.ReadBytes(int(e.Size))
	if err != nil {
		return nil, errors.Wrapf(err, "lump %s in %s", name, w.name)
	}
	return b, nil
}

// LoadTexture fetches and decodes a mip texture. Missing and compressed
// entries return errors matching ErrNotFound and ErrCompressed.
func (w *Wad) LoadTexture(name string) (*texture.Mipmap, error) {
	raw, err := w.Lump(name)
	if err != nil {
		return nil, err
	}
	return texture.Decode(raw)
}

// LoadDecalTexture is LoadTexture for decal WADs.
func (w *Wad) LoadDecalTexture(name string) (*texture.Mipmap, error) {
	raw, err := w.Lump(name)
	if err != nil {
		return nil, err
	}
	return texture.DecodeDecal(raw)
}

// IsMiss reports whether err means the texture is unavailable, as opposed to
// a broken archive.
func IsMiss(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrCompressed)
}
