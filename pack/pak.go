// SPDX-License-Identifier: GPL-2.0-or-later

// Package pack reads PACK archives as shipped with the game data.
package pack

import (
	"bytes"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"hlbsp/qio"
)

var ErrNotPack = errors.New("not a pack")

type header struct {
	ID     [4]byte
	Offset int32
	Size   int32
}

type entry struct {
	Name   [56]byte
	Offset int32
	Size   int32
}

const entrySize = 64

type Pack struct {
	f     io.ReaderAt
	c     io.Closer
	files map[string]*qfile
	name  string
}

type qfile struct {
	offset int64
	size   int64
}

// Open returns a io.SectionReader or os.ErrNotExist if the pak has no entry
// with the provided name.
func (p *Pack) Open(name string) (*io.SectionReader, error) {
	q, ok := p.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}

	return io.NewSectionReader(p.f, q.offset, q.size), nil
}

// Names returns all entry names, sorted.
func (p *Pack) Names() []string {
	n := make([]string, 0, len(p.files))
	for k := range p.files {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

// List returns the names directly below dir. Subdirectories end in '/'.
func (p *Pack) List(dir string) []string {
	dir = strings.Trim(dir, "/")
	if dir != "" {
		dir += "/"
	}
	seen := map[string]bool{}
	var r []string
	for _, n := range p.Names() {
		if !strings.HasPrefix(n, dir) {
			continue
		}
		rest := n[len(dir):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i+1]
		}
		if !seen[rest] {
			seen[rest] = true
			r = append(r, rest)
		}
	}
	return r
}

func (p *Pack) String() string {
	return p.name
}

func (p *Pack) Close() error {
	if p.c == nil {
		return nil
	}
	return p.c.Close()
}

type readSeekerAt interface {
	io.ReadSeeker
	io.ReaderAt
}

func (p *Pack) init(rs readSeekerAt) error {
	r := qio.NewReader(rs)
	var h header
	if err := r.Read(&h); err != nil {
		return err
	}
	if !bytes.Equal([]byte("PACK"), h.ID[:]) {
		return ErrNotPack
	}
	if h.Offset < 0 || h.Size < 0 {
		return errors.Errorf("bad directory %d+%d", h.Offset, h.Size)
	}
	size, err := r.Size()
	if err != nil {
		return err
	}
	if int64(h.Offset)+int64(h.Size) > size {
		return errors.Errorf("directory %d+%d exceeds file size %d", h.Offset, h.Size, size)
	}
	if err := r.Seek(int64(h.Offset)); err != nil {
		return err
	}
	filenum := h.Size / entrySize
	p.files = make(map[string]*qfile, filenum)
	for i := int32(0); i < filenum; i++ {
		var e entry
		if err := r.Read(&e); err != nil {
			return err
		}
		name := qio.CString(e.Name[:])
		if p.files[name] != nil {
			return errors.Errorf("files in pack are not unique: %s", name)
		}
		if e.Offset < 0 || e.Size < 0 || int64(e.Offset)+int64(e.Size) > size {
			return errors.Errorf("entry %s %d+%d exceeds file size %d", name, e.Offset, e.Size, size)
		}
		p.files[name] = &qfile{
			offset: int64(e.Offset),
			size:   int64(e.Size),
		}
	}
	return nil
}

// NewReader reads the pack directory from an in memory or already opened
// archive.
func NewReader(r readSeekerAt, name string) (*Pack, error) {
	p := &Pack{f: r, name: name}
	if err := p.init(r); err != nil {
		return nil, errors.Wrapf(err, "pack %s", name)
	}
	return p, nil
}

func NewPackReader(name string) (*Pack, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	p, err := NewReader(f, name)
	if err != nil {
		f.Close()
		return nil, err
	}
	p.c = f
	return p, nil
}
