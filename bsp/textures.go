// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"hlbsp/filesystem"
	"hlbsp/math/vec"
	"hlbsp/texture"
	"hlbsp/wad"
)

// openWad opens a WAD by base name below cfg.WadDir. A missing file
// returns an error matching fs.ErrNotExist.
func (l *loader) openWad(name string) (*wad.Wad, error) {
	p := filepath.Join(l.cfg.WadDir, filesystem.Base(name))
	f, err := l.cfg.FS.Open(p)
	if err != nil {
		return nil, err
	}
	w, err := wad.NewReader(f, p, l.log)
	if err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// openWads opens every name, skipping missing files. The caller closes the
// result.
func (l *loader) openWads(names []string) ([]*wad.Wad, error) {
	var ws []*wad.Wad
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		w, err := l.openWad(n)
		if errors.Is(err, fs.ErrNotExist) {
			l.log.Warn("WAD file not found", "wad", n)
			continue
		}
		if err != nil {
			closeWads(ws)
			return nil, err
		}
		ws = append(ws, w)
	}
	return ws, nil
}

func closeWads(ws []*wad.Wad) {
	for _, w := range ws {
		w.Close()
	}
}

func (l *loader) loadTextures() error {
	var names []string
	if ws := l.m.FindEntity("worldspawn"); ws != nil {
		if v, ok := ws.Property("wad"); ok {
			names = strings.Split(v, ";")
		}
	}
	wads, err := l.openWads(names)
	if err != nil {
		return err
	}
	defer closeWads(wads)

	m := l.m
	m.Textures = make([]*texture.Mipmap, len(m.MipTexs))
	for i := range m.MipTexs {
		mt := &m.MipTexs[i]
		if l.mipOffsets[i] < 0 {
			l.log.Warn("Texture slot is empty", "index", i)
			m.Stats.TexturesFailed++
			continue
		}
		if mt.External() {
			m.Textures[i] = l.loadExternal(wads, mt.Name)
			continue
		}
		lump := m.Header.Lumps[LumpTextures]
		start := int64(lump.Offset) + int64(l.mipOffsets[i])
		if int64(l.mipOffsets[i])+int64(mt.RawSize()) > int64(lump.Length) {
			return formatErrorf(LumpTextures.String(), start, "texture %s exceeds the lump", mt.Name)
		}
		raw, err := l.rawAt(LumpTextures, start, mt.RawSize())
		if err != nil {
			return err
		}
		t, err := texture.Decode(raw)
		if err != nil {
			return &FormatError{Lump: LumpTextures.String(), Offset: start, Err: err}
		}
		m.Textures[i] = t
		m.Stats.TexturesLoaded++
	}
	m.FaceTexCoords = make([][]vec.Vec2, len(m.Faces))
	for i := range m.Faces {
		m.FaceTexCoords[i] = m.faceTexCoords(i)
	}
	return nil
}

// loadExternal fetches a texture from the first WAD containing it. A miss
// or a texture that fails to decode is counted and yields nil.
func (l *loader) loadExternal(wads []*wad.Wad, name string) *texture.Mipmap {
	for _, w := range wads {
		t, err := w.LoadTexture(name)
		if wad.IsMiss(err) {
			continue
		}
		if err != nil {
			l.log.Error("Cannot decode WAD texture", "texture", name, "wad", w.String(), "error", err)
			l.m.Stats.TexturesFailed++
			return nil
		}
		l.m.Stats.TexturesLoaded++
		return t
	}
	l.log.Warn("Texture not found", "texture", name)
	l.m.Stats.TexturesFailed++
	return nil
}

// faceTexCoords divides the texture space position of every face vertex by
// the texture size. Textures that failed to load fall back to the MipTex
// header size.
func (m *Map) faceTexCoords(face int) []vec.Vec2 {
	ti := &m.TextureInfos[m.Faces[face].TexInfo]
	w, h := float32(1), float32(1)
	if t := m.Textures[ti.MipTex]; t != nil {
		w, h = float32(t.Width()), float32(t.Height())
	} else if mt := &m.MipTexs[ti.MipTex]; mt.Width > 0 && mt.Height > 0 {
		w, h = float32(mt.Width), float32(mt.Height)
	}
	n := int(m.Faces[face].EdgeCount)
	tc := make([]vec.Vec2, n)
	for i := range tc {
		s, t := textureUV(ti, m.FaceVertex(face, i))
		tc[i] = vec.Vec2{s / w, t / h}
	}
	return tc
}
