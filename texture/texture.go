// SPDX-License-Identifier: GPL-2.0-or-later

// Package texture decodes palette based mip textures as stored inside BSP
// texture lumps and WAD archives.
package texture

import (
	"github.com/pkg/errors"

	"hlbsp/image"
	"hlbsp/palette"
	"hlbsp/qio"
)

const (
	MipLevels = 4
	NameSize  = 16
	// MipTexSize is the on disk size of MipTex.
	MipTexSize = NameSize + 4 + 4 + 4*MipLevels
)

type MipTex struct {
	Name   string
	Width  uint32
	Height uint32
	// Offsets[0] to Pix[width * height]
	// 1: to Pix[width/2 * height/2]
	// 2: to Pix[width/4 * height/4]
	// 3: to Pix[width/8 * height/8]
	// all relative to the start of the MipTex
	Offsets [MipLevels]uint32
}

// External reports whether the pixels live in a WAD instead of the BSP.
func (m *MipTex) External() bool {
	return m.Offsets[0] == 0
}

// PaletteOffset is the offset of the 256 color palette, skipping the
// 2 byte color count that follows the smallest mip level.
func (m *MipTex) PaletteOffset() int {
	return int(m.Offsets[3]) + int(m.Width/8)*int(m.Height/8) + 2
}

// RawSize is the number of bytes needed to decode the texture.
func (m *MipTex) RawSize() int {
	return m.PaletteOffset() + palette.Size
}

func DecodeMipTex(r *qio.Reader) (MipTex, error) {
	var m MipTex
	name, err := r.ReadCharArray(NameSize)
	if err != nil {
		return m, errors.Wrap(err, "miptex name")
	}
	m.Name = name
	if m.Width, err = r.ReadUint32(); err != nil {
		return m, errors.Wrap(err, "miptex width")
	}
	if m.Height, err = r.ReadUint32(); err != nil {
		return m, errors.Wrap(err, "miptex height")
	}
	if err := r.Read(&m.Offsets); err != nil {
		return m, errors.Wrap(err, "miptex offsets")
	}
	return m, nil
}

// Mipmap holds the four RGBA levels of a texture, full size first.
type Mipmap struct {
	Name   string
	Levels [MipLevels]*image.Image
}

func (m *Mipmap) Width() int {
	return m.Levels[0].Width
}

func (m *Mipmap) Height() int {
	return m.Levels[0].Height
}

// Decode converts raw mip texture bytes into RGBA levels.
func Decode(raw []byte) (*Mipmap, error) {
	return decode(raw, (*palette.Palette).Expand)
}

// DecodeDecal converts raw decal bytes into RGBA levels where the palette
// index encodes opacity.
func DecodeDecal(raw []byte) (*Mipmap, error) {
	return decode(raw, (*palette.Palette).ExpandDecal)
}

func decode(raw []byte, expand func(*palette.Palette, []byte, []byte)) (*Mipmap, error) {
	mt, err := DecodeMipTex(qio.NewBytesReader(raw))
	if err != nil {
		return nil, err
	}
	po := mt.PaletteOffset()
	if po < 0 || po+palette.Size > len(raw) {
		return nil, errors.Errorf("texture %q: palette at %d outside of %d bytes", mt.Name, po, len(raw))
	}
	pal, err := palette.New(raw[po:])
	if err != nil {
		return nil, err
	}
	m := &Mipmap{Name: mt.Name}
	w, h := int(mt.Width), int(mt.Height)
	for level := 0; level < MipLevels; level++ {
		start := int(mt.Offsets[level])
		end := start + w*h
		if end > len(raw) {
			return nil, errors.Errorf("texture %q: mip level %d [%d:%d] outside of %d bytes",
				mt.Name, level, start, end, len(raw))
		}
		img := image.New(w, h, 4)
		expand(pal, img.Data, raw[start:end])
		palette.ApplyAlphaSections(img)
		m.Levels[level] = img
		w /= 2
		h /= 2
	}
	return m, nil
}
