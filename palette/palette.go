// SPDX-License-Identifier: GPL-2.0-or-later

// Package palette expands 8 bit palette indices into RGBA texels.
package palette

import (
	"fmt"
)

const (
	Colors = 256
	// Size is the on disk size of a palette, 256 RGB triplets.
	Size = Colors * 3
)

// Palette is a 256 entry RGB table as stored behind every mip texture.
type Palette [Size]byte

func New(b []byte) (*Palette, error) {
	if len(b) < Size {
		return nil, fmt.Errorf("Palette has wrong size: %v", len(b))
	}
	var p Palette
	copy(p[:], b[:Size])
	return &p, nil
}

func (p *Palette) RGB(index byte) (r, g, b byte) {
	i := int(index) * 3
	return p[i], p[i+1], p[i+2]
}

// Expand writes one RGBA texel per index into dst. Alpha is 255.
func (p *Palette) Expand(dst []byte, indices []byte) {
	for i, idx := range indices {
		r, g, b := p.RGB(idx)
		dst[i*4+0] = r
		dst[i*4+1] = g
		dst[i*4+2] = b
		dst[i*4+3] = 255
	}
}

// ExpandDecal writes decal texels: every texel gets the color of entry 255
// and the index encodes opacity as 255-index.
func (p *Palette) ExpandDecal(dst []byte, indices []byte) {
	r, g, b := p.RGB(255)
	for i, idx := range indices {
		dst[i*4+0] = r
		dst[i*4+1] = g
		dst[i*4+2] = b
		dst[i*4+3] = 255 - idx
	}
}
