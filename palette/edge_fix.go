// SPDX-License-Identifier: GPL-2.0-or-later

package palette

import (
	"github.com/chewxy/math32"

	"hlbsp/image"
)

func isKey(d []byte, p int) bool {
	return d[p] == 0 && d[p+1] == 0 && d[p+2] == 255
}

// ApplyAlphaSections turns pure blue (0,0,255) texels of an RGBA image into
// fully transparent texels. Their color becomes the average of the non key
// neighbours so filtering does not bleed blue into the edges. Diagonal
// neighbours are weighted by sqrt(2) before the truncating average. There is
// no wrap around at the borders.
func ApplyAlphaSections(img *image.Image) {
	w, h := img.Width, img.Height
	d := img.Data
	if w == 0 || h == 0 {
		return
	}
	key := make([]bool, w*h)
	for i := range key {
		key[i] = isKey(d, i*4)
	}
	type neighbour struct {
		dx, dy   int
		diagonal bool
	}
	neighbours := [8]neighbour{
		{-1, -1, true}, {0, -1, false}, {1, -1, true},
		{-1, 0, false} /*           */, {1, 0, false},
		{-1, 1, true}, {0, 1, false}, {1, 1, true},
	}
	out := make([]byte, len(d))
	copy(out, d)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if !key[idx] {
				continue
			}
			pixel := idx * 4
			out[pixel+2] = 0
			out[pixel+3] = 0
			var r, g, b, count int
			for _, n := range neighbours {
				nx, ny := x+n.dx, y+n.dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				ni := ny*w + nx
				if key[ni] {
					continue
				}
				np := ni * 4
				if n.diagonal {
					r += int(float32(d[np]) * math32.Sqrt2)
					g += int(float32(d[np+1]) * math32.Sqrt2)
					b += int(float32(d[np+2]) * math32.Sqrt2)
				} else {
					r += int(d[np])
					g += int(d[np+1])
					b += int(d[np+2])
				}
				count++
			}
			if count == 0 {
				continue
			}
			r, g, b = r/count, g/count, b/count
			if r == 0 && g == 0 && b == 255 {
				// would turn into a key again
				continue
			}
			out[pixel] = byte(r)
			out[pixel+1] = byte(g)
			out[pixel+2] = byte(b)
		}
	}
	copy(d, out)
}
