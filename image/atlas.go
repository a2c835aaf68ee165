// SPDX-License-Identifier: GPL-2.0-or-later

package image

import (
	"github.com/pkg/errors"

	"hlbsp/math/vec"
)

var ErrAtlasFull = errors.New("atlas is full")

// Atlas packs small images into one big image. Placement uses the classic
// skyline allocator from the lightmap block allocation.
type Atlas struct {
	allocated []int
	Image     *Image
}

func NewAtlas(width, height, channels int) *Atlas {
	return &Atlas{
		allocated: make([]int, width),
		Image:     New(width, height, channels),
	}
}

// Store copies img into the atlas and returns the top left corner.
func (a *Atlas) Store(img *Image) (x, y int, err error) {
	if img.Channels != a.Image.Channels {
		return 0, 0, errors.Errorf("image and atlas channel count mismatch %d != %d",
			img.Channels, a.Image.Channels)
	}
	x, y, ok := a.alloc(img.Width, img.Height)
	if !ok {
		return 0, 0, ErrAtlasFull
	}
	ch := img.Channels
	for row := 0; row < img.Height; row++ {
		src := row * img.Width * ch
		dst := ((y+row)*a.Image.Width + x) * ch
		copy(a.Image.Data[dst:dst+img.Width*ch], img.Data[src:src+img.Width*ch])
	}
	return x, y, nil
}

// ConvertCoord maps a coordinate relative to img (0..1) into atlas space.
func (a *Atlas) ConvertCoord(img *Image, x, y int, c vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		(float32(x) + float32(img.Width)*c[0]) / float32(a.Image.Width),
		(float32(y) + float32(img.Height)*c[1]) / float32(a.Image.Height),
	}
}

func (a *Atlas) alloc(w, h int) (int, int, bool) {
	if w > a.Image.Width || h > a.Image.Height {
		return 0, 0, false
	}
	best := a.Image.Height
	x := 0
	for i := 0; i <= a.Image.Width-w; i++ {
		best2 := 0
		j := 0
		for ; j < w; j++ {
			if a.allocated[i+j] >= best {
				break
			}
			if a.allocated[i+j] > best2 {
				best2 = a.allocated[i+j]
			}
		}
		if j == w {
			// this is a valid spot
			x = i
			best = best2
		}
	}
	if best+h > a.Image.Height {
		return 0, 0, false
	}
	for i := 0; i < w; i++ {
		a.allocated[x+i] = best + h
	}
	return x, best, true
}
