// SPDX-License-Identifier: GPL-2.0-or-later

package image

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// Image is a tightly packed 8 bit per channel image, either RGB or RGBA.
type Image struct {
	Channels int
	Width    int
	Height   int
	Data     []byte
}

func New(width, height, channels int) *Image {
	return &Image{
		Channels: channels,
		Width:    width,
		Height:   height,
		Data:     make([]byte, width*height*channels),
	}
}

// Empty reports whether the image has no texels. Placeholder images for
// unlit faces are empty.
func (i *Image) Empty() bool {
	return i == nil || i.Width == 0 || i.Height == 0
}

// NRGBA converts the image into a standard library image.
func (i *Image) NRGBA() (*image.NRGBA, error) {
	if len(i.Data) < i.Width*i.Height*i.Channels {
		return nil, fmt.Errorf("Tried to convert an image but there is not enough data")
	}
	img := image.NewNRGBA(image.Rect(0, 0, i.Width, i.Height))
	switch i.Channels {
	case 4:
		copy(img.Pix, i.Data)
	case 3:
		for p := 0; p < i.Width*i.Height; p++ {
			img.Pix[p*4+0] = i.Data[p*3+0]
			img.Pix[p*4+1] = i.Data[p*3+1]
			img.Pix[p*4+2] = i.Data[p*3+2]
			img.Pix[p*4+3] = 255
		}
	default:
		return nil, fmt.Errorf("Unsupported channel count %d", i.Channels)
	}
	return img, nil
}

func (i *Image) WritePNG(w io.Writer) error {
	img, err := i.NRGBA()
	if err != nil {
		return err
	}
	return errors.Wrap(png.Encode(w, img), "png")
}

func (i *Image) WriteBMP(w io.Writer) error {
	img, err := i.NRGBA()
	if err != nil {
		return err
	}
	return errors.Wrap(bmp.Encode(w, img), "bmp")
}

type tgaHeader struct {
	IDLength       uint8
	ColormapType   uint8
	ImageType      uint8
	ColormapIndex  uint16
	ColormapLength uint16
	ColormapSize   uint8
	XOrigin        uint16
	YOrigin        uint16
	Width          uint16
	Height         uint16
	PixelSize      uint8
	Attributes     uint8
}

// LoadTGA reads an uncompressed 24 or 32 bit TGA into an RGBA image.
// TGA stores BGR(A), the result is RGBA with the first row at the top.
func LoadTGA(r io.Reader) (*Image, error) {
	var header tgaHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("Invalid tga header: %v", err)
	}
	if header.ImageType != 2 {
		return nil, fmt.Errorf("TGA is not a type 2 but %d", header.ImageType)
	}
	if header.ColormapType != 0 || (header.PixelSize != 32 && header.PixelSize != 24) {
		return nil, fmt.Errorf("TGA is not 24bit or 32bit")
	}
	if header.IDLength != 0 {
		// skip Image ID
		if _, err := io.CopyN(io.Discard, r, int64(header.IDLength)); err != nil {
			return nil, fmt.Errorf("Failed to skip image id: %v", err)
		}
	}

	width, height := int(header.Width), int(header.Height)
	img := New(width, height, 4)
	bpp := int(header.PixelSize) / 8
	row := make([]uint8, width*bpp)
	for y := 0; y < height; y++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return nil, fmt.Errorf("Not enough pixels: %v", err)
		}
		// origin bit 5 set means the rows are stored top down
		dy := height - 1 - y
		if header.Attributes&0x20 != 0 {
			dy = y
		}
		for x := 0; x < width; x++ {
			p := (dy*width + x) * 4
			s := x * bpp
			img.Data[p+0] = row[s+2]
			img.Data[p+1] = row[s+1]
			img.Data[p+2] = row[s+0]
			if bpp == 4 {
				img.Data[p+3] = row[s+3]
			} else {
				img.Data[p+3] = 255
			}
		}
	}
	return img, nil
}
