// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"github.com/pkg/errors"

	"hlbsp/math/vec"
	"hlbsp/qio"
	"hlbsp/texture"
)

// Wire layouts, read with a single binary.Read each.

type planeRecord struct {
	Normal [3]float32
	Dist   float32
	Type   int32
}

type nodeRecord struct {
	Plane     uint32
	Children  [2]int16
	Lower     [3]int16
	Upper     [3]int16
	FirstFace uint16
	FaceCount uint16
}

type leafRecord struct {
	Contents         int32
	VisOffset        int32
	Lower            [3]int16
	Upper            [3]int16
	FirstMarkSurface uint16
	MarkSurfaceCount uint16
	Ambient          [4]uint8
}

type faceRecord struct {
	Plane          uint16
	Side           uint16
	FirstEdge      uint32
	EdgeCount      uint16
	TexInfo        uint16
	Styles         [4]uint8
	LightmapOffset int32
}

type clipNodeRecord struct {
	Plane    int32
	Children [2]int16
}

type modelRecord struct {
	Lower     [3]float32
	Upper     [3]float32
	Origin    [3]float32
	HeadNodes [MaxMapHulls]int32
	VisLeaves int32
	FirstFace int32
	FaceCount int32
}

type texinfoRecord struct {
	S      [3]float32
	SShift float32
	T      [3]float32
	TShift float32
	MipTex uint32
	Flags  uint32
}

func DecodeHeader(r *qio.Reader) (Header, error) {
	var h Header
	err := r.Read(&h)
	return h, err
}

func DecodeLump(r *qio.Reader) (Lump, error) {
	var l Lump
	err := r.Read(&l)
	return l, err
}

func DecodePlane(r *qio.Reader) (Plane, error) {
	var p planeRecord
	if err := r.Read(&p); err != nil {
		return Plane{}, err
	}
	return Plane{Normal: p.Normal, Dist: p.Dist, Type: PlaneType(p.Type)}, nil
}

func DecodeVertex(r *qio.Reader) (vec.Vec3, error) {
	var v vec.Vec3
	err := r.Read(&v)
	return v, err
}

func DecodeNode(r *qio.Reader) (Node, error) {
	var n nodeRecord
	if err := r.Read(&n); err != nil {
		return Node{}, err
	}
	return Node{
		Plane:     n.Plane,
		Children:  [2]Child{childFromRaw(int(n.Children[0])), childFromRaw(int(n.Children[1]))},
		Lower:     n.Lower,
		Upper:     n.Upper,
		FirstFace: n.FirstFace,
		FaceCount: n.FaceCount,
	}, nil
}

func DecodeLeaf(r *qio.Reader) (Leaf, error) {
	var l leafRecord
	if err := r.Read(&l); err != nil {
		return Leaf{}, err
	}
	return Leaf{
		Contents:         Contents(l.Contents),
		VisOffset:        l.VisOffset,
		Lower:            l.Lower,
		Upper:            l.Upper,
		FirstMarkSurface: l.FirstMarkSurface,
		MarkSurfaceCount: l.MarkSurfaceCount,
		Ambient:          l.Ambient,
	}, nil
}

func DecodeMarkSurface(r *qio.Reader) (uint16, error) {
	return r.ReadUint16()
}

func DecodeEdge(r *qio.Reader) (Edge, error) {
	var e Edge
	err := r.Read(&e)
	return e, err
}

func DecodeSurfaceEdge(r *qio.Reader) (int32, error) {
	return r.ReadInt32()
}

func DecodeFace(r *qio.Reader) (Face, error) {
	var f faceRecord
	if err := r.Read(&f); err != nil {
		return Face{}, err
	}
	return Face(f), nil
}

func DecodeClipNode(r *qio.Reader) (ClipNode, error) {
	var c clipNodeRecord
	if err := r.Read(&c); err != nil {
		return ClipNode{}, err
	}
	return ClipNode{
		Plane:    c.Plane,
		Children: [2]Child{childFromRaw(int(c.Children[0])), childFromRaw(int(c.Children[1]))},
	}, nil
}

func DecodeModel(r *qio.Reader) (Model, error) {
	var m modelRecord
	if err := r.Read(&m); err != nil {
		return Model{}, err
	}
	return Model{
		Lower:     m.Lower,
		Upper:     m.Upper,
		Origin:    m.Origin,
		HeadNodes: m.HeadNodes,
		VisLeaves: m.VisLeaves,
		FirstFace: m.FirstFace,
		FaceCount: m.FaceCount,
	}, nil
}

func DecodeTextureInfo(r *qio.Reader) (TextureInfo, error) {
	var t texinfoRecord
	if err := r.Read(&t); err != nil {
		return TextureInfo{}, err
	}
	return TextureInfo{
		S:      t.S,
		SShift: t.SShift,
		T:      t.T,
		TShift: t.TShift,
		MipTex: t.MipTex,
		Flags:  t.Flags,
	}, nil
}

// readLump decodes all records of a lump. Either every record decodes or
// the lump fails as a whole.
func readLump[T any](r *qio.Reader, h *Header, t LumpType, size int, decode func(*qio.Reader) (T, error)) ([]T, error) {
	l := h.Lumps[t]
	if int(l.Length)%size != 0 {
		return nil, formatErrorf(t.String(), int64(l.Offset),
			"lump length %d is not a multiple of the record size %d", l.Length, size)
	}
	if err := r.Seek(int64(l.Offset)); err != nil {
		return nil, &FormatError{Lump: t.String(), Offset: int64(l.Offset), Err: err}
	}
	out := make([]T, int(l.Length)/size)
	for i := range out {
		at := r.Offset()
		v, err := decode(r)
		if err != nil {
			return nil, &FormatError{Lump: t.String(), Offset: at,
				Err: errors.Wrapf(err, "record %d", i)}
		}
		out[i] = v
	}
	return out, nil
}

// readRaw returns the bytes of a lump without interpretation.
func readRaw(r *qio.Reader, h *Header, t LumpType) ([]byte, error) {
	l := h.Lumps[t]
	if l.Length == 0 {
		return nil, nil
	}
	if err := r.Seek(int64(l.Offset)); err != nil {
		return nil, &FormatError{Lump: t.String(), Offset: int64(l.Offset), Err: err}
	}
	b, err := r.ReadBytes(int(l.Length))
	if err != nil {
		return nil, &FormatError{Lump: t.String(), Offset: int64(l.Offset), Err: err}
	}
	return b, nil
}

// readMipTexs decodes the texture lump directory and the MipTex headers.
// Missing slots have a negative offset and yield a zero MipTex.
func readMipTexs(r *qio.Reader, h *Header) (mips []texture.MipTex, offsets []int32, err error) {
	l := h.Lumps[LumpTextures]
	if l.Length == 0 {
		return nil, nil, nil
	}
	name := LumpTextures.String()
	if err := r.Seek(int64(l.Offset)); err != nil {
		return nil, nil, &FormatError{Lump: name, Offset: int64(l.Offset), Err: err}
	}
	count, err := r.ReadUint32()
	if err != nil {
		return nil, nil, &FormatError{Lump: name, Offset: int64(l.Offset), Err: err}
	}
	if int64(count)*4+4 > int64(l.Length) {
		return nil, nil, formatErrorf(name, int64(l.Offset),
			"%d textures do not fit into %d bytes", count, l.Length)
	}
	offsets = make([]int32, count)
	for i := range offsets {
		if offsets[i], err = r.ReadInt32(); err != nil {
			return nil, nil, &FormatError{Lump: name, Offset: r.Offset(), Err: err}
		}
	}
	mips = make([]texture.MipTex, count)
	for i, o := range offsets {
		if o < 0 {
			continue
		}
		if int64(o)+texture.MipTexSize > int64(l.Length) {
			return nil, nil, formatErrorf(name, int64(l.Offset)+int64(o),
				"miptex %d exceeds the lump", i)
		}
		if err := r.Seek(int64(l.Offset) + int64(o)); err != nil {
			return nil, nil, &FormatError{Lump: name, Offset: int64(l.Offset) + int64(o), Err: err}
		}
		if mips[i], err = texture.DecodeMipTex(r); err != nil {
			return nil, nil, &FormatError{Lump: name, Offset: int64(l.Offset) + int64(o),
				Err: errors.Wrapf(err, "miptex %d", i)}
		}
	}
	return mips, offsets, nil
}
