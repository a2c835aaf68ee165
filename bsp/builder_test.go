// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"hlbsp/math/vec"
	"hlbsp/palette"
	"hlbsp/texture"
)

// mapBuilder assembles a BSP30 file from records. The library never writes
// maps, encoding only exists for tests.
type mapBuilder struct {
	version    int32
	entities   string
	planes     []Plane
	textures   []byte
	vertices   []vec.Vec3
	visibility []byte
	nodes      []Node
	texinfos   []TextureInfo
	faces      []Face
	lighting   []byte
	clipNodes  []ClipNode
	leaves     []Leaf
	marks      []uint16
	edges      []Edge
	surfEdges  []int32
	models     []Model
	// raw overrides the encoded contents of a lump
	raw map[LumpType][]byte
}

func le(w *bytes.Buffer, v any) {
	if err := binary.Write(w, binary.LittleEndian, v); err != nil {
		panic(err)
	}
}

func encodePlane(w *bytes.Buffer, p Plane) {
	le(w, planeRecord{Normal: p.Normal, Dist: p.Dist, Type: int32(p.Type)})
}

func encodeNode(w *bytes.Buffer, n Node) {
	le(w, nodeRecord{
		Plane:     n.Plane,
		Children:  [2]int16{int16(n.Children[0].Raw()), int16(n.Children[1].Raw())},
		Lower:     n.Lower,
		Upper:     n.Upper,
		FirstFace: n.FirstFace,
		FaceCount: n.FaceCount,
	})
}

func encodeLeaf(w *bytes.Buffer, l Leaf) {
	le(w, leafRecord{
		Contents:         int32(l.Contents),
		VisOffset:        l.VisOffset,
		Lower:            l.Lower,
		Upper:            l.Upper,
		FirstMarkSurface: l.FirstMarkSurface,
		MarkSurfaceCount: l.MarkSurfaceCount,
		Ambient:          l.Ambient,
	})
}

func encodeFace(w *bytes.Buffer, f Face) {
	le(w, faceRecord(f))
}

func encodeClipNode(w *bytes.Buffer, c ClipNode) {
	le(w, clipNodeRecord{
		Plane:    c.Plane,
		Children: [2]int16{int16(c.Children[0].Raw()), int16(c.Children[1].Raw())},
	})
}

func encodeModel(w *bytes.Buffer, m Model) {
	le(w, modelRecord{
		Lower:     m.Lower,
		Upper:     m.Upper,
		Origin:    m.Origin,
		HeadNodes: m.HeadNodes,
		VisLeaves: m.VisLeaves,
		FirstFace: m.FirstFace,
		FaceCount: m.FaceCount,
	})
}

func encodeTextureInfo(w *bytes.Buffer, t TextureInfo) {
	le(w, texinfoRecord{S: t.S, SShift: t.SShift, T: t.T, TShift: t.TShift, MipTex: t.MipTex, Flags: t.Flags})
}

func encodeMipTex(w *bytes.Buffer, m texture.MipTex) {
	var name [texture.NameSize]byte
	copy(name[:], m.Name)
	le(w, name)
	le(w, m.Width)
	le(w, m.Height)
	le(w, m.Offsets)
}

// externalTextures builds a texture lump of MipTex headers without pixels.
func externalTextures(mips ...texture.MipTex) []byte {
	var b bytes.Buffer
	le(&b, uint32(len(mips)))
	for i := range mips {
		le(&b, int32(4+4*len(mips)+i*texture.MipTexSize))
	}
	for _, m := range mips {
		encodeMipTex(&b, m)
	}
	return b.Bytes()
}

func (b *mapBuilder) lump(t LumpType) []byte {
	if r, ok := b.raw[t]; ok {
		return r
	}
	var w bytes.Buffer
	switch t {
	case LumpEntities:
		w.WriteString(b.entities)
	case LumpPlanes:
		for _, p := range b.planes {
			encodePlane(&w, p)
		}
	case LumpTextures:
		w.Write(b.textures)
	case LumpVertexes:
		for _, v := range b.vertices {
			le(&w, v)
		}
	case LumpVisibility:
		w.Write(b.visibility)
	case LumpNodes:
		for _, n := range b.nodes {
			encodeNode(&w, n)
		}
	case LumpTexinfo:
		for _, ti := range b.texinfos {
			encodeTextureInfo(&w, ti)
		}
	case LumpFaces:
		for _, f := range b.faces {
			encodeFace(&w, f)
		}
	case LumpLighting:
		w.Write(b.lighting)
	case LumpClipNodes:
		for _, c := range b.clipNodes {
			encodeClipNode(&w, c)
		}
	case LumpLeaves:
		for _, l := range b.leaves {
			encodeLeaf(&w, l)
		}
	case LumpMarkSurfaces:
		for _, m := range b.marks {
			le(&w, m)
		}
	case LumpEdges:
		for _, e := range b.edges {
			le(&w, e)
		}
	case LumpSurfaceEdges:
		for _, s := range b.surfEdges {
			le(&w, s)
		}
	case LumpModels:
		for _, m := range b.models {
			encodeModel(&w, m)
		}
	}
	return w.Bytes()
}

func (b *mapBuilder) bytes() []byte {
	h := Header{Version: b.version}
	if h.Version == 0 {
		h.Version = Version
	}
	var body bytes.Buffer
	for t := LumpType(0); t < LumpCount; t++ {
		d := b.lump(t)
		h.Lumps[t] = Lump{Offset: int32(headerSize + body.Len()), Length: int32(len(d))}
		body.Write(d)
		// keep lumps 4 byte aligned like the compilers do
		for body.Len()%4 != 0 {
			body.WriteByte(0)
		}
	}
	var out bytes.Buffer
	le(&out, h)
	out.Write(body.Bytes())
	return out.Bytes()
}

func (b *mapBuilder) write(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "test.bsp")
	if err := os.WriteFile(p, b.bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func box(l, u int16) ([3]int16, [3]int16) {
	return [3]int16{l, l, l}, [3]int16{u, u, u}
}

// twoLeafMap is one node on the plane z=0 with an empty leaf above and
// below. Leaf 0 is the usual solid leaf.
func twoLeafMap() *mapBuilder {
	l0, u0 := box(0, 0)
	return &mapBuilder{
		entities: `{
"classname" "worldspawn"
}
{
"classname" "info_player_start"
"origin" "0 0 32"
}
`,
		planes: []Plane{{Normal: vec.Vec3{0, 0, 1}, Dist: 0, Type: PlaneZ}},
		nodes: []Node{{
			Plane:    0,
			Children: [2]Child{{Kind: ChildLeaf, Index: 1}, {Kind: ChildLeaf, Index: 2}},
			Lower:    [3]int16{-64, -64, -64},
			Upper:    [3]int16{64, 64, 64},
		}},
		leaves: []Leaf{
			{Contents: ContentsSolid, VisOffset: -1, Lower: l0, Upper: u0},
			{Contents: ContentsEmpty, VisOffset: -1, Lower: [3]int16{-64, -64, 0}, Upper: [3]int16{64, 64, 64}},
			{Contents: ContentsEmpty, VisOffset: -1, Lower: [3]int16{-64, -64, -64}, Upper: [3]int16{64, 64, 0}},
		},
		models: []Model{{Lower: vec.Vec3{-64, -64, -64}, Upper: vec.Vec3{64, 64, 64}}},
	}
}

// floorMap has a single lit triangle on z=0 in leaf 1 with an external
// texture "WALL" and a clip hull splitting at z=0.
func floorMap() *mapBuilder {
	l0, u0 := box(0, 0)
	l1, u1 := box(-64, 64)
	return &mapBuilder{
		entities: `{ "classname" "worldspawn" }`,
		planes:   []Plane{{Normal: vec.Vec3{0, 0, 1}, Dist: 0, Type: PlaneZ}},
		textures: externalTextures(texture.MipTex{Name: "WALL", Width: 16, Height: 16}),
		vertices: []vec.Vec3{{0, 0, 0}, {16, 0, 0}, {0, 16, 0}},
		nodes: []Node{{
			Plane:     0,
			Children:  [2]Child{{Kind: ChildLeaf, Index: 1}, {Kind: ChildLeaf, Index: 0}},
			Lower:     l1,
			Upper:     u1,
			FirstFace: 0,
			FaceCount: 1,
		}},
		texinfos: []TextureInfo{{S: vec.Vec3{1, 0, 0}, T: vec.Vec3{0, 1, 0}}},
		faces: []Face{{
			Plane:          0,
			FirstEdge:      0,
			EdgeCount:      3,
			Styles:         [4]uint8{0, 255, 255, 255},
			LightmapOffset: -2,
		}},
		clipNodes: []ClipNode{{
			Plane:    0,
			Children: [2]Child{childFromRaw(int(ContentsEmpty)), childFromRaw(int(ContentsSolid))},
		}},
		leaves: []Leaf{
			{Contents: ContentsSolid, VisOffset: -1, Lower: l0, Upper: u0},
			{Contents: ContentsEmpty, VisOffset: -1, Lower: l1, Upper: u1, MarkSurfaceCount: 1},
		},
		marks:     []uint16{0},
		edges:     []Edge{{}, {V: [2]uint16{0, 1}}, {V: [2]uint16{1, 2}}, {V: [2]uint16{2, 0}}},
		surfEdges: []int32{1, 2, 3},
		models:    []Model{{Lower: vec.Vec3{-64, -64, -64}, Upper: vec.Vec3{64, 64, 64}, FaceCount: 1}},
	}
}

// mipTexBytes returns an embedded style texture of w x h texels, all using
// palette index 0 which is set to rgb.
func mipTexBytes(name string, w, h int, rgb [3]byte) []byte {
	var tex bytes.Buffer
	mt := texture.MipTex{Name: name, Width: uint32(w), Height: uint32(h)}
	off := uint32(texture.MipTexSize)
	for l := 0; l < texture.MipLevels; l++ {
		mt.Offsets[l] = off
		off += uint32((w >> l) * (h >> l))
	}
	encodeMipTex(&tex, mt)
	for l := 0; l < texture.MipLevels; l++ {
		tex.Write(make([]byte, (w>>l)*(h>>l)))
	}
	le(&tex, uint16(256))
	pal := make([]byte, palette.Size)
	copy(pal, rgb[:])
	tex.Write(pal)
	return tex.Bytes()
}

// embeddedTextures builds a texture lump holding one texture with pixels.
func embeddedTextures(raw []byte) []byte {
	var b bytes.Buffer
	le(&b, uint32(1))
	le(&b, int32(8))
	b.Write(raw)
	return b.Bytes()
}

// writeWad writes a WAD3 holding one 8x16 texture name.
func writeWad(t *testing.T, dir, file, name string) {
	t.Helper()
	writeWadEntry(t, dir, file, name, mipTexBytes(name, 8, 16, [3]byte{}))
}

// writeWadEntry writes a WAD3 holding a single entry with the given data.
func writeWadEntry(t *testing.T, dir, file, name string, tex []byte) {
	t.Helper()
	var b bytes.Buffer
	b.WriteString("WAD3")
	le(&b, int32(1))
	le(&b, int32(12+len(tex)))
	b.Write(tex)
	le(&b, int32(12))
	le(&b, int32(len(tex)))
	le(&b, uint32(len(tex)))
	b.WriteByte(0x43)
	b.WriteByte(0)
	le(&b, int16(0))
	var n [16]byte
	copy(n[:], name)
	b.Write(n[:])
	if err := os.WriteFile(filepath.Join(dir, file), b.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}
