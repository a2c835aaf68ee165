// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"hlbsp/math/vec"
)

//go:generate go tool stringer -type=LumpType -trimprefix=Lump
//go:generate go tool stringer -type=Phase -trimprefix=Phase

const Version = 30

// LumpType names the 15 sections of a BSP30 file in directory order.
type LumpType int

const (
	LumpEntities LumpType = iota
	LumpPlanes
	LumpTextures
	LumpVertexes
	LumpVisibility
	LumpNodes
	LumpTexinfo
	LumpFaces
	LumpLighting
	LumpClipNodes
	LumpLeaves
	LumpMarkSurfaces
	LumpEdges
	LumpSurfaceEdges
	LumpModels
	LumpCount
)

// Phase is the load progress of a Map. A Map returned by Load is always
// PhaseReady.
type Phase int

const (
	PhaseUnopened Phase = iota
	PhaseHeaderRead
	PhaseLumpsRead
	PhaseEntitiesParsed
	PhaseTexturesLoaded
	PhaseLightmapsLoaded
	PhaseDecalsLoaded
	PhaseVisibilityLoaded
	PhasePostProcessed
	PhaseReady
)

const (
	MaxMapHulls        = 4
	MaxMapModels       = 400
	MaxMapBrushes      = 4096
	MaxMapEntities     = 1024
	MaxMapEntString    = 128 * 1024
	MaxMapPlanes       = 32767
	MaxMapNodes        = 32767
	MaxMapClipNodes    = 32767
	MaxMapLeafs        = 8192
	MaxMapVerts        = 65535
	MaxMapFaces        = 65535
	MaxMapMarkSurfaces = 65535
	MaxMapTexinfo      = 8192
	MaxMapEdges        = 256000
	MaxMapSurfEdges    = 512000
	MaxMapTextures     = 512
	MaxMapMipTex       = 0x200000
	MaxMapLighting     = 0x200000
	MaxMapVisibility   = 0x200000
	MaxMapPortals      = 65536
)

// Record sizes on disk.
const (
	lumpSize        = 8
	headerSize      = 4 + lumpSize*int(LumpCount)
	planeSize       = 20
	vertexSize      = 12
	nodeSize        = 24
	texinfoSize     = 40
	faceSize        = 20
	clipNodeSize    = 8
	leafSize        = 28
	markSurfaceSize = 2
	edgeSize        = 4
	surfaceEdgeSize = 4
	modelSize       = 64
)

var recordSizes = [LumpCount]int{
	LumpPlanes:       planeSize,
	LumpVertexes:     vertexSize,
	LumpNodes:        nodeSize,
	LumpTexinfo:      texinfoSize,
	LumpFaces:        faceSize,
	LumpClipNodes:    clipNodeSize,
	LumpLeaves:       leafSize,
	LumpMarkSurfaces: markSurfaceSize,
	LumpEdges:        edgeSize,
	LumpSurfaceEdges: surfaceEdgeSize,
	LumpModels:       modelSize,
}

// RecordSize is the on disk size of one record of the lump, 0 for lumps
// without fixed size records.
func (t LumpType) RecordSize() int {
	if t < 0 || t >= LumpCount {
		return 0
	}
	return recordSizes[t]
}

// Contents is the content type of a leaf. Clip hull walks also use it as the
// terminal value of negative child indices.
type Contents int32

const (
	ContentsEmpty       Contents = -1
	ContentsSolid       Contents = -2
	ContentsWater       Contents = -3
	ContentsSlime       Contents = -4
	ContentsLava        Contents = -5
	ContentsSky         Contents = -6
	ContentsOrigin      Contents = -7
	ContentsClip        Contents = -8
	ContentsCurrent0    Contents = -9
	ContentsCurrent90   Contents = -10
	ContentsCurrent180  Contents = -11
	ContentsCurrent270  Contents = -12
	ContentsCurrentUp   Contents = -13
	ContentsCurrentDown Contents = -14
	ContentsTranslucent Contents = -15
)

var contentsNames = map[Contents]string{
	ContentsEmpty:       "empty",
	ContentsSolid:       "solid",
	ContentsWater:       "water",
	ContentsSlime:       "slime",
	ContentsLava:        "lava",
	ContentsSky:         "sky",
	ContentsOrigin:      "origin",
	ContentsClip:        "clip",
	ContentsCurrent0:    "current_0",
	ContentsCurrent90:   "current_90",
	ContentsCurrent180:  "current_180",
	ContentsCurrent270:  "current_270",
	ContentsCurrentUp:   "current_up",
	ContentsCurrentDown: "current_down",
	ContentsTranslucent: "translucent",
}

func (c Contents) String() string {
	if n, ok := contentsNames[c]; ok {
		return n
	}
	return "unknown"
}

// PlaneType: 0-2 are axial planes in X, Y, Z. 3-5 are non axial planes
// snapped to the nearest axis.
type PlaneType int32

const (
	PlaneX PlaneType = iota
	PlaneY
	PlaneZ
	PlaneAnyX
	PlaneAnyY
	PlaneAnyZ
)

func (t PlaneType) Axial() bool {
	return t >= PlaneX && t <= PlaneZ
}

type RenderMode int

const (
	RenderModeNormal RenderMode = iota
	RenderModeColor
	RenderModeTexture
	RenderModeGlow
	RenderModeSolid
	RenderModeAdditive
)

// called lump_t in c
type Lump struct {
	Offset int32
	Length int32
}

type Header struct {
	Version int32
	Lumps   [LumpCount]Lump
}

type Plane struct {
	Normal vec.Vec3
	Dist   float32
	Type   PlaneType
}

type ChildKind uint8

const (
	ChildNode ChildKind = iota
	ChildLeaf
)

// Child is one side of a Node or ClipNode. On disk it is a single signed
// integer, non negative for nodes and the bit complement of the leaf index
// otherwise.
type Child struct {
	Kind  ChildKind
	Index int
}

func childFromRaw(raw int) Child {
	if raw >= 0 {
		return Child{Kind: ChildNode, Index: raw}
	}
	return Child{Kind: ChildLeaf, Index: ^raw}
}

// Raw returns the on disk encoding.
func (c Child) Raw() int {
	if c.Kind == ChildNode {
		return c.Index
	}
	return ^c.Index
}

// Contents interprets a clip node leaf child as its contents value.
func (c Child) Contents() Contents {
	return Contents(c.Raw())
}

type Node struct {
	Plane     uint32
	Children  [2]Child
	Lower     [3]int16
	Upper     [3]int16
	FirstFace uint16
	FaceCount uint16
}

type Leaf struct {
	Contents         Contents
	VisOffset        int32 // -1 for no visibility data
	Lower            [3]int16
	Upper            [3]int16
	FirstMarkSurface uint16
	MarkSurfaceCount uint16
	Ambient          [4]uint8
}

// the first edge of the list is never used
type Edge struct {
	V [2]uint16
}

type Face struct {
	Plane          uint16
	Side           uint16 // 1 if the face looks in the direction opposite to the plane normal
	FirstEdge      uint32 // index into SurfaceEdges
	EdgeCount      uint16
	TexInfo        uint16
	Styles         [4]uint8
	LightmapOffset int32
}

// Lit reports whether the face has lightmap data.
func (f *Face) Lit() bool {
	return f.Styles[0] != 0xFF
}

type ClipNode struct {
	Plane    int32
	Children [2]Child
}

// Model, either the world or a brush entity inside it.
type Model struct {
	Lower     vec.Vec3
	Upper     vec.Vec3
	Origin    vec.Vec3
	HeadNodes [MaxMapHulls]int32
	VisLeaves int32 // not including the solid leaf 0
	FirstFace int32
	FaceCount int32
}

type TextureInfo struct {
	S      vec.Vec3 // horizontal in texture space
	SShift float32
	T      vec.Vec3 // vertical in texture space
	TShift float32
	MipTex uint32
	Flags  uint32
}

// Decal is a textured quad on a face, placed by an infodecal entity.
type Decal struct {
	Corners [4]vec.Vec3
	Normal  vec.Vec3
	Texture int // index into Map.DecalTextures
}
