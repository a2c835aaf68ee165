// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"github.com/google/uuid"

	"hlbsp/image"
	"hlbsp/math/vec"
	"hlbsp/texture"
)

// Map is a loaded BSP30 level. After Load returns it is only read, so
// queries may run concurrently.
type Map struct {
	// ID is unique per load, for caches of derived GPU resources.
	ID     uuid.UUID
	Name   string
	Phase  Phase
	Header Header

	Entities        []*Entity
	BrushEntities   []*Entity
	SpecialEntities []*Entity

	Planes       []Plane
	Vertices     []vec.Vec3
	Nodes        []Node
	TextureInfos []TextureInfo
	Faces        []Face
	ClipNodes    []ClipNode
	Leaves       []Leaf
	MarkSurfaces []uint16
	Edges        []Edge
	SurfaceEdges []int32
	Models       []Model

	MipTexs    []texture.MipTex
	Visibility []byte
	Lighting   []byte

	// Textures holds one decoded texture per MipTex, nil where loading
	// failed.
	Textures []*texture.Mipmap
	// FaceTexCoords holds the texture space coordinate of every face vertex,
	// in FaceVertices order.
	FaceTexCoords [][]vec.Vec2

	// Lightmaps and LightmapCoords are indexed by face. Faces without
	// lightmap data have an empty image. Both are nil if the map has no
	// lighting.
	Lightmaps      []*image.Image
	LightmapCoords [][]vec.Vec2
	lightInfo      []lightInfo

	Decals        []Decal
	DecalTextures []*texture.Mipmap

	// VisLeafCount is the number of leaves counted as visible from node 0.
	VisLeafCount int
	// VisLists is indexed by leaf, nil entries have no PVS. The whole slice
	// is nil if the map carries no visibility data.
	VisLists []VisSet

	Hulls [MaxMapHulls]Hull

	Stats Stats
}

// Stats counts the recoverable misses of a load.
type Stats struct {
	TexturesLoaded    int
	TexturesFailed    int
	MalformedEntities int
	Lightmaps         int
	LightmapBytes     int
	DecalsPlaced      int
	DecalsFailed      int
	VisLists          int
}

// FindEntity returns the first entity of the given classname.
func (m *Map) FindEntity(classname string) *Entity {
	for _, e := range m.Entities {
		if n, ok := e.Name(); ok && n == classname {
			return e
		}
	}
	return nil
}

func (m *Map) newID() {
	m.ID = uuid.Must(uuid.NewV7())
}
