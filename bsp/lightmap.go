// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"github.com/chewxy/math32"

	"hlbsp/image"
	"hlbsp/math"
	"hlbsp/math/vec"
)

// LuxelSize is the edge length of a lightmap texel in texture units.
const LuxelSize = 16

// MaxSurfaceExtent bounds the texture space size of a lit face.
const MaxSurfaceExtent = 512

// TexSpecial marks texinfos of sky and liquid faces, they carry no lightmap.
const TexSpecial = 1

// lightInfo describes the lightmap of a face in texture space, as needed to
// sample it at arbitrary points.
type lightInfo struct {
	valid       bool
	textureMins [2]int // texture space origin, multiple of LuxelSize
	extents     [2]int // texture space size, multiple of LuxelSize
}

func (li *lightInfo) size() (w, h int) {
	return li.extents[0]/LuxelSize + 1, li.extents[1]/LuxelSize + 1
}

// lightmapEligible: faces with style 0 unused or an offset below -1 have no
// lightmap. Offset -1 gets coordinates but an empty image.
func lightmapEligible(f *Face) bool {
	return f.Lit() && f.LightmapOffset >= -1
}

func (l *loader) loadLightmaps() error {
	m := l.m
	if len(m.Lighting) == 0 {
		l.log.Info("Map has no lighting")
		return nil
	}
	m.Lightmaps = make([]*image.Image, len(m.Faces))
	m.LightmapCoords = make([][]vec.Vec2, len(m.Faces))
	m.lightInfo = make([]lightInfo, len(m.Faces))
	for i := range m.Faces {
		f := &m.Faces[i]
		m.Lightmaps[i] = image.New(0, 0, 3)
		if !lightmapEligible(f) || f.EdgeCount == 0 {
			continue
		}
		li, coords := m.lightmapLayout(i)
		if !li.valid {
			if m.TextureInfos[f.TexInfo].Flags&TexSpecial != 0 {
				continue
			}
			return formatErrorf(LumpTexinfo.String(), -1,
				"face %d: bad surface extents", i)
		}
		m.lightInfo[i] = li
		m.LightmapCoords[i] = coords
		if f.LightmapOffset < 0 {
			continue
		}
		w, h := li.size()
		n := w * h * 3
		if int64(f.LightmapOffset)+int64(n) > int64(len(m.Lighting)) {
			return formatErrorf(LumpLighting.String(),
				int64(m.Header.Lumps[LumpLighting].Offset)+int64(f.LightmapOffset),
				"face %d: lightmap of %dx%d exceeds the lump", i, w, h)
		}
		img := image.New(w, h, 3)
		copy(img.Data, m.Lighting[f.LightmapOffset:int(f.LightmapOffset)+n])
		m.Lightmaps[i] = img
		m.Stats.Lightmaps++
		m.Stats.LightmapBytes += n
	}
	return nil
}

// lightmapLayout computes the luxel grid of a face and the lightmap
// coordinate (0..1) of every vertex. The grid covers the texture space
// bounds snapped outward to LuxelSize, vertices are placed relative to the
// grid center. The result is not valid if an extent is outside of
// 0..MaxSurfaceExtent.
func (m *Map) lightmapLayout(face int) (lightInfo, []vec.Vec2) {
	f := &m.Faces[face]
	ti := &m.TextureInfos[f.TexInfo]
	n := int(f.EdgeCount)
	uvs := make([][2]float32, n)
	mins := [2]float32{math32.MaxFloat32, math32.MaxFloat32}
	maxs := [2]float32{-math32.MaxFloat32, -math32.MaxFloat32}
	for i := range uvs {
		u, v := textureUV(ti, m.FaceVertex(face, i))
		uvs[i] = [2]float32{u, v}
		for j := 0; j < 2; j++ {
			mins[j] = math32.Min(mins[j], uvs[i][j])
			maxs[j] = math32.Max(maxs[j], uvs[i][j])
		}
	}
	li := lightInfo{valid: true}
	var size, midPoly, midTex [2]float32
	for j := 0; j < 2; j++ {
		texMin := math.FloorDiv(mins[j], LuxelSize)
		texMax := math.CeilDiv(maxs[j], LuxelSize)
		span := texMax - texMin
		if !(span >= 0 && span <= MaxSurfaceExtent/LuxelSize) || math32.Abs(texMin) > 1<<24 {
			return lightInfo{}, nil
		}
		li.textureMins[j] = int(texMin) * LuxelSize
		li.extents[j] = int(texMax-texMin) * LuxelSize
		size[j] = float32(int(texMax-texMin) + 1)
		midPoly[j] = (mins[j] + maxs[j]) / 2
		midTex[j] = size[j] / 2
	}
	coords := make([]vec.Vec2, n)
	for i, uv := range uvs {
		for j := 0; j < 2; j++ {
			lm := midTex[j] + (uv[j]-midPoly[j])/LuxelSize
			coords[i][j] = lm / size[j]
		}
	}
	return li, coords
}

// LightmapAtlas packs all non empty lightmaps into one RGB image and returns
// the atlas coordinates of every face vertex, nil for faces without a
// lightmap.
func (m *Map) LightmapAtlas(width, height int) (*image.Image, [][]vec.Vec2, error) {
	a := image.NewAtlas(width, height, 3)
	coords := make([][]vec.Vec2, len(m.Lightmaps))
	for i, img := range m.Lightmaps {
		if img.Empty() {
			continue
		}
		x, y, err := a.Store(img)
		if err != nil {
			return nil, nil, err
		}
		cs := make([]vec.Vec2, len(m.LightmapCoords[i]))
		for j, c := range m.LightmapCoords[i] {
			cs[j] = a.ConvertCoord(img, x, y, c)
		}
		coords[i] = cs
	}
	return a.Image, coords, nil
}
