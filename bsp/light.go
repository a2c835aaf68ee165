// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"hlbsp/math/vec"
)

const MaxLightStyles = 64

// LightStyles contain MaxLightStyles values to scale light inside a map.
// 256 is unscaled.
type LightStyles [MaxLightStyles]int

// NormalLightStyles leaves every style unscaled.
func NormalLightStyles() *LightStyles {
	var s LightStyles
	for i := range s {
		s[i] = 256
	}
	return &s
}

type color struct {
	R, G, B int
}

// lerp blends c towards o by frac sixteenths.
func (c color) lerp(o color, frac int) color {
	return color{
		R: c.R + ((o.R-c.R)*frac)>>4,
		G: c.G + ((o.G-c.G)*frac)>>4,
		B: c.B + ((o.B-c.B)*frac)>>4,
	}
}

func nextChild(f float32) int {
	if f < 0 {
		return 1
	}
	return 0
}

func (m *Map) recursiveLight(s *LightStyles, c Child, start, end vec.Vec3, col *vec.Vec3, depth int) bool {
	front := float32(1)
	back := float32(1)
	var n *Node
	for (back < 0) == (front < 0) {
		if c.Kind == ChildLeaf || depth > len(m.Nodes) {
			return false
		}
		n = &m.Nodes[c.Index]
		plane := &m.Planes[n.Plane]
		if plane.Type.Axial() {
			front = start[plane.Type] - plane.Dist
			back = end[plane.Type] - plane.Dist
		} else {
			front = vec.Dot(start, plane.Normal) - plane.Dist
			back = vec.Dot(end, plane.Normal) - plane.Dist
		}
		c = n.Children[nextChild(front)]
		depth++
	}
	frac := front / (front - back)
	mid := vec.Lerp(start, end, frac)

	// front side
	if m.recursiveLight(s, n.Children[nextChild(front)], start, mid, col, depth+1) {
		return true
	}

	for face := int(n.FirstFace); face < int(n.FirstFace)+int(n.FaceCount); face++ {
		li := &m.lightInfo[face]
		if !li.valid {
			continue
		}
		f := &m.Faces[face]
		ti := &m.TextureInfos[f.TexInfo]
		ds := int(vec.DoublePrecDot(mid, ti.S) + float64(ti.SShift))
		dt := int(vec.DoublePrecDot(mid, ti.T) + float64(ti.TShift))
		if ds < li.textureMins[0] || dt < li.textureMins[1] {
			continue
		}
		ds -= li.textureMins[0]
		dt -= li.textureMins[1]
		if ds > li.extents[0] || dt > li.extents[1] {
			continue
		}
		if f.LightmapOffset >= 0 {
			// c00 and c01 are neighbours along s, c10 and c11 one row further along t.
			var c00, c01, c10, c11 color
			dsfrac := ds & 15
			dtfrac := dt & 15
			w, h := li.size()
			line := w * 3
			lightMap := m.Lighting[int(f.LightmapOffset):]
			lightMap = lightMap[(dt>>4)*line+(ds>>4)*3:]
			for maps := 0; maps < 4 && f.Styles[maps] != 255; maps++ {
				if len(lightMap) < line+6 {
					break
				}
				scale := float32(s[f.Styles[maps]%MaxLightStyles]) / 256.0
				c00.R += int(float32(lightMap[0]) * scale)
				c00.G += int(float32(lightMap[1]) * scale)
				c00.B += int(float32(lightMap[2]) * scale)
				c01.R += int(float32(lightMap[3]) * scale)
				c01.G += int(float32(lightMap[4]) * scale)
				c01.B += int(float32(lightMap[5]) * scale)
				c10.R += int(float32(lightMap[line+0]) * scale)
				c10.G += int(float32(lightMap[line+1]) * scale)
				c10.B += int(float32(lightMap[line+2]) * scale)
				c11.R += int(float32(lightMap[line+3]) * scale)
				c11.G += int(float32(lightMap[line+4]) * scale)
				c11.B += int(float32(lightMap[line+5]) * scale)
				if len(lightMap) < w*h*3 {
					break
				}
				lightMap = lightMap[w*h*3:]
			}
			top := c00.lerp(c01, dsfrac)
			bottom := c10.lerp(c11, dsfrac)
			l := top.lerp(bottom, dtfrac)
			(*col)[0] += float32(l.R)
			(*col)[1] += float32(l.G)
			(*col)[2] += float32(l.B)
		}
		return true
	}
	// back side
	return m.recursiveLight(s, n.Children[nextChild(-front)], mid, end, col, depth+1)
}

// LightAt returns the light color of the first lit surface below p, scaled
// by the light style values in s. Maps without lighting are fully bright.
func (m *Map) LightAt(p vec.Vec3, s *LightStyles) vec.Vec3 {
	if len(m.Lighting) == 0 || len(m.Nodes) == 0 {
		return vec.Vec3{255, 255, 255}
	}

	end := p
	end[2] -= 8192

	col := vec.Vec3{0, 0, 0}
	m.recursiveLight(s, Child{Kind: ChildNode}, p, end, &col, 0)
	return col
}
