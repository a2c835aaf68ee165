// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"hlbsp/math/vec"
)

// FaceVertex returns vertex i of a face polygon. A positive surface edge
// starts at vertex 0 of its edge, anything else at vertex 1. That includes
// surface edge 0.
func (m *Map) FaceVertex(face, i int) vec.Vec3 {
	f := &m.Faces[face]
	se := m.SurfaceEdges[int(f.FirstEdge)+i]
	if se > 0 {
		return m.Vertices[m.Edges[se].V[0]]
	}
	return m.Vertices[m.Edges[-se].V[1]]
}

func (m *Map) FaceVertices(face int) []vec.Vec3 {
	n := int(m.Faces[face].EdgeCount)
	vs := make([]vec.Vec3, n)
	for i := range vs {
		vs[i] = m.FaceVertex(face, i)
	}
	return vs
}

// FaceNormal is the normal of the face plane, flipped for back side faces.
func (m *Map) FaceNormal(face int) vec.Vec3 {
	f := &m.Faces[face]
	n := m.Planes[f.Plane].Normal
	if f.Side != 0 {
		return n.Neg()
	}
	return n
}

// ModelFaces lists the faces of a brush model.
func (m *Map) ModelFaces(model int) []int {
	md := &m.Models[model]
	fs := make([]int, md.FaceCount)
	for i := range fs {
		fs[i] = int(md.FirstFace) + i
	}
	return fs
}

// textureUV maps a world position into unscaled texture space.
func textureUV(ti *TextureInfo, v vec.Vec3) (float32, float32) {
	return vec.Dot(v, ti.S) + ti.SShift, vec.Dot(v, ti.T) + ti.TShift
}
