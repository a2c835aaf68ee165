// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"github.com/pkg/errors"

	"hlbsp/math/vec"
)

type hullNode struct {
	plane    *Plane
	children [2]int // negative values are contents
}

// Hull is a collision tree for one box size. Hull 0 is the point hull built
// from the render nodes, hulls 1 to 3 come from the clipnode lump.
type Hull struct {
	nodes         []hullNode
	FirstClipNode int
	LastClipNode  int
	ClipMins      vec.Vec3
	ClipMaxs      vec.Vec3
}

var hullBoxes = [MaxMapHulls][2]vec.Vec3{
	{},
	{{-16, -16, -36}, {16, 16, 36}}, // standing
	{{-32, -32, -32}, {32, 32, 32}}, // large
	{{-16, -16, -18}, {16, 16, 18}}, // crouching
}

// makeHulls builds hull 0 from the nodes and hulls 1 to 3 sharing the
// clipnodes.
func (m *Map) makeHulls() {
	h0 := make([]hullNode, len(m.Nodes))
	for i := range m.Nodes {
		n := &m.Nodes[i]
		h0[i].plane = &m.Planes[n.Plane]
		for j, c := range n.Children {
			if c.Kind == ChildNode {
				h0[i].children[j] = c.Index
			} else {
				h0[i].children[j] = int(m.Leaves[c.Index].Contents)
			}
		}
	}
	m.Hulls[0] = Hull{
		nodes:        h0,
		LastClipNode: len(h0) - 1,
	}
	cn := make([]hullNode, len(m.ClipNodes))
	for i := range m.ClipNodes {
		c := &m.ClipNodes[i]
		cn[i].plane = &m.Planes[c.Plane]
		cn[i].children = [2]int{c.Children[0].Raw(), c.Children[1].Raw()}
	}
	for h := 1; h < MaxMapHulls; h++ {
		m.Hulls[h] = Hull{
			nodes:        cn,
			LastClipNode: len(cn) - 1,
			ClipMins:     hullBoxes[h][0],
			ClipMaxs:     hullBoxes[h][1],
		}
	}
}

// PointContents walks the hull from node num and returns the contents at p.
func (h *Hull) PointContents(num int, p vec.Vec3) (Contents, error) {
	for steps := 0; num >= 0; steps++ {
		if num < h.FirstClipNode || num > h.LastClipNode || steps > len(h.nodes) {
			return 0, errors.Errorf("HullPointContents: bad node number %d", num)
		}
		node := &h.nodes[num]
		plane := node.plane
		d := func() float32 {
			if plane.Type.Axial() {
				return p[int(plane.Type)] - plane.Dist
			}
			return float32(vec.DoublePrecDot(plane.Normal, p)) - plane.Dist
		}()
		if d < 0 {
			num = node.children[1]
		} else {
			num = node.children[0]
		}
	}

	return Contents(num), nil
}

// PointContents classifies p against the given hull of a model. Model 0 is
// the world.
func (m *Map) PointContents(hull, model int, p vec.Vec3) (Contents, error) {
	if hull < 0 || hull >= MaxMapHulls {
		return 0, errors.Errorf("bad hull %d", hull)
	}
	if model < 0 || model >= len(m.Models) {
		return 0, errors.Errorf("bad model %d", model)
	}
	return m.Hulls[hull].PointContents(int(m.Models[model].HeadNodes[hull]), p)
}
