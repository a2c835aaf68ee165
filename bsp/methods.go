// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"hlbsp/math/vec"
)

// VisSet is a decompressed PVS row. Bit i stands for leaf i+1, leaf 0 is
// the shared solid leaf and never part of a row.
type VisSet []byte

// Has reports whether leaf is marked.
func (v VisSet) Has(leaf int) bool {
	i := leaf - 1
	if i < 0 || i/8 >= len(v) {
		return false
	}
	return v[i/8]&(1<<(i%8)) != 0
}

// Count returns the number of marked leaves.
func (v VisSet) Count() int {
	n := 0
	for _, b := range v {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}

func (m *Map) visRowSize() int {
	return (len(m.Leaves) - 1 + 7) / 8 // (len(Leafs) - 'leaf[0]' + 7)/8
}

func (m *Map) nodeBox(n int) (vec.Vec3, vec.Vec3) {
	return vec.FromShort(m.Nodes[n].Lower), vec.FromShort(m.Nodes[n].Upper)
}

func (m *Map) leafBox(l int) (vec.Vec3, vec.Vec3) {
	return vec.FromShort(m.Leaves[l].Lower), vec.FromShort(m.Leaves[l].Upper)
}

// FindLeaf returns the leaf containing p. The walk starts at node 0 and
// tests the bounding boxes of both children in order instead of the
// splitting plane. The first child node whose box contains p is descended
// without trying its sibling. Leaf 0 is never returned.
func (m *Map) FindLeaf(p vec.Vec3) (int, bool) {
	if len(m.Nodes) == 0 {
		return 0, false
	}
	return m.findLeaf(0, p, 0)
}

func (m *Map) findLeaf(node int, p vec.Vec3, depth int) (int, bool) {
	if depth > len(m.Nodes) {
		// cyclic node data
		return 0, false
	}
	for _, c := range m.Nodes[node].Children {
		if c.Kind == ChildNode {
			if mins, maxs := m.nodeBox(c.Index); vec.PointInBox(p, mins, maxs) {
				return m.findLeaf(c.Index, p, depth+1)
			}
			continue
		}
		if c.Raw() == -1 {
			continue
		}
		if mins, maxs := m.leafBox(c.Index); vec.PointInBox(p, mins, maxs) {
			return c.Index, true
		}
	}
	return 0, false
}

// CountVisLeaves counts the non solid leaves below the raw child encoding
// node. -1 and solid leaves count as 0.
func (m *Map) CountVisLeaves(node int) int {
	return m.countVisLeaves(node, 0)
}

func (m *Map) countVisLeaves(node, depth int) int {
	if node < 0 {
		leaf := ^node
		if node == -1 || leaf >= len(m.Leaves) || m.Leaves[leaf].Contents == ContentsSolid {
			return 0
		}
		return 1
	}
	if node >= len(m.Nodes) || depth > len(m.Nodes) {
		return 0
	}
	n := &m.Nodes[node]
	return m.countVisLeaves(n.Children[0].Raw(), depth+1) +
		m.countVisLeaves(n.Children[1].Raw(), depth+1)
}

// DecompressVis run length decodes one PVS row of row bytes starting at
// offset. A zero byte is followed by the number of zero bytes it stands for,
// every other byte is copied. Running out of input leaves the rest zero.
func DecompressVis(in []byte, offset, row int) VisSet {
	// 'in' is compressed and looks like
	// 70550311
	// and gets uncompressed to
	// 700000500011	(7 5x0 5 3x0 1 1)
	out := make(VisSet, row)
	if offset < 0 {
		return out
	}
	j := 0
	for i := offset; i < len(in) && j < row; i++ {
		if in[i] != 0 {
			out[j] = in[i]
			j++
			continue
		}
		i++
		if i >= len(in) {
			break
		}
		j += int(in[i])
	}
	return out
}

// LeafPVS decompresses the PVS of a leaf. Without visibility data every
// leaf is visible.
func (m *Map) LeafPVS(leaf int) VisSet {
	row := m.visRowSize()
	if len(m.Visibility) == 0 || m.Leaves[leaf].VisOffset < 0 {
		all := make(VisSet, row)
		for i := range all {
			all[i] = 0xff
		}
		return all
	}
	return DecompressVis(m.Visibility, int(m.Leaves[leaf].VisOffset), row)
}

func (l *loader) loadVisibility() error {
	m := l.m
	if len(m.Visibility) == 0 {
		l.log.Info("Map has no visibility data")
		return nil
	}
	m.VisLeafCount = m.CountVisLeaves(0)
	m.VisLists = make([]VisSet, len(m.Leaves))
	row := m.visRowSize()
	for i := 1; i <= m.VisLeafCount && i < len(m.Leaves); i++ {
		if m.Leaves[i].VisOffset < 0 {
			continue
		}
		m.VisLists[i] = DecompressVis(m.Visibility, int(m.Leaves[i].VisOffset), row)
		m.Stats.VisLists++
	}
	return nil
}

// PotentiallyVisible reports whether leaf to may be seen from leaf from.
// Leaves without a PVS see everything.
func (m *Map) PotentiallyVisible(from, to int) bool {
	if m.VisLists == nil || from <= 0 || from >= len(m.VisLists) || m.VisLists[from] == nil {
		return true
	}
	return m.VisLists[from].Has(to)
}

// FatPVS is the union of the PVS of all leaves within 8 units of org.
// The PVS must include a small area around the client to allow head bobbing
// or other small motion on the client side.
func (m *Map) FatPVS(org vec.Vec3) VisSet {
	pvs := make(VisSet, m.visRowSize())
	if len(m.Nodes) > 0 {
		m.addToFatPVS(org, Child{Kind: ChildNode}, pvs, 0)
	}
	return pvs
}

func (m *Map) addToFatPVS(org vec.Vec3, c Child, pvs VisSet, depth int) {
	for depth <= len(m.Nodes) {
		if c.Kind == ChildLeaf {
			// if this is a leaf, accumulate the pvs bits
			if c.Index != 0 && m.Leaves[c.Index].Contents != ContentsSolid {
				for i, b := range m.LeafPVS(c.Index) {
					pvs[i] |= b
				}
			}
			return
		}
		n := &m.Nodes[c.Index]
		plane := &m.Planes[n.Plane]
		d := vec.Dot(org, plane.Normal) - plane.Dist
		switch {
		case d > 8:
			c = n.Children[0]
		case d < -8:
			c = n.Children[1]
		default: // go down both
			m.addToFatPVS(org, n.Children[0], pvs, depth+1)
			c = n.Children[1]
		}
		depth++
	}
}

// VisibleFaces walks the node tree front to back as seen from pos and
// returns the faces of all leaves in the PVS of the camera leaf. Unlit
// faces are left out, every face is returned once.
func (m *Map) VisibleFaces(pos vec.Vec3) []int {
	if len(m.Nodes) == 0 {
		return nil
	}
	var vis VisSet
	if leaf, ok := m.FindLeaf(pos); ok && m.VisLists != nil {
		vis = m.VisLists[leaf]
	}
	w := faceWalk{
		m:    m,
		pos:  pos,
		vis:  vis,
		seen: make([]bool, len(m.Faces)),
	}
	w.walk(Child{Kind: ChildNode}, 0)
	return w.out
}

type faceWalk struct {
	m    *Map
	pos  vec.Vec3
	vis  VisSet
	seen []bool
	out  []int
}

func (w *faceWalk) walk(c Child, depth int) {
	m := w.m
	if depth > len(m.Nodes) {
		return
	}
	if c.Kind == ChildLeaf {
		if c.Index == 0 || (w.vis != nil && !w.vis.Has(c.Index)) {
			return
		}
		lf := &m.Leaves[c.Index]
		for _, ms := range m.MarkSurfaces[lf.FirstMarkSurface : int(lf.FirstMarkSurface)+int(lf.MarkSurfaceCount)] {
			if w.seen[ms] || !m.Faces[ms].Lit() {
				continue
			}
			w.seen[ms] = true
			w.out = append(w.out, int(ms))
		}
		return
	}
	n := &m.Nodes[c.Index]
	plane := &m.Planes[n.Plane]
	front := 0
	if vec.Dot(w.pos, plane.Normal)-plane.Dist < 0 {
		front = 1
	}
	w.walk(n.Children[front], depth+1)
	w.walk(n.Children[front^1], depth+1)
}
