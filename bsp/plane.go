// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"hlbsp/math/vec"
)

// SignBits has bit i set if Normal[i] is negative.
func (p *Plane) SignBits() int {
	bits := 0
	for i := 0; i < 3; i++ {
		if p.Normal[i] < 0 {
			bits |= 1 << i
		}
	}
	return bits
}

// BoxOnPlaneSide returns 1 if the box is in front of the plane, 2 if it is
// behind and 3 if the plane crosses it.
func (p *Plane) BoxOnPlaneSide(mins, maxs vec.Vec3) int {
	if p.Type.Axial() {
		if p.Dist <= mins[int(p.Type)] {
			return 1
		}
		if p.Dist >= maxs[int(p.Type)] {
			return 2
		}
		return 3
	}
	// pick the corners nearest and farthest along the normal
	var near, far vec.Vec3
	bits := p.SignBits()
	for i := 0; i < 3; i++ {
		if bits&(1<<i) != 0 {
			far[i], near[i] = mins[i], maxs[i]
		} else {
			far[i], near[i] = maxs[i], mins[i]
		}
	}
	d1 := vec.Dot(p.Normal, far)
	d2 := vec.Dot(p.Normal, near)
	sides := 0
	if d1 >= p.Dist {
		sides = 1
	}
	if d2 < p.Dist {
		sides |= 2
	}
	return sides
}

// BoxLeaves returns the non solid leaves touched by the box, the way entities
// are linked into the world.
func (m *Map) BoxLeaves(mins, maxs vec.Vec3) []int {
	if len(m.Nodes) == 0 {
		return nil
	}
	var out []int
	m.boxLeaves(Child{Kind: ChildNode}, mins, maxs, &out, 0)
	return out
}

func (m *Map) boxLeaves(c Child, mins, maxs vec.Vec3, out *[]int, depth int) {
	if depth > len(m.Nodes) {
		return
	}
	if c.Kind == ChildLeaf {
		if c.Index != 0 && m.Leaves[c.Index].Contents != ContentsSolid {
			*out = append(*out, c.Index)
		}
		return
	}
	n := &m.Nodes[c.Index]
	sides := m.Planes[n.Plane].BoxOnPlaneSide(mins, maxs)
	if sides&1 != 0 {
		m.boxLeaves(n.Children[0], mins, maxs, out, depth+1)
	}
	if sides&2 != 0 {
		m.boxLeaves(n.Children[1], mins, maxs, out, depth+1)
	}
}
