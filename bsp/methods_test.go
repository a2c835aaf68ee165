// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"bytes"
	"testing"

	"hlbsp/math/vec"
)

func TestVisDecompress(t *testing.T) {
	in := []byte{0x7, 0x0, 0x5, 0x5, 0x0, 0x3, 0x1, 0x1}
	got := DecompressVis(in, 0, 12)
	want := VisSet{0x7, 0x0, 0x0, 0x0, 0x0, 0x0, 0x5, 0x0, 0x0, 0x0, 0x1, 0x1}
	if !bytes.Equal(got, want) {
		t.Errorf("Decompress(%v) = %v, want %v", in, got, want)
	}
}

func TestVisDecompressPastEnd(t *testing.T) {
	tests := []struct {
		in     []byte
		offset int
		want   VisSet
	}{
		// runs out of input, the rest stays zero
		{[]byte{0xff, 0x0f}, 0, VisSet{0xff, 0x0f, 0, 0}},
		// dangling zero without count
		{[]byte{0x01, 0x00}, 0, VisSet{0x01, 0, 0, 0}},
		// run longer than the row
		{[]byte{0x00, 0x09, 0x01}, 0, VisSet{0, 0, 0, 0}},
		// offset skips the first row
		{[]byte{0x03, 0x00, 0x02, 0x80, 0x80}, 1, VisSet{0, 0, 0x80, 0x80}},
		{[]byte{0x03}, 7, VisSet{0, 0, 0, 0}},
		{[]byte{0x03}, -1, VisSet{0, 0, 0, 0}},
	}
	for _, tc := range tests {
		got := DecompressVis(tc.in, tc.offset, 4)
		if !bytes.Equal(got, tc.want) {
			t.Errorf("DecompressVis(%v, %d) = %v, want %v", tc.in, tc.offset, got, tc.want)
		}
	}
}

func TestVisSetHas(t *testing.T) {
	v := VisSet{0x05, 0x80}
	for leaf, want := range map[int]bool{0: false, 1: true, 2: false, 3: true, 16: true, 17: false} {
		if got := v.Has(leaf); got != want {
			t.Errorf("Has(%d) = %v, want %v", leaf, got, want)
		}
	}
	if v.Count() != 3 {
		t.Errorf("Count() = %d, want 3", v.Count())
	}
}

func TestCountVisLeaves(t *testing.T) {
	m := twoLeafMap()
	mp := &Map{Nodes: m.nodes, Leaves: m.leaves}
	if got := mp.CountVisLeaves(0); got != 2 {
		t.Errorf("CountVisLeaves(0) = %d, want 2", got)
	}
	// a single non solid leaf
	if got := mp.CountVisLeaves(^1); got != 1 {
		t.Errorf("CountVisLeaves(^1) = %d, want 1", got)
	}
	if got := mp.CountVisLeaves(-1); got != 0 {
		t.Errorf("CountVisLeaves(-1) = %d, want 0", got)
	}
	for i := range mp.Leaves {
		mp.Leaves[i].Contents = ContentsSolid
	}
	if got := mp.CountVisLeaves(0); got != 0 {
		t.Errorf("CountVisLeaves(0) on solid tree = %d, want 0", got)
	}
}

func TestFindLeafDeterministic(t *testing.T) {
	b := twoLeafMap()
	m := &Map{Nodes: b.nodes, Leaves: b.leaves, Planes: b.planes}
	for _, p := range []vec.Vec3{{1, 2, 3}, {0, 0, 0}, {64, 64, 64}, {-64, 0, -1}, {99, 0, 0}} {
		l1, ok1 := m.FindLeaf(p)
		l2, ok2 := m.FindLeaf(p)
		if l1 != l2 || ok1 != ok2 {
			t.Errorf("FindLeaf(%v) not deterministic: %d,%v then %d,%v", p, l1, ok1, l2, ok2)
		}
	}
	// the boundary belongs to the first child in order
	if l, ok := m.FindLeaf(vec.Vec3{0, 0, 0}); !ok || l != 1 {
		t.Errorf("FindLeaf(origin) = %d, %v, want 1", l, ok)
	}
}

func TestFindLeafNoSiblingFallback(t *testing.T) {
	// node 0 -> node 1 (big box) and leaf 2, node 1 -> leaf 1 (small box)
	m := &Map{
		Planes: []Plane{{Normal: vec.Vec3{1, 0, 0}, Type: PlaneX}},
		Nodes: []Node{
			{Children: [2]Child{{Kind: ChildNode, Index: 1}, {Kind: ChildLeaf, Index: 2}}},
			{Children: [2]Child{{Kind: ChildLeaf, Index: 1}, {Kind: ChildLeaf, Index: 0}},
				Lower: [3]int16{-10, -10, -10}, Upper: [3]int16{10, 10, 10}},
		},
		Leaves: []Leaf{
			{Contents: ContentsSolid},
			{Contents: ContentsEmpty, Lower: [3]int16{0, 0, 0}, Upper: [3]int16{1, 1, 1}},
			{Contents: ContentsEmpty, Lower: [3]int16{-10, -10, -10}, Upper: [3]int16{10, 10, 10}},
		},
	}
	if l, ok := m.FindLeaf(vec.Vec3{0.5, 0.5, 0.5}); !ok || l != 1 {
		t.Errorf("FindLeaf inside leaf 1 = %d, %v", l, ok)
	}
	// inside node 1 but not leaf 1: leaf 2 is not tried
	if l, ok := m.FindLeaf(vec.Vec3{5, 5, 5}); ok {
		t.Errorf("FindLeaf = %d, want no leaf", l)
	}
	// swapped corners
	m.Leaves[1].Lower, m.Leaves[1].Upper = m.Leaves[1].Upper, m.Leaves[1].Lower
	if l, ok := m.FindLeaf(vec.Vec3{0.5, 0.5, 0.5}); !ok || l != 1 {
		t.Errorf("FindLeaf with swapped box = %d, %v", l, ok)
	}
}

func TestFindLeafCycle(t *testing.T) {
	box := [3]int16{10, 10, 10}
	m := &Map{
		Nodes: []Node{{Children: [2]Child{{Kind: ChildNode, Index: 0}, {Kind: ChildNode, Index: 0}},
			Lower: [3]int16{-10, -10, -10}, Upper: box}},
		Leaves: []Leaf{{}},
	}
	if _, ok := m.FindLeaf(vec.Vec3{}); ok {
		t.Errorf("FindLeaf on a cycle found a leaf")
	}
	if got := m.CountVisLeaves(0); got != 0 {
		t.Errorf("CountVisLeaves on a cycle = %d", got)
	}
}

func visMap(t *testing.T) *Map {
	t.Helper()
	b := twoLeafMap()
	// leaf 1 sees leaf 1 only, leaf 2 sees both
	b.visibility = []byte{0x01, 0x03}
	b.leaves[1].VisOffset = 0
	b.leaves[2].VisOffset = 1
	m, err := Load(b.write(t), testConfig(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func TestLoadVisibility(t *testing.T) {
	m := visMap(t)
	if m.VisLeafCount != 2 {
		t.Errorf("VisLeafCount = %d, want 2", m.VisLeafCount)
	}
	if m.Stats.VisLists != 2 {
		t.Errorf("Stats.VisLists = %d, want 2", m.Stats.VisLists)
	}
	tests := []struct {
		from, to int
		want     bool
	}{
		{1, 1, true},
		{1, 2, false},
		{2, 1, true},
		{2, 2, true},
	}
	for _, tc := range tests {
		if got := m.PotentiallyVisible(tc.from, tc.to); got != tc.want {
			t.Errorf("PotentiallyVisible(%d, %d) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
	// within 8 units of the plane both leaves contribute
	if got := m.FatPVS(vec.Vec3{0, 0, 4}); !got.Has(1) || !got.Has(2) {
		t.Errorf("FatPVS near plane = %v", got)
	}
	if got := m.FatPVS(vec.Vec3{0, 0, 32}); got.Has(2) {
		t.Errorf("FatPVS above = %v, want leaf 1 only", got)
	}
}

func TestVisibleFaces(t *testing.T) {
	m, err := Load(floorMap().write(t), testConfig(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := m.VisibleFaces(vec.Vec3{4, 4, 10})
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("VisibleFaces = %v, want [0]", got)
	}
	if n := m.FaceNormal(0); n != (vec.Vec3{0, 0, 1}) {
		t.Errorf("FaceNormal = %v", n)
	}
	vs := m.FaceVertices(0)
	want := []vec.Vec3{{0, 0, 0}, {16, 0, 0}, {0, 16, 0}}
	for i := range want {
		if vs[i] != want[i] {
			t.Errorf("FaceVertices[%d] = %v, want %v", i, vs[i], want[i])
		}
	}
	if fs := m.ModelFaces(0); len(fs) != 1 || fs[0] != 0 {
		t.Errorf("ModelFaces(0) = %v", fs)
	}
}

func TestFaceVertexReversed(t *testing.T) {
	m := &Map{
		Vertices:     []vec.Vec3{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}},
		Edges:        []Edge{{V: [2]uint16{0, 1}}, {V: [2]uint16{1, 2}}},
		SurfaceEdges: []int32{1, -1, 0},
		Faces:        []Face{{EdgeCount: 3}},
	}
	want := []vec.Vec3{{2, 0, 0}, {3, 0, 0}, {2, 0, 0}}
	for i, w := range want {
		if got := m.FaceVertex(0, i); got != w {
			t.Errorf("FaceVertex(0, %d) = %v, want %v", i, got, w)
		}
	}
}

func TestBoxLeaves(t *testing.T) {
	b := twoLeafMap()
	m := &Map{Nodes: b.nodes, Leaves: b.leaves, Planes: b.planes}
	tests := []struct {
		mins, maxs vec.Vec3
		want       []int
	}{
		{vec.Vec3{-1, -1, 1}, vec.Vec3{1, 1, 2}, []int{1}},
		{vec.Vec3{-1, -1, -2}, vec.Vec3{1, 1, -1}, []int{2}},
		{vec.Vec3{-1, -1, -1}, vec.Vec3{1, 1, 1}, []int{1, 2}},
	}
	for _, tc := range tests {
		got := m.BoxLeaves(tc.mins, tc.maxs)
		if len(got) != len(tc.want) {
			t.Errorf("BoxLeaves(%v, %v) = %v, want %v", tc.mins, tc.maxs, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("BoxLeaves(%v, %v) = %v, want %v", tc.mins, tc.maxs, got, tc.want)
			}
		}
	}
	p := Plane{Normal: vec.Vec3{0.6, -0.8, 0}, Dist: 0, Type: PlaneAnyY}
	if s := p.BoxOnPlaneSide(vec.Vec3{1, -3, 0}, vec.Vec3{2, -2, 1}); s != 1 {
		t.Errorf("BoxOnPlaneSide front = %d", s)
	}
	if s := p.BoxOnPlaneSide(vec.Vec3{-1, -1, -1}, vec.Vec3{1, 1, 1}); s != 3 {
		t.Errorf("BoxOnPlaneSide crossing = %d", s)
	}
}
