// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

// validate range checks every index one record holds into another lump.
// Queries rely on it and do not check again.
func (m *Map) validate() error {
	for i, n := range m.Nodes {
		if int(n.Plane) >= len(m.Planes) {
			return formatErrorf(LumpNodes.String(), -1, "node %d: plane %d of %d", i, n.Plane, len(m.Planes))
		}
		for _, c := range n.Children {
			if c.Kind == ChildNode && c.Index >= len(m.Nodes) {
				return formatErrorf(LumpNodes.String(), -1, "node %d: child node %d of %d", i, c.Index, len(m.Nodes))
			}
			if c.Kind == ChildLeaf && c.Index >= len(m.Leaves) {
				return formatErrorf(LumpNodes.String(), -1, "node %d: child leaf %d of %d", i, c.Index, len(m.Leaves))
			}
		}
		if int(n.FirstFace)+int(n.FaceCount) > len(m.Faces) {
			return formatErrorf(LumpNodes.String(), -1, "node %d: faces %d+%d of %d", i, n.FirstFace, n.FaceCount, len(m.Faces))
		}
	}
	for i, c := range m.ClipNodes {
		if c.Plane < 0 || int(c.Plane) >= len(m.Planes) {
			return formatErrorf(LumpClipNodes.String(), -1, "clipnode %d: plane %d of %d", i, c.Plane, len(m.Planes))
		}
		for _, ch := range c.Children {
			if ch.Kind == ChildNode && ch.Index >= len(m.ClipNodes) {
				return formatErrorf(LumpClipNodes.String(), -1, "clipnode %d: child %d of %d", i, ch.Index, len(m.ClipNodes))
			}
		}
	}
	for i, l := range m.Leaves {
		if int(l.FirstMarkSurface)+int(l.MarkSurfaceCount) > len(m.MarkSurfaces) {
			return formatErrorf(LumpLeaves.String(), -1, "leaf %d: mark surfaces %d+%d of %d",
				i, l.FirstMarkSurface, l.MarkSurfaceCount, len(m.MarkSurfaces))
		}
		if l.VisOffset >= 0 && int(l.VisOffset) > len(m.Visibility) {
			return formatErrorf(LumpLeaves.String(), -1, "leaf %d: vis offset %d of %d", i, l.VisOffset, len(m.Visibility))
		}
	}
	for i, ms := range m.MarkSurfaces {
		if int(ms) >= len(m.Faces) {
			return formatErrorf(LumpMarkSurfaces.String(), -1, "mark surface %d: face %d of %d", i, ms, len(m.Faces))
		}
	}
	for i, f := range m.Faces {
		if int(f.Plane) >= len(m.Planes) {
			return formatErrorf(LumpFaces.String(), -1, "face %d: plane %d of %d", i, f.Plane, len(m.Planes))
		}
		if int(f.TexInfo) >= len(m.TextureInfos) {
			return formatErrorf(LumpFaces.String(), -1, "face %d: texinfo %d of %d", i, f.TexInfo, len(m.TextureInfos))
		}
		if int64(f.FirstEdge)+int64(f.EdgeCount) > int64(len(m.SurfaceEdges)) {
			return formatErrorf(LumpFaces.String(), -1, "face %d: surface edges %d+%d of %d",
				i, f.FirstEdge, f.EdgeCount, len(m.SurfaceEdges))
		}
	}
	for i, se := range m.SurfaceEdges {
		e := int64(se)
		if e < 0 {
			e = -e
		}
		if e >= int64(len(m.Edges)) {
			return formatErrorf(LumpSurfaceEdges.String(), -1, "surface edge %d: edge %d of %d", i, se, len(m.Edges))
		}
	}
	for i, e := range m.Edges {
		for _, v := range e.V {
			if int(v) >= len(m.Vertices) {
				return formatErrorf(LumpEdges.String(), -1, "edge %d: vertex %d of %d", i, v, len(m.Vertices))
			}
		}
	}
	for i, t := range m.TextureInfos {
		if int(t.MipTex) >= len(m.MipTexs) {
			return formatErrorf(LumpTexinfo.String(), -1, "texinfo %d: miptex %d of %d", i, t.MipTex, len(m.MipTexs))
		}
	}
	for i, md := range m.Models {
		if md.FirstFace < 0 || md.FaceCount < 0 || int64(md.FirstFace)+int64(md.FaceCount) > int64(len(m.Faces)) {
			return formatErrorf(LumpModels.String(), -1, "model %d: faces %d+%d of %d", i, md.FirstFace, md.FaceCount, len(m.Faces))
		}
	}
	return nil
}
