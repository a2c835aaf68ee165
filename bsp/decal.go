// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"strings"

	"github.com/pkg/errors"

	"hlbsp/math/vec"
	"hlbsp/texture"
	"hlbsp/wad"
)

func (l *loader) loadDecals() error {
	m := l.m
	var decals []*Entity
	for _, e := range m.Entities {
		if n, ok := e.Name(); ok && n == "infodecal" {
			decals = append(decals, e)
		}
	}
	if len(decals) == 0 {
		return nil
	}
	wads, err := l.openWads(l.cfg.DecalWads)
	if err != nil {
		return err
	}
	defer closeWads(wads)

	cache := map[string]int{}
	for _, e := range decals {
		d, err := l.placeDecal(e, wads, cache)
		if err != nil {
			l.log.Warn("Skipping decal", "error", err)
			m.Stats.DecalsFailed++
			continue
		}
		m.Decals = append(m.Decals, d)
		m.Stats.DecalsPlaced++
	}
	return nil
}

// DecalFace returns the first face of the leaf containing origin whose
// plane the origin lies on.
func (m *Map) DecalFace(origin vec.Vec3) (int, bool) {
	leaf, ok := m.FindLeaf(origin)
	if !ok {
		return 0, false
	}
	lf := &m.Leaves[leaf]
	for _, ms := range m.MarkSurfaces[lf.FirstMarkSurface : int(lf.FirstMarkSurface)+int(lf.MarkSurfaceCount)] {
		p := &m.Planes[m.Faces[ms].Plane]
		if vec.PointInPlane(origin, p.Normal, p.Dist) {
			return int(ms), true
		}
	}
	return 0, false
}

func (l *loader) placeDecal(e *Entity, wads []*wad.Wad, cache map[string]int) (Decal, error) {
	m := l.m
	origin, err := e.Vec3Property("origin")
	if err != nil {
		return Decal{}, err
	}
	name, ok := e.Property("texture")
	if !ok {
		return Decal{}, errors.Wrap(ErrMalformedEntity, "infodecal without texture")
	}
	face, ok := m.DecalFace(origin)
	if !ok {
		return Decal{}, errors.Errorf("no face at %v for decal %s", origin, name)
	}
	key := strings.ToLower(name)
	idx, ok := cache[key]
	if !ok {
		t, err := loadDecalTexture(wads, name)
		if err != nil {
			return Decal{}, err
		}
		idx = len(m.DecalTextures)
		m.DecalTextures = append(m.DecalTextures, t)
		cache[key] = idx
	}
	t := m.DecalTextures[idx]
	f := &m.Faces[face]
	ti := &m.TextureInfos[f.TexInfo]
	return Decal{
		Corners: decalCorners(origin, ti.S.Normalize(), ti.T.Normalize(),
			float32(t.Width())/2, float32(t.Height())/2),
		Normal:  m.Planes[f.Plane].Normal,
		Texture: idx,
	}, nil
}

func loadDecalTexture(wads []*wad.Wad, name string) (*texture.Mipmap, error) {
	for _, w := range wads {
		t, err := w.LoadDecalTexture(name)
		if wad.IsMiss(err) {
			continue
		}
		return t, err
	}
	return nil, errors.Wrapf(wad.ErrNotFound, "decal texture %s", name)
}

// decalCorners spans a quad of 2*w2 by 2*h2 around o in the s/t plane,
// counter clockwise starting at -s -t.
func decalCorners(o, s, t vec.Vec3, w2, h2 float32) [4]vec.Vec3 {
	ds := vec.Scale(w2, s)
	dt := vec.Scale(h2, t)
	return [4]vec.Vec3{
		vec.Sub(vec.Sub(o, dt), ds),
		vec.Add(vec.Sub(o, dt), ds),
		vec.Add(vec.Add(o, dt), ds),
		vec.Sub(vec.Add(o, dt), ds),
	}
}
