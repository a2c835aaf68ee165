// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"hlbsp/qio"
)

type loader struct {
	m    *Map
	r    *qio.Reader
	cfg  Config
	log  *slog.Logger
	size int64

	mipOffsets []int32
}

// Load reads the BSP30 file at path. It either returns a Ready map or a
// *LoadError naming the phase that failed.
func Load(path string, cfg Config) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Phase: PhaseUnopened, Path: path, Err: err}
	}
	defer f.Close()
	return LoadFrom(f, path, cfg)
}

// LoadFrom is Load for an already opened stream. name is used for logging
// and errors.
func LoadFrom(r io.ReadSeeker, name string, cfg Config) (*Map, error) {
	cfg = cfg.withDefaults()
	l := &loader{
		m:   &Map{Name: name},
		r:   qio.NewReader(r),
		cfg: cfg,
		log: cfg.Logger.With("map", name),
	}
	l.m.newID()
	steps := []struct {
		phase Phase
		run   func() error
	}{
		{PhaseHeaderRead, l.readHeader},
		{PhaseLumpsRead, l.readLumps},
		{PhaseEntitiesParsed, l.parseEntities},
		{PhaseTexturesLoaded, l.loadTextures},
		{PhaseLightmapsLoaded, l.loadLightmaps},
		{PhaseDecalsLoaded, l.loadDecals},
		{PhaseVisibilityLoaded, l.loadVisibility},
		{PhasePostProcessed, l.postProcess},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			l.log.Error("Loading map failed", "phase", s.phase, "error", err)
			return nil, &LoadError{Phase: s.phase, Path: name, Err: err}
		}
		l.m.Phase = s.phase
		l.log.Debug("Load phase done", "phase", s.phase)
	}
	l.m.Phase = PhaseReady
	l.summary()
	return l.m, nil
}

func (l *loader) readHeader() error {
	size, err := l.r.Size()
	if err != nil {
		return err
	}
	l.size = size
	if err := l.r.Seek(0); err != nil {
		return err
	}
	h, err := DecodeHeader(l.r)
	if err != nil {
		return &FormatError{Lump: "header", Offset: 0, Err: err}
	}
	if h.Version != Version {
		return formatErrorf("header", 0, "version %d, want %d", h.Version, Version)
	}
	for t, lump := range h.Lumps {
		if lump.Offset < 0 || lump.Length < 0 ||
			int64(lump.Offset)+int64(lump.Length) > size {
			return formatErrorf(LumpType(t).String(), int64(lump.Offset),
				"lump %d+%d outside of file of %d bytes", lump.Offset, lump.Length, size)
		}
	}
	l.m.Header = h
	return nil
}

func (l *loader) readLumps() error {
	m, r, h := l.m, l.r, &l.m.Header
	var err error
	if m.Planes, err = readLump(r, h, LumpPlanes, planeSize, DecodePlane); err != nil {
		return err
	}
	if m.Vertices, err = readLump(r, h, LumpVertexes, vertexSize, DecodeVertex); err != nil {
		return err
	}
	if m.Nodes, err = readLump(r, h, LumpNodes, nodeSize, DecodeNode); err != nil {
		return err
	}
	if m.TextureInfos, err = readLump(r, h, LumpTexinfo, texinfoSize, DecodeTextureInfo); err != nil {
		return err
	}
	if m.Faces, err = readLump(r, h, LumpFaces, faceSize, DecodeFace); err != nil {
		return err
	}
	if m.ClipNodes, err = readLump(r, h, LumpClipNodes, clipNodeSize, DecodeClipNode); err != nil {
		return err
	}
	if m.Leaves, err = readLump(r, h, LumpLeaves, leafSize, DecodeLeaf); err != nil {
		return err
	}
	if m.MarkSurfaces, err = readLump(r, h, LumpMarkSurfaces, markSurfaceSize, DecodeMarkSurface); err != nil {
		return err
	}
	if m.Edges, err = readLump(r, h, LumpEdges, edgeSize, DecodeEdge); err != nil {
		return err
	}
	if m.SurfaceEdges, err = readLump(r, h, LumpSurfaceEdges, surfaceEdgeSize, DecodeSurfaceEdge); err != nil {
		return err
	}
	if m.Models, err = readLump(r, h, LumpModels, modelSize, DecodeModel); err != nil {
		return err
	}
	if m.MipTexs, l.mipOffsets, err = readMipTexs(r, h); err != nil {
		return err
	}
	if m.Lighting, err = readRaw(r, h, LumpLighting); err != nil {
		return err
	}
	if m.Visibility, err = readRaw(r, h, LumpVisibility); err != nil {
		return err
	}
	return m.validate()
}

func (l *loader) parseEntities() error {
	raw, err := readRaw(l.r, &l.m.Header, LumpEntities)
	if err != nil {
		return err
	}
	l.m.Entities, l.m.Stats.MalformedEntities = ParseEntities(decodeEntityText(raw), l.log)
	l.log.Info("Parsed entities", "count", len(l.m.Entities),
		"malformed", l.m.Stats.MalformedEntities)
	return nil
}

func (l *loader) summary() {
	s := l.m.Stats
	l.log.Info("Loaded map",
		"textures", s.TexturesLoaded,
		"texturesFailed", s.TexturesFailed,
		"lightmaps", s.Lightmaps,
		"lightmapData", humanize.Bytes(uint64(s.LightmapBytes)),
		"decals", s.DecalsPlaced,
		"decalsFailed", s.DecalsFailed,
		"visLists", s.VisLists,
		"visData", humanize.Bytes(uint64(len(l.m.Visibility))))
	if s.TexturesFailed > 0 {
		l.log.Warn("Some textures could not be loaded", "loaded", s.TexturesLoaded, "failed", s.TexturesFailed)
	}
}

// rawAt reads n bytes at an absolute file offset, fatal if out of bounds.
func (l *loader) rawAt(lump LumpType, offset int64, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset+int64(n) > l.size {
		return nil, formatErrorf(lump.String(), offset, "%d bytes exceed the file", n)
	}
	if err := l.r.Seek(offset); err != nil {
		return nil, &FormatError{Lump: lump.String(), Offset: offset, Err: err}
	}
	b, err := l.r.ReadBytes(n)
	if err != nil {
		return nil, &FormatError{Lump: lump.String(), Offset: offset, Err: errors.WithStack(err)}
	}
	return b, nil
}
