// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"io"
	"log/slog"

	"hlbsp/filesystem"
)

// Opener provides the byte streams WADs and sky images are read from.
// *filesystem.FS and filesystem.OS implement it.
type Opener interface {
	Open(name string) (io.ReadSeekCloser, error)
}

type Config struct {
	// Logger receives load progress and per item misses. nil means
	// slog.Default().
	Logger *slog.Logger
	// FS opens WAD files and sky images. nil means filesystem.OS{}.
	FS Opener
	// WadDir is joined with the base name of every WAD the map references.
	WadDir string
	// DecalWads are opened from WadDir for infodecal textures.
	DecalWads []string
	// SkyDir holds the <skyname><side>.tga images.
	SkyDir string
}

func DefaultConfig() Config {
	return Config{
		Logger:    slog.Default(),
		FS:        filesystem.OS{},
		WadDir:    ".",
		DecalWads: []string{"decals.wad", "xeno.wad"},
		SkyDir:    "gfx/env",
	}
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.FS == nil {
		c.FS = filesystem.OS{}
	}
	return c
}
