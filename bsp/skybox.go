// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"path/filepath"

	"github.com/pkg/errors"

	"hlbsp/image"
)

// SkySides are the file name suffixes of a sky box in Skybox order.
var SkySides = [6]string{"ft", "bk", "up", "dn", "rt", "lf"}

// LoadSkybox reads the six TGA images named by the worldspawn "skyname"
// from cfg.SkyDir. ok is false if the map names no sky.
func (m *Map) LoadSkybox(cfg Config) (sides [6]*image.Image, ok bool, err error) {
	cfg = cfg.withDefaults()
	ws := m.FindEntity("worldspawn")
	if ws == nil {
		return sides, false, nil
	}
	name, ok := ws.Property("skyname")
	if !ok || name == "" {
		return sides, false, nil
	}
	for i, s := range SkySides {
		p := filepath.Join(cfg.SkyDir, name+s+".tga")
		f, err := cfg.FS.Open(p)
		if err != nil {
			return sides, true, errors.Wrapf(err, "sky %s", name)
		}
		img, err := image.LoadTGA(f)
		f.Close()
		if err != nil {
			return sides, true, errors.Wrapf(err, "sky image %s", p)
		}
		sides[i] = img
	}
	return sides, true, nil
}
