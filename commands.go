// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/remeh/sizedwaitgroup"
	"github.com/spf13/cobra"

	"hlbsp/bsp"
	"hlbsp/filesystem"
	"hlbsp/image"
	"hlbsp/math/vec"
)

var infoCmd = &cobra.Command{
	Use:   "info <map>",
	Short: "Print the lump table and load statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, release, err := load(args[0])
		if err != nil {
			return err
		}
		defer release()

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Filename:", filesystem.Base(args[0]))
		fmt.Fprintln(w, "      ID:", m.ID)
		fmt.Fprintln(w, " Version:", m.Header.Version)
		fmt.Fprintln(w, "   Lumps:")
		for i, l := range m.Header.Lumps {
			t := bsp.LumpType(i)
			records := "-"
			if n := t.RecordSize(); n > 0 {
				records = strconv.Itoa(int(l.Length) / n)
			}
			fmt.Fprintf(w, "     %-16s %10s @ %8d ofs %8s records\n",
				t, humanize.IBytes(uint64(l.Length)), l.Offset, records)
		}
		fmt.Fprintf(w, "Entities: %d (%d brush, %d special)\n",
			len(m.Entities), len(m.BrushEntities), len(m.SpecialEntities))
		s := m.Stats
		fmt.Fprintf(w, "Textures: %d loaded, %d failed\n", s.TexturesLoaded, s.TexturesFailed)
		fmt.Fprintf(w, "Lightmaps: %d (%s)\n", s.Lightmaps, humanize.IBytes(uint64(s.LightmapBytes)))
		fmt.Fprintf(w, "Decals: %d placed, %d failed\n", s.DecalsPlaced, s.DecalsFailed)
		fmt.Fprintf(w, "Visibility: %d lists, %d leaves visible from the root\n", s.VisLists, m.VisLeafCount)
		if s.MalformedEntities > 0 {
			fmt.Fprintf(w, "Malformed entities: %d\n", s.MalformedEntities)
		}
		return nil
	},
}

var entitiesCmd = &cobra.Command{
	Use:   "entities <map>",
	Short: "Dump the entity properties",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, release, err := load(args[0])
		if err != nil {
			return err
		}
		defer release()

		w := cmd.OutOrStdout()
		for _, e := range m.Entities {
			fmt.Fprintln(w, "{")
			for _, k := range e.PropertyNames() {
				v, _ := e.Property(k)
				fmt.Fprintf(w, "%q %q\n", k, v)
			}
			fmt.Fprintln(w, "}")
		}
		return nil
	},
}

var leafCmd = &cobra.Command{
	Use:   "leaf <map> <x> <y> <z>",
	Short: "Locate the leaf containing a point",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		var p vec.Vec3
		for i := range p {
			f, err := strconv.ParseFloat(args[i+1], 32)
			if err != nil {
				return errors.Wrapf(err, "coordinate %d", i)
			}
			p[i] = float32(f)
		}
		m, _, release, err := load(args[0])
		if err != nil {
			return err
		}
		defer release()

		w := cmd.OutOrStdout()
		leaf, ok := m.FindLeaf(p)
		if !ok {
			fmt.Fprintf(w, "%v is outside of the map\n", p)
			return nil
		}
		l := &m.Leaves[leaf]
		fmt.Fprintf(w, "Leaf %d: %v, %d faces\n", leaf, l.Contents, l.MarkSurfaceCount)
		fmt.Fprintf(w, "Potentially visible leaves: %d\n", m.LeafPVS(leaf).Count())
		fmt.Fprintf(w, "Visible faces: %d\n", len(m.VisibleFaces(p)))
		for h := range m.Hulls {
			c, err := m.PointContents(h, 0, p)
			if err != nil {
				fmt.Fprintf(w, "Hull %d: %v\n", h, err)
				continue
			}
			fmt.Fprintf(w, "Hull %d: %v\n", h, c)
		}
		return nil
	},
}

var (
	exportFormat string
	atlasSize    int
)

var exportCmd = &cobra.Command{
	Use:   "export <map> <dir>",
	Short: "Write textures, decals, sky and the lightmap atlas as images",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportFormat != "png" && exportFormat != "bmp" {
			return errors.Errorf("unknown format %q", exportFormat)
		}
		m, cfg, release, err := load(args[0])
		if err != nil {
			return err
		}
		defer release()

		dir := filepath.Join(args[1], strings.ToLower(filesystem.StripExt(filesystem.Base(args[0]))))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		jobs := map[string]*image.Image{}
		for _, t := range m.Textures {
			if t != nil {
				jobs[strings.ToLower(t.Name)] = t.Levels[0]
			}
		}
		for _, t := range m.DecalTextures {
			jobs["decal_"+strings.ToLower(t.Name)] = t.Levels[0]
		}
		if m.Lightmaps != nil {
			atlas, _, err := m.LightmapAtlas(atlasSize, atlasSize)
			if err != nil {
				return errors.Wrap(err, "lightmap atlas")
			}
			jobs["lightmaps"] = atlas
		}
		sky, ok, err := m.LoadSkybox(cfg)
		if err != nil {
			cfg.Logger.Warn("Cannot load sky", "error", err)
		}
		if ok {
			for i, img := range sky {
				jobs["sky_"+bsp.SkySides[i]] = img
			}
		}

		var written atomic.Int64
		var failed atomic.Int32
		wg := sizedwaitgroup.New(runtime.NumCPU())
		for name, img := range jobs {
			wg.Add()
			go func(name string, img *image.Image) {
				defer wg.Done()
				n, err := writeImage(filepath.Join(dir, name+"."+exportFormat), img)
				if err != nil {
					cfg.Logger.Error("Cannot write image", "image", name, "error", err)
					failed.Add(1)
					return
				}
				written.Add(n)
			}(name, img)
		}
		wg.Wait()
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d images (%s) to %s\n",
			len(jobs)-int(failed.Load()), humanize.IBytes(uint64(written.Load())), dir)
		if failed.Load() > 0 {
			return errors.Errorf("%d images failed", failed.Load())
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "png", "image format, png or bmp")
	exportCmd.Flags().IntVar(&atlasSize, "atlas-size", 1024, "width and height of the lightmap atlas")
}

type countingWriter struct {
	f *os.File
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.f.Write(p)
	c.n += int64(n)
	return n, err
}

func writeImage(path string, img *image.Image) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	w := &countingWriter{f: f}
	if exportFormat == "bmp" {
		err = img.WriteBMP(w)
	} else {
		err = img.WritePNG(w)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return w.n, err
}
