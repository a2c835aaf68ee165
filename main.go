// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hlbsp/bsp"
	"hlbsp/filesystem"
)

var (
	baseDir   string
	game      string
	wadDir    string
	decalWads []string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:          "hlbsp",
	Short:        "hlbsp inspects Half-Life BSP30 maps",
	Long:         `hlbsp loads Half-Life maps with their WAD textures, lightmaps and decals, prints their structure and exports their images.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&baseDir, "basedir", "", "game installation directory, enables the valve/<game> search path")
	pf.StringVar(&game, "game", "", "mod directory searched before valve")
	pf.StringVar(&wadDir, "waddir", "", "directory holding the WAD files (default: map directory, or the search path root with --basedir)")
	pf.StringSliceVar(&decalWads, "decal-wad", bsp.DefaultConfig().DecalWads, "WAD files searched for infodecal textures")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log load progress")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(entitiesCmd)
	rootCmd.AddCommand(leafCmd)
	rootCmd.AddCommand(exportCmd)
}

// config builds the loader configuration for the map at path. The returned
// function releases the search path.
func config(path string) (bsp.Config, func()) {
	cfg := bsp.DefaultConfig()
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	cfg.DecalWads = decalWads
	cfg.WadDir = filepath.Dir(path)
	release := func() {}
	if baseDir != "" {
		fs := filesystem.New(baseDir, game)
		cfg.FS = fs
		cfg.WadDir = "."
		release = func() { fs.Close() }
	}
	if wadDir != "" {
		cfg.WadDir = wadDir
	}
	return cfg, release
}

func load(path string) (*bsp.Map, bsp.Config, func(), error) {
	cfg, release := config(path)
	m, err := bsp.Load(path, cfg)
	if err != nil {
		release()
		return nil, cfg, nil, err
	}
	return m, cfg, release, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
