// SPDX-License-Identifier: GPL-2.0-or-later

// Package filesystem provides the search path maps, WADs and sky images are
// opened through. Game directories are layered over the base "valve"
// directory and pak files shadow the loose files of their directory.
package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/tools/godoc/vfs"

	"hlbsp/pack"
)

const BaseGame = "valve"

type packFileSystem struct {
	p *pack.Pack
}

type closer struct {
	*io.SectionReader
}

func (*closer) Close() error {
	return nil
}

type fileInfo struct {
	name  string // base name of the file
	size  int64  // length in bytes for regular files
	isDir bool
}

func (f *fileInfo) Name() string {
	return f.name
}
func (f *fileInfo) Size() int64 {
	return f.size
}
func (f *fileInfo) Mode() fs.FileMode {
	if f.isDir {
		return fs.ModeDir | 0555
	}
	return 0444
}
func (f *fileInfo) ModTime() time.Time {
	return time.Time{}
}
func (f *fileInfo) IsDir() bool {
	return f.isDir
}
func (f *fileInfo) Sys() any {
	return nil
}

func (p packFileSystem) Open(name string) (vfs.ReadSeekCloser, error) {
	// inside a pack file there is no 'root'. all files are relative to '.'
	name = strings.TrimPrefix(name, "/")
	f, err := p.p.Open(name)
	if err != nil {
		return nil, err
	}
	return &closer{f}, nil
}

func (p packFileSystem) Stat(name string) (os.FileInfo, error) {
	name = strings.TrimPrefix(name, "/")
	f, err := p.p.Open(name)
	if err != nil {
		if name == "" || len(p.p.List(name)) > 0 {
			return &fileInfo{name: path.Base("/" + name), isDir: true}, nil
		}
		return nil, err
	}
	return &fileInfo{
		name: path.Base(name),
		size: f.Size(),
	}, nil
}

func (p packFileSystem) Lstat(name string) (os.FileInfo, error) {
	return p.Stat(name)
}

func (p packFileSystem) ReadDir(dir string) ([]os.FileInfo, error) {
	names := p.p.List(dir)
	if len(names) == 0 {
		return nil, os.ErrNotExist
	}
	r := make([]os.FileInfo, 0, len(names))
	for _, n := range names {
		if strings.HasSuffix(n, "/") {
			r = append(r, &fileInfo{name: strings.TrimSuffix(n, "/"), isDir: true})
			continue
		}
		fi, err := p.Stat(path.Join(dir, n))
		if err != nil {
			return nil, err
		}
		r = append(r, fi)
	}
	return r, nil
}

func (p packFileSystem) RootType(string) vfs.RootType {
	return ""
}

func (p packFileSystem) String() string {
	return p.p.String()
}

// FS is a layered read only view over game directories and their paks.
type FS struct {
	mutex   sync.RWMutex
	baseDir string
	gameDir string
	ns      vfs.NameSpace
	packs   []*pack.Pack
}

// New mounts <baseDir>/valve and, if game is neither empty nor "valve",
// <baseDir>/<game> on top of it.
func New(baseDir, game string) *FS {
	f := &FS{baseDir: baseDir}
	f.UseGameDir(game)
	return f
}

func (f *FS) GameDir() string {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return f.gameDir
}

func (f *FS) BaseDir() string {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return f.baseDir
}

// UseGameDir rebuilds the search path for another mod directory.
func (f *FS) UseGameDir(game string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.closePacks()
	f.ns = vfs.NameSpace{}
	root := filepath.Join(f.baseDir, BaseGame)
	f.gameDir = root
	f.ns.Bind("/", vfs.OS(root), "/", vfs.BindReplace)
	f.useDir(root)
	if game == "" || game == BaseGame {
		return
	}
	f.gameDir = filepath.Join(f.baseDir, game)
	f.ns.Bind("/", vfs.OS(f.gameDir), "/", vfs.BindBefore)
	f.useDir(f.gameDir)
}

func (f *FS) useDir(dir string) {
	// Add pak[i].pak files to the beginning, higher numbers win.
	for i := 0; ; i++ {
		pfn := fmt.Sprintf("pak%d.pak", i)
		p, err := pack.NewPackReader(filepath.Join(dir, pfn))
		if err != nil {
			break
		}
		f.packs = append(f.packs, p)
		f.ns.Bind("/", packFileSystem{p}, "/", vfs.BindBefore)
	}
}

func (f *FS) closePacks() {
	for _, p := range f.packs {
		p.Close()
	}
	f.packs = nil
}

// Close releases the opened pak files.
func (f *FS) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.closePacks()
	f.ns = vfs.NameSpace{}
	return nil
}

func (f *FS) Stat(name string) (os.FileInfo, error) {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return f.ns.Stat(path.Join("/", filepath.ToSlash(name)))
}

func (f *FS) Open(name string) (io.ReadSeekCloser, error) {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	nf, err := f.ns.Open(path.Join("/", filepath.ToSlash(name)))
	if err != nil {
		return nil, err
	}
	return nf, nil
}

func (f *FS) ReadFile(name string) ([]byte, error) {
	file, err := f.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// OS opens files relative to the working directory without any search path.
type OS struct{}

func (OS) Open(name string) (io.ReadSeekCloser, error) {
	return os.Open(name)
}

func isSep(c uint8) bool {
	return c == '/' || c == '\\'
}

// Base returns the last element of path with either separator style.
func Base(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if isSep(path[i]) {
			return path[i+1:]
		}
	}
	return path
}

func Ext(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func StripExt(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
