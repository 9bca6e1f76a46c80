package pathroot

import (
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// FS is the uniform read interface every PathRoot exposes, whether it is
// backed by an on-disk directory, an in-memory tree, or a mounted archive.
type FS interface {
	fs.StatFS
	fs.ReadDirFS
	fs.ReadFileFS
}

// WritableFS additionally supports the write operations output containers
// need. Archive-backed roots never implement this; callers detect
// writability through PathRoot.Writable.
type WritableFS interface {
	FS

	// MkdirAll creates a directory path and all parents that do not yet
	// exist.
	MkdirAll(path string, perm os.FileMode) error
	// Remove removes a file identified by name.
	Remove(name string) error
	// WriteFile writes data to the named file, creating it if needed.
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// aferoFS adapts an afero.Fs (disk or in-memory) to WritableFS.
type aferoFS struct {
	afero.IOFS
	delegate afero.Fs
}

func newAferoFS(delegate afero.Fs) *aferoFS {
	return &aferoFS{IOFS: afero.NewIOFS(delegate), delegate: delegate}
}

func (a *aferoFS) MkdirAll(path string, perm os.FileMode) error {
	return a.delegate.MkdirAll(path, perm)
}

func (a *aferoFS) Remove(name string) error {
	return a.delegate.Remove(name)
}

func (a *aferoFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return afero.WriteFile(a.delegate, name, data, perm)
}

// genericFS adapts any read-only io/fs.FS (in practice, a *zip.Reader) to
// FS using the stdlib's generic fs.Stat/fs.ReadDir/fs.ReadFile helpers,
// which work against any fs.FS regardless of whether it implements the
// optional Stat/ReadDir/ReadFile fast paths itself.
type genericFS struct {
	fsys fs.FS
}

func newGenericFS(fsys fs.FS) FS {
	return &genericFS{fsys: fsys}
}

func (g *genericFS) Open(name string) (fs.File, error) { return g.fsys.Open(name) }

func (g *genericFS) Stat(name string) (fs.FileInfo, error) {
	return fs.Stat(g.fsys, name)
}

func (g *genericFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return fs.ReadDir(g.fsys, name)
}

func (g *genericFS) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(g.fsys, name)
}
