// Package pathroot implements PathRoot, the L0 layer of the file manager:
// an opaque handle to a directory-shaped tree, whether that tree is an
// on-disk directory, a managed in-memory directory, or a lazily-mounted
// archive.
package pathroot

import (
	"fmt"
	"net/url"
	"os"
	"path"

	"github.com/spf13/afero"
)

// PathRoot is a file-tree origin: a disk directory, a managed in-memory
// directory, or a lazily-mounted archive.
type PathRoot interface {
	// URI identifies the root, e.g. "file:///tmp/foo" or "jar:file:///a.jar".
	URI() *url.URL
	// RootPath is the root's path in its own filesystem-handle's namespace
	// (e.g. "/" for a BasePathFs-scoped disk root).
	RootPath() string
	// FS returns the uniform read view of this root. For archive roots
	// this triggers the lazy mount on first call.
	FS() (FS, error)
	// Writable returns the write-capable view of this root, if it has
	// one. Archive roots never do.
	Writable() (WritableFS, bool)
	// Close releases any resources this root owns. It is idempotent.
	// Disk roots are borrowed and never close anything.
	Close() error
}

// diskRoot wraps a directory the caller already owns on disk. It is
// borrowed: Close is a no-op, since disk-wrap roots are never closed by
// the workspace that added them.
type diskRoot struct {
	uri      *url.URL
	rootPath string
	fs       *aferoFS
}

// NewDiskRoot wraps an existing on-disk directory at dir. dir must already
// exist; callers (workspace.Workspace) are responsible for validating that
// before constructing a PathRoot.
func NewDiskRoot(dir string) PathRoot {
	return &diskRoot{
		uri:      &url.URL{Scheme: "file", Path: dir},
		rootPath: "/",
		fs:       newAferoFS(afero.NewBasePathFs(afero.NewOsFs(), dir)),
	}
}

func (d *diskRoot) URI() *url.URL { return d.uri }
func (d *diskRoot) RootPath() string { return d.rootPath }
func (d *diskRoot) FS() (FS, error) { return d.fs, nil }
func (d *diskRoot) Writable() (WritableFS, bool) { return d.fs, true }
func (d *diskRoot) Close() error { return nil }

// managedRoot is a PathRoot the workspace created (and therefore owns) via
// CreatePackage/CreateModule: either a temp-disk directory or an in-memory
// filesystem. Closing it releases the underlying resource.
type managedRoot struct {
	uri      *url.URL
	rootPath string
	fs       *aferoFS
	closeFn  func() error
	closed   bool
}

// NewManagedMemoryRoot creates a fresh in-memory directory tree, owned for
// its lifetime by the caller (in practice, workspace.Workspace).
func NewManagedMemoryRoot(name string) PathRoot {
	mem := afero.NewMemMapFs()
	return &managedRoot{
		uri:      &url.URL{Scheme: "mem", Path: "/" + name},
		rootPath: "/",
		fs:       newAferoFS(mem),
		closeFn:  func() error { return nil },
	}
}

// NewManagedTempDiskRoot creates a uniquely-named host directory under the
// default temp area, prefixed "jct-<name>_".
func NewManagedTempDiskRoot(name string) (PathRoot, error) {
	dir, err := os.MkdirTemp("", "jct-"+name+"_")
	if err != nil {
		return nil, err
	}
	return &managedRoot{
		uri:      &url.URL{Scheme: "file", Path: dir},
		rootPath: "/",
		fs:       newAferoFS(afero.NewBasePathFs(afero.NewOsFs(), dir)),
		closeFn:  func() error { return os.RemoveAll(dir) },
	}, nil
}

func (m *managedRoot) URI() *url.URL { return m.uri }
func (m *managedRoot) RootPath() string { return m.rootPath }
func (m *managedRoot) FS() (FS, error) { return m.fs, nil }
func (m *managedRoot) Writable() (WritableFS, bool) { return m.fs, true }

func (m *managedRoot) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return m.closeFn()
}

// NestedRoot creates a PathRoot for a subdirectory of parent, creating
// the subdirectory first if it does not exist. Unlike NewManagedMemoryRoot
// or NewManagedTempDiskRoot, it shares parent's backing filesystem rather
// than starting an independent tree, so writes through the returned root
// and reads through parent (or a sibling nested root) agree on the same
// bytes; Close on the result is a no-op, since parent remains the owner.
// parent must be writable and backed by an aferoFS (every disk, managed
// temp-disk, and managed in-memory root is; archive roots are not).
func NestedRoot(parent PathRoot, relativePath string) (PathRoot, error) {
	wfs, ok := parent.Writable()
	if !ok {
		return nil, fmt.Errorf("pathroot: %s has no writable filesystem to nest under", parent.URI())
	}
	if err := wfs.MkdirAll(relativePath, 0o755); err != nil {
		return nil, err
	}
	af, ok := wfs.(*aferoFS)
	if !ok {
		return nil, fmt.Errorf("pathroot: %s's filesystem cannot be nested", parent.URI())
	}

	uri := *parent.URI()
	uri.Path = path.Join(uri.Path, relativePath)
	return &managedRoot{
		uri:      &uri,
		rootPath: "/",
		fs:       newAferoFS(afero.NewBasePathFs(af.delegate, relativePath)),
		closeFn:  func() error { return nil },
	}, nil
}
