package container

import (
	"errors"
	"io/fs"
	"net/url"
	"path"
	"strings"

	"github.com/ascopes/jct-core/pkg/kind"
	"github.com/ascopes/jct-core/pkg/location"
	"github.com/ascopes/jct-core/pkg/pathroot"
)

// directoryContainer wraps a disk or managed PathRoot. Close closes that
// PathRoot: a no-op for borrowed disk roots, a release of the underlying
// tree for managed roots.
type directoryContainer struct {
	loc  location.Location
	root pathroot.PathRoot
}

// NewDirectoryContainer wraps root (a disk or managed PathRoot) as a
// Container bound to loc.
func NewDirectoryContainer(loc location.Location, root pathroot.PathRoot) Container {
	return &directoryContainer{loc: loc, root: root}
}

func (c *directoryContainer) Location() location.Location { return c.loc }

// Root exposes the wrapped PathRoot, satisfying RootProvider.
func (c *directoryContainer) Root() pathroot.PathRoot { return c.root }

func (c *directoryContainer) Contains(p string) bool {
	fsys, err := c.root.FS()
	if err != nil {
		return false
	}
	info, err := fsys.Stat(p)
	return err == nil && !info.IsDir()
}

func (c *directoryContainer) FindFile(relativePath string) (string, bool, error) {
	if strings.HasPrefix(relativePath, "/") {
		return "", false, nil
	}
	fsys, err := c.root.FS()
	if err != nil {
		return "", false, err
	}
	info, err := fsys.Stat(relativePath)
	if isNotExist(err) {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	if info.IsDir() {
		return "", false, nil
	}
	return path.Join(c.root.RootPath(), relativePath), true, nil
}

func (c *directoryContainer) GetClassBinary(binaryName string) ([]byte, bool, error) {
	relativePath := kind.BinaryNameToRelativePath(binaryName, kind.Class)
	return c.readFile(relativePath)
}

func (c *directoryContainer) readFile(relativePath string) ([]byte, bool, error) {
	fsys, err := c.root.FS()
	if err != nil {
		return nil, false, err
	}
	data, err := fsys.ReadFile(relativePath)
	if isNotExist(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *directoryContainer) GetFileForInput(pkg, relativeName string) (FileObject, bool, error) {
	relativePath := path.Join(pkg, relativeName)
	return c.fileObjectForInput(relativePath, kind.ForExtension(path.Ext(relativeName)))
}

func (c *directoryContainer) fileObjectForInput(relativePath string, k kind.Kind) (FileObject, bool, error) {
	fsys, err := c.root.FS()
	if err != nil {
		return nil, false, err
	}
	info, err := fsys.Stat(relativePath)
	if isNotExist(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	if info.IsDir() {
		return nil, false, nil
	}
	writable, _ := c.root.Writable()
	return newFileObject(c.uriFor(relativePath), k, relativePath, fsys, writable), true, nil
}

func (c *directoryContainer) GetFileForOutput(pkg, relativeName string) (FileObject, bool, error) {
	relativePath := path.Join(pkg, relativeName)
	return c.fileObjectForOutput(relativePath, kind.ForExtension(path.Ext(relativeName)))
}

func (c *directoryContainer) fileObjectForOutput(relativePath string, k kind.Kind) (FileObject, bool, error) {
	writable, ok := c.root.Writable()
	if !ok {
		return nil, false, nil
	}
	fsys, err := c.root.FS()
	if err != nil {
		return nil, false, err
	}
	return newFileObject(c.uriFor(relativePath), k, relativePath, fsys, writable), true, nil
}

func (c *directoryContainer) GetJavaFileForInput(binaryName string, k kind.Kind) (FileObject, bool, error) {
	relativePath := kind.BinaryNameToRelativePath(binaryName, k)
	return c.fileObjectForInput(relativePath, k)
}

func (c *directoryContainer) GetJavaFileForOutput(binaryName string, k kind.Kind) (FileObject, bool, error) {
	relativePath := kind.BinaryNameToRelativePath(binaryName, k)
	return c.fileObjectForOutput(relativePath, k)
}

func (c *directoryContainer) GetResource(slashPath string) (Resource, bool, error) {
	relativePath := strings.TrimLeft(slashPath, "/")
	fsys, err := c.root.FS()
	if err != nil {
		return nil, false, err
	}
	info, err := fsys.Stat(relativePath)
	if isNotExist(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	if info.IsDir() {
		return nil, false, nil
	}
	return &resource{uri: c.uriFor(relativePath), fsys: fsys, relativePath: relativePath}, true, nil
}

func (c *directoryContainer) InferBinaryName(fo FileObject) (string, bool) {
	return inferBinaryNameFromURI(c.root, fo)
}

func (c *directoryContainer) List(pkg string, kinds kind.Set, recurse bool) ([]FileObject, error) {
	fsys, err := c.root.FS()
	if err != nil {
		return nil, err
	}
	writable, _ := c.root.Writable()
	return listFiles(fsys, writable, c.root, pkg, kinds, recurse, c.uriFor)
}

func (c *directoryContainer) ModuleFinder() (ModuleFinder, bool) { return nil, false }

func (c *directoryContainer) Close() error { return c.root.Close() }

func (c *directoryContainer) uriFor(relativePath string) *url.URL {
	base := c.root.URI()
	clone := *base
	clone.Path = path.Join(base.Path, relativePath)
	return &clone
}

// inferBinaryNameFromURI is shared between directory and archive
// containers: it only succeeds if fo's URI sits under root's URI. Archive
// roots identify themselves with an opaque "jar:file://...!/entry" URI
// rather than a Path, so that form is handled separately from the plain
// disk/managed "file://.../entry" form.
func inferBinaryNameFromURI(root pathroot.PathRoot, fo FileObject) (string, bool) {
	rootURI := root.URI()
	fileURI := fo.URI()
	if fileURI.Scheme != rootURI.Scheme {
		return "", false
	}

	if rootURI.Opaque != "" {
		prefix := rootURI.Opaque + "!/"
		if !strings.HasPrefix(fileURI.Opaque, prefix) {
			return "", false
		}
		relativePath := strings.TrimPrefix(fileURI.Opaque, prefix)
		return kind.RelativePathToBinaryName(relativePath, fo.Kind()), true
	}

	relativePath := strings.TrimPrefix(fileURI.Path, rootURI.Path)
	relativePath = strings.TrimPrefix(relativePath, "/")
	if relativePath == fileURI.Path {
		// no trimming happened: fo wasn't under root.
		return "", false
	}
	return kind.RelativePathToBinaryName(relativePath, fo.Kind()), true
}

// listFiles walks from pkg's directory to depth 1 or unbounded,
// collecting FileObjects whose Kind is in kinds. A missing package
// directory yields an empty result, not an error.
func listFiles(
	fsys pathroot.FS,
	writable pathroot.WritableFS,
	root pathroot.PathRoot,
	pkg string,
	kinds kind.Set,
	recurse bool,
	uriFor func(string) *url.URL,
) ([]FileObject, error) {
	startDir := pkg
	if startDir == "" {
		startDir = "."
	}

	if _, err := fsys.Stat(startDir); isNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var results []FileObject
	walk := func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recurse && p != startDir {
				return fs.SkipDir
			}
			return nil
		}
		k := kind.ForExtension(path.Ext(p))
		if !kinds.Contains(k) {
			return nil
		}
		results = append(results, newFileObject(uriFor(p), k, p, fsys, writable))
		return nil
	}

	if err := fs.WalkDir(fsys, startDir, walk); err != nil {
		return nil, err
	}
	return results, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
