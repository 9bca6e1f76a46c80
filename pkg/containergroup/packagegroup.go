// Package containergroup implements the L2 layer: PackageContainerGroup,
// ModuleContainerGroup, and OutputContainerGroup, each fanning queries out
// across an ordered sequence of containers and lazily maintaining a
// ContainerClassLoader snapshot over them.
package containergroup

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/ascopes/jct-core/pkg/classloader"
	"github.com/ascopes/jct-core/pkg/container"
	"github.com/ascopes/jct-core/pkg/kind"
	"github.com/ascopes/jct-core/pkg/location"
	"github.com/ascopes/jct-core/pkg/pathroot"
	"github.com/ascopes/jct-core/pkg/util/structerr"
)

// ErrUnrecognizedArchiveExtension reports that AddPath was given a file
// whose suffix does not map to a known archive kind and is not a
// directory either.
type ErrUnrecognizedArchiveExtension struct {
	Path string
}

func (e *ErrUnrecognizedArchiveExtension) Error() string {
	return fmt.Sprintf("unrecognized container path %q: not a directory and not a .jar/.war/.zip archive", e.Path)
}

func (e *ErrUnrecognizedArchiveExtension) Is(target error) bool {
	_, ok := target.(*ErrUnrecognizedArchiveExtension)
	return ok
}

var _ structerr.StructError = &ErrUnrecognizedArchiveExtension{}

var archiveExtensions = map[string]struct{}{
	".jar": {},
	".war": {},
	".zip": {},
}

// PackageContainerGroup is an ordered sequence of containers for a single,
// non-module-oriented, non-output location.
type PackageContainerGroup struct {
	loc     location.Location
	release int

	mu          sync.Mutex
	containers  []container.Container
	classLoader *classloader.ContainerClassLoader // nil until first built or after invalidation
}

// NewPackageContainerGroup creates an empty group bound to loc, which must
// be neither module-oriented nor an output location. release is the
// multi-release version new archive containers resolve against.
func NewPackageContainerGroup(loc location.Location, release int) *PackageContainerGroup {
	return &PackageContainerGroup{loc: loc, release: release}
}

func (g *PackageContainerGroup) Location() location.Location { return g.loc }

// AddContainer appends c to the group and invalidates the cached class
// loader.
func (g *PackageContainerGroup) AddContainer(c container.Container) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.containers = append(g.containers, c)
	g.classLoader = nil
}

// AddPath synthesizes the right container kind for diskPath by filename
// suffix (.jar/.war/.zip → archive container, directory → directory
// container) and appends it. isDir tells AddPath whether diskPath names a
// directory; callers (workspace.Workspace) have already stat'd the path.
func (g *PackageContainerGroup) AddPath(diskPath string, isDir bool) error {
	if isDir {
		g.AddContainer(container.NewDirectoryContainer(g.loc, pathroot.NewDiskRoot(diskPath)))
		return nil
	}

	ext := strings.ToLower(path.Ext(diskPath))
	if _, ok := archiveExtensions[ext]; !ok {
		return &ErrUnrecognizedArchiveExtension{Path: diskPath}
	}
	g.AddContainer(container.NewArchiveContainer(g.loc, pathroot.NewArchiveRoot(diskPath), g.release))
	return nil
}

// Containers returns an immutable snapshot of this group's containers in
// insertion order.
func (g *PackageContainerGroup) Containers() []container.Container {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]container.Container, len(g.containers))
	copy(out, g.containers)
	return out
}

func (g *PackageContainerGroup) Contains(p string) bool {
	for _, c := range g.Containers() {
		if c.Contains(p) {
			return true
		}
	}
	return false
}

func (g *PackageContainerGroup) GetClassBinary(binaryName string) ([]byte, bool, error) {
	for _, c := range g.Containers() {
		data, ok, err := c.GetClassBinary(binaryName)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return data, true, nil
		}
	}
	return nil, false, nil
}

func (g *PackageContainerGroup) GetFileForInput(pkg, relativeName string) (container.FileObject, bool, error) {
	for _, c := range g.Containers() {
		fo, ok, err := c.GetFileForInput(pkg, relativeName)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return fo, true, nil
		}
	}
	return nil, false, nil
}

func (g *PackageContainerGroup) GetJavaFileForInput(binaryName string, k kind.Kind) (container.FileObject, bool, error) {
	for _, c := range g.Containers() {
		fo, ok, err := c.GetJavaFileForInput(binaryName, k)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return fo, true, nil
		}
	}
	return nil, false, nil
}

// GetFileForOutput delegates to the first writable container. Returns
// ok=false if no container in the group is writable.
func (g *PackageContainerGroup) GetFileForOutput(pkg, relativeName string) (container.FileObject, bool, error) {
	c, ok := g.firstWritable()
	if !ok {
		return nil, false, nil
	}
	return c.GetFileForOutput(pkg, relativeName)
}

func (g *PackageContainerGroup) GetJavaFileForOutput(binaryName string, k kind.Kind) (container.FileObject, bool, error) {
	c, ok := g.firstWritable()
	if !ok {
		return nil, false, nil
	}
	return c.GetJavaFileForOutput(binaryName, k)
}

// firstWritable returns the first container, in insertion order, that
// exposes its PathRoot and whose root has a writable view. Archive
// containers never qualify.
func (g *PackageContainerGroup) firstWritable() (container.Container, bool) {
	for _, c := range g.Containers() {
		rp, ok := c.(container.RootProvider)
		if !ok {
			continue
		}
		if _, writable := rp.Root().Writable(); writable {
			return c, true
		}
	}
	return nil, false
}

// FirstRoot returns the PathRoot backing the first writable container in
// the group, for operations (jarwriter.WriteJAR) that need the whole
// managed tree rather than a single file lookup.
func (g *PackageContainerGroup) FirstRoot() (pathroot.PathRoot, bool) {
	c, ok := g.firstWritable()
	if !ok {
		return nil, false
	}
	rp, ok := c.(container.RootProvider)
	if !ok {
		return nil, false
	}
	return rp.Root(), true
}

func (g *PackageContainerGroup) GetResource(slashPath string) (container.Resource, bool, error) {
	for _, c := range g.Containers() {
		res, ok, err := c.GetResource(slashPath)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return res, true, nil
		}
	}
	return nil, false, nil
}

func (g *PackageContainerGroup) InferBinaryName(fo container.FileObject) (string, bool) {
	for _, c := range g.Containers() {
		if name, ok := c.InferBinaryName(fo); ok {
			return name, true
		}
	}
	return "", false
}

// List concatenates every container's List result, preserving container
// order and within-container walk order.
func (g *PackageContainerGroup) List(pkg string, kinds kind.Set, recurse bool) ([]container.FileObject, error) {
	var all []container.FileObject
	for _, c := range g.Containers() {
		files, err := c.List(pkg, kinds, recurse)
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}
	return all, nil
}

// ClassLoader returns this group's cached ContainerClassLoader, building it
// on first call or after the cache was invalidated by AddContainer.
func (g *PackageContainerGroup) ClassLoader() *classloader.ContainerClassLoader {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.classLoader == nil {
		g.classLoader = classloader.New(g.loc, g.containers, nil)
	}
	return g.classLoader
}

// Close closes every container in the group, collecting every failure
// rather than stopping at the first.
func (g *PackageContainerGroup) Close() []error {
	var errs []error
	for _, c := range g.Containers() {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
