// Package workspace implements Workspace, the L3 FileManager: a map from
// Location to the right kind of container group, plus the validated
// add/create operations and an aggregate close across every owned group.
package workspace

import (
	"fmt"
	"os"
	"sync"

	apierrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/ascopes/jct-core/pkg/binaryname"
	"github.com/ascopes/jct-core/pkg/classloader"
	"github.com/ascopes/jct-core/pkg/container"
	"github.com/ascopes/jct-core/pkg/containergroup"
	"github.com/ascopes/jct-core/pkg/jarwriter"
	"github.com/ascopes/jct-core/pkg/kind"
	"github.com/ascopes/jct-core/pkg/location"
	"github.com/ascopes/jct-core/pkg/pathroot"
	"github.com/ascopes/jct-core/pkg/util/structerr"
)

// PathStrategyKind selects what kind of PathRoot CreatePackage/CreateModule
// materialize.
type PathStrategyKind int

const (
	// InMemory creates a fresh virtual filesystem per managed directory.
	InMemory PathStrategyKind = iota
	// TempDisk creates a uniquely named host directory per managed
	// directory.
	TempDisk
)

// PathStrategy configures how Workspace.CreatePackage/CreateModule
// materialize managed directories.
type PathStrategy struct {
	Kind PathStrategyKind
}

// Default fills in the zero-value PathStrategy with InMemory, the cheaper
// default for short-lived test compilations.
func (s *PathStrategy) Default() {
	// InMemory is PathStrategyKind's zero value already; Default exists so
	// callers can always call it uniformly, matching GitDirectoryOptions.Default.
}

func (s PathStrategy) newManagedRoot(name string) (pathroot.PathRoot, error) {
	if s.Kind == TempDisk {
		return pathroot.NewManagedTempDiskRoot(name)
	}
	return pathroot.NewManagedMemoryRoot(name), nil
}

// Invalid-input errors: fatal to the calling operation, never wrapped as
// not-found.

type ErrModuleOrientedMismatch struct {
	LocationName string
}

func (e *ErrModuleOrientedMismatch) Error() string {
	return fmt.Sprintf("location %s is module-oriented or output-incompatible for this operation", e.LocationName)
}
func (e *ErrModuleOrientedMismatch) Is(target error) bool {
	_, ok := target.(*ErrModuleOrientedMismatch)
	return ok
}

var _ structerr.StructError = &ErrModuleOrientedMismatch{}

type ErrNestedModuleLocation struct{}

func (e *ErrNestedModuleLocation) Error() string {
	return "cannot nest a ModuleLocation inside another ModuleLocation"
}
func (e *ErrNestedModuleLocation) Is(target error) bool {
	_, ok := target.(*ErrNestedModuleLocation)
	return ok
}

var _ structerr.StructError = &ErrNestedModuleLocation{}

type ErrNoSuchPath struct {
	Path string
}

func (e *ErrNoSuchPath) Error() string {
	return fmt.Sprintf("path %q does not exist", e.Path)
}
func (e *ErrNoSuchPath) Is(target error) bool {
	_, ok := target.(*ErrNoSuchPath)
	return ok
}

var _ structerr.StructError = &ErrNoSuchPath{}

// group is the common surface every L2 group kind exposes to Workspace,
// regardless of which concrete kind backs a given location.
type group interface {
	Close() []error
}

// Workspace is the top-level map from Location to the right L2 group kind,
// chosen by the location's facets: module-oriented-and-not-output locations
// get a ModuleContainerGroup, output locations get an OutputContainerGroup
// (even if also module-oriented — none of the well-known locations are
// both, but the hybrid handles it if a caller defines one), everything
// else gets a plain PackageContainerGroup.
type Workspace struct {
	strategy PathStrategy
	release  int

	mu     sync.Mutex
	groups map[location.Location]group
}

// New creates an empty Workspace. strategy controls CreatePackage/
// CreateModule's managed-directory kind; release is the multi-release
// version every archive container added to this workspace resolves
// against.
func New(strategy PathStrategy, release int) *Workspace {
	return &Workspace{strategy: strategy, release: release, groups: make(map[location.Location]group)}
}

func (w *Workspace) groupFor(loc location.Location) group {
	w.mu.Lock()
	defer w.mu.Unlock()

	if g, ok := w.groups[loc]; ok {
		return g
	}

	var g group
	switch {
	case loc.IsModuleOrientedLocation() && !loc.IsOutputLocation():
		g = containergroup.NewModuleContainerGroup(loc, w.release)
	case loc.IsOutputLocation():
		g = containergroup.NewOutputContainerGroup(loc, w.release)
	default:
		g = containergroup.NewPackageContainerGroup(loc, w.release)
	}
	w.groups[loc] = g
	return g
}

// AddPackage requires path to exist (as either a directory or a
// recognized archive file), rejects module-oriented locations, and
// appends path as a new container under loc.
func (w *Workspace) AddPackage(loc location.Location, path string) error {
	if loc.IsModuleOrientedLocation() {
		return &ErrModuleOrientedMismatch{LocationName: loc.Name()}
	}
	info, err := os.Stat(path)
	if err != nil {
		return &ErrNoSuchPath{Path: path}
	}

	g := w.groupFor(loc)
	switch grp := g.(type) {
	case *containergroup.PackageContainerGroup:
		return grp.AddPath(path, info.IsDir())
	case *containergroup.OutputContainerGroup:
		return grp.AddPath(path, info.IsDir())
	default:
		return &ErrModuleOrientedMismatch{LocationName: loc.Name()}
	}
}

// AddModule delegates to AddPackage(ModuleLocation(loc, moduleName), path)
// conceptually: it rejects non-output, non-module-oriented locations and
// rejects nesting a module inside a ModuleLocation, then adds path as a
// container under that module's subgroup.
func (w *Workspace) AddModule(loc location.Location, moduleName, path string) error {
	if _, nested := loc.(*location.ModuleLocation); nested {
		return &ErrNestedModuleLocation{}
	}
	if !loc.IsOutputLocation() && !loc.IsModuleOrientedLocation() {
		return &ErrModuleOrientedMismatch{LocationName: loc.Name()}
	}
	info, err := os.Stat(path)
	if err != nil {
		return &ErrNoSuchPath{Path: path}
	}

	g := w.groupFor(loc)
	switch grp := g.(type) {
	case *containergroup.ModuleContainerGroup:
		return grp.GetOrCreateModule(moduleName).AddPath(path, info.IsDir())
	case *containergroup.OutputContainerGroup:
		mg, err := grp.GetOrCreateModule(moduleName)
		if err != nil {
			return err
		}
		return mg.AddPath(path, info.IsDir())
	default:
		return &ErrModuleOrientedMismatch{LocationName: loc.Name()}
	}
}

// CreatePackage instantiates a fresh managed directory via the
// workspace's PathStrategy, adds it to loc's group, and returns the new
// PathRoot so callers can populate it directly (e.g. a test inserting a
// synthetic compilation unit).
func (w *Workspace) CreatePackage(loc location.Location) (pathroot.PathRoot, error) {
	if loc.IsModuleOrientedLocation() {
		return nil, &ErrModuleOrientedMismatch{LocationName: loc.Name()}
	}

	root, err := w.strategy.newManagedRoot(loc.Name())
	if err != nil {
		return nil, err
	}

	g := w.groupFor(loc)
	switch grp := g.(type) {
	case *containergroup.PackageContainerGroup:
		grp.AddContainer(container.NewDirectoryContainer(loc, root))
	case *containergroup.OutputContainerGroup:
		grp.AddContainer(container.NewDirectoryContainer(loc, root))
	default:
		_ = root.Close()
		return nil, &ErrModuleOrientedMismatch{LocationName: loc.Name()}
	}
	return root, nil
}

// CreateModule is CreatePackage wrapped in a ModuleLocation. For a plain
// module-oriented location it creates an independent fresh managed
// directory per module, the same as CreatePackage would. For an output
// location it instead asks the group to nest a subdirectory under
// whichever root CreatePackage (or AddPackage) already registered there,
// so module writes land in the same tree the location's other output
// operations use rather than a second, disconnected one. Either way the
// new container is registered under loc's module-name subgroup and its
// PathRoot is returned.
func (w *Workspace) CreateModule(loc location.Location, moduleName string) (pathroot.PathRoot, error) {
	if _, nested := loc.(*location.ModuleLocation); nested {
		return nil, &ErrNestedModuleLocation{}
	}
	if !loc.IsOutputLocation() && !loc.IsModuleOrientedLocation() {
		return nil, &ErrModuleOrientedMismatch{LocationName: loc.Name()}
	}

	g := w.groupFor(loc)
	switch grp := g.(type) {
	case *containergroup.ModuleContainerGroup:
		moduleLoc := location.NewModuleLocation(loc, moduleName)
		root, err := w.strategy.newManagedRoot(moduleLoc.Name())
		if err != nil {
			return nil, err
		}
		grp.GetOrCreateModule(moduleName).AddContainer(container.NewDirectoryContainer(moduleLoc, root))
		return root, nil
	case *containergroup.OutputContainerGroup:
		mg, err := grp.GetOrCreateModule(moduleName)
		if err != nil {
			return nil, err
		}
		root, ok := mg.FirstRoot()
		if !ok {
			return nil, &ErrNoSuchPath{Path: loc.Name()}
		}
		return root, nil
	default:
		return nil, &ErrModuleOrientedMismatch{LocationName: loc.Name()}
	}
}

// GetJavaFileForInput routes name through loc's group: a plain
// PackageContainerGroup answers directly, an OutputContainerGroup applies
// its own module-prefix-first routing, and a ModuleContainerGroup expects
// name to carry a "<module>/<binaryName>" prefix naming one of its known
// modules.
func (w *Workspace) GetJavaFileForInput(loc location.Location, binaryName string, k kind.Kind) (container.FileObject, bool, error) {
	switch grp := w.groupFor(loc).(type) {
	case *containergroup.PackageContainerGroup:
		return grp.GetJavaFileForInput(binaryName, k)
	case *containergroup.OutputContainerGroup:
		return grp.GetJavaFileForInput(binaryName, k)
	case *containergroup.ModuleContainerGroup:
		moduleName, remainder, ok := binaryname.TryExtractModulePrefix(binaryName)
		if !ok {
			return nil, false, nil
		}
		mg, known := grp.GetModule(moduleName)
		if !known {
			return nil, false, nil
		}
		return mg.GetJavaFileForInput(remainder, k)
	default:
		return nil, false, nil
	}
}

// GetJavaFileForOutput is GetJavaFileForInput's write-side counterpart.
func (w *Workspace) GetJavaFileForOutput(loc location.Location, binaryName string, k kind.Kind) (container.FileObject, bool, error) {
	switch grp := w.groupFor(loc).(type) {
	case *containergroup.PackageContainerGroup:
		return grp.GetJavaFileForOutput(binaryName, k)
	case *containergroup.OutputContainerGroup:
		return grp.GetJavaFileForOutput(binaryName, k)
	case *containergroup.ModuleContainerGroup:
		moduleName, remainder, ok := binaryname.TryExtractModulePrefix(binaryName)
		if !ok {
			return nil, false, nil
		}
		mg, known := grp.GetModule(moduleName)
		if !known {
			return nil, false, nil
		}
		return mg.GetJavaFileForOutput(remainder, k)
	default:
		return nil, false, nil
	}
}

// ClassLoaderFor returns the lazily-built ContainerClassLoader snapshot
// for loc. It returns nil for output locations.
func (w *Workspace) ClassLoaderFor(loc location.Location) *classloader.ContainerClassLoader {
	switch grp := w.groupFor(loc).(type) {
	case *containergroup.PackageContainerGroup:
		return grp.ClassLoader()
	case *containergroup.ModuleContainerGroup:
		return grp.ClassLoader()
	default:
		return nil
	}
}

// ClassOutputJAR writes the first writable container of CLASS_OUTPUT to
// destPath as a flat JAR, for harvesting a compilation's class files once
// a test is done with the workspace.
func (w *Workspace) ClassOutputJAR(destPath string) error {
	return w.writeOutputJAR(location.ClassOutput, destPath)
}

// SourceOutputJAR is ClassOutputJAR's counterpart for SOURCE_OUTPUT
// (generated source files, e.g. from annotation processing).
func (w *Workspace) SourceOutputJAR(destPath string) error {
	return w.writeOutputJAR(location.SourceOutput, destPath)
}

func (w *Workspace) writeOutputJAR(loc location.Location, destPath string) error {
	grp, ok := w.groupFor(loc).(*containergroup.OutputContainerGroup)
	if !ok {
		return &ErrModuleOrientedMismatch{LocationName: loc.Name()}
	}
	root, ok := grp.FirstRoot()
	if !ok {
		return &ErrNoSuchPath{Path: loc.Name()}
	}
	return jarwriter.WriteJAR(root, destPath)
}

// Close closes every owned group, collecting every failure into a single
// aggregate error rather than stopping at the first.
func (w *Workspace) Close() error {
	w.mu.Lock()
	groups := make([]group, 0, len(w.groups))
	for _, g := range w.groups {
		groups = append(groups, g)
	}
	w.mu.Unlock()

	var errs []error
	for _, g := range groups {
		errs = append(errs, g.Close()...)
	}
	return apierrors.NewAggregate(errs)
}
