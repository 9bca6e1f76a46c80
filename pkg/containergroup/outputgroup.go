package containergroup

import (
	"fmt"
	"path/filepath"
	"sync"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/ascopes/jct-core/pkg/binaryname"
	"github.com/ascopes/jct-core/pkg/container"
	"github.com/ascopes/jct-core/pkg/kind"
	"github.com/ascopes/jct-core/pkg/location"
	"github.com/ascopes/jct-core/pkg/pathroot"
	"github.com/ascopes/jct-core/pkg/util/structerr"
)

// ErrNoPathRootForModule reports that GetOrCreateModule was called before
// the output group had any path root to nest a module subdirectory under.
type ErrNoPathRootForModule struct {
	ModuleName string
}

func (e *ErrNoPathRootForModule) Error() string {
	return fmt.Sprintf("cannot create module %q: output group has no path root yet", e.ModuleName)
}

func (e *ErrNoPathRootForModule) Is(target error) bool {
	_, ok := target.(*ErrNoPathRootForModule)
	return ok
}

var _ structerr.StructError = &ErrNoPathRootForModule{}

// OutputContainerGroup behaves like a PackageContainerGroup for
// non-module queries, and additionally materializes per-module
// PackageContainerGroup subgroups on demand, since an output location
// accepts both flat packages and modules. Composition over
// inheritance: it embeds a *PackageContainerGroup and forwards
// non-module behavior to it, rather than a PackageContainerGroup
// subclassing itself into a module-aware variant.
type OutputContainerGroup struct {
	*PackageContainerGroup

	mu      sync.Mutex
	modules map[string]*PackageContainerGroup
}

// NewOutputContainerGroup creates an empty group bound to loc, which must
// be an output location.
func NewOutputContainerGroup(loc location.Location, release int) *OutputContainerGroup {
	return &OutputContainerGroup{
		PackageContainerGroup: NewPackageContainerGroup(loc, release),
		modules:               make(map[string]*PackageContainerGroup),
	}
}

// GetOrCreateModule returns moduleName's subgroup, creating a fresh
// subdirectory nested under the group's first path root (whichever
// container was added or created first, whether via AddPath or
// AddContainer) on first request. Idempotent.
func (g *OutputContainerGroup) GetOrCreateModule(moduleName string) (*PackageContainerGroup, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if mg, ok := g.modules[moduleName]; ok {
		return mg, nil
	}

	parent, ok := g.FirstRoot()
	if !ok {
		return nil, &ErrNoPathRootForModule{ModuleName: moduleName}
	}

	sub, err := pathroot.NestedRoot(parent, filepath.FromSlash(moduleName))
	if err != nil {
		return nil, err
	}

	moduleLoc := location.NewModuleLocation(g.Location(), moduleName)
	mg := NewPackageContainerGroup(moduleLoc, 0)
	mg.AddContainer(container.NewDirectoryContainer(moduleLoc, sub))
	g.modules[moduleName] = mg
	return mg, nil
}

// GetModule returns moduleName's subgroup, if it has already been
// created.
func (g *OutputContainerGroup) GetModule(moduleName string) (*PackageContainerGroup, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	mg, ok := g.modules[moduleName]
	return mg, ok
}

// GetJavaFileForOutput routes name through the module-prefix extractor
// first: if name carries a prefix naming an already-created module, the
// remainder is written there; otherwise the full name falls back to the
// flat package behavior inherited from PackageContainerGroup.
func (g *OutputContainerGroup) GetJavaFileForOutput(name string, k kind.Kind) (container.FileObject, bool, error) {
	if moduleName, remainder, ok := binaryname.TryExtractModulePrefix(name); ok {
		if mg, known := g.GetModule(moduleName); known {
			return mg.GetJavaFileForOutput(remainder, k)
		}
	}
	return g.PackageContainerGroup.GetJavaFileForOutput(name, k)
}

// GetFileForOutput is GetJavaFileForOutput's package+relative-name
// counterpart, with the same module-prefix-first routing applied to pkg.
func (g *OutputContainerGroup) GetFileForOutput(pkg, relativeName string) (container.FileObject, bool, error) {
	if moduleName, remainder, ok := binaryname.TryExtractModulePrefix(pkg); ok {
		if mg, known := g.GetModule(moduleName); known {
			return mg.GetFileForOutput(remainder, relativeName)
		}
	}
	return g.PackageContainerGroup.GetFileForOutput(pkg, relativeName)
}

// GetJavaFileForInput applies the same module-prefix-first routing to
// reads as GetJavaFileForOutput: a module prefix is honored uniformly
// whether reading or writing.
func (g *OutputContainerGroup) GetJavaFileForInput(name string, k kind.Kind) (container.FileObject, bool, error) {
	if moduleName, remainder, ok := binaryname.TryExtractModulePrefix(name); ok {
		if mg, known := g.GetModule(moduleName); known {
			return mg.GetJavaFileForInput(remainder, k)
		}
	}
	return g.PackageContainerGroup.GetJavaFileForInput(name, k)
}

// GetFileForInput is GetJavaFileForInput's package+relative-name
// counterpart.
func (g *OutputContainerGroup) GetFileForInput(pkg, relativeName string) (container.FileObject, bool, error) {
	if moduleName, remainder, ok := binaryname.TryExtractModulePrefix(pkg); ok {
		if mg, known := g.GetModule(moduleName); known {
			return mg.GetFileForInput(remainder, relativeName)
		}
	}
	return g.PackageContainerGroup.GetFileForInput(pkg, relativeName)
}

// Modules returns a non-nil immutable snapshot of every module name
// materialized so far.
func (g *OutputContainerGroup) Modules() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := sets.NewString()
	for name := range g.modules {
		names.Insert(name)
	}
	return names.List()
}

// Close closes the flat package containers and every materialized
// module's containers, collecting every failure.
func (g *OutputContainerGroup) Close() []error {
	errs := g.PackageContainerGroup.Close()

	g.mu.Lock()
	modules := make([]*PackageContainerGroup, 0, len(g.modules))
	for _, mg := range g.modules {
		modules = append(modules, mg)
	}
	g.mu.Unlock()

	for _, mg := range modules {
		errs = append(errs, mg.Close()...)
	}
	return errs
}
