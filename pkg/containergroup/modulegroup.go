package containergroup

import (
	"sync"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/ascopes/jct-core/pkg/classloader"
	"github.com/ascopes/jct-core/pkg/container"
	"github.com/ascopes/jct-core/pkg/location"
)

// ModuleContainerGroup maps module name to a PackageContainerGroup, for a
// single module-oriented, non-output location.
type ModuleContainerGroup struct {
	loc     location.Location
	release int

	mu      sync.Mutex
	modules map[string]*PackageContainerGroup

	classLoaderMu sync.Mutex
	classLoader   *classloader.ContainerClassLoader
}

// NewModuleContainerGroup creates an empty group bound to loc, which must
// be module-oriented and not an output location.
func NewModuleContainerGroup(loc location.Location, release int) *ModuleContainerGroup {
	return &ModuleContainerGroup{loc: loc, release: release, modules: make(map[string]*PackageContainerGroup)}
}

func (g *ModuleContainerGroup) Location() location.Location { return g.loc }

// GetOrCreateModule returns the PackageContainerGroup for moduleName,
// creating an empty one on first request. Idempotent.
func (g *ModuleContainerGroup) GetOrCreateModule(moduleName string) *PackageContainerGroup {
	g.mu.Lock()
	defer g.mu.Unlock()

	if mg, ok := g.modules[moduleName]; ok {
		return mg
	}
	mg := NewPackageContainerGroup(location.NewModuleLocation(g.loc, moduleName), g.release)
	g.modules[moduleName] = mg
	g.invalidateClassLoader()
	return mg
}

// GetModule returns the module's group, if it has been created.
func (g *ModuleContainerGroup) GetModule(moduleName string) (*PackageContainerGroup, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	mg, ok := g.modules[moduleName]
	return mg, ok
}

// Modules returns a non-nil immutable snapshot of every module name this
// group knows about, even when the group is empty.
func (g *ModuleContainerGroup) Modules() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := sets.NewString()
	for name := range g.modules {
		names.Insert(name)
	}
	return names.List()
}

// Contains routes to moduleName's group, returning false if moduleName is
// unknown to this group.
func (g *ModuleContainerGroup) Contains(moduleName, p string) bool {
	mg, ok := g.GetModule(moduleName)
	if !ok {
		return false
	}
	return mg.Contains(p)
}

// FindModules composes every known module's per-container ModuleFinder
// views into a single layered list, for service-loader-style discovery
// across the whole group.
func (g *ModuleContainerGroup) FindModules() []container.ModuleRef {
	g.mu.Lock()
	modules := make([]*PackageContainerGroup, 0, len(g.modules))
	for _, mg := range g.modules {
		modules = append(modules, mg)
	}
	g.mu.Unlock()

	var refs []container.ModuleRef
	for _, mg := range modules {
		for _, c := range mg.Containers() {
			finder, ok := c.ModuleFinder()
			if !ok {
				continue
			}
			refs = append(refs, finder.FindModules()...)
		}
	}
	return refs
}

func (g *ModuleContainerGroup) invalidateClassLoader() {
	g.classLoaderMu.Lock()
	defer g.classLoaderMu.Unlock()
	g.classLoader = nil
}

// ClassLoader builds (or returns the cached) snapshot covering every
// module currently known to this group. There are no "package" containers
// at this layer, only module ones, so the package slice is always empty.
func (g *ModuleContainerGroup) ClassLoader() *classloader.ContainerClassLoader {
	g.classLoaderMu.Lock()
	defer g.classLoaderMu.Unlock()
	if g.classLoader != nil {
		return g.classLoader
	}

	g.mu.Lock()
	byModule := make(map[string][]container.Container, len(g.modules))
	for name, mg := range g.modules {
		byModule[name] = mg.Containers()
	}
	g.mu.Unlock()

	g.classLoader = classloader.New(g.loc, nil, byModule)
	return g.classLoader
}

// Close closes every module's containers, collecting every failure.
func (g *ModuleContainerGroup) Close() []error {
	g.mu.Lock()
	modules := make([]*PackageContainerGroup, 0, len(g.modules))
	for _, mg := range g.modules {
		modules = append(modules, mg)
	}
	g.mu.Unlock()

	var errs []error
	for _, mg := range modules {
		errs = append(errs, mg.Close()...)
	}
	return errs
}
