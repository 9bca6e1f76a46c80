// Package location defines the Location identifiers the file manager
// partitions its containers by: well-known JSR-199-style locations (class
// path, source output, ...) plus module-specific locations layered on top
// of them.
package location

import "fmt"

// Location is an interned identifier with three boolean facets. Well-known
// values are the package-level vars below; ModuleLocation wraps a Location
// together with a module name.
type Location interface {
	// Name is the JSR-199 standard location name, e.g. "CLASS_PATH".
	Name() string
	// IsOutputLocation reports whether the compiler frontend may write
	// into this location.
	IsOutputLocation() bool
	// IsModuleOrientedLocation reports whether this location's contents
	// are addressed by module name first.
	IsModuleOrientedLocation() bool
	// IsModuleSpecificLocation reports whether this is a ModuleLocation.
	IsModuleSpecificLocation() bool
}

// standardLocation is the concrete, interned implementation of Location.
type standardLocation struct {
	name           string
	output         bool
	moduleOriented bool
}

func (l *standardLocation) Name() string { return l.name }
func (l *standardLocation) IsOutputLocation() bool { return l.output }
func (l *standardLocation) IsModuleOrientedLocation() bool { return l.moduleOriented }
func (l *standardLocation) IsModuleSpecificLocation() bool { return false }
func (l *standardLocation) String() string { return l.name }

// New interns a new Location value. Intended for non-standard locations
// that callers define themselves (e.g. a custom annotation processor path);
// the well-known locations below should be used for their JSR-199 names.
func New(name string, output, moduleOriented bool) Location {
	return &standardLocation{name: name, output: output, moduleOriented: moduleOriented}
}

// Well-known locations, matching the JSR-199 standard location names.
var (
	SourcePath                    Location = New("SOURCE_PATH", false, false)
	ClassPath                     Location = New("CLASS_PATH", false, false)
	ModulePath                    Location = New("MODULE_PATH", false, true)
	ModuleSourcePath              Location = New("MODULE_SOURCE_PATH", false, true)
	AnnotationProcessorPath       Location = New("ANNOTATION_PROCESSOR_PATH", false, false)
	AnnotationProcessorModulePath Location = New("ANNOTATION_PROCESSOR_MODULE_PATH", false, true)
	ClassOutput                   Location = New("CLASS_OUTPUT", true, false)
	SourceOutput                  Location = New("SOURCE_OUTPUT", true, false)
	NativeHeaderOutput            Location = New("NATIVE_HEADER_OUTPUT", true, false)
	PlatformClassPath             Location = New("PLATFORM_CLASS_PATH", false, false)
	SystemModules                 Location = New("SYSTEM_MODULES", false, true)
	UpgradeModulePath             Location = New("UPGRADE_MODULE_PATH", false, true)
	PatchModulePath               Location = New("PATCH_MODULE_PATH", false, false)
)

// ModuleLocation is a (parent, module-name) pair. It is always
// module-specific, and inherits output-ness from its parent; it is never
// itself module-oriented (its contents are addressed as a flat package
// tree once the module has been selected).
type ModuleLocation struct {
	Parent     Location
	ModuleName string
}

// NewModuleLocation builds a ModuleLocation. Wrapping a ModuleLocation
// inside another ModuleLocation is invalid input and is rejected by
// workspace.Workspace, not here — this constructor is intentionally
// permissive so tests can build invalid values.
func NewModuleLocation(parent Location, moduleName string) *ModuleLocation {
	return &ModuleLocation{Parent: parent, ModuleName: moduleName}
}

func (l *ModuleLocation) Name() string {
	return fmt.Sprintf("%s[%s]", l.Parent.Name(), l.ModuleName)
}

func (l *ModuleLocation) IsOutputLocation() bool         { return l.Parent.IsOutputLocation() }
func (l *ModuleLocation) IsModuleOrientedLocation() bool { return false }
func (l *ModuleLocation) IsModuleSpecificLocation() bool { return true }

// Equal reports whether two Locations are the same Location, using
// ModuleLocation's pair identity when either side is module-specific.
func Equal(a, b Location) bool {
	am, aIsModule := a.(*ModuleLocation)
	bm, bIsModule := b.(*ModuleLocation)
	if aIsModule != bIsModule {
		return false
	}
	if aIsModule {
		return Equal(am.Parent, bm.Parent) && am.ModuleName == bm.ModuleName
	}
	return a == b
}
