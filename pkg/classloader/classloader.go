// Package classloader implements ContainerClassLoader, the L3 snapshot of
// a location's containers used to resolve class bytes and resources by
// name, including service-loader-style lookups that cross a module
// prefix.
package classloader

import (
	"fmt"
	"net/url"

	"github.com/ascopes/jct-core/pkg/binaryname"
	"github.com/ascopes/jct-core/pkg/container"
	"github.com/ascopes/jct-core/pkg/location"
	"github.com/ascopes/jct-core/pkg/util/structerr"
	"github.com/sirupsen/logrus"
)

// ErrClassNotFound reports that no container in the loader's snapshot
// carries the requested class.
type ErrClassNotFound struct {
	BinaryName string
}

func (e *ErrClassNotFound) Error() string {
	return fmt.Sprintf("class not found: %s", e.BinaryName)
}

func (e *ErrClassNotFound) Is(target error) bool {
	_, ok := target.(*ErrClassNotFound)
	return ok
}

var _ structerr.StructError = &ErrClassNotFound{}

// ErrClassLoadFailure reports an I/O error while searching for a class,
// distinct from the class simply not being present anywhere searched.
type ErrClassLoadFailure struct {
	BinaryName string
	Cause      error
}

func (e *ErrClassLoadFailure) Error() string {
	return fmt.Sprintf("failed to load class %s: %s", e.BinaryName, e.Cause)
}

func (e *ErrClassLoadFailure) Unwrap() error { return e.Cause }

func (e *ErrClassLoadFailure) Is(target error) bool {
	_, ok := target.(*ErrClassLoadFailure)
	return ok
}

var _ structerr.StructError = &ErrClassLoadFailure{}

// ContainerClassLoader is an immutable snapshot of one location's
// containers, safe for concurrent use by multiple goroutines: nothing
// about a lookup mutates the loader itself.
type ContainerClassLoader struct {
	loc               location.Location
	packageContainers []container.Container
	moduleContainers  map[string][]container.Container
}

// New builds a ContainerClassLoader snapshot. packageContainers and
// moduleContainers are copied defensively so later mutation of the
// caller's slices/maps cannot affect an already-built loader.
func New(loc location.Location, packageContainers []container.Container, moduleContainers map[string][]container.Container) *ContainerClassLoader {
	pkgCopy := make([]container.Container, len(packageContainers))
	copy(pkgCopy, packageContainers)

	modCopy := make(map[string][]container.Container, len(moduleContainers))
	for name, containers := range moduleContainers {
		cs := make([]container.Container, len(containers))
		copy(cs, containers)
		modCopy[name] = cs
	}

	return &ContainerClassLoader{loc: loc, packageContainers: pkgCopy, moduleContainers: modCopy}
}

// Location returns the location this snapshot was built from.
func (l *ContainerClassLoader) Location() location.Location { return l.loc }

// FindClass resolves name's raw class bytes. It first tries a module
// prefix; if name has one and the module is known to this loader, only
// that module's containers are searched. Otherwise (no prefix, or an
// unknown module) every package container is searched in order.
func (l *ContainerClassLoader) FindClass(name string) ([]byte, error) {
	if moduleName, remainder, ok := binaryname.TryExtractModulePrefix(name); ok {
		if containers, known := l.moduleContainers[moduleName]; known {
			data, found, err := searchClassBinary(containers, remainder)
			if err != nil {
				return nil, &ErrClassLoadFailure{BinaryName: name, Cause: err}
			}
			if found {
				return data, nil
			}
			return nil, &ErrClassNotFound{BinaryName: name}
		}
	}

	data, found, err := searchClassBinary(l.packageContainers, name)
	if err != nil {
		return nil, &ErrClassLoadFailure{BinaryName: name, Cause: err}
	}
	if !found {
		return nil, &ErrClassNotFound{BinaryName: name}
	}
	return data, nil
}

func searchClassBinary(containers []container.Container, binaryName string) ([]byte, bool, error) {
	for _, c := range containers {
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

// FindResource strips leading separators from name, then returns the URI
// of the first matching file across the module-scoped containers (if name
// carries a known module prefix) or the package containers otherwise. I/O
// failures are logged and reported as not-found.
func (l *ContainerClassLoader) FindResource(name string) (*url.URL, bool) {
	name = trimLeadingSeparators(name)

	containers := l.packageContainers
	lookup := name
	if moduleName, remainder, ok := binaryname.TryExtractModulePrefix(name); ok {
		if mc, known := l.moduleContainers[moduleName]; known {
			containers = mc
			lookup = remainder
		}
	}

	for _, c := range containers {
		res, ok, err := c.GetResource(lookup)
		if err != nil {
			logrus.Warnf("classloader: find-resource %q: %s", name, err)
			continue
		}
		if ok {
			return res.URI(), true
		}
	}
	return nil, false
}

// FindResources enumerates every matching URI across containers, in
// order: module-matched containers first (if name carried a known module
// prefix), then every package container in insertion order. Unlike
// FindResource, a container I/O error is propagated rather than swallowed:
// the single-URI result of FindResource has no channel to report a
// partial failure through, but the slice result here does not need to
// silently hide one.
func (l *ContainerClassLoader) FindResources(name string) ([]*url.URL, error) {
	name = trimLeadingSeparators(name)

	var uris []*url.URL
	if moduleName, remainder, ok := binaryname.TryExtractModulePrefix(name); ok {
		if mc, known := l.moduleContainers[moduleName]; known {
			found, err := collectResourceURIs(mc, remainder)
			if err != nil {
				return nil, &ErrClassLoadFailure{BinaryName: name, Cause: err}
			}
			uris = append(uris, found...)
		}
	}
	found, err := collectResourceURIs(l.packageContainers, name)
	if err != nil {
		return nil, &ErrClassLoadFailure{BinaryName: name, Cause: err}
	}
	uris = append(uris, found...)
	return uris, nil
}

func collectResourceURIs(containers []container.Container, lookup string) ([]*url.URL, error) {
	var uris []*url.URL
	for _, c := range containers {
		res, ok, err := c.GetResource(lookup)
		if err != nil {
			return nil, err
		}
		if ok {
			uris = append(uris, res.URI())
		}
	}
	return uris, nil
}

func trimLeadingSeparators(name string) string {
	for len(name) > 0 && (name[0] == '/' || name[0] == '\\') {
		name = name[1:]
	}
	return name
}
