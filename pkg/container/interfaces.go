// Package container implements Container, the L1 layer that wraps one
// PathRoot and exposes the typed lookups a PackageContainerGroup fans out
// across: class binaries by dotted name, files by package + relative
// name, resources by slash path, plus enumeration by Kind.
package container

import (
	"io"
	"net/url"
	"time"

	"github.com/ascopes/jct-core/pkg/kind"
	"github.com/ascopes/jct-core/pkg/location"
	"github.com/ascopes/jct-core/pkg/pathroot"
)

// Container is the read/write surface a PackageContainerGroup fans its
// queries out across. All inputs are assumed pre-validated by the caller
// (workspace.Workspace).
type Container interface {
	// Location is the Location this container's owning group was bound
	// to.
	Location() location.Location

	// Contains reports whether path lies under this container's root and
	// names a regular file.
	Contains(path string) bool

	// FindFile resolves relativePath under the container's root. It
	// rejects paths beginning with a root separator.
	FindFile(relativePath string) (absolutePath string, ok bool, err error)

	// GetClassBinary returns the raw bytes of binaryName's ".class" file.
	GetClassBinary(binaryName string) (data []byte, ok bool, err error)

	// GetFileForInput returns a readable FileObject for a relative file
	// under package pkg, or ok=false if it does not exist.
	GetFileForInput(pkg, relativeName string) (FileObject, bool, error)

	// GetFileForOutput returns a writable FileObject for a relative file
	// under package pkg. Read-only containers (archives) always return
	// ok=false. Parent directories are created on first write.
	GetFileForOutput(pkg, relativeName string) (FileObject, bool, error)

	// GetJavaFileForInput is GetFileForInput addressed by binary name and
	// Kind instead of package + relative name.
	GetJavaFileForInput(binaryName string, k kind.Kind) (FileObject, bool, error)

	// GetJavaFileForOutput is the output-side counterpart of
	// GetJavaFileForInput.
	GetJavaFileForOutput(binaryName string, k kind.Kind) (FileObject, bool, error)

	// GetResource resolves a slash-separated resource path. Leading
	// slashes are stripped. Never returns ok=true for a directory.
	GetResource(slashPath string) (Resource, bool, error)

	// InferBinaryName converts a FileObject's path back to a dotted
	// binary name, if that FileObject's path is under this container's
	// root.
	InferBinaryName(fo FileObject) (binaryName string, ok bool)

	// List walks from pkg's directory, filtering by kinds, to depth 1
	// (recurse=false) or unbounded (recurse=true). A missing package
	// directory yields an empty result, not an error.
	List(pkg string, kinds kind.Set, recurse bool) ([]FileObject, error)

	// ModuleFinder exposes this container's view of modules for service
	// discovery, if it has one. Directory containers never do; archive
	// containers do.
	ModuleFinder() (ModuleFinder, bool)

	// Close releases this container's resources. Idempotent.
	Close() error
}

// FileObject is the JSR-199-style file handle every Container read/write
// accessor returns. It satisfies the read-stream/read-reader/char-content
// contract, plus delete and the always-empty nesting-kind/access-level
// pair that JSR-199 mandates for files that did not come from parsing a
// compilation unit.
type FileObject interface {
	URI() *url.URL
	Kind() kind.Kind

	// IsNameCompatible reports whether this file's simple name (without
	// extension) equals simpleName and its Kind equals k.
	IsNameCompatible(simpleName string, k kind.Kind) bool

	LastModified() time.Time
	Delete() bool

	OpenInputStream() (io.ReadCloser, error)
	OpenReader() (io.ReadCloser, error)
	CharContent() (string, error)

	OpenOutputStream() (io.WriteCloser, error)
	OpenWriter() (io.WriteCloser, error)

	// NestingKindAccessLevel always returns ok=false for files served by
	// this module: nesting kind and access level are only meaningful for
	// file objects produced by parsing source, which is the compiler
	// frontend's job, not the file manager's.
	NestingKindAccessLevel() (nestingKind, accessLevel string, ok bool)
}

// Resource is the handle GetResource returns: a URI plus the ability to
// open it for reading. It is deliberately narrower than FileObject — a
// resource is consumed by the compiler's resource-lookup API (e.g. for
// ServiceLoader configuration files), never written to.
type Resource interface {
	URI() *url.URL
	Open() (io.ReadCloser, error)
}

// ModuleFinder is the per-container view ModuleContainerGroup composes
// into a layered module graph for service-loader discovery.
type ModuleFinder interface {
	// FindModules returns every module this container can see. Directory
	// containers never produce a ModuleFinder (see Container.ModuleFinder),
	// so only archive containers implement this.
	FindModules() []ModuleRef
}

// RootProvider is an optional Container capability exposing the PathRoot
// it wraps, for operations that need the underlying tree rather than a
// single file lookup (e.g. jarwriter.WriteJAR harvesting a whole managed
// output directory). Only directoryContainer implements it.
type RootProvider interface {
	Root() pathroot.PathRoot
}

// ModuleRef names one module an archive-backed ModuleFinder discovered,
// either because it carries a module descriptor (an explicit module) or
// because it is being treated as an automatic module named after its jar
// file.
type ModuleRef struct {
	Name     string
	Explicit bool
}
