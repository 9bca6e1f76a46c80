// Package kind defines the file Kind enumeration (source, class, html,
// other) and the canonical extension each kind maps to, plus the
// binary-name <-> relative-path conversions that every Container and the
// ContainerClassLoader rely on.
package kind

import (
	"strings"
)

// Kind is a semantic category of file, matching JSR-199's JavaFileObject.Kind.
type Kind int

const (
	// Source is a ".java" compilation unit.
	Source Kind = iota
	// Class is a compiled ".class" file.
	Class
	// HTML is a ".html" file, as produced by documentation generators.
	HTML
	// Other is anything else (resources, native headers, ...).
	Other
)

// extensions maps each Kind to its canonical file extension.
var extensions = map[Kind]string{
	Source: ".java",
	Class:  ".class",
	HTML:   ".html",
	Other:  "",
}

// Extension returns the canonical filename suffix for k, e.g. ".java".
// Other's extension is "", matching JSR-199 semantics (any extension, or
// none, is acceptable for OTHER).
func (k Kind) Extension() string {
	ext, ok := extensions[k]
	if !ok {
		return ""
	}
	return ext
}

func (k Kind) String() string {
	switch k {
	case Source:
		return "SOURCE"
	case Class:
		return "CLASS"
	case HTML:
		return "HTML"
	default:
		return "OTHER"
	}
}

// ForExtension returns the Kind matching the given filename suffix
// (case-sensitive, must start with "."), or Other if none of Source,
// Class, HTML match.
func ForExtension(ext string) Kind {
	for k, e := range extensions {
		if k != Other && e == ext {
			return k
		}
	}
	return Other
}

// Set is an immutable set of Kinds, used by Container.List to filter
// which kinds of file to enumerate.
type Set map[Kind]struct{}

// NewSet builds a Set from the given kinds.
func NewSet(kinds ...Kind) Set {
	s := make(Set, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

// Contains reports whether k is a member of s. An empty set matches
// nothing, a nil set matches everything (as if "all kinds" was requested).
func (s Set) Contains(k Kind) bool {
	if s == nil {
		return true
	}
	_, ok := s[k]
	return ok
}

// BinaryNameToRelativePath converts a dotted binary name such as
// "pkg.subpkg.Class" into a slash-separated relative path with k's
// extension appended to the final segment, e.g. "pkg/subpkg/Class.class".
func BinaryNameToRelativePath(binaryName string, k Kind) string {
	segments := strings.Split(binaryName, ".")
	last := len(segments) - 1
	segments[last] = segments[last] + k.Extension()
	return strings.Join(segments, "/")
}

// RelativePathToBinaryName converts a slash-separated relative path back
// into a dotted binary name, dropping k's extension from the final
// segment. It does not verify that the path actually has that extension;
// callers that need round-trip fidelity should check first.
func RelativePathToBinaryName(relativePath string, k Kind) string {
	segments := strings.Split(relativePath, "/")
	last := len(segments) - 1
	segments[last] = strings.TrimSuffix(segments[last], k.Extension())
	return strings.Join(segments, ".")
}
