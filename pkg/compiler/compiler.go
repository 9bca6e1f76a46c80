// Package compiler declares the minimal contracts a compiler frontend
// needs to consume a Workspace: the FileManager surface it reads and
// writes through, and the result/diagnostic shape it reports back. The
// frontend itself (flag building, javac invocation, diagnostic rendering)
// is out of scope for this module; these interfaces exist so this
// package's callers can wire a real frontend against workspace.Workspace
// without this module importing it.
package compiler

import (
	"context"

	"github.com/ascopes/jct-core/pkg/container"
	"github.com/ascopes/jct-core/pkg/kind"
	"github.com/ascopes/jct-core/pkg/location"
)

// FileManager is the subset of workspace.Workspace a Compiler needs:
// resolving compilation units by location and writing the classes/sources
// it produces back out. workspace.Workspace satisfies this interface.
type FileManager interface {
	GetJavaFileForInput(loc location.Location, binaryName string, k kind.Kind) (container.FileObject, bool, error)
	GetJavaFileForOutput(loc location.Location, binaryName string, k kind.Kind) (container.FileObject, bool, error)
}

// Diagnostic is one compiler message, attributable to a source position
// when the frontend produced one.
type Diagnostic struct {
	Severity Severity
	Message  string
	Source   container.FileObject
	Line     int64
	Column   int64
}

// Severity classifies a Diagnostic, matching javax.tools.Diagnostic.Kind's
// reporting levels that matter to a test harness.
type Severity int

const (
	Note Severity = iota
	Warning
	MandatoryWarning
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "WARNING"
	case MandatoryWarning:
		return "MANDATORY_WARNING"
	case Error:
		return "ERROR"
	default:
		return "NOTE"
	}
}

// Result is what a Compiler reports back after a compilation attempt.
type Result struct {
	Success     bool
	Diagnostics []Diagnostic
}

// Failed reports whether any Diagnostic in the result is an Error, or
// whether Success is false.
func (r Result) Failed() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return !r.Success
}

// Compiler is the contract a compiler frontend implements against a
// FileManager: it takes the compilation units to build plus raw flags,
// and returns a Result once compilation has finished.
type Compiler interface {
	Compile(ctx context.Context, fm FileManager, flags []string, units []container.FileObject) (Result, error)
}
