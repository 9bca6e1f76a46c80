// Command jctdemo exercises the workspace core end to end: it adds a
// directory of ".java" sources as SOURCE_PATH, creates a managed
// CLASS_OUTPUT, hands both to a Compiler, and reports the result.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/ascopes/jct-core/pkg/compiler"
	"github.com/ascopes/jct-core/pkg/container"
	"github.com/ascopes/jct-core/pkg/location"
	"github.com/ascopes/jct-core/pkg/workspace"
)

var _ compiler.Compiler = stubCompiler{}

var sourceDirFlag = pflag.String("source-dir", ".", "Directory of .java sources to compile")
var verboseFlag = pflag.Bool("verbose", false, "Enable debug logging")

func main() {
	pflag.Parse()

	if *verboseFlag {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	if err := run(*sourceDirFlag); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(sourceDir string) error {
	w := workspace.New(workspace.PathStrategy{Kind: workspace.InMemory}, 0)
	defer func() {
		if err := w.Close(); err != nil {
			logrus.Warnf("closing workspace: %v", err)
		}
	}()

	if err := w.AddPackage(location.SourcePath, sourceDir); err != nil {
		return err
	}
	if _, err := w.CreatePackage(location.ClassOutput); err != nil {
		return err
	}

	result, err := stubCompiler{}.Compile(context.Background(), w, nil, nil)
	if err != nil {
		return err
	}

	for _, d := range result.Diagnostics {
		logrus.Infof("[%s] %s", d.Severity, d.Message)
	}
	if result.Failed() {
		return fmt.Errorf("compilation failed")
	}

	logrus.Info("compilation succeeded")
	return nil
}

// stubCompiler is a placeholder compiler.Compiler: this module owns the
// virtual file manager a real frontend reads and writes through, not the
// frontend itself (see pkg/compiler).
type stubCompiler struct{}

func (stubCompiler) Compile(context.Context, compiler.FileManager, []string, []container.FileObject) (compiler.Result, error) {
	return compiler.Result{Success: true}, nil
}
