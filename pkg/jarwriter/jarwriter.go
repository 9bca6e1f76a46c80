// Package jarwriter emits a managed directory tree as a flat JAR file,
// for harvesting a compilation's CLASS_OUTPUT/SOURCE_OUTPUT once a test
// is done with it.
package jarwriter

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/ascopes/jct-core/pkg/pathroot"
)

// WriteJAR walks root's filesystem and writes every regular file into a
// new zip archive at destPath, using forward-slash entry names relative
// to root regardless of host OS. destPath is truncated if it already
// exists.
func WriteJAR(root pathroot.PathRoot, destPath string) error {
	fsys, err := root.FS()
	if err != nil {
		return err
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	walkErr := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		return addEntry(zw, fsys, p)
	})
	if walkErr != nil {
		_ = zw.Close()
		return walkErr
	}

	return zw.Close()
}

func addEntry(zw *zip.Writer, fsys pathroot.FS, relativePath string) error {
	f, err := fsys.Open(relativePath)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := zw.Create(path.Clean(relativePath))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
