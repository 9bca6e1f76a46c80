package pathroot

import (
	"archive/zip"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/ascopes/jct-core/pkg/util/structerr"
	"github.com/sirupsen/logrus"
)

// ErrArchiveMountFailed wraps any error encountered while isolating and
// opening an archive file as a read-only tree.
type ErrArchiveMountFailed struct {
	ArchivePath string
	Cause       error
}

func (e *ErrArchiveMountFailed) Error() string {
	return fmt.Sprintf("failed to mount archive %q: %s", e.ArchivePath, e.Cause)
}

func (e *ErrArchiveMountFailed) Unwrap() error { return e.Cause }

func (e *ErrArchiveMountFailed) Is(target error) bool {
	_, ok := target.(*ErrArchiveMountFailed)
	return ok
}

var _ structerr.StructError = &ErrArchiveMountFailed{}

// archiveRoot is a PathRoot that lazily mounts a zip-family archive file as
// a read-only tree. Every archiveRoot owns an independent temporary
// directory and backing link, so many concurrent mounts of the same
// underlying archive file never contend with one another.
type archiveRoot struct {
	archivePath string
	uri         *url.URL

	mu    sync.Mutex
	state *mountState // nil until the first FS() call
}

// mountState holds everything created by a successful mount, so Close can
// be a no-op on an archiveRoot that was never accessed.
type mountState struct {
	tempDir string
	link    string
	reader  *zip.ReadCloser
	fs      FS
}

// NewArchiveRoot builds a PathRoot for the zip-family archive at
// archivePath. The mount itself does not happen until FS() is first
// called.
func NewArchiveRoot(archivePath string) PathRoot {
	return &archiveRoot{
		archivePath: archivePath,
		uri:         &url.URL{Scheme: "jar", Opaque: "file://" + archivePath},
	}
}

func (a *archiveRoot) URI() *url.URL           { return a.uri }
func (a *archiveRoot) RootPath() string        { return "/" }
func (a *archiveRoot) Writable() (WritableFS, bool) { return nil, false }

// FS performs the isolated mount on first call and returns the cached
// result thereafter.
func (a *archiveRoot) FS() (FS, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != nil {
		return a.state.fs, nil
	}

	state, err := mount(a.archivePath)
	if err != nil {
		return nil, err
	}
	a.state = state
	return state.fs, nil
}

// mount isolates the archive file: create a unique temp dir, link (or
// copy) the archive into it, and open it as a read-only archive
// filesystem.
func mount(archivePath string) (*mountState, error) {
	base := filepath.Base(archivePath)
	tempDir, err := os.MkdirTemp("", base+"-mount-*")
	if err != nil {
		return nil, &ErrArchiveMountFailed{ArchivePath: archivePath, Cause: err}
	}

	link := filepath.Join(tempDir, base)
	if err := linkOrCopy(archivePath, link); err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, &ErrArchiveMountFailed{ArchivePath: archivePath, Cause: err}
	}

	reader, err := zip.OpenReader(link)
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, &ErrArchiveMountFailed{ArchivePath: archivePath, Cause: err}
	}

	logrus.Debugf("mounted archive %q at %q", archivePath, link)
	return &mountState{
		tempDir: tempDir,
		link:    link,
		reader:  reader,
		fs:      newGenericFS(reader),
	}, nil
}

// linkOrCopy tries a symlink from link to archivePath first, falling back
// to a byte-for-byte copy when the symlink cannot be created (e.g. an
// unprivileged process on some Windows configurations).
func linkOrCopy(archivePath, link string) error {
	if err := os.Symlink(archivePath, link); err == nil {
		return nil
	} else if !os.IsPermission(err) && !isUnsupportedSymlink(err) {
		return err
	} else {
		logrus.Warnf("symlink unsupported for %q, falling back to copy: %s", archivePath, err)
	}
	return copyFile(archivePath, link)
}

// isUnsupportedSymlink reports whether err is an *os.LinkError with a
// cause. Every os.Symlink failure has that form, so it does not tell an
// unsupported or forbidden symlink apart from other failures, and
// linkOrCopy falls back to a copy after any failed symlink.
func isUnsupportedSymlink(err error) bool {
	linkErr, ok := err.(*os.LinkError)
	return ok && linkErr.Err != nil
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destination.Close()

	if _, err := destination.ReadFrom(source); err != nil {
		return err
	}
	return destination.Sync()
}

// Close closes the archive filesystem, then recursively removes the temp
// dir, in that order. Close on a never-mounted archiveRoot is a no-op.
func (a *archiveRoot) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == nil {
		return nil
	}
	state := a.state
	a.state = nil

	closeErr := state.reader.Close()
	removeErr := os.RemoveAll(state.tempDir)
	if closeErr != nil {
		return closeErr
	}
	return removeErr
}
