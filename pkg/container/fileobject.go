package container

import (
	"bytes"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/ascopes/jct-core/pkg/kind"
	"github.com/ascopes/jct-core/pkg/pathroot"
)

// fileObject is the shared FileObject implementation for both directory
// and archive containers. Reads go through pathroot.FS; writes (when
// present) go through pathroot.WritableFS.
type fileObject struct {
	uri          *url.URL
	kind         kind.Kind
	relativePath string
	fsys         pathroot.FS
	writable     pathroot.WritableFS // nil for read-only containers
}

func newFileObject(uri *url.URL, k kind.Kind, relativePath string, fsys pathroot.FS, writable pathroot.WritableFS) *fileObject {
	return &fileObject{uri: uri, kind: k, relativePath: relativePath, fsys: fsys, writable: writable}
}

func (f *fileObject) URI() *url.URL { return f.uri }
func (f *fileObject) Kind() kind.Kind { return f.kind }

func (f *fileObject) IsNameCompatible(simpleName string, k kind.Kind) bool {
	if k != f.kind {
		return false
	}
	base := path.Base(f.relativePath)
	base = strings.TrimSuffix(base, k.Extension())
	return base == simpleName
}

func (f *fileObject) LastModified() time.Time {
	info, err := f.fsys.Stat(f.relativePath)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func (f *fileObject) Delete() bool {
	if f.writable == nil {
		return false
	}
	return f.writable.Remove(f.relativePath) == nil
}

func (f *fileObject) OpenInputStream() (io.ReadCloser, error) {
	file, err := f.fsys.Open(f.relativePath)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (f *fileObject) OpenReader() (io.ReadCloser, error) {
	return f.OpenInputStream()
}

func (f *fileObject) CharContent() (string, error) {
	data, err := f.fsys.ReadFile(f.relativePath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *fileObject) OpenOutputStream() (io.WriteCloser, error) {
	if f.writable == nil {
		return nil, os.ErrPermission
	}
	dir := path.Dir(f.relativePath)
	if dir != "." && dir != "/" {
		if err := f.writable.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &bufferedWriter{writable: f.writable, relativePath: f.relativePath}, nil
}

func (f *fileObject) OpenWriter() (io.WriteCloser, error) {
	return f.OpenOutputStream()
}

func (f *fileObject) NestingKindAccessLevel() (string, string, bool) {
	return "", "", false
}

// bufferedWriter buffers writes in memory and flushes them via
// WritableFS.WriteFile on Close, since afero/io-fs do not expose a
// portable "open for write, append-as-you-go" handle across both the
// OS-backed and in-memory filesystems the file manager uses.
type bufferedWriter struct {
	writable     pathroot.WritableFS
	relativePath string
	buf          bytes.Buffer
	closed       bool
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *bufferedWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.writable.WriteFile(w.relativePath, w.buf.Bytes(), 0o644)
}
