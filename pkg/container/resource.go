package container

import (
	"io"
	"net/url"

	"github.com/ascopes/jct-core/pkg/pathroot"
)

// resource is the shared Resource implementation for both directory and
// archive containers.
type resource struct {
	uri          *url.URL
	fsys         pathroot.FS
	relativePath string
}

func (r *resource) URI() *url.URL { return r.uri }

func (r *resource) Open() (io.ReadCloser, error) {
	return r.fsys.Open(r.relativePath)
}
