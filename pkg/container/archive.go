package container

import (
	"io"
	"io/fs"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ascopes/jct-core/pkg/kind"
	"github.com/ascopes/jct-core/pkg/location"
	"github.com/ascopes/jct-core/pkg/pathroot"
	"github.com/ascopes/jct-core/pkg/util/limitedio"
)

const multiReleaseVersionsPrefix = "META-INF/versions/"

// archiveContainer wraps a lazily-mounted archiveRoot, layering two things
// a directoryContainer does not need: a multi-release overlay that lets
// higher-numbered "META-INF/versions/<n>/" entries shadow their base-tree
// counterpart up to a configured release, and a ModuleFinder for
// service-loader discovery.
type archiveContainer struct {
	loc     location.Location
	root    pathroot.PathRoot
	release int // highest multi-release version to honor; 0 disables the overlay

	mu      sync.Mutex
	index   map[string]string // logical relative path -> actual path in the mounted tree
	indexed bool
}

// NewArchiveContainer wraps root (built via pathroot.NewArchiveRoot) as a
// Container bound to loc. release is the multi-release version to resolve
// overlays up to (e.g. 17 for "--release 17"); 0 disables multi-release
// resolution entirely.
func NewArchiveContainer(loc location.Location, root pathroot.PathRoot, release int) Container {
	return &archiveContainer{loc: loc, root: root, release: release}
}

func (c *archiveContainer) Location() location.Location { return c.loc }

func (c *archiveContainer) buildIndex() (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexed {
		return c.index, nil
	}

	fsys, err := c.root.FS()
	if err != nil {
		return nil, err
	}

	index := make(map[string]string)
	overlayVersion := make(map[string]int)

	walk := func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if rest, version, ok := splitMultiReleaseEntry(p); ok {
			if c.release <= 0 || version > c.release {
				return nil
			}
			if best, seen := overlayVersion[rest]; !seen || version > best {
				overlayVersion[rest] = version
				index[rest] = p
			}
			return nil
		}
		if _, overlaid := overlayVersion[p]; !overlaid {
			if _, baseSeen := index[p]; !baseSeen {
				index[p] = p
			}
		}
		return nil
	}

	if err := fs.WalkDir(fsys, ".", walk); err != nil {
		return nil, err
	}

	c.index = index
	c.indexed = true
	return index, nil
}

// splitMultiReleaseEntry reports whether p lies under
// "META-INF/versions/<n>/", returning the path relative to that prefix and
// the parsed version number.
func splitMultiReleaseEntry(p string) (rest string, version int, ok bool) {
	if !strings.HasPrefix(p, multiReleaseVersionsPrefix) {
		return "", 0, false
	}
	remainder := p[len(multiReleaseVersionsPrefix):]
	slash := strings.IndexByte(remainder, '/')
	if slash < 0 {
		return "", 0, false
	}
	versionStr, rest := remainder[:slash], remainder[slash+1:]
	n, err := strconv.Atoi(versionStr)
	if err != nil || rest == "" {
		return "", 0, false
	}
	return rest, n, true
}

func (c *archiveContainer) resolve(relativePath string) (string, bool, error) {
	index, err := c.buildIndex()
	if err != nil {
		return "", false, err
	}
	actual, ok := index[relativePath]
	return actual, ok, nil
}

func (c *archiveContainer) Contains(p string) bool {
	_, ok, err := c.resolve(p)
	return err == nil && ok
}

func (c *archiveContainer) FindFile(relativePath string) (string, bool, error) {
	if strings.HasPrefix(relativePath, "/") {
		return "", false, nil
	}
	actual, ok, err := c.resolve(relativePath)
	if err != nil || !ok {
		return "", false, err
	}
	return path.Join(c.root.RootPath(), actual), true, nil
}

func (c *archiveContainer) GetClassBinary(binaryName string) ([]byte, bool, error) {
	return c.readFile(kind.BinaryNameToRelativePath(binaryName, kind.Class))
}

// readFile reads actual's content through a limitedio.Reader so a
// corrupt or hostile archive entry cannot exhaust memory on a single
// GetClassBinary call. Reads through a FileObject or Resource handed out
// by this container do not go through readFile and are not bounded.
func (c *archiveContainer) readFile(relativePath string) ([]byte, bool, error) {
	actual, ok, err := c.resolve(relativePath)
	if err != nil || !ok {
		return nil, false, err
	}
	fsys, err := c.root.FS()
	if err != nil {
		return nil, false, err
	}
	f, err := fsys.Open(actual)
	if isNotExist(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	defer f.Close()

	data, err := io.ReadAll(limitedio.NewReader(f, 0))
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *archiveContainer) GetFileForInput(pkg, relativeName string) (FileObject, bool, error) {
	relativePath := path.Join(pkg, relativeName)
	return c.fileObjectForInput(relativePath, kind.ForExtension(path.Ext(relativeName)))
}

func (c *archiveContainer) fileObjectForInput(relativePath string, k kind.Kind) (FileObject, bool, error) {
	actual, ok, err := c.resolve(relativePath)
	if err != nil || !ok {
		return nil, false, err
	}
	fsys, err := c.root.FS()
	if err != nil {
		return nil, false, err
	}
	return newFileObject(c.uriFor(actual), k, actual, fsys, nil), true, nil
}

// GetFileForOutput always returns ok=false with a nil error: archive
// containers are read-only.
func (c *archiveContainer) GetFileForOutput(string, string) (FileObject, bool, error) {
	return nil, false, nil
}

func (c *archiveContainer) GetJavaFileForInput(binaryName string, k kind.Kind) (FileObject, bool, error) {
	return c.fileObjectForInput(kind.BinaryNameToRelativePath(binaryName, k), k)
}

// GetJavaFileForOutput always returns ok=false with a nil error: archive
// containers are read-only.
func (c *archiveContainer) GetJavaFileForOutput(string, kind.Kind) (FileObject, bool, error) {
	return nil, false, nil
}

func (c *archiveContainer) GetResource(slashPath string) (Resource, bool, error) {
	relativePath := strings.TrimLeft(slashPath, "/")
	actual, ok, err := c.resolve(relativePath)
	if err != nil || !ok {
		return nil, false, err
	}
	fsys, err := c.root.FS()
	if err != nil {
		return nil, false, err
	}
	return &resource{uri: c.uriFor(actual), fsys: fsys, relativePath: actual}, true, nil
}

func (c *archiveContainer) InferBinaryName(fo FileObject) (string, bool) {
	return inferBinaryNameFromURI(c.root, fo)
}

func (c *archiveContainer) List(pkg string, kinds kind.Set, recurse bool) ([]FileObject, error) {
	index, err := c.buildIndex()
	if err != nil {
		return nil, err
	}
	fsys, err := c.root.FS()
	if err != nil {
		return nil, err
	}

	startDir := pkg
	prefix := pkg + "/"
	if startDir == "" {
		prefix = ""
	}

	logicalPaths := make([]string, 0, len(index))
	for logical := range index {
		logicalPaths = append(logicalPaths, logical)
	}
	sort.Strings(logicalPaths)

	var results []FileObject
	for _, logical := range logicalPaths {
		if startDir != "" && !strings.HasPrefix(logical, prefix) {
			continue
		}
		rest := strings.TrimPrefix(logical, prefix)
		if !recurse && strings.Contains(rest, "/") {
			continue
		}
		k := kind.ForExtension(path.Ext(logical))
		if !kinds.Contains(k) {
			continue
		}
		results = append(results, newFileObject(c.uriFor(index[logical]), k, index[logical], fsys, nil))
	}
	return results, nil
}

func (c *archiveContainer) ModuleFinder() (ModuleFinder, bool) {
	return &archiveModuleFinder{container: c}, true
}

func (c *archiveContainer) Close() error { return c.root.Close() }

// uriFor renders a "jar:file:///path/to.jar!/entry" style URI, the
// conventional form for a file living inside an archive.
func (c *archiveContainer) uriFor(relativePath string) *url.URL {
	base := c.root.URI()
	clone := *base
	clone.Opaque = base.Opaque + "!/" + relativePath
	return &clone
}
