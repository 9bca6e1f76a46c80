package classloader_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ascopes/jct-core/pkg/classloader"
	"github.com/ascopes/jct-core/pkg/container"
	"github.com/ascopes/jct-core/pkg/location"
	"github.com/ascopes/jct-core/pkg/pathroot"
	"github.com/stretchr/testify/require"
)

func newDiskContainer(t *testing.T, loc location.Location, files map[string][]byte) container.Container {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, content, 0o644))
	}
	return container.NewDirectoryContainer(loc, pathroot.NewDiskRoot(dir))
}

func TestFindClass_PackageContainer(t *testing.T) {
	c := newDiskContainer(t, location.ClassPath, map[string][]byte{
		"com/acme/Hello.class": []byte("bytecode"),
	})
	loader := classloader.New(location.ClassPath, []container.Container{c}, nil)

	data, err := loader.FindClass("com.acme.Hello")
	require.NoError(t, err)
	require.Equal(t, "bytecode", string(data))
}

func TestFindClass_NotFound(t *testing.T) {
	c := newDiskContainer(t, location.ClassPath, map[string][]byte{})
	loader := classloader.New(location.ClassPath, []container.Container{c}, nil)

	_, err := loader.FindClass("com.acme.Missing")
	require.Error(t, err)
	require.True(t, errors.Is(err, &classloader.ErrClassNotFound{}))
}

func TestFindClass_ModulePrefixRoutesToModuleContainers(t *testing.T) {
	pkgContainer := newDiskContainer(t, location.ClassPath, map[string][]byte{})
	modContainer := newDiskContainer(t, location.ClassPath, map[string][]byte{
		"com/acme/Impl.class": []byte("module-bytes"),
	})

	loader := classloader.New(location.ClassPath,
		[]container.Container{pkgContainer},
		map[string][]container.Container{"m.one": {modContainer}},
	)

	data, err := loader.FindClass("m.one/com.acme.Impl")
	require.NoError(t, err)
	require.Equal(t, "module-bytes", string(data))
}

func TestFindClass_UnknownModulePrefixFallsBackToPackageSearch(t *testing.T) {
	pkgContainer := newDiskContainer(t, location.ClassPath, map[string][]byte{
		"x/y/Z.class": []byte("fallback-bytes"),
	})

	loader := classloader.New(location.ClassPath, []container.Container{pkgContainer}, nil)

	data, err := loader.FindClass("x.y/x.y.Z")
	require.Error(t, err)
	require.Nil(t, data)
}

func TestFindResource_StripsLeadingSeparatorAndReturnsFalseWhenMissing(t *testing.T) {
	c := newDiskContainer(t, location.ClassPath, map[string][]byte{
		"META-INF/services/com.acme.Plugin": []byte("com.acme.Impl"),
	})
	loader := classloader.New(location.ClassPath, []container.Container{c}, nil)

	uri, ok := loader.FindResource("/META-INF/services/com.acme.Plugin")
	require.True(t, ok)
	require.NotNil(t, uri)

	_, ok = loader.FindResource("META-INF/services/missing")
	require.False(t, ok)
}

func TestFindResources_ModuleMatchedFirstThenPackage(t *testing.T) {
	pkgContainer := newDiskContainer(t, location.ClassPath, map[string][]byte{
		"META-INF/services/com.acme.Plugin": []byte("pkg"),
	})
	modContainer := newDiskContainer(t, location.ClassPath, map[string][]byte{
		"META-INF/services/com.acme.Plugin": []byte("mod"),
	})

	loader := classloader.New(location.ClassPath,
		[]container.Container{pkgContainer},
		map[string][]container.Container{"m.one": {modContainer}},
	)

	uris, err := loader.FindResources("m.one/META-INF/services/com.acme.Plugin")
	require.NoError(t, err)
	require.Len(t, uris, 1)

	uris, err = loader.FindResources("META-INF/services/com.acme.Plugin")
	require.NoError(t, err)
	require.Len(t, uris, 1)
}
