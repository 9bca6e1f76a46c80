package container_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/ascopes/jct-core/pkg/container"
	"github.com/ascopes/jct-core/pkg/kind"
	"github.com/ascopes/jct-core/pkg/location"
	"github.com/ascopes/jct-core/pkg/pathroot"
	"github.com/stretchr/testify/require"
)

func writeJar(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestArchiveContainer_ReadOnly(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "acme-lib.jar")
	writeJar(t, jarPath, map[string][]byte{
		"com/acme/Hello.class": []byte("bytecode-v1"),
	})

	root := pathroot.NewArchiveRoot(jarPath)
	c := container.NewArchiveContainer(location.ClassPath, root, 0)

	data, ok, err := c.GetClassBinary("com.acme.Hello")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "bytecode-v1", string(data))

	_, ok, err = c.GetFileForOutput("com/acme", "Hello.class")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Close())
}

func TestArchiveContainer_MultiReleaseOverlay(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "acme-mr.jar")
	writeJar(t, jarPath, map[string][]byte{
		"com/acme/Hello.class":                []byte("base"),
		"META-INF/versions/9/com/acme/Hello.class":  []byte("v9"),
		"META-INF/versions/17/com/acme/Hello.class": []byte("v17"),
	})

	root := pathroot.NewArchiveRoot(jarPath)

	disabled := container.NewArchiveContainer(location.ClassPath, root, 0)
	data, ok, err := disabled.GetClassBinary("com.acme.Hello")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "base", string(data))
	require.NoError(t, disabled.Close())

	root2 := pathroot.NewArchiveRoot(jarPath)
	atNine := container.NewArchiveContainer(location.ClassPath, root2, 9)
	data, ok, err = atNine.GetClassBinary("com.acme.Hello")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v9", string(data))
	require.NoError(t, atNine.Close())

	root3 := pathroot.NewArchiveRoot(jarPath)
	atSeventeen := container.NewArchiveContainer(location.ClassPath, root3, 17)
	data, ok, err = atSeventeen.GetClassBinary("com.acme.Hello")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v17", string(data))
	require.NoError(t, atSeventeen.Close())
}

func TestArchiveContainer_ModuleFinder_Automatic(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "acme-commons-2.3.1.jar")
	writeJar(t, jarPath, map[string][]byte{
		"com/acme/commons/Util.class": []byte("x"),
	})

	root := pathroot.NewArchiveRoot(jarPath)
	c := container.NewArchiveContainer(location.ClassPath, root, 0)

	finder, ok := c.ModuleFinder()
	require.True(t, ok)

	modules := finder.FindModules()
	require.Len(t, modules, 1)
	require.False(t, modules[0].Explicit)
	require.Equal(t, "acme.commons", modules[0].Name)

	require.NoError(t, c.Close())
}

func TestArchiveContainer_ModuleFinder_Explicit(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "acme-api.jar")
	writeJar(t, jarPath, map[string][]byte{
		"module-info.class":     []byte("descriptor"),
		"com/acme/api/Api.class": []byte("x"),
	})

	root := pathroot.NewArchiveRoot(jarPath)
	c := container.NewArchiveContainer(location.ClassPath, root, 0)

	finder, ok := c.ModuleFinder()
	require.True(t, ok)
	modules := finder.FindModules()
	require.Len(t, modules, 1)
	require.True(t, modules[0].Explicit)

	require.NoError(t, c.Close())
}

func TestArchiveContainer_List(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "acme-list.jar")
	writeJar(t, jarPath, map[string][]byte{
		"a/One.class":   []byte(""),
		"a/b/Two.class": []byte(""),
	})

	root := pathroot.NewArchiveRoot(jarPath)
	c := container.NewArchiveContainer(location.ClassPath, root, 0)

	flat, err := c.List("a", kind.NewSet(kind.Class), false)
	require.NoError(t, err)
	require.Len(t, flat, 1)

	recursive, err := c.List("a", kind.NewSet(kind.Class), true)
	require.NoError(t, err)
	require.Len(t, recursive, 2)

	require.NoError(t, c.Close())
}
