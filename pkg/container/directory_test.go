package container_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ascopes/jct-core/pkg/container"
	"github.com/ascopes/jct-core/pkg/kind"
	"github.com/ascopes/jct-core/pkg/location"
	"github.com/ascopes/jct-core/pkg/pathroot"
	"github.com/stretchr/testify/require"
)

func TestDirectoryContainer_ReadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "com", "acme"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "com", "acme", "Hello.java"), []byte("class Hello {}"), 0o644))

	root := pathroot.NewDiskRoot(dir)
	c := container.NewDirectoryContainer(location.SourcePath, root)

	require.True(t, c.Contains("com/acme/Hello.java"))
	require.False(t, c.Contains("com/acme/DoesNotExist.java"))
	require.False(t, c.Contains("com/acme"))

	fo, ok, err := c.GetJavaFileForInput("com.acme.Hello", kind.Source)
	require.NoError(t, err)
	require.True(t, ok)
	content, err := fo.CharContent()
	require.NoError(t, err)
	require.Equal(t, "class Hello {}", content)

	_, ok, err = c.GetJavaFileForInput("com.acme.Missing", kind.Source)
	require.NoError(t, err)
	require.False(t, ok)

	out, ok, err := c.GetJavaFileForOutput("com.acme.Hello", kind.Class)
	require.NoError(t, err)
	require.True(t, ok)
	w, err := out.OpenWriter()
	require.NoError(t, err)
	_, err = w.Write([]byte("bytecode"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := os.ReadFile(filepath.Join(dir, "com", "acme", "Hello.class"))
	require.NoError(t, err)
	require.Equal(t, "bytecode", string(got))

	binaryName, ok := c.InferBinaryName(fo)
	require.True(t, ok)
	require.Equal(t, "com.acme.Hello", binaryName)

	require.NoError(t, c.Close())
}

func TestDirectoryContainer_List(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "One.java"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "b", "Two.java"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "Three.class"), []byte(""), 0o644))

	root := pathroot.NewDiskRoot(dir)
	c := container.NewDirectoryContainer(location.SourcePath, root)

	flat, err := c.List("a", kind.NewSet(kind.Source), false)
	require.NoError(t, err)
	require.Len(t, flat, 1)

	recursive, err := c.List("a", kind.NewSet(kind.Source), true)
	require.NoError(t, err)
	require.Len(t, recursive, 2)

	missing, err := c.List("does/not/exist", nil, true)
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestDirectoryContainer_GetResource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "META-INF", "services"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "META-INF", "services", "com.acme.Plugin"), []byte("com.acme.Impl"), 0o644))

	root := pathroot.NewDiskRoot(dir)
	c := container.NewDirectoryContainer(location.ClassPath, root)

	res, ok, err := c.GetResource("/META-INF/services/com.acme.Plugin")
	require.NoError(t, err)
	require.True(t, ok)

	rc, err := res.Open()
	require.NoError(t, err)
	defer rc.Close()

	_, ok, err = c.GetResource("META-INF/services/missing")
	require.NoError(t, err)
	require.False(t, ok)
}
