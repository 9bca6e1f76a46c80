package workspace_test

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ascopes/jct-core/pkg/kind"
	"github.com/ascopes/jct-core/pkg/location"
	"github.com/ascopes/jct-core/pkg/workspace"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, relative, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(relative))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestAddPackage_RejectsModuleOrientedLocation(t *testing.T) {
	w := workspace.New(workspace.PathStrategy{}, 0)
	dir := t.TempDir()
	err := w.AddPackage(location.ModulePath, dir)
	require.Error(t, err)
	require.True(t, errors.Is(err, &workspace.ErrModuleOrientedMismatch{}))
}

func TestAddPackage_RejectsMissingPath(t *testing.T) {
	w := workspace.New(workspace.PathStrategy{}, 0)
	err := w.AddPackage(location.ClassPath, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	require.True(t, errors.Is(err, &workspace.ErrNoSuchPath{}))
}

func TestAddPackage_ReadsBackInput(t *testing.T) {
	w := workspace.New(workspace.PathStrategy{}, 0)
	dir := t.TempDir()
	writeFile(t, dir, "com/example/Greeter.class", "classdata")

	require.NoError(t, w.AddPackage(location.ClassPath, dir))

	fo, ok, err := w.GetJavaFileForInput(location.ClassPath, "com.example.Greeter", kind.Class)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, fo)
}

func TestAddModule_RejectsNestedModuleLocation(t *testing.T) {
	w := workspace.New(workspace.PathStrategy{}, 0)
	nested := location.NewModuleLocation(location.ModulePath, "com.foo")
	err := w.AddModule(nested, "com.bar", t.TempDir())
	require.Error(t, err)
	require.True(t, errors.Is(err, &workspace.ErrNestedModuleLocation{}))
}

func TestAddModule_RejectsNonModuleOrientedNonOutputLocation(t *testing.T) {
	w := workspace.New(workspace.PathStrategy{}, 0)
	err := w.AddModule(location.ClassPath, "com.foo", t.TempDir())
	require.Error(t, err)
	require.True(t, errors.Is(err, &workspace.ErrModuleOrientedMismatch{}))
}

func TestAddModule_ReadsBackInput(t *testing.T) {
	w := workspace.New(workspace.PathStrategy{}, 0)
	dir := t.TempDir()
	writeFile(t, dir, "com/example/Greeter.class", "classdata")

	require.NoError(t, w.AddModule(location.ModulePath, "com.example", dir))

	fo, ok, err := w.GetJavaFileForInput(location.ModulePath, "com.example/com.example.Greeter", kind.Class)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, fo)
}

func TestCreatePackage_ManagedMemoryRootAcceptsOutput(t *testing.T) {
	w := workspace.New(workspace.PathStrategy{Kind: workspace.InMemory}, 0)
	_, err := w.CreatePackage(location.ClassOutput)
	require.NoError(t, err)

	fo, ok, err := w.GetJavaFileForOutput(location.ClassOutput, "com.example.Greeter", kind.Class)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, fo)
}

func TestCreateModule_RoutesUnderModuleSubdirectory(t *testing.T) {
	w := workspace.New(workspace.PathStrategy{Kind: workspace.InMemory}, 0)
	_, err := w.CreatePackage(location.ClassOutput)
	require.NoError(t, err)

	_, err = w.CreateModule(location.ClassOutput, "com.example")
	require.NoError(t, err)

	out, ok, err := w.GetJavaFileForOutput(location.ClassOutput, "com.example/com.example.Greeter", kind.Class)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, out)
}

func TestWorkspace_Close_NilWhenNothingFails(t *testing.T) {
	w := workspace.New(workspace.PathStrategy{}, 0)
	dir := t.TempDir()
	require.NoError(t, w.AddPackage(location.ClassPath, dir))
	require.NoError(t, w.Close())
}

func TestClassOutputJAR_WritesCreatedClassOutput(t *testing.T) {
	w := workspace.New(workspace.PathStrategy{Kind: workspace.InMemory}, 0)
	_, err := w.CreatePackage(location.ClassOutput)
	require.NoError(t, err)

	fo, ok, err := w.GetJavaFileForOutput(location.ClassOutput, "com.example.Greeter", kind.Class)
	require.NoError(t, err)
	require.True(t, ok)
	wc, err := fo.OpenOutputStream()
	require.NoError(t, err)
	_, err = wc.Write([]byte("classdata"))
	require.NoError(t, err)
	require.NoError(t, wc.Close())

	dest := filepath.Join(t.TempDir(), "classes.jar")
	require.NoError(t, w.ClassOutputJAR(dest))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestNew_PlumbsReleaseVersionToArchiveContainers(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "acme-mr.jar")
	f, err := os.Create(jarPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range map[string]string{
		"com/acme/Hello.class":                      "base",
		"META-INF/versions/17/com/acme/Hello.class": "v17",
	} {
		entry, err := zw.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	w := workspace.New(workspace.PathStrategy{}, 17)
	require.NoError(t, w.AddPackage(location.ClassPath, jarPath))

	fo, ok, err := w.GetJavaFileForInput(location.ClassPath, "com.acme.Hello", kind.Class)
	require.NoError(t, err)
	require.True(t, ok)
	content, err := fo.CharContent()
	require.NoError(t, err)
	require.Equal(t, "v17", content)
}

func TestClassLoaderFor_BuildsFromAddedPackage(t *testing.T) {
	w := workspace.New(workspace.PathStrategy{}, 0)
	dir := t.TempDir()
	writeFile(t, dir, "com/example/Greeter.class", "classdata")
	require.NoError(t, w.AddPackage(location.ClassPath, dir))

	cl := w.ClassLoaderFor(location.ClassPath)
	require.NotNil(t, cl)
	data, err := cl.FindClass("com.example.Greeter")
	require.NoError(t, err)
	require.Equal(t, "classdata", string(data))
}
