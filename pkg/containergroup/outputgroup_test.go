package containergroup_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ascopes/jct-core/pkg/containergroup"
	"github.com/ascopes/jct-core/pkg/kind"
	"github.com/ascopes/jct-core/pkg/location"
	"github.com/stretchr/testify/require"
)

func TestOutputContainerGroup_ModuleRoutingForOutput(t *testing.T) {
	outDir := t.TempDir()

	g := containergroup.NewOutputContainerGroup(location.ClassOutput, 0)
	require.NoError(t, g.AddPath(outDir, true))

	_, err := g.GetOrCreateModule("m.one")
	require.NoError(t, err)

	fo, ok, err := g.GetJavaFileForOutput("m.one/pkg.Z", kind.Class)
	require.NoError(t, err)
	require.True(t, ok)

	w, err := fo.OpenWriter()
	require.NoError(t, err)
	_, err = w.Write([]byte("bytecode"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := os.ReadFile(filepath.Join(outDir, "m.one", "pkg", "Z.class"))
	require.NoError(t, err)
	require.Equal(t, "bytecode", string(got))
}

func TestOutputContainerGroup_FlatPackageFallback(t *testing.T) {
	outDir := t.TempDir()

	g := containergroup.NewOutputContainerGroup(location.ClassOutput, 0)
	require.NoError(t, g.AddPath(outDir, true))

	fo, ok, err := g.GetJavaFileForOutput("pkg.Z", kind.Class)
	require.NoError(t, err)
	require.True(t, ok)

	w, err := fo.OpenWriter()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = os.Stat(filepath.Join(outDir, "pkg", "Z.class"))
	require.NoError(t, err)
}

func TestOutputContainerGroup_GetOrCreateModuleFailsWithoutRoot(t *testing.T) {
	g := containergroup.NewOutputContainerGroup(location.ClassOutput, 0)
	_, err := g.GetOrCreateModule("m.one")
	require.Error(t, err)
}

func TestOutputContainerGroup_GetOrCreateModuleIdempotent(t *testing.T) {
	outDir := t.TempDir()
	g := containergroup.NewOutputContainerGroup(location.ClassOutput, 0)
	require.NoError(t, g.AddPath(outDir, true))

	mg1, err := g.GetOrCreateModule("m.one")
	require.NoError(t, err)
	mg2, err := g.GetOrCreateModule("m.one")
	require.NoError(t, err)
	require.Same(t, mg1, mg2)
}
