package kind_test

import (
	"testing"

	"github.com/ascopes/jct-core/pkg/kind"
	"github.com/stretchr/testify/assert"
)

func TestBinaryNamePathRoundTrip(t *testing.T) {
	tests := []struct {
		binaryName string
		kind       kind.Kind
		path       string
	}{
		{"Hello", kind.Source, "Hello.java"},
		{"pkg.Hello", kind.Source, "pkg/Hello.java"},
		{"a.b.c.Hello", kind.Class, "a/b/c/Hello.class"},
		{"a.b.Doc", kind.HTML, "a/b/Doc.html"},
		{"a.b.Resource", kind.Other, "a/b/Resource"},
	}

	for _, tt := range tests {
		t.Run(tt.binaryName, func(t *testing.T) {
			gotPath := kind.BinaryNameToRelativePath(tt.binaryName, tt.kind)
			assert.Equal(t, tt.path, gotPath)

			gotName := kind.RelativePathToBinaryName(gotPath, tt.kind)
			assert.Equal(t, tt.binaryName, gotName)
		})
	}
}

func TestForExtension(t *testing.T) {
	assert.Equal(t, kind.Source, kind.ForExtension(".java"))
	assert.Equal(t, kind.Class, kind.ForExtension(".class"))
	assert.Equal(t, kind.HTML, kind.ForExtension(".html"))
	assert.Equal(t, kind.Other, kind.ForExtension(".txt"))
}

func TestSet(t *testing.T) {
	s := kind.NewSet(kind.Source, kind.Class)
	assert.True(t, s.Contains(kind.Source))
	assert.True(t, s.Contains(kind.Class))
	assert.False(t, s.Contains(kind.HTML))

	var nilSet kind.Set
	assert.True(t, nilSet.Contains(kind.HTML))
}
