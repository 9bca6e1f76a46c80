package binaryname_test

import (
	"testing"

	"github.com/ascopes/jct-core/pkg/binaryname"
	"github.com/stretchr/testify/assert"
)

func TestTryExtractModulePrefix(t *testing.T) {
	tests := []struct {
		name           string
		wantModule     string
		wantRemainder  string
		wantOk         bool
	}{
		{"m.one/pkg.Z", "m.one", "pkg.Z", true},
		{"java.base/java.lang.Object", "java.base", "java.lang.Object", true},
		{"m.one/", "m.one", "", true},
		{"pkg.Hello", "", "pkg.Hello", false},
		{"/leadingslash", "", "/leadingslash", false},
		{"9bad.module/rest", "", "9bad.module/rest", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, rest, ok := binaryname.TryExtractModulePrefix(tt.name)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.wantModule, mod)
				assert.Equal(t, tt.wantRemainder, rest)
			}
		})
	}
}
