package limitedio_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ascopes/jct-core/pkg/util/limitedio"
	"github.com/stretchr/testify/require"
)

func TestReader_WithinLimit(t *testing.T) {
	r := limitedio.NewReader(strings.NewReader("hello"), 10)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}

func TestReader_ExceedsLimit(t *testing.T) {
	r := limitedio.NewReader(strings.NewReader("hello world"), 5)
	_, err := io.ReadAll(r)
	require.Error(t, err)
	require.True(t, errors.Is(err, &limitedio.ReadSizeOverflowError{}))
}

func TestReader_NegativeLimitIsUnbounded(t *testing.T) {
	r := limitedio.NewReader(strings.NewReader("hello world"), limitedio.Infinite)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))
}

func TestReader_ReadExactlyAtLimitSucceeds(t *testing.T) {
	r := limitedio.NewReader(strings.NewReader("ab"), 2)
	_, err := io.ReadAll(r)
	require.NoError(t, err)
	r.ResetCounter()
}
