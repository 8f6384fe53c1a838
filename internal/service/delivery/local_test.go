package delivery

import (
	"ScreenSolver/internal/service/failure"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFile_WritesAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "response.txt")
	require.NoError(t, os.WriteFile(path, []byte("old content that is longer"), 0o644))

	ch := NewLocalFile(path)
	out := ch.Deliver(context.Background(), "def f(): pass", Meta{})

	assert.True(t, out.Success)
	assert.Equal(t, Local, out.Channel)
	assert.Contains(t, out.Message, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "def f(): pass", string(data))
}

func TestLocalFile_UTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "response.txt")
	out := NewLocalFile(path).Deliver(context.Background(), "решение: ✓", Meta{})
	require.True(t, out.Success)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "решение: ✓", string(data))
}

func TestLocalFile_IOError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "response.txt")

	out := NewLocalFile(path).Deliver(context.Background(), "x", Meta{})

	assert.False(t, out.Success)
	assert.Equal(t, failure.IO, out.Kind)
	assert.Contains(t, out.Message, "save error")
}

func TestLocalFile_NoPath(t *testing.T) {
	out := NewLocalFile("").Deliver(context.Background(), "x", Meta{})

	assert.False(t, out.Success)
	assert.Equal(t, failure.Configuration, out.Kind)
}
