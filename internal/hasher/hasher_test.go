package hasher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHashLength(t *testing.T) {
	full := ContentHash([]byte("photo"), 0)
	assert.Len(t, full, 16)
	assert.Equal(t, full[:8], ContentHash([]byte("photo"), 8))
	assert.Equal(t, full, ContentHash([]byte("photo"), 99))
	assert.NotEqual(t, full, ContentHash([]byte("photo2"), 0))
}

func TestContentHashEmpty(t *testing.T) {
	// xxHash64 of the empty input with seed 0.
	assert.Equal(t, "ef46db3751d8e999", ContentHash(nil, 0))
}

func TestReaderAndFileAgree(t *testing.T) {
	data := strings.Repeat("jpeg", 4096)
	want := ContentHash([]byte(data), DefaultLength)

	got, err := ContentHashReader(strings.NewReader(data), DefaultLength)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	p := filepath.Join(t.TempDir(), "a.jpg")
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	got, err = ContentHashFile(p, DefaultLength)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ContentHashFile(filepath.Join(t.TempDir(), "missing"), DefaultLength)
	assert.Error(t, err)
}
