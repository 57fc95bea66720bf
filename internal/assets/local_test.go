package assets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalUploaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	u, err := NewLocalUploader(dir, "http://localhost:8080/")
	require.NoError(t, err)

	url, err := u.Upload(context.Background(), []byte("png bytes"), "logo.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, "-logo.png"), url)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))

	require.NoError(t, u.Delete(context.Background(), url))
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalUploaderSanitizesNames(t *testing.T) {
	dir := t.TempDir()
	u, err := NewLocalUploader(dir, "http://localhost:8080")
	require.NoError(t, err)

	url, err := u.Upload(context.Background(), []byte("x"), "../../etc/passwd")
	require.NoError(t, err)
	assert.NotContains(t, url, "..")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "-passwd"), entries[0].Name())
}

func TestLocalUploaderRejectsForeignURL(t *testing.T) {
	u, err := NewLocalUploader(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	assert.Error(t, u.Delete(context.Background(), "https://cdn.example.com/image.png"))
}
