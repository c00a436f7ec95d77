package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromoteTempFile(t *testing.T) {
	t.Setenv("UPLOADS_DIR", t.TempDir())

	tempDir, err := TempDir()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "staged.jpg"), []byte("img"), 0o644))

	require.NoError(t, PromoteTempFile("staged.jpg", "quote-1"))

	assert.NoFileExists(t, filepath.Join(tempDir, "staged.jpg"))
	assert.FileExists(t, filepath.Join(UploadsRoot(), "quote-1", "staged.jpg"))
}

func TestPromoteTempFileMissing(t *testing.T) {
	t.Setenv("UPLOADS_DIR", t.TempDir())

	err := PromoteTempFile("nope.jpg", "quote-1")
	assert.Error(t, err)
}

func TestRemoveTempFilesIgnoresMissing(t *testing.T) {
	t.Setenv("UPLOADS_DIR", t.TempDir())

	tempDir, err := TempDir()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "a.png"), []byte("x"), 0o644))

	RemoveTempFiles([]string{"a.png", "already-gone.png"})
	assert.NoFileExists(t, filepath.Join(tempDir, "a.png"))
}

func TestSweepTempUploads(t *testing.T) {
	t.Setenv("UPLOADS_DIR", t.TempDir())

	tempDir, err := TempDir()
	require.NoError(t, err)

	stale := filepath.Join(tempDir, "stale.pdf")
	fresh := filepath.Join(tempDir, "fresh.pdf")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("new"), 0o644))

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	removed, err := SweepTempUploads(24 * time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
}
