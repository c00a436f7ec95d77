// utils/files.go
package utils

import (
	"os"
	"path/filepath"
	"time"
)

// UploadsRoot is the base directory for stored quote files. Staged uploads
// live under <root>/temp until the quote is saved.
func UploadsRoot() string {
	if dir := os.Getenv("UPLOADS_DIR"); dir != "" {
		return dir
	}
	return "./uploads"
}

// TempDir ensures and returns the staging directory for generation uploads.
func TempDir() (string, error) {
	dir := filepath.Join(UploadsRoot(), "temp")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// QuoteDir ensures and returns the directory holding a quote's attachments.
func QuoteDir(quoteID string) (string, error) {
	dir := filepath.Join(UploadsRoot(), quoteID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// LogoDir ensures and returns the directory holding business logos.
func LogoDir() (string, error) {
	dir := filepath.Join(UploadsRoot(), "logos")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// PromoteTempFile moves a staged upload into the quote's directory. Returns
// os.ErrNotExist via the underlying rename when the staged file is gone.
func PromoteTempFile(tempFilename, quoteID string) error {
	tempDir, err := TempDir()
	if err != nil {
		return err
	}
	quoteDir, err := QuoteDir(quoteID)
	if err != nil {
		return err
	}
	return os.Rename(filepath.Join(tempDir, tempFilename), filepath.Join(quoteDir, tempFilename))
}

// RemoveTempFiles deletes staged uploads, ignoring ones already gone.
func RemoveTempFiles(filenames []string) {
	tempDir, err := TempDir()
	if err != nil {
		return
	}
	for _, name := range filenames {
		os.Remove(filepath.Join(tempDir, filepath.Base(name)))
	}
}

// RemoveQuoteDir deletes a quote's attachment directory and its contents.
func RemoveQuoteDir(quoteID string) error {
	return os.RemoveAll(filepath.Join(UploadsRoot(), quoteID))
}

// SweepTempUploads removes staged uploads older than maxAge. Drafts that were
// generated but never saved leave their files behind; the scheduler calls this
// to reclaim them. Returns the number of files removed.
func SweepTempUploads(maxAge time.Duration) (int, error) {
	tempDir, err := TempDir()
	if err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(tempDir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
