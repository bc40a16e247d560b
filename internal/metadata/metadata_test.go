package metadata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCaptureTimeMissingFile(t *testing.T) {
	reader := NewExifReader()
	if _, err := reader.CaptureTime(filepath.Join(t.TempDir(), "absent.jpg")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCaptureTimeNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("plain text, no exif"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	reader := NewExifReader()
	if _, err := reader.CaptureTime(path); err == nil {
		t.Fatal("expected error for a file without EXIF data")
	}
}
