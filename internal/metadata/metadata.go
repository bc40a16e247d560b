// Package metadata reads embedded capture timestamps from image files.
package metadata

import (
	"fmt"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Reader extracts the original-capture timestamp from a file. Absence of the
// tag is an error the caller is expected to degrade on.
type Reader interface {
	CaptureTime(path string) (time.Time, error)
}

// ExifReader reads EXIF DateTimeOriginal (with the usual DateTime fallback
// chain) via goexif.
type ExifReader struct{}

// NewExifReader returns the standard EXIF-backed Reader.
func NewExifReader() ExifReader { return ExifReader{} }

// CaptureTime decodes the file's EXIF block and returns its capture time.
func (ExifReader) CaptureTime(path string) (time.Time, error) {
	file, err := os.Open(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode exif: %w", err)
	}

	taken, err := x.DateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read capture time: %w", err)
	}
	return taken, nil
}
