// Package placement maps a source file to its canonical archive destination
// and performs the copy or conversion that puts it there.
package placement

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"photovault/internal/convert"
	"photovault/internal/fingerprint"
	"photovault/internal/logging"
	"photovault/internal/metadata"
)

// Policy derives destination paths from capture dates and places files there.
type Policy struct {
	root         string
	suffix       string
	rawExt       string
	convertedExt string
	converter    convert.Converter
	dates        metadata.Reader
	logger       *slog.Logger
}

// Options describes policy construction parameters.
type Options struct {
	// Root is the archive target directory.
	Root string
	// Suffix is appended verbatim to year and year-month directory names.
	Suffix string
	// RawExtension marks files that are converted rather than copied.
	// Defaults to ".heic".
	RawExtension string
	// ConvertedExtension is the extension raw files are archived under.
	// Defaults to ".jpg".
	ConvertedExtension string
	// Converter performs the raw-image conversion. Defaults to the magick CLI.
	Converter convert.Converter
	// Dates resolves embedded capture timestamps. Defaults to the EXIF reader.
	Dates metadata.Reader
}

// New constructs a Policy for the given archive root.
func New(opts Options, logger *slog.Logger) *Policy {
	p := &Policy{
		root:         opts.Root,
		suffix:       opts.Suffix,
		rawExt:       strings.ToLower(opts.RawExtension),
		convertedExt: strings.ToLower(opts.ConvertedExtension),
		converter:    opts.Converter,
		dates:        opts.Dates,
		logger:       logging.NewComponentLogger(logger, "placement"),
	}
	if p.rawExt == "" {
		p.rawExt = ".heic"
	}
	if p.convertedExt == "" {
		p.convertedExt = ".jpg"
	}
	if p.converter == nil {
		p.converter = convert.NewCLI()
	}
	if p.dates == nil {
		p.dates = metadata.NewExifReader()
	}
	return p
}

// Destination returns <root>/<year><suffix>/<year>-<month:02><suffix>/<stem><ext>
// for a file named name taken at the given time. The raw extension is
// rewritten to the converted one; every other extension passes through.
func (p *Policy) Destination(name string, taken time.Time) string {
	ext := filepath.Ext(name)
	if strings.ToLower(ext) == p.rawExt {
		ext = p.convertedExt
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	year := fmt.Sprintf("%d%s", taken.Year(), p.suffix)
	month := fmt.Sprintf("%d-%02d%s", taken.Year(), int(taken.Month()), p.suffix)
	return filepath.Join(p.root, year, month, stem+ext)
}

// Place resolves the file's capture date, creates any missing destination
// directories, and either converts or copies the file into the archive. The
// copy preserves the source modification timestamp.
func (p *Policy) Place(ctx context.Context, src *fingerprint.Source) (string, error) {
	taken, err := p.resolveDate(src)
	if err != nil {
		return "", err
	}
	dest := p.Destination(src.Name(), taken)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create destination directory: %w", err)
	}

	if p.needsConversion(src.Name()) {
		if err := p.converter.Convert(ctx, src.Path(), dest); err != nil {
			return "", err
		}
		return dest, nil
	}

	if err := copyPreservingModTime(src.Path(), dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (p *Policy) needsConversion(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == p.rawExt
}

// resolveDate prefers the embedded capture timestamp and degrades to the
// filesystem modification time. A metadata failure is logged and absorbed;
// only an unreadable modification time surfaces, making the file a per-file
// failure for the engine.
func (p *Policy) resolveDate(src *fingerprint.Source) (time.Time, error) {
	taken, err := p.dates.CaptureTime(src.Path())
	if err == nil {
		return taken, nil
	}
	p.logger.Info("no embedded capture time, using modification time",
		logging.String(logging.FieldFile, src.Path()),
		logging.Error(err))

	mtime, err := src.ModTime()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, int64(mtime*1e9)), nil
}

// copyPreservingModTime copies src to dst and carries the source
// modification time over, the moral equivalent of cp -p.
func copyPreservingModTime(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	_, copyErr := io.Copy(out, in)
	if closeErr := out.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		os.Remove(dst)
		return fmt.Errorf("copy content: %w", copyErr)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("preserve modification time: %w", err)
	}
	return nil
}
