// Package fingerprint answers "what file is this, bit-for-bit" cheaply and
// repeatedly. Modification time and content digest are computed on first use
// and memoized for the lifetime of a Source handle; no caching is shared
// across handles.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Source is a per-file handle with lazily computed identity attributes.
type Source struct {
	path   string
	mtime  float64
	hasMt  bool
	digest string
}

// NewSource wraps a candidate file path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Path returns the underlying file path.
func (s *Source) Path() string { return s.path }

// Name returns the base filename, the first half of the dedup key.
func (s *Source) Name() string { return filepath.Base(s.path) }

// ModTime returns the source filesystem modification time in seconds since
// the epoch. The first call stats the file; failures are the caller's
// per-file problem.
func (s *Source) ModTime() (float64, error) {
	if s.hasMt {
		return s.mtime, nil
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", s.path, err)
	}
	s.mtime = float64(info.ModTime().UnixNano()) / 1e9
	s.hasMt = true
	return s.mtime, nil
}

// Digest returns the hex MD5 of the full file content, computing and caching
// it on first call. When the file cannot be streamed directly (cloud-backed
// placeholders sometimes refuse plain reads), the content is copied to a
// temporary file, digested from there, and the copy removed on every exit
// path.
func (s *Source) Digest() (string, error) {
	if s.digest != "" {
		return s.digest, nil
	}

	digest, directErr := digestFile(s.path)
	if directErr != nil {
		var fallbackErr error
		digest, fallbackErr = s.digestViaTempCopy()
		if fallbackErr != nil {
			return "", fmt.Errorf("digest %s: %w (direct read: %v)", s.path, fallbackErr, directErr)
		}
	}

	s.digest = digest
	return s.digest, nil
}

func (s *Source) digestViaTempCopy() (string, error) {
	tmp, err := os.CreateTemp("", "photovault-*"+filepath.Ext(s.path))
	if err != nil {
		return "", fmt.Errorf("create temp copy: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	src, err := os.Open(s.path)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("open source for temp copy: %w", err)
	}
	_, copyErr := io.Copy(tmp, src)
	src.Close()
	if closeErr := tmp.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return "", fmt.Errorf("materialize temp copy: %w", copyErr)
	}

	return digestFile(tmpPath)
}

func digestFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := md5.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
