// Package ledger is the durable dedup ledger: a persisted list of archive
// records keyed by (filename, content digest), with two in-memory lookup
// views that are always rebuilt and mutated together.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"photovault/internal/fingerprint"
	"photovault/internal/logging"
)

// Record asserts "a file named filepath.Base(Path) with digest Digest has
// been archived". Records are append-only across a run: a re-seen file
// matches its existing record instead of producing a second one.
type Record struct {
	Path    string  `json:"path"`
	ModTime float64 `json:"mtime"`
	Digest  string  `json:"md5"`
}

// Name returns the filename half of the record key.
func (r Record) Name() string { return filepath.Base(r.Path) }

type stateDocument struct {
	Files []Record `json:"files"`
}

type nameDigest struct {
	name   string
	digest string
}

// Store provides the two query shapes over the record set. Both views derive
// from the same flat record list; they never diverge because the only
// mutation path is Add.
type Store struct {
	path         string
	logger       *slog.Logger
	byNameDigest map[nameDigest]Record
	byName       map[string][]Record
}

// Open loads the ledger from path. A missing, malformed, or
// schema-violating state file is logged and treated as no prior history,
// never surfaced to the caller.
func Open(path string, logger *slog.Logger) *Store {
	logger = logging.NewComponentLogger(logger, "ledger")

	s := &Store{
		path:         path,
		logger:       logger,
		byNameDigest: make(map[nameDigest]Record),
		byName:       make(map[string][]Record),
	}

	if err := s.load(); err != nil {
		logging.WarnWithContext(logger, "failed to load archive ledger", "ledger_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "ledger starts empty"),
			logging.String(logging.FieldImpact, "previously archived files may be copied again"))
	}

	return s
}

// Add inserts a record built from the file's name, modification time, and
// content digest, keyed by (name, digest). Adding an existing key overwrites
// it, so the operation is idempotent. The ledger is persisted immediately;
// a failed persist means the record is not durable and the error is the
// caller's per-file failure.
func (s *Store) Add(src *fingerprint.Source) error {
	mtime, err := src.ModTime()
	if err != nil {
		return err
	}
	digest, err := src.Digest()
	if err != nil {
		return err
	}

	rec := Record{Path: src.Path(), ModTime: mtime, Digest: digest}
	s.insert(rec)

	if err := s.save(); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}

	s.logger.Debug("recorded archived file",
		logging.String(logging.FieldFile, rec.Path),
		logging.String(logging.FieldDigest, rec.Digest))
	return nil
}

func (s *Store) insert(rec Record) {
	key := nameDigest{name: rec.Name(), digest: rec.Digest}
	if _, exists := s.byNameDigest[key]; !exists {
		s.byName[key.name] = append(s.byName[key.name], rec)
	} else {
		bucket := s.byName[key.name]
		for i, existing := range bucket {
			if existing.Digest == rec.Digest {
				bucket[i] = rec
				break
			}
		}
	}
	s.byNameDigest[key] = rec
}

// ContainsName reports whether any record exists with that filename,
// regardless of digest. This is the cheap fast-pass check.
func (s *Store) ContainsName(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// ContainsNameAndDigest reports whether an exact record exists. The cost is
// in the caller having to compute the digest, not in the lookup.
func (s *Store) ContainsNameAndDigest(name, digest string) bool {
	_, ok := s.byNameDigest[nameDigest{name: name, digest: digest}]
	return ok
}

// Records returns all records in unspecified order.
func (s *Store) Records() []Record {
	records := make([]Record, 0, len(s.byNameDigest))
	for _, rec := range s.byNameDigest {
		records = append(records, rec)
	}
	return records
}

// Count returns the number of distinct (name, digest) records.
func (s *Store) Count() int {
	return len(s.byNameDigest)
}

// Path returns the durable state file location.
func (s *Store) Path() string { return s.path }

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read state file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var doc stateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse state file: %w", err)
	}

	for _, rec := range doc.Files {
		if rec.Path == "" || rec.Digest == "" {
			return fmt.Errorf("state file contains record without path or digest")
		}
	}
	for _, rec := range doc.Files {
		s.insert(rec)
	}

	s.logger.Debug("loaded archive ledger",
		logging.Int("record_count", len(s.byNameDigest)),
		logging.String("path", s.path))
	return nil
}

// save writes the full record list to disk atomically: the document is
// written to a sibling temp file and renamed over the target, so a crash
// mid-write never truncates prior history.
func (s *Store) save() error {
	doc := stateDocument{Files: make([]Record, 0, len(s.byNameDigest))}
	for _, rec := range s.byNameDigest {
		doc.Files = append(doc.Files, rec)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) // cleanup on failure
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
