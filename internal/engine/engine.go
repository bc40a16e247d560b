// Package engine orchestrates the two-pass dedup run over a source
// directory.
//
// Pass one decides on filename presence alone: a name the ledger has never
// seen is copied without reading its content. Files whose name collides with
// an archived record are deferred to pass two, which computes the content
// digest and copies only when the exact (name, digest) pair is absent. Only
// name collisions ever pay the full-content read.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"photovault/internal/fingerprint"
	"photovault/internal/ledger"
	"photovault/internal/logging"
	"photovault/internal/placement"
)

// Summary counts the outcomes of a run. It feeds logging only; the durable
// result of a run is the ledger and the archive tree.
type Summary struct {
	FirstPassCopied  int
	SecondPassCopied int
	Duplicates       int
	Failures         int
}

// Engine consumes the ledger and placement policy to classify and archive
// candidate files. Execution is strictly sequential: each file is fully
// processed and its record persisted before the next is considered.
type Engine struct {
	store  *ledger.Store
	policy *placement.Policy
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock
}

// New constructs an engine over the given ledger and policy.
func New(store *ledger.Store, policy *placement.Policy, logger *slog.Logger) (*Engine, error) {
	if store == nil || policy == nil {
		return nil, errors.New("engine requires ledger store and placement policy")
	}
	lockPath := store.Path() + ".lock"
	return &Engine{
		store:    store,
		policy:   policy,
		logger:   logging.NewComponentLogger(logger, "engine"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Run archives every candidate file under sourceDir. Concurrent runs against
// the same ledger are unsupported; the ledger lock makes a second invocation
// fail fast instead of corrupting state. Per-file failures are logged and
// skipped, so the run itself only fails on setup problems.
func (e *Engine) Run(ctx context.Context, sourceDir string) (Summary, error) {
	var summary Summary

	if err := os.MkdirAll(filepath.Dir(e.lockPath), 0o755); err != nil {
		return summary, fmt.Errorf("create state directory: %w", err)
	}
	ok, err := e.lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !ok {
		return summary, fmt.Errorf("another photovault run holds the ledger lock at %s", e.lockPath)
	}
	defer e.lock.Unlock()

	candidates, err := discover(sourceDir)
	if err != nil {
		return summary, err
	}

	var deferred []*fingerprint.Source
	for _, src := range candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if e.store.ContainsName(src.Name()) {
			e.logger.Info("name already archived, deferring to digest check",
				logging.String(logging.FieldPass, "fast"),
				logging.String(logging.FieldFile, src.Path()))
			deferred = append(deferred, src)
			continue
		}
		if e.archive(ctx, src, "fast") {
			summary.FirstPassCopied++
		} else {
			summary.Failures++
		}
	}

	e.logger.Info("fast pass complete",
		logging.Int("copied", summary.FirstPassCopied),
		logging.Int("deferred", len(deferred)))

	for _, src := range deferred {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		digest, err := src.Digest()
		if err != nil {
			summary.Failures++
			logging.ErrorWithContext(e.logger, "digest computation failed", "digest_failed",
				logging.String(logging.FieldPass, "slow"),
				logging.String(logging.FieldFile, src.Path()),
				logging.Error(err))
			continue
		}
		if e.store.ContainsNameAndDigest(src.Name(), digest) {
			summary.Duplicates++
			e.logger.Info("file already archived",
				logging.String(logging.FieldPass, "slow"),
				logging.String(logging.FieldFile, src.Path()),
				logging.String(logging.FieldDigest, digest))
			continue
		}
		if e.archive(ctx, src, "slow") {
			summary.SecondPassCopied++
		} else {
			summary.Failures++
		}
	}

	e.logger.Info("run complete",
		logging.Int("first_pass_copied", summary.FirstPassCopied),
		logging.Int("second_pass_copied", summary.SecondPassCopied),
		logging.Int("duplicates", summary.Duplicates),
		logging.Int("failures", summary.Failures))

	return summary, nil
}

// archive places one file and records it. Any failure is logged here, at the
// per-file boundary, and leaves no partial record behind.
func (e *Engine) archive(ctx context.Context, src *fingerprint.Source, pass string) bool {
	dest, err := e.policy.Place(ctx, src)
	if err != nil {
		logging.ErrorWithContext(e.logger, "failed to archive file", "archive_failed",
			logging.String(logging.FieldPass, pass),
			logging.String(logging.FieldFile, src.Path()),
			logging.Error(err))
		return false
	}
	if err := e.store.Add(src); err != nil {
		logging.ErrorWithContext(e.logger, "failed to record archived file", "record_failed",
			logging.String(logging.FieldPass, pass),
			logging.String(logging.FieldFile, src.Path()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "file will be re-copied on the next run"))
		return false
	}
	e.logger.Info("archived file",
		logging.String(logging.FieldPass, pass),
		logging.String(logging.FieldFile, src.Path()),
		logging.String(logging.FieldDestination, dest))
	return true
}

// discover returns the regular files directly inside sourceDir in
// enumeration order. Order is unspecified on purpose; file identity, not
// scheduling, makes the run reproducible.
func discover(sourceDir string) ([]*fingerprint.Source, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}
	sources := make([]*fingerprint.Source, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if entry.Type().IsRegular() {
			sources = append(sources, fingerprint.NewSource(filepath.Join(sourceDir, entry.Name())))
		}
	}
	return sources, nil
}
