package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"photovault/internal/fingerprint"
)

func newSource(t *testing.T, dir, name string, content []byte) *fingerprint.Source {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return fingerprint.NewSource(path)
}

func TestAddAndContains(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "archive.json")
	store := Open(statePath, nil)

	src := newSource(t, dir, "IMG_0001.jpg", []byte("content"))
	if err := store.Add(src); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if !store.ContainsName("IMG_0001.jpg") {
		t.Fatal("ContainsName should be true after Add")
	}
	digest, err := src.Digest()
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	if !store.ContainsNameAndDigest("IMG_0001.jpg", digest) {
		t.Fatal("ContainsNameAndDigest should be true after Add")
	}
	if store.ContainsNameAndDigest("IMG_0001.jpg", "0000") {
		t.Fatal("ContainsNameAndDigest should require an exact digest match")
	}
	if store.ContainsName("IMG_0002.jpg") {
		t.Fatal("ContainsName should be false for an unseen name")
	}
}

func TestAddIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store := Open(filepath.Join(dir, "archive.json"), nil)

	src := newSource(t, dir, "IMG_0001.jpg", []byte("content"))
	if err := store.Add(src); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add(src); err != nil {
		t.Fatalf("second Add failed: %v", err)
	}

	if got := store.Count(); got != 1 {
		t.Fatalf("expected one record after repeated Add, got %d", got)
	}
	if got := len(store.Records()); got != 1 {
		t.Fatalf("Records returned %d entries, want 1", got)
	}
}

func TestNameCollisionKeepsBothRecords(t *testing.T) {
	dir := t.TempDir()
	store := Open(filepath.Join(dir, "archive.json"), nil)

	first := newSource(t, dir, "IMG_0001.jpg", []byte("first shoot"))
	if err := store.Add(first); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	other := t.TempDir()
	second := newSource(t, other, "IMG_0001.jpg", []byte("second shoot"))
	if err := store.Add(second); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if got := store.Count(); got != 2 {
		t.Fatalf("expected two records for distinct content sharing a name, got %d", got)
	}
	firstDigest, _ := first.Digest()
	secondDigest, _ := second.Digest()
	if !store.ContainsNameAndDigest("IMG_0001.jpg", firstDigest) ||
		!store.ContainsNameAndDigest("IMG_0001.jpg", secondDigest) {
		t.Fatal("both (name, digest) records should exist")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "archive.json")

	store := Open(statePath, nil)
	src := newSource(t, dir, "IMG_0001.jpg", []byte("content"))
	if err := store.Add(src); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	digest, _ := src.Digest()
	mtime, _ := src.ModTime()

	reloaded := Open(statePath, nil)
	if !reloaded.ContainsNameAndDigest("IMG_0001.jpg", digest) {
		t.Fatal("record missing after reload")
	}
	records := reloaded.Records()
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if records[0].Path != src.Path() {
		t.Fatalf("path not preserved: got %q want %q", records[0].Path, src.Path())
	}
	if records[0].ModTime != mtime {
		t.Fatalf("mtime not preserved: got %v want %v", records[0].ModTime, mtime)
	}
}

func TestStateDocumentShape(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "archive.json")

	store := Open(statePath, nil)
	src := newSource(t, dir, "IMG_0001.jpg", []byte("content"))
	if err := store.Add(src); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	raw, err := os.ReadFile(statePath)
	if err != nil {
		t.Fatalf("read state file: %v", err)
	}

	var doc struct {
		Files []map[string]any `json:"files"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("state file is not valid JSON: %v", err)
	}
	if len(doc.Files) != 1 {
		t.Fatalf("expected one entry under \"files\", got %d", len(doc.Files))
	}
	entry := doc.Files[0]
	for _, key := range []string{"path", "mtime", "md5"} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("state entry missing %q field: %v", key, entry)
		}
	}
}

func TestMissingStateFileYieldsEmptyStore(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "absent.json"), nil)
	if store.Count() != 0 {
		t.Fatal("missing state file should yield an empty store")
	}
}

func TestMalformedStateFileYieldsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "archive.json")
	if err := os.WriteFile(statePath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := Open(statePath, nil)
	if store.Count() != 0 {
		t.Fatal("malformed state file should yield an empty store, not an error")
	}

	// The store must still be usable for new records.
	src := newSource(t, dir, "IMG_0001.jpg", []byte("content"))
	if err := store.Add(src); err != nil {
		t.Fatalf("Add after malformed load failed: %v", err)
	}
}

func TestSchemaViolationYieldsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "archive.json")
	if err := os.WriteFile(statePath, []byte(`{"files":[{"path":"","mtime":1,"md5":""}]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := Open(statePath, nil)
	if store.Count() != 0 {
		t.Fatal("records without path or digest should be rejected wholesale")
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "archive.json")
	store := Open(statePath, nil)

	src := newSource(t, dir, "IMG_0001.jpg", []byte("content"))
	if err := store.Add(src); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if _, err := os.Stat(statePath + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file should have been renamed over the state file")
	}
}
