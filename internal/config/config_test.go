package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("config file should not exist")
	}
	if cfg.Conversion.Binary != "magick" {
		t.Fatalf("unexpected default conversion binary %q", cfg.Conversion.Binary)
	}
	if cfg.Archive.RawExtension != ".heic" || cfg.Archive.ConvertedExtension != ".jpg" {
		t.Fatalf("unexpected default extensions %q -> %q", cfg.Archive.RawExtension, cfg.Archive.ConvertedExtension)
	}
	if cfg.Archive.DirSuffix != "" {
		t.Fatalf("dir_suffix should default to empty, got %q", cfg.Archive.DirSuffix)
	}
	if !filepath.IsAbs(cfg.Paths.StateFile) {
		t.Fatalf("state file path should be absolute, got %q", cfg.Paths.StateFile)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
state_file = "` + filepath.Join(dir, "state.json") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[archive]
dir_suffix = "_test"
raw_extension = "HEIC"
converted_extension = "jpeg"

[conversion]
binary = "convert"

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be used, got %s (exists=%v)", path, resolved, exists)
	}
	if cfg.Archive.DirSuffix != "_test" {
		t.Fatalf("dir_suffix not applied: %q", cfg.Archive.DirSuffix)
	}
	if cfg.Archive.RawExtension != ".heic" {
		t.Fatalf("raw extension should be normalized to lowercase dotted form, got %q", cfg.Archive.RawExtension)
	}
	if cfg.Archive.ConvertedExtension != ".jpeg" {
		t.Fatalf("converted extension should gain a leading dot, got %q", cfg.Archive.ConvertedExtension)
	}
	if cfg.Conversion.Binary != "convert" {
		t.Fatalf("conversion binary not applied: %q", cfg.Conversion.Binary)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging settings not applied: %+v", cfg.Logging)
	}
	if cfg.LogFilePath() != filepath.Join(dir, "logs", "photovault.log") {
		t.Fatalf("unexpected log file path %q", cfg.LogFilePath())
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestLoadRejectsEqualExtensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[archive]\nraw_extension = \".jpg\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error when raw and converted extension collide")
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	expanded, err := ExpandPath("~/photos")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if !strings.HasPrefix(expanded, home) {
		t.Fatalf("expected %q to live under %q", expanded, home)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("sample config should load cleanly: exists=%v err=%v", exists, err)
	}
}
