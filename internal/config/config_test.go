package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"tidy/internal/config"
	"tidy/internal/fault"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("XDG_CACHE_HOME", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "tidy", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Paths.LockDir != filepath.Join(tempHome, ".cache", "tidy", "locks") {
		t.Fatalf("unexpected lock dir: %q", cfg.Paths.LockDir)
	}
	if cfg.Paths.LogDir != "" || cfg.LogFile() != "" {
		t.Fatalf("expected file logging off by default, got %q", cfg.Paths.LogDir)
	}
	if cfg.Dedupe.Marker != "(1)" || !cfg.Dedupe.Recursive {
		t.Fatalf("unexpected dedupe defaults: %+v", cfg.Dedupe)
	}
	want := []string{"src", "assets", "tests", "docs"}
	if len(cfg.Scaffold.Subfolders) != len(want) {
		t.Fatalf("unexpected subfolders %v", cfg.Scaffold.Subfolders)
	}
	for i := range want {
		if cfg.Scaffold.Subfolders[i] != want[i] {
			t.Fatalf("unexpected subfolders %v", cfg.Scaffold.Subfolders)
		}
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "warn" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadUsesXDGRuntimeDirForLocks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	runtimeDir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", runtimeDir)

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.LockDir != filepath.Join(runtimeDir, "tidy") {
		t.Fatalf("unexpected lock dir %q", cfg.Paths.LockDir)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	custom := config.Default()
	custom.Paths.LogDir = "~/logs"
	custom.Sort.Vendors = []string{" Apple ", "", "Dell"}
	custom.Sort.RulesFile = "~/rules.yaml"
	custom.Rename.Prefix = " holiday "
	custom.Rename.Extension = ".jpg"
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "Debug"
	custom.Metrics.Textfile = "~/metrics/tidy.prom"

	configPath := filepath.Join(t.TempDir(), "custom.toml")
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected %q to be loaded, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, "logs") {
		t.Fatalf("unexpected log dir %q", cfg.Paths.LogDir)
	}
	if cfg.LogFile() != filepath.Join(tempHome, "logs", "tidy.log") {
		t.Fatalf("unexpected log file %q", cfg.LogFile())
	}
	if len(cfg.Sort.Vendors) != 2 || cfg.Sort.Vendors[0] != "Apple" || cfg.Sort.Vendors[1] != "Dell" {
		t.Fatalf("unexpected vendors %v", cfg.Sort.Vendors)
	}
	if cfg.Sort.RulesFile != filepath.Join(tempHome, "rules.yaml") {
		t.Fatalf("unexpected rules file %q", cfg.Sort.RulesFile)
	}
	if cfg.Rename.Prefix != "holiday" || cfg.Rename.Extension != ".jpg" {
		t.Fatalf("unexpected rename section %+v", cfg.Rename)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging section %+v", cfg.Logging)
	}
	if cfg.Metrics.Textfile != filepath.Join(tempHome, "metrics", "tidy.prom") {
		t.Fatalf("unexpected textfile %q", cfg.Metrics.Textfile)
	}
}

func TestLoadProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, "tidy.toml"), []byte("[dedupe]\nmarker = \" - Copy\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || filepath.Base(resolved) != "tidy.toml" {
		t.Fatalf("expected project config, got %q", resolved)
	}
	if cfg.Dedupe.Marker != " - Copy" {
		t.Fatalf("marker should be kept verbatim, got %q", cfg.Dedupe.Marker)
	}
}

func TestLoadRejectsUnknownKeysAndBadTOML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tests := map[string]string{
		"unknown key": "[sort]\nvendor = [\"Apple\"]\n",
		"bad syntax":  "[sort\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, _, _, err := config.Load(path); !errors.Is(err, fault.ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}
	if cfg.Dedupe.Marker != "(1)" {
		t.Fatalf("unexpected sample marker %q", cfg.Dedupe.Marker)
	}
	if err := config.CreateSample(path); !errors.Is(err, fault.ErrCollision) {
		t.Fatalf("expected ErrCollision for existing file, got %v", err)
	}
}

func TestSampleConfigLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"marker separator", func(c *config.Config) { c.Dedupe.Marker = "a/b" }},
		{"prefix separator", func(c *config.Config) { c.Rename.Prefix = "x/y" }},
		{"subfolder traversal", func(c *config.Config) { c.Scaffold.Subfolders = []string{".."} }},
		{"nested subfolder", func(c *config.Config) { c.Scaffold.Subfolders = []string{"src/main"} }},
		{"textfile extension", func(c *config.Config) { c.Metrics.Textfile = "/tmp/tidy.txt" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LockDir = filepath.Join(base, "locks")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LockDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected %s to exist", dir)
		}
	}
}
