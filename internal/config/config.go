package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"tidy/internal/fault"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directories used by tidy itself (never the trees it
// organizes).
type Paths struct {
	LogDir  string `toml:"log_dir"`
	LockDir string `toml:"lock_dir"`
}

// Sort configures vendor sorting.
type Sort struct {
	Vendors   []string `toml:"vendors"`
	RulesFile string   `toml:"rules_file"`
	Recursive bool     `toml:"recursive"`
}

// Dedupe configures duplicate deletion.
type Dedupe struct {
	Marker        string `toml:"marker"`
	Recursive     bool   `toml:"recursive"`
	VerifyContent bool   `toml:"verify_content"`
}

// Rename configures bulk renaming.
type Rename struct {
	Prefix    string `toml:"prefix"`
	Extension string `toml:"extension"`
	Recursive bool   `toml:"recursive"`
}

// Scaffold configures project scaffolding.
type Scaffold struct {
	Subfolders []string `toml:"subfolders"`
	Readme     bool     `toml:"readme"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Metrics configures the Prometheus textfiles written after each run. Each
// mode writes its own file derived from Textfile.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Config encapsulates all configuration values for tidy.
//
// Configuration sections by subsystem:
//   - Paths: log and lock directories
//   - Sort, Dedupe, Rename, Scaffold: per-command defaults, overridable by flags
//   - Logging: log format and level
//   - Metrics: optional node_exporter textfile output
type Config struct {
	Paths    Paths    `toml:"paths"`
	Sort     Sort     `toml:"sort"`
	Dedupe   Dedupe   `toml:"dedupe"`
	Rename   Rename   `toml:"rename"`
	Scaffold Scaffold `toml:"scaffold"`
	Logging  Logging  `toml:"logging"`
	Metrics  Metrics  `toml:"metrics"`
}

const (
	defaultConfigPath = "~/.config/tidy/config.toml"
	projectConfigFile = "tidy.toml"
)

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. Errors carry fault.ErrConfig.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, fault.Wrap(fault.ErrConfig, "config", "resolve", path, err)
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fault.Wrap(fault.ErrConfig, "config", "open", resolvedPath, err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fault.Wrap(fault.ErrConfig, "config", "parse", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, fault.Wrap(fault.ErrConfig, "config", "normalize", resolvedPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, fault.Wrap(fault.ErrConfig, "config", "validate", resolvedPath, err)
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigFile)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the lock directory and, when file logging is
// enabled, the log directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LockDir}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LogFile returns the JSON log file path, or "" when file logging is off.
func (c *Config) LogFile() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "tidy.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultLockDir() string {
	if base, ok := os.LookupEnv("XDG_RUNTIME_DIR"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "tidy")
	}
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "tidy", "locks")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tidy-locks")
	}
	return filepath.Join(home, ".cache", "tidy", "locks")
}

// CreateSample writes a sample configuration file to the specified location.
// An existing file is left alone.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fault.Wrap(fault.ErrCollision, "config", "init", path+" already exists", nil)
		}
		return fmt.Errorf("write sample config: %w", err)
	}
	if _, err := f.WriteString(sampleConfig); err != nil {
		_ = f.Close()
		return fmt.Errorf("write sample config: %w", err)
	}
	return f.Close()
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}
