package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"

	"tidy/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Writer receives console output; nil means stderr.
	Writer io.Writer
	// FilePath adds a JSON sink appended to this file.
	FilePath string
	// RunID is attached to every record when set.
	RunID string
}

// New constructs a slog logger using the provided options. The returned
// function closes the log file, if any, and must be called once logging is
// done.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	addSource := level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var console slog.Handler
	switch format {
	case "json":
		console = newJSONHandler(writer, levelVar, addSource)
	case "console":
		console = newPrettyHandler(writer, levelVar, addSource)
	default:
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	handler := console
	closeFn := func() error { return nil }
	if path := strings.TrimSpace(opts.FilePath); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			return nil, nil, err
		}
		closeFn = file.Close
		// The file always records at least info so runs can be audited even
		// when the console is quiet.
		fileLevel := new(slog.LevelVar)
		fileLevel.Set(min(level, slog.LevelInfo))
		handler = slogmulti.Fanout(console, newJSONHandler(file, fileLevel, false))
	}

	if opts.RunID != "" {
		handler = newRunIDHandler(handler, opts.RunID)
	}
	return slog.New(handler), closeFn, nil
}

// NewFromConfig creates a run logger from application config, writing console
// output to w. Verbose runs log at least at info.
func NewFromConfig(cfg *config.Config, w io.Writer, runID string, verbose bool) (*slog.Logger, func() error, error) {
	if cfg == nil {
		return New(Options{Level: "warn", Format: "console", Writer: w, RunID: runID})
	}
	level := cfg.Logging.Level
	if verbose && parseLevel(level) > slog.LevelInfo {
		level = "info"
	}
	return New(Options{
		Level:    level,
		Format:   cfg.Logging.Format,
		Writer:   w,
		FilePath: cfg.LogFile(),
		RunID:    runID,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	case "warn", "warning", "":
		return slog.LevelWarn
	default:
		return slog.LevelWarn
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
