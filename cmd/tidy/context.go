package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tidy/internal/config"
	"tidy/internal/logging"
	"tidy/internal/metrics"
	"tidy/internal/report"
	"tidy/internal/workflow"
)

type globalFlags struct {
	config  string
	verbose bool
	json    bool
	report  string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// runner prepares a workflow runner whose entries are streamed to stdout
// unless JSON output was requested. The returned function closes the log
// file and must run once the command is done.
func (c *commandContext) runner(cmd *cobra.Command) (context.Context, *workflow.Runner, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	runID := uuid.NewString()
	logger, closeLog, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr(), runID, c.flags.verbose)
	if err != nil {
		return nil, nil, nil, err
	}
	done := func() {
		if err := closeLog(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: close log file: %v\n", err)
		}
	}

	opts := []workflow.Option{workflow.WithLockDir(cfg.Paths.LockDir)}
	if cfg.Metrics.Textfile != "" {
		opts = append(opts, workflow.WithMetrics(metrics.New(), cfg.Metrics.Textfile))
	}
	if !c.flags.json {
		out := cmd.OutOrStdout()
		verbose := c.flags.verbose
		opts = append(opts, workflow.WithEntryHook(func(e report.Entry) {
			printEntry(out, e, verbose)
		}))
	}

	ctx := logging.WithRunID(cmd.Context(), runID)
	return ctx, workflow.New(logger, opts...), done, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// boolOverride returns the flag value when it was given, else the configured
// value.
func boolOverride(cmd *cobra.Command, name string, flagValue, configValue bool) bool {
	if cmd.Flags().Changed(name) {
		return flagValue
	}
	return configValue
}

func stringOverride(cmd *cobra.Command, name, flagValue, configValue string) string {
	if cmd.Flags().Changed(name) {
		return flagValue
	}
	return configValue
}
