package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tidy/internal/report"
)

// errFailures signals a completed run with failed entries. The entries were
// already printed, so main only needs the exit code.
var errFailures = errors.New("one or more files could not be processed")

func printEntry(w io.Writer, e report.Entry, verbose bool) {
	if !e.Visible(verbose) {
		return
	}
	fmt.Fprintln(w, e.Line())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// finishRun exports and prints the report and converts the run outcome into
// the command error.
func (c *commandContext) finishRun(cmd *cobra.Command, rep *report.Report, runErr error) error {
	if rep == nil {
		return runErr
	}
	if path := c.flags.report; path != "" {
		if err := rep.Export(path); err != nil {
			return errors.Join(runErr, fmt.Errorf("export report: %w", err))
		}
	}

	out := cmd.OutOrStdout()
	if c.flags.json {
		if err := rep.WriteJSON(out); err != nil {
			return errors.Join(runErr, err)
		}
	} else if isTerminal(out) {
		fmt.Fprint(out, renderSummary(rep))
	} else {
		fmt.Fprintln(out, rep.Summary().String())
	}

	if runErr != nil {
		return runErr
	}
	if rep.HasFailures() {
		return errFailures
	}
	return nil
}
