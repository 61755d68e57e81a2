package main

import (
	"github.com/spf13/cobra"

	"tidy/internal/workflow"
)

func newDedupeCommand(ctx *commandContext) *cobra.Command {
	var marker string
	var recursive bool
	var verify bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "dedupe <source_directory>",
		Short: "Delete copies named with a duplicate marker",
		Long: `Delete files whose name carries the duplicate marker, such as "report(1).pdf",
when the unmarked original ("report.pdf") exists in the same folder.

Files without the marker are never deleted. With --verify-content the copy
is only deleted when its bytes match the original.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, runner, done, err := ctx.runner(cmd)
			if err != nil {
				return err
			}
			defer done()
			rep, err := runner.Dedupe(runCtx, workflow.DedupeRequest{
				Source:        args[0],
				Marker:        stringOverride(cmd, "duplicate-marker", marker, cfg.Dedupe.Marker),
				Recursive:     boolOverride(cmd, "recursive", recursive, cfg.Dedupe.Recursive),
				VerifyContent: boolOverride(cmd, "verify-content", verify, cfg.Dedupe.VerifyContent),
				DryRun:        dryRun,
			})
			return ctx.finishRun(cmd, rep, err)
		},
	}

	cmd.Flags().StringVar(&marker, "duplicate-marker", "", `Marker that identifies a copy (default "(1)")`)
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include files in subdirectories (default from config: on)")
	cmd.Flags().BoolVar(&verify, "verify-content", false, "Only delete copies whose content matches the original")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without changing anything")
	return cmd
}
