package main

import (
	"github.com/spf13/cobra"

	"tidy/internal/workflow"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	var extension string
	var prefix string
	var recursive bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "rename <source_directory>",
		Short: "Number files with an extension as <prefix>-<n>-<name>",
		Long: `Rename every file ending in --extension to <prefix>-<n>-<name>, or <n>-<name>
without a prefix. Numbering starts at 1 in each folder and follows name order.
The extension match is case-sensitive.`,
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
			rep, err := runner.Rename(runCtx, workflow.RenameRequest{
				Source:    args[0],
				Extension: stringOverride(cmd, "extension", extension, cfg.Rename.Extension),
				Prefix:    stringOverride(cmd, "prefix", prefix, cfg.Rename.Prefix),
				Recursive: boolOverride(cmd, "recursive", recursive, cfg.Rename.Recursive),
				DryRun:    dryRun,
			})
			return ctx.finishRun(cmd, rep, err)
		},
	}

	cmd.Flags().StringVarP(&extension, "extension", "e", "", "Extension to match, for example .jpg")
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "Prefix for new names")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include files in subdirectories")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without changing anything")
	return cmd
}
