package main

import (
	"github.com/spf13/cobra"

	"tidy/internal/workflow"
)

func newSortCommand(ctx *commandContext) *cobra.Command {
	var vendors []string
	var rulesFile string
	var recursive bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sort <source_directory> <destination>",
		Short: "Move files into vendor folders by name keyword",
		Long: `Move every file whose name contains a vendor keyword into <destination>/<vendor>/.

Vendors are matched case-insensitively in the order given; the first match
wins. Vendors from --vendors are tried before those from the rules file.`,
		Args: cobra.ExactArgs(2),
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
			req := workflow.SortRequest{
				Source:    args[0],
				Dest:      args[1],
				Vendors:   cfg.Sort.Vendors,
				RulesFile: stringOverride(cmd, "rules", rulesFile, cfg.Sort.RulesFile),
				Recursive: boolOverride(cmd, "recursive", recursive, cfg.Sort.Recursive),
				DryRun:    dryRun,
			}
			if cmd.Flags().Changed("vendors") {
				req.Vendors = vendors
			}
			rep, err := runner.Sort(runCtx, req)
			return ctx.finishRun(cmd, rep, err)
		},
	}

	cmd.Flags().StringSliceVar(&vendors, "vendors", nil, "Comma-separated vendor names, in priority order")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "YAML file with vendor groups and keywords")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include files in subdirectories")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without changing anything")
	return cmd
}
