package main

import (
	"github.com/spf13/cobra"

	"tidy/internal/workflow"
)

func newScaffoldCommand(ctx *commandContext) *cobra.Command {
	var subfolders []string
	var noReadme bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "scaffold <base_path> <project_name>",
		Short: "Create a project folder with standard subfolders and a README",
		Args:  cobra.ExactArgs(2),
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
			req := workflow.ScaffoldRequest{
				Base:       args[0],
				Name:       args[1],
				Subfolders: cfg.Scaffold.Subfolders,
				Readme:     cfg.Scaffold.Readme && !noReadme,
				DryRun:     dryRun,
			}
			if cmd.Flags().Changed("subfolders") {
				req.Subfolders = subfolders
			}
			rep, err := runner.Scaffold(runCtx, req)
			return ctx.finishRun(cmd, rep, err)
		},
	}

	cmd.Flags().StringSliceVar(&subfolders, "subfolders", nil, "Comma-separated subfolders to create (default src,assets,tests,docs)")
	cmd.Flags().BoolVar(&noReadme, "no-readme", false, "Do not write README.md")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without changing anything")
	return cmd
}
