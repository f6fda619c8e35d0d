package main

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"sera/internal/config"
	"sera/internal/fileutil"
	"sera/internal/organize"
	"sera/internal/workflows"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var seriesName string
	var dryRun bool
	var threshold float64

	cmd := &cobra.Command{
		Use:   "organize <source-dir>",
		Short: "Start an organize run over one series directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cl, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			sourceDir, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if !fileutil.Exists(sourceDir) && !filepath.IsAbs(args[0]) {
				sourceDir = filepath.Join(cfg.Media.InputRoot, args[0])
			}
			if !fileutil.Exists(sourceDir) {
				return fmt.Errorf("source directory %s does not exist", sourceDir)
			}

			if threshold == 0 {
				threshold = cfg.Matching.ConfidenceThreshold
			}
			workflowID := "sera-" + uuid.NewString()[:8]
			run, err := cl.ExecuteWorkflow(cmd.Context(), client.StartWorkflowOptions{
				ID:        workflowID,
				TaskQueue: cfg.Temporal.TaskQueue,
			}, workflows.OrganizeLibraryWorkflowName, organize.OrganizeLibraryInput{
				SourceDir:           sourceDir,
				SeriesName:          seriesName,
				ProcessingRoot:      cfg.Media.ProcessingRoot,
				StagingRoot:         cfg.Media.StagingRoot,
				OutputRoot:          cfg.Media.OutputRoot,
				DryRun:              dryRun,
				ConfidenceThreshold: threshold,
			})
			if err != nil {
				return fmt.Errorf("start workflow: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "started %s (run %s)\n", run.GetID(), run.GetRunID())
			return nil
		},
	}

	cmd.Flags().StringVar(&seriesName, "series", "", "Series name override (defaults to the directory name)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the run without touching the filesystem")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Match confidence acceptance threshold")
	return cmd
}
