package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newConfigShowCommand(ctx))
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			apiKey := "unset"
			if cfg.Anthropic.APIKey != "" {
				apiKey = "set"
			}
			rows := [][]string{
				{"TEMPORAL_ADDRESS", cfg.Temporal.Address},
				{"TEMPORAL_NAMESPACE", cfg.Temporal.Namespace},
				{"TEMPORAL_TASK_QUEUE", cfg.Temporal.TaskQueue},
				{"MAX_CONCURRENT_ACTIVITIES", strconv.Itoa(cfg.Worker.MaxConcurrentActivities)},
				{"MAX_CONCURRENT_WORKFLOW_TASKS", strconv.Itoa(cfg.Worker.MaxConcurrentWorkflowTasks)},
				{"MEDIA_INPUT_ROOT", cfg.Media.InputRoot},
				{"MEDIA_PROCESSING_ROOT", cfg.Media.ProcessingRoot},
				{"MEDIA_STAGING_ROOT", cfg.Media.StagingRoot},
				{"MEDIA_OUTPUT_ROOT", cfg.Media.OutputRoot},
				{"ANTHROPIC_API_KEY", apiKey},
				{"ANTHROPIC_MODEL", cfg.Anthropic.Model},
				{"ANILIST_BASE_URL", cfg.AniList.BaseURL},
				{"MATCH_CONFIDENCE_THRESHOLD", fmt.Sprintf("%.2f", cfg.Matching.ConfidenceThreshold)},
				{"LOG_LEVEL", cfg.Logging.Level},
				{"LOG_FORMAT", cfg.Logging.Format},
				{"HISTORY_DB_PATH", cfg.HistoryDBPath},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows))
			return nil
		},
	}
}
