package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sera/internal/organize"
	"sera/internal/workflows"
)

func newFolderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "folder <workflow-id> <folder-name>",
		Short: "Show one disc folder's progress and pending reviews",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			resp, err := cl.QueryWorkflow(cmd.Context(), childWorkflowID(args[0], args[1]), "", workflows.QueryGetProgress)
			if err != nil {
				return fmt.Errorf("query folder progress: %w", err)
			}
			var progress organize.ProcessFolderProgress
			if err := resp.Get(&progress); err != nil {
				return fmt.Errorf("decode folder progress: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "folder: %s\nstatus: %s\n", progress.FolderName, progress.Status)
			if progress.TotalVideoFiles > 0 {
				fmt.Fprintf(out, "videos: %d (%d detected episodes, confidence %s)\n",
					progress.TotalVideoFiles, progress.DetectedEpisodeCount, progress.DetectionConfidence)
			}
			fmt.Fprintf(out, "subtitles: %d extracted\n", progress.SubtitlesExtracted)
			if progress.CurrentFile != "" {
				fmt.Fprintf(out, "current: %s\n", progress.CurrentFile)
			}
			if progress.TotalToMatch > 0 {
				fmt.Fprintf(out, "matches: %d/%d\n", progress.MatchesFound, progress.TotalToMatch)
			}
			if progress.TotalEpisodesToCopy > 0 {
				fmt.Fprintf(out, "copied: %d/%d\n", progress.EpisodesCopied, progress.TotalEpisodesToCopy)
			}

			if len(progress.PendingReviews) > 0 {
				rows := make([][]string, 0, len(progress.PendingReviews))
				for _, item := range progress.PendingReviews {
					rows = append(rows, []string{
						item.ID,
						item.FileName,
						fmt.Sprintf("S%02dE%02d", item.SuggestedSeason, item.SuggestedEpisode),
						fmt.Sprintf("%.2f", item.Confidence),
						clip(item.Reasoning, 60),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Review ID", "File", "Suggested", "Confidence", "Reasoning"}, rows))
			}
			return nil
		},
	}
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
