package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sera/internal/organize"
	"sera/internal/workflows"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <workflow-id>",
		Short: "Show library run progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			resp, err := cl.QueryWorkflow(cmd.Context(), args[0], "", workflows.QueryGetProgress)
			if err != nil {
				return fmt.Errorf("query progress: %w", err)
			}
			var progress organize.OrganizeLibraryProgress
			if err := resp.Get(&progress); err != nil {
				return fmt.Errorf("decode progress: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "stage: %s\n", progress.Stage)
			if progress.MetadataSummary != nil {
				fmt.Fprintf(out, "metadata: %s", progress.MetadataSummary.Status)
				if progress.MetadataSummary.SeriesName != "" {
					fmt.Fprintf(out, " (%s, %d seasons)", progress.MetadataSummary.SeriesName, len(progress.MetadataSummary.Seasons))
				}
				fmt.Fprintln(out)
			}
			printCopyProgress(cmd, "copy", progress.CopyProgress)
			if progress.StructuringProgress != nil {
				fmt.Fprintf(out, "structuring: %d/%d", progress.StructuringProgress.FilesStructured, progress.StructuringProgress.TotalFiles)
				if progress.StructuringProgress.CurrentFile != "" {
					fmt.Fprintf(out, " (%s)", progress.StructuringProgress.CurrentFile)
				}
				fmt.Fprintln(out)
			}
			printCopyProgress(cmd, "output", progress.OutputProgress)
			fmt.Fprintf(out, "episodes: %d/%d resolved\n", progress.ResolvedCoreEpisodeCount, progress.ExpectedCoreEpisodeCount)
			fmt.Fprintf(out, "folders: %d total, %d completed, %d failed, %d in progress\n",
				progress.TotalFolders, progress.FoldersCompleted, progress.FoldersFailed, progress.FoldersInProgress)
			if progress.Stage == organize.StageAwaitingFinalize {
				fmt.Fprintf(out, "canFinalize: %v\n", progress.CanFinalize)
			}

			if len(progress.FolderStatuses) > 0 {
				names := make([]string, 0, len(progress.FolderStatuses))
				for name := range progress.FolderStatuses {
					names = append(names, name)
				}
				sort.Strings(names)
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					rows = append(rows, []string{name, string(progress.FolderStatuses[name])})
				}
				fmt.Fprintln(out, renderTable([]string{"Folder", "Status"}, rows))
			}
			return nil
		},
	}
}

func printCopyProgress(cmd *cobra.Command, label string, progress *organize.CopyProgress) {
	if progress == nil {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d files, %s/%s", label,
		progress.FilesCopied, progress.TotalFiles,
		humanize.IBytes(uint64(progress.BytesCopied)), humanize.IBytes(uint64(progress.TotalBytes)))
	if len(progress.CurrentFiles) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), " (in flight: %v)", progress.CurrentFiles)
	}
	fmt.Fprintln(cmd.OutOrStdout())
}
