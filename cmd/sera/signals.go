package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sera/internal/organize"
	"sera/internal/workflows"
)

func newApproveCommand(ctx *commandContext) *cobra.Command {
	var season, episode int

	cmd := &cobra.Command{
		Use:   "approve <workflow-id> <folder-name> <review-id>",
		Short: "Approve a pending match review, optionally correcting the slot",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			decision := organize.ReviewDecision{ReviewItemID: args[2], Approved: true}
			if cmd.Flags().Changed("season") {
				decision.CorrectedSeason = &season
			}
			if cmd.Flags().Changed("episode") {
				decision.CorrectedEpisode = &episode
			}
			return signalFolder(cmd, ctx, args[0], args[1], workflows.SignalReviewDecision, decision)
		},
	}

	cmd.Flags().IntVar(&season, "season", 0, "Corrected season number")
	cmd.Flags().IntVar(&episode, "episode", 0, "Corrected episode number")
	return cmd
}

func newRejectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <workflow-id> <folder-name> <review-id>",
		Short: "Reject a pending match review so it can be resubmitted",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return signalFolder(cmd, ctx, args[0], args[1], workflows.SignalReviewDecision,
				organize.ReviewDecision{ReviewItemID: args[2], Approved: false})
		},
	}
}

func newConfirmDetectionCommand(ctx *commandContext) *cobra.Command {
	var added, removed []string

	cmd := &cobra.Command{
		Use:   "confirm-detection <workflow-id> <folder-name>",
		Short: "Confirm a low-confidence episode detection, adjusting the cluster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return signalFolder(cmd, ctx, args[0], args[1], workflows.SignalDetectionConfirmation,
				organize.DetectionConfirmation{Confirmed: true, AddedPaths: added, RemovedPaths: removed})
		},
	}

	cmd.Flags().StringArrayVar(&added, "add", nil, "File to add to the episode set")
	cmd.Flags().StringArrayVar(&removed, "remove", nil, "File to remove from the episode set")
	return cmd
}

func newFinalizeCommand(ctx *commandContext) *cobra.Command {
	var reject bool

	cmd := &cobra.Command{
		Use:   "finalize <workflow-id>",
		Short: "Approve (or reject) publishing the staged layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			decision := organize.FinalizeDecision{Approved: !reject}
			if err := cl.SignalWorkflow(cmd.Context(), args[0], "", workflows.SignalFinalize, decision); err != nil {
				return fmt.Errorf("signal finalize: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "finalize sent (approved=%v)\n", decision.Approved)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reject, "reject", false, "Reject the staged layout instead of approving")
	return cmd
}

func signalFolder(cmd *cobra.Command, ctx *commandContext, workflowID, folderName, signalName string, payload any) error {
	cl, err := ctx.ensureClient()
	if err != nil {
		return err
	}
	target := childWorkflowID(workflowID, folderName)
	if err := cl.SignalWorkflow(cmd.Context(), target, "", signalName, payload); err != nil {
		return fmt.Errorf("signal %s on %s: %w", signalName, target, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s sent to %s\n", signalName, target)
	return nil
}
