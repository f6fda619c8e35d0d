package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sera/internal/organize"
	"sera/internal/workflows"
)

func newTreeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <workflow-id>",
		Short: "Show the staged layout awaiting finalize",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			resp, err := cl.QueryWorkflow(cmd.Context(), args[0], "", workflows.QueryGetStagingTree)
			if err != nil {
				return fmt.Errorf("query staging tree: %w", err)
			}
			var tree *organize.TreeNode
			if err := resp.Get(&tree); err != nil {
				return fmt.Errorf("decode staging tree: %w", err)
			}
			if tree == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "staging tree not captured yet")
				return nil
			}
			printTree(cmd.OutOrStdout(), *tree, "")
			return nil
		},
	}
}

func printTree(w io.Writer, node organize.TreeNode, indent string) {
	if node.Type == "directory" {
		fmt.Fprintf(w, "%s%s/\n", indent, node.Name)
	} else {
		fmt.Fprintf(w, "%s%s (%s)\n", indent, node.Name, humanize.IBytes(uint64(node.Size)))
	}
	for _, child := range node.Children {
		printTree(w, child, indent+"  ")
	}
}
