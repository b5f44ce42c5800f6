package main

import (
	"context"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Set the status of an element (open, in_progress, completed, cancelled)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		el, err := api.SetStatus(context.Background(), args[0], args[1], actor)
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			printJSON(el)
		} else {
			printElementTable(el)
		}
		return nil
	},
}

var closeCmd = &cobra.Command{
	Use:   "close <id>...",
	Short: "Complete one or more elements",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cancelled, _ := cmd.Flags().GetBool("cancelled")
		status := "completed"
		if cancelled {
			status = "cancelled"
		}

		for _, id := range args {
			el, err := api.SetStatus(context.Background(), id, status, actor)
			if err != nil {
				fail(err)
			}
			if jsonOutput {
				printJSON(el)
			} else {
				printElementTable(el)
			}
		}
		return nil
	},
}

var reopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Reopen a completed or cancelled element",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		el, err := api.SetStatus(context.Background(), args[0], "open", actor)
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			printJSON(el)
		} else {
			printElementTable(el)
		}
		return nil
	},
}

func init() {
	closeCmd.Flags().Bool("cancelled", false, "close as cancelled instead of completed")
}
