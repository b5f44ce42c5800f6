package main

import (
	"context"
	"fmt"

	"github.com/loomworks/loom/internal/ui"
	"github.com/spf13/cobra"
)

var blockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "List blocked elements with the edges holding them",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		blocked, err := api.ListBlocked(context.Background(), limit)
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			printJSON(blocked)
			return nil
		}

		if len(blocked) == 0 {
			fmt.Println("No blocked elements.")
			return nil
		}
		for _, b := range blocked {
			fmt.Printf("%s [%s] %s\n", ui.RenderAccent(b.Element.ID), renderStatus(b.Element.Status), b.Element.Title)
			for _, blocker := range b.BlockedBy {
				fmt.Printf("  %s %s\n", ui.RenderWarn("blocked:"), blocker.Reason)
			}
		}
		return nil
	},
}

func init() {
	blockedCmd.Flags().Int("limit", 20, "maximum number of results")
}
