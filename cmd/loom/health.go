package main

import (
	"context"
	"fmt"

	"github.com/loomworks/loom/internal/ui"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := api.Health(context.Background())
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			printJSON(map[string]string{"status": status})
		} else {
			fmt.Printf("Server at %s: %s\n", serverURL, ui.RenderGood(status))
		}
		return nil
	},
}
