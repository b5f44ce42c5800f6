package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "List elements with no unresolved blockers",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		elements, err := api.ListReady(context.Background(), limit)
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			printJSON(elements)
			return nil
		}

		if len(elements) == 0 {
			fmt.Println("No ready elements.")
			return nil
		}
		printElementListTable(elements, len(elements))
		return nil
	},
}

func init() {
	readyCmd.Flags().Int("limit", 20, "maximum number of results")
}
