package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show element counts by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := api.GetStats(context.Background())
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			printJSON(stats)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Open:\t%d\n", stats.TotalOpen)
		fmt.Fprintf(w, "In progress:\t%d\n", stats.TotalInProgress)
		fmt.Fprintf(w, "Completed:\t%d\n", stats.TotalCompleted)
		fmt.Fprintf(w, "Cancelled:\t%d\n", stats.TotalCancelled)
		w.Flush()
		return nil
	},
}
