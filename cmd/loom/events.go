package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events <id>",
	Short: "Show the event history of an element",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := api.GetEvents(context.Background(), args[0])
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			printJSON(events)
			return nil
		}

		if len(events) == 0 {
			fmt.Println("No events recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tTOPIC\tACTOR")
		for _, ev := range events {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ev.CreatedAt.Format(timeFormat), ev.Topic, ev.Actor)
		}
		w.Flush()
		return nil
	},
}
