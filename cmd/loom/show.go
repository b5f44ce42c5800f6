package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of an element",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		el, err := api.GetElement(context.Background(), args[0])
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			printJSON(el)
			return nil
		}

		printElementTable(el)
		if len(el.Dependencies) > 0 {
			fmt.Println()
			fmt.Println("Edges:")
			printDependencyListTable(el.Dependencies)
		}
		return nil
	},
}
