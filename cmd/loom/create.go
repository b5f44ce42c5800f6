package main

import (
	"context"

	"github.com/loomworks/loom/internal/client"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new element",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		elementType, _ := cmd.Flags().GetString("type")

		el, err := api.CreateElement(context.Background(), &client.CreateElementRequest{
			Type:      elementType,
			Title:     args[0],
			CreatedBy: actor,
		})
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
	createCmd.Flags().StringP("type", "t", "task", "element type")
}
