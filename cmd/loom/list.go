package main

import (
	"context"

	"github.com/loomworks/loom/internal/client"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List elements",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetStringSlice("status")
		elementType, _ := cmd.Flags().GetStringSlice("type")
		search, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		resp, err := api.ListElements(context.Background(), &client.ListElementsRequest{
			Status: status,
			Type:   elementType,
			Search: search,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			printJSON(resp.Elements)
		} else {
			printElementListTable(resp.Elements, resp.Total)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	listCmd.Flags().StringSliceP("type", "t", nil, "filter by type (repeatable)")
	listCmd.Flags().String("search", "", "filter by title substring")
	listCmd.Flags().Int("limit", 20, "maximum number of elements to return")
	listCmd.Flags().Int("offset", 0, "offset for pagination")
}
