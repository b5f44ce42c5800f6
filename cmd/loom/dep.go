package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/loomworks/loom/internal/client"
	"github.com/spf13/cobra"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage dependency edges",
}

var depAddCmd = &cobra.Command{
	Use:   "add <target-id> <source-id>",
	Short: "Add a dependency edge (target depends on / points at source)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		depType, _ := cmd.Flags().GetString("type")
		metaStr, _ := cmd.Flags().GetString("metadata")

		var meta json.RawMessage
		if metaStr != "" {
			if !json.Valid([]byte(metaStr)) {
				fail(fmt.Errorf("metadata must be a JSON object"))
			}
			meta = json.RawMessage(metaStr)
		}

		dep, err := api.AddDependency(context.Background(), &client.AddDependencyRequest{
			TargetID:  args[0],
			SourceID:  args[1],
			Type:      depType,
			CreatedBy: actor,
			Metadata:  meta,
		})
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			printJSON(dep)
		} else {
			printDependencyTable(dep)
		}
		return nil
	},
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <target-id> <source-id>",
	Short: "Remove a dependency edge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		depType, _ := cmd.Flags().GetString("type")

		if err := api.RemoveDependency(context.Background(), args[0], args[1], depType); err != nil {
			fail(err)
		}

		fmt.Println("Removed dependency")
		return nil
	},
}

var depListCmd = &cobra.Command{
	Use:   "list <id>",
	Short: "List dependency edges of an element in both directions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := api.GetDependencies(context.Background(), args[0])
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			printJSON(resp)
			return nil
		}

		if len(resp.Incoming) == 0 && len(resp.Outgoing) == 0 {
			fmt.Println("No dependencies found.")
			return nil
		}
		if len(resp.Incoming) > 0 {
			fmt.Println("Incoming:")
			printDependencyListTable(resp.Incoming)
		}
		if len(resp.Outgoing) > 0 {
			if len(resp.Incoming) > 0 {
				fmt.Println()
			}
			fmt.Println("Outgoing:")
			printDependencyListTable(resp.Outgoing)
		}
		return nil
	},
}

func init() {
	depAddCmd.Flags().StringP("type", "t", "blocks", "dependency type")
	depAddCmd.Flags().StringP("metadata", "m", "", "edge metadata as a JSON object")
	depRemoveCmd.Flags().StringP("type", "t", "blocks", "dependency type")

	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	depCmd.AddCommand(depListCmd)
}
