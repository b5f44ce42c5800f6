package main

import (
	"context"
	"fmt"

	"github.com/loomworks/loom/internal/ui"
	"github.com/spf13/cobra"
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Satisfy or approve gates on awaits edges",
}

var gateSatisfyCmd = &cobra.Command{
	Use:   "satisfy <target-id> <source-id>",
	Short: "Mark the external or webhook gate on an awaits edge as satisfied",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dep, err := api.SatisfyGate(context.Background(), args[0], args[1], actor)
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			printJSON(dep)
		} else {
			fmt.Printf("Gate satisfied on %s -> %s\n", ui.RenderAccent(dep.SourceID), ui.RenderAccent(dep.TargetID))
		}
		return nil
	},
}

var gateApproveCmd = &cobra.Command{
	Use:   "approve <target-id> <source-id>",
	Short: "Record an approval on the approval gate of an awaits edge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		approver, _ := cmd.Flags().GetString("approver")
		if approver == "" {
			approver = actor
		}

		resp, err := api.RecordApproval(context.Background(), args[0], args[1], approver)
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			printJSON(resp)
			return nil
		}

		if resp.Satisfied {
			fmt.Println(ui.RenderGood("Gate satisfied."))
		} else {
			fmt.Printf("Approval recorded. %s\n", resp.Reason)
		}
		return nil
	},
}

func init() {
	gateApproveCmd.Flags().String("approver", "", "approver identity (defaults to --actor)")

	gateCmd.AddCommand(gateSatisfyCmd)
	gateCmd.AddCommand(gateApproveCmd)
}
