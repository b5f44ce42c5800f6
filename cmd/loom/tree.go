package main

import (
	"context"
	"fmt"

	"github.com/loomworks/loom/internal/graph"
	"github.com/loomworks/loom/internal/ui"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree <id>",
	Short: "Show the dependency tree around an element as ASCII art",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		depth, _ := cmd.Flags().GetInt("depth")

		tree, err := api.GetTree(context.Background(), args[0], depth)
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			printJSON(tree)
			return nil
		}

		fmt.Println(ui.RenderAccent(tree.Root.ID))
		printTreeBranches(tree.Root, "")
		fmt.Printf("\n%d nodes, depth %d up / %d down\n",
			tree.NodeCount, tree.DependencyDepth, tree.DependentDepth)
		return nil
	},
}

// printTreeBranches renders the three child groups of a node with box
// drawing connectors, one line per node.
func printTreeBranches(node *graph.TreeNode, prefix string) {
	children := make([]*graph.TreeNode, 0, len(node.Dependencies)+len(node.Dependents)+len(node.Related))
	labels := make([]string, 0, cap(children))
	for _, c := range node.Dependencies {
		children = append(children, c)
		labels = append(labels, "waits on")
	}
	for _, c := range node.Dependents {
		children = append(children, c)
		labels = append(labels, "blocks")
	}
	for _, c := range node.Related {
		children = append(children, c)
		labels = append(labels, "related")
	}

	for i, child := range children {
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(children)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}

		line := fmt.Sprintf("%s %s via %s", labels[i], ui.RenderAccent(child.ID), child.Via)
		if child.Ref {
			line += ui.RenderMuted(" (see above)")
		}
		fmt.Printf("%s%s%s\n", prefix, connector, line)

		printTreeBranches(child, childPrefix)
	}
}

func init() {
	treeCmd.Flags().IntP("depth", "d", 0, "maximum depth in either direction (0 = unbounded)")
}
