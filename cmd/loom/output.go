package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/loomworks/loom/internal/model"
	"github.com/loomworks/loom/internal/ui"
)

const timeFormat = "2006-01-02 15:04:05"

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printElementTable(el *model.Element) {
	fmt.Printf("ID:          %s\n", ui.RenderAccent(el.ID))
	fmt.Printf("Title:       %s\n", el.Title)
	fmt.Printf("Type:        %s\n", el.Type)
	fmt.Printf("Status:      %s\n", renderStatus(el.Status))
	if el.CreatedBy != "" {
		fmt.Printf("Created By:  %s\n", el.CreatedBy)
	}
	fmt.Printf("Created At:  %s\n", el.CreatedAt.Format(timeFormat))
	fmt.Printf("Updated At:  %s\n", el.UpdatedAt.Format(timeFormat))
	if el.ClosedAt != nil {
		fmt.Printf("Closed At:   %s\n", el.ClosedAt.Format(timeFormat))
	}
	if el.ClosedBy != "" {
		fmt.Printf("Closed By:   %s\n", el.ClosedBy)
	}
}

func renderStatus(s model.Status) string {
	switch s {
	case model.StatusCompleted:
		return ui.RenderGood(string(s))
	case model.StatusCancelled:
		return ui.RenderMuted(string(s))
	default:
		return string(s)
	}
}

func printElementListTable(elements []*model.Element, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTYPE\tTITLE")
	for _, el := range elements {
		title := el.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", el.ID, el.Status, el.Type, title)
	}
	w.Flush()
	fmt.Printf("\n%d elements (%d total)\n", len(elements), total)
}

func printDependencyTable(dep *model.Dependency) {
	fmt.Printf("Source:      %s\n", dep.SourceID)
	fmt.Printf("Target:      %s\n", dep.TargetID)
	fmt.Printf("Type:        %s (%s)\n", dep.Type, dep.Type.Category())
	if dep.CreatedBy != "" {
		fmt.Printf("Created By:  %s\n", dep.CreatedBy)
	}
	fmt.Printf("Created At:  %s\n", dep.CreatedAt.Format(timeFormat))
}

func printDependencyListTable(deps []*model.Dependency) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tTARGET\tTYPE\tCREATED_BY\tCREATED_AT")
	for _, d := range deps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			d.SourceID, d.TargetID, d.Type, d.CreatedBy, d.CreatedAt.Format(timeFormat))
	}
	w.Flush()
}

// fail prints the error and exits nonzero.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
