package model

// GraphEdge represents a dependency relationship as a graph edge.
type GraphEdge struct {
	Source   string             `json:"source"`
	Target   string             `json:"target"`
	Type     string             `json:"type"`
	Category DependencyCategory `json:"category"`
}

// GraphStats holds aggregate element counts by status.
type GraphStats struct {
	TotalOpen       int `json:"total_open"`
	TotalInProgress int `json:"total_in_progress"`
	TotalCompleted  int `json:"total_completed"`
	TotalCancelled  int `json:"total_cancelled"`
}

// GraphResponse is the response for the graph visualization endpoint.
type GraphResponse struct {
	Nodes []*Element   `json:"nodes"`
	Edges []*GraphEdge `json:"edges"`
	Stats *GraphStats  `json:"stats"`
}
