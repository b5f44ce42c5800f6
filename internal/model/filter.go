package model

// ElementFilter narrows element list queries. Zero values mean "no filter".
type ElementFilter struct {
	Status []Status
	Type   []ElementType
	Search string
	Sort   string // column name, "-" prefix for descending
	Limit  int
	Offset int
}
