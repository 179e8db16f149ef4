package repository

// Op is a filter comparison operator.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpRegex
)

// Condition restricts a list to documents whose Field compares to Value.
// Field names are document (JSON) keys and are validated by the caller
// against a whitelist before they reach a repository.
type Condition struct {
	Field string
	Op    Op
	Value string
	// IgnoreCase applies to OpRegex only.
	IgnoreCase bool
}

// SortField orders a list by Field.
type SortField struct {
	Field string
	Desc  bool
}

// ListQuery holds filter, sort and limit/offset pagination parameters.
type ListQuery struct {
	Filter []Condition
	Sort   []SortField
	Limit  int
	Offset int
}
