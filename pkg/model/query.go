package model

// FilterOp defines the supported filter operators.
type FilterOp string

const (
	OpEq    FilterOp = "=="    // Equal
	OpNe    FilterOp = "!="    // Not equal
	OpGt    FilterOp = ">"     // Greater than
	OpGte   FilterOp = ">="    // Greater than or equal
	OpLt    FilterOp = "<"     // Less than
	OpLte   FilterOp = "<="    // Less than or equal
	OpIn    FilterOp = "in"    // Value in array
	OpRegex FilterOp = "regex" // Case-insensitive regular expression match
)

// IsValid checks if the operator is valid.
func (op FilterOp) IsValid() bool {
	switch op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpRegex:
		return true
	}
	return false
}

// Filter represents a single field predicate.
type Filter struct {
	Field string      `json:"field"`
	Op    FilterOp    `json:"op"`
	Value interface{} `json:"value"`
}

// Validate checks if the filter is valid.
func (f Filter) Validate() bool {
	return f.Field != "" && f.Op.IsValid()
}

// Filters is a slice of Filter.
type Filters []Filter

// MatchMode controls how multiple filters combine.
type MatchMode int

const (
	// MatchAll requires every filter to hold (logical AND). Zero value.
	MatchAll MatchMode = iota
	// MatchAny requires at least one filter to hold (logical OR).
	MatchAny
)

// SortField orders query results by one field.
type SortField struct {
	Field string
	Desc  bool
}

// Query describes a structured find against one collection.
type Query struct {
	Filters Filters
	Mode    MatchMode
	Sort    []SortField
	Skip    int64
	Limit   int64
}
