// Package query defines the search query model and its canonical wire form.
package query

// Direction is the sort order for a field.
type Direction string

const (
	// Ascending sorts smallest value first.
	Ascending Direction = "asc"

	// Descending sorts largest value first.
	Descending Direction = "desc"
)

// Filter narrows a search to records matching a single condition.
// The operator and value are passed through verbatim; the library does not
// validate them against the index schema.
type Filter struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// Sort orders results by a field.
type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Query describes one search against an index.
//
// Index is required. Filters, Sort, and Select are optional and applied in
// the order given. Limit bounds the number of records returned; Offset skips
// records from the start of the result set. A Query is treated as immutable
// once handed to a client; traversals derive per-page copies instead of
// mutating the original.
type Query struct {
	Index   string
	Filters []Filter
	Sort    []Sort
	Select  []string
	Limit   int
	Offset  int
}

// Payload is the canonical wire form of a Query. Optional fields carry
// omitempty so absent values never reach the wire, not even as null.
type Payload struct {
	Index   string   `json:"index"`
	Filters []Filter `json:"filters,omitempty"`
	Sort    []Sort   `json:"sort,omitempty"`
	Select  []string `json:"select,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	Offset  int      `json:"offset,omitempty"`
}

// Payload builds the canonical request body for q:
//   - index is always present
//   - filters, sort, select only when non-empty (never as empty arrays)
//   - limit only when non-zero
//   - offset only when strictly positive
//
// This is a structural pass-through: no operator, field, or value checking.
func (q *Query) Payload() Payload {
	p := Payload{Index: q.Index}

	if len(q.Filters) > 0 {
		p.Filters = q.Filters
	}
	if len(q.Sort) > 0 {
		p.Sort = q.Sort
	}
	if len(q.Select) > 0 {
		p.Select = q.Select
	}
	if q.Limit != 0 {
		p.Limit = q.Limit
	}
	if q.Offset > 0 {
		p.Offset = q.Offset
	}

	return p
}
