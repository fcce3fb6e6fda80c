package domain

// DefaultHitLimit is the number of hits returned when the caller does
// not specify k (or specifies a non-positive value).
const DefaultHitLimit = 5

// DefaultRowCap bounds how many rows a single full-text scan may touch,
// independent of the hit limit. Hitting the cap flags truncation.
const DefaultRowCap = 200

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// Limit is the maximum number of hits (k). Non-positive values are
	// replaced by DefaultHitLimit.
	Limit int

	// RowCap bounds the underlying scan; zero means DefaultRowCap.
	RowCap int

	// Filters are bound equality filters over the allowed columns.
	Filters Filters
}

// Filters holds the equality filters permitted on the document table.
// Empty fields are not applied.
type Filters struct {
	Type      DocType
	NetworkID string
	NodeID    string
	TPID      string
	LinkID    string
}

// Empty reports whether no filter is set.
func (f Filters) Empty() bool {
	return f == Filters{}
}

// Hit is a ranked full-text search result. Score is a BM25-style rank:
// lower is more relevant.
type Hit struct {
	Document Document
	Score    float64
}

// SearchResult is a full retrieval response: ranked hits plus the
// truncation flag from the underlying scan.
type SearchResult struct {
	Hits      []Hit
	Truncated bool
}

// TableResult is the outcome of a sanitized raw read-only query.
type TableResult struct {
	Columns   []string
	Rows      [][]any
	Truncated bool
}

// Answer is a formatted response to a natural-language query. Exactly
// one of the payload groups is meaningful depending on Kind.
type Answer struct {
	// Kind is the intent that produced this answer.
	Kind IntentKind

	// Text is the formatted human-readable answer.
	Text string

	// Hits and Context are set for retrieval answers. Context is a
	// numbered excerpt block suitable for a text-generation collaborator.
	Hits      []Hit
	Context   string
	Truncated bool
}
