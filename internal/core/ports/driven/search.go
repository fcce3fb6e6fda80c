package driven

import (
	"context"

	"github.com/opscore-io/netquery/internal/core/domain"
)

// SearchIndex provides ranked full-text retrieval over the document
// store. Backed by SQLite FTS5 with BM25 ranking (ascending score,
// lower is more relevant).
type SearchIndex interface {
	// Search executes a MATCH expression with optional equality
	// filters, returning up to opts.Limit hits. The underlying scan is
	// bounded by opts.RowCap; hitting the cap sets Truncated on the
	// result rather than silently dropping rows.
	Search(ctx context.Context, match string, opts domain.SearchOptions) (*domain.SearchResult, error)
}
