package driving

import (
	"context"

	"github.com/opscore-io/netquery/internal/core/domain"
)

// QueryService answers natural-language questions against the CMDB.
type QueryService interface {
	// Ask classifies the query, executes the matching structured or
	// full-text path, and returns a formatted answer. It never fails on
	// unrecognized input; the retrieval fallback applies instead.
	Ask(ctx context.Context, query string, opts domain.SearchOptions) (*domain.Answer, error)

	// Retrieve skips intent classification and runs the ranked
	// full-text path directly.
	Retrieve(ctx context.Context, query string, opts domain.SearchOptions) (*domain.Answer, error)

	// RawSQL sanitizes and executes a caller-supplied read-only query.
	// Violations return domain.ErrInvalidQuery with no execution.
	RawSQL(ctx context.Context, query string, args []any) (*domain.TableResult, error)
}
