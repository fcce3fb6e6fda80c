package driving

import (
	"context"
	"io"

	"github.com/opscore-io/netquery/internal/core/domain"
)

// IngestService loads topology definitions into the document store.
// This is the only write path; query handling never mutates the store.
type IngestService interface {
	// IngestTopologyYAML parses an IETF-network YAML topology and
	// upserts the resulting documents. Returns the number ingested.
	IngestTopologyYAML(ctx context.Context, r io.Reader) (int, error)

	// IngestJSONL reads one JSON document object per line and upserts
	// each. Returns the number ingested.
	IngestJSONL(ctx context.Context, r io.Reader) (int, error)

	// UpsertDocument stores a single document (idempotent by identity).
	UpsertDocument(ctx context.Context, doc *domain.Document) error
}
