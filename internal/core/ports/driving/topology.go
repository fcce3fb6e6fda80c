package driving

import (
	"context"

	"github.com/opscore-io/netquery/internal/core/domain"
)

// TopologyService derives the link-adjacency graph from stored link
// documents.
type TopologyService interface {
	// Edges loads all links resolved into edges with VLAN membership.
	Edges(ctx context.Context) ([]domain.Edge, error)

	// NodeAdjacency returns the edges touching a node, deduplicated,
	// insertion order preserved.
	NodeAdjacency(ctx context.Context, node string) ([]domain.Edge, error)

	// InterfaceAdjacency returns the edges where either endpoint is
	// exactly node:tp.
	InterfaceAdjacency(ctx context.Context, node, tp string) ([]domain.Edge, error)

	// FullAdjacency returns the whole graph, listing every known node
	// including isolated ones.
	FullAdjacency(ctx context.Context) (*domain.Adjacency, error)
}
