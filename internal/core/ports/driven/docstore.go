package driven

import (
	"context"

	"github.com/opscore-io/netquery/internal/core/domain"
)

// NodeScope narrows a structured query to an exact node id or to all
// nodes sharing a class prefix. An exact id always wins over a prefix;
// the zero value means unscoped.
type NodeScope struct {
	NodeID     string
	NodePrefix string
}

// TPCount is a per-node interface count.
type TPCount struct {
	NodeID string
	Count  int
}

// TPRef identifies an interface.
type TPRef struct {
	NodeID string
	TPID   string
}

// AddressRow is one row of an address listing.
type AddressRow struct {
	NodeID       string
	TPID         string
	IPAddress    string
	PrefixLength int // -1 when unknown
}

// RouteRow is one row of a route listing.
type RouteRow struct {
	NodeID   string
	VRF      string
	Prefix   string
	NextHop  string
	Protocol string
}

// DocumentStore persists CMDB documents and serves the structured query
// path. Backed by SQLite; all listings are ordered by node id then
// sub-identifier for determinism.
type DocumentStore interface {
	// Upsert stores or replaces the document identified by its key,
	// updating the derived full-text field in the same unit of work.
	Upsert(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by its identity. Returns
	// domain.ErrNotFound when absent.
	Get(ctx context.Context, typ domain.DocType, networkID, nodeID, tpID, linkID string) (*domain.Document, error)

	// CountNodes counts distinct node documents within scope.
	CountNodes(ctx context.Context, scope NodeScope) (int, error)

	// CountTPs counts tp documents within scope, with a per-node breakdown.
	CountTPs(ctx context.Context, scope NodeScope) (int, []TPCount, error)

	// CountRoutes counts route documents within scope.
	CountRoutes(ctx context.Context, scope NodeScope) (int, error)

	// CountLinks counts link documents.
	CountLinks(ctx context.Context) (int, error)

	// ListNodes returns distinct node ids within scope.
	ListNodes(ctx context.Context, scope NodeScope) ([]string, error)

	// ListTPs returns interfaces within scope.
	ListTPs(ctx context.Context, scope NodeScope) ([]TPRef, error)

	// ListRoutes returns routes within scope.
	ListRoutes(ctx context.Context, scope NodeScope) ([]RouteRow, error)

	// ListAddresses returns interfaces that carry an IP address.
	ListAddresses(ctx context.Context, scope NodeScope) ([]AddressRow, error)

	// ListSVIs returns switched virtual interfaces (tp ids with a
	// "vlan" prefix) within scope.
	ListSVIs(ctx context.Context, scope NodeScope) ([]AddressRow, error)

	// ListVLANTPs returns interfaces whose layer-2 VLAN id equals vlan.
	ListVLANTPs(ctx context.Context, vlan int) ([]TPRef, error)

	// ListTPVLANs returns the layer-2 VLAN id of every interface that
	// has one, keyed by "node:tp".
	ListTPVLANs(ctx context.Context) (map[string]int, error)

	// ListLinks returns all link documents.
	ListLinks(ctx context.Context) ([]domain.Document, error)

	// ResolveTPByIP finds the interface owning an IP address. Returns
	// domain.ErrNotFound when no interface carries it.
	ResolveTPByIP(ctx context.Context, ip string) (*TPRef, error)
}

// RawQuerier executes caller-supplied read-only SQL that has already
// passed the sanitizer. Row output is bounded by rowCap; exceeding it
// sets TableResult.Truncated.
type RawQuerier interface {
	Select(ctx context.Context, query string, args []any, rowCap int) (*domain.TableResult, error)
}
