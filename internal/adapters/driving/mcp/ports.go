package mcp

import (
	"github.com/opscore-io/netquery/internal/core/ports/driving"
	"github.com/opscore-io/netquery/internal/eventlog"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers natural-language and raw SQL queries.
	Query driving.QueryService

	// Topology serves adjacency queries.
	Topology driving.TopologyService

	// Events receives one JSONL record per tool call. Optional; the
	// zero-value log is a no-op.
	Events *eventlog.Log
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	// Topology and Events are optional
	return nil
}
