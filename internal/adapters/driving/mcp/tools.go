package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opscore-io/netquery/internal/core/domain"
)

// QueryInput is the input schema for the cmdb_query tool.
type QueryInput struct {
	Query string `json:"query" jsonschema:"the natural-language question about the network (Japanese or English)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of full-text hits to return (default 5)"`
}

// QueryOutput is the output schema for the cmdb_query tool.
type QueryOutput struct {
	Intent    string      `json:"intent"`
	Answer    string      `json:"answer"`
	Hits      []HitOutput `json:"hits,omitempty"`
	Context   string      `json:"context,omitempty"`
	Truncated bool        `json:"truncated,omitempty"`
}

// HitOutput represents a single ranked hit.
type HitOutput struct {
	Type      string  `json:"type"`
	NetworkID string  `json:"network_id,omitempty"`
	NodeID    string  `json:"node_id,omitempty"`
	TPID      string  `json:"tp_id,omitempty"`
	LinkID    string  `json:"link_id,omitempty"`
	Text      string  `json:"text,omitempty"`
	Score     float64 `json:"score"`
}

// SQLInput is the input schema for the cmdb_sql tool.
type SQLInput struct {
	SQL string `json:"sql" jsonschema:"a single read-only SELECT statement over the documents table"`
}

// SQLOutput is the output schema for the cmdb_sql tool.
type SQLOutput struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Count     int      `json:"count"`
	Truncated bool     `json:"truncated,omitempty"`
}

// LinksInput is the input schema for the cmdb_links tool.
type LinksInput struct {
	Node string `json:"node,omitempty" jsonschema:"restrict to links touching this node id"`
	TP   string `json:"tp,omitempty" jsonschema:"restrict to links touching this exact interface, as NODE:TP"`
}

// LinksOutput is the output schema for the cmdb_links tool.
type LinksOutput struct {
	Links []string `json:"links"`
	Count int      `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cmdb_query",
		Description: "Ask a natural-language question about the network CMDB (counts, listings, addresses, VLANs, routes, adjacency, free-text search)",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cmdb_sql",
		Description: "Run a read-only SELECT against the CMDB document table",
	}, s.handleSQL)

	if s.ports.Topology != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "cmdb_links",
			Description: "List link-adjacency edges, optionally restricted to a node or an exact interface",
		}, s.handleLinks)
	}
}

// handleQuery handles the cmdb_query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	reqID := s.ports.Events.NewRequestID()
	s.ports.Events.Append(reqID, "mcp", "cmdb_query request", input)

	answer, err := s.ports.Query.Ask(ctx, input.Query, domain.SearchOptions{Limit: input.Limit})
	if err != nil {
		s.ports.Events.Append(reqID, "mcp", "cmdb_query error", err.Error())
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Intent:    string(answer.Kind),
		Answer:    answer.Text,
		Context:   answer.Context,
		Truncated: answer.Truncated,
	}
	for _, h := range answer.Hits {
		output.Hits = append(output.Hits, HitOutput{
			Type:      string(h.Document.Type),
			NetworkID: h.Document.NetworkID,
			NodeID:    h.Document.NodeID,
			TPID:      h.Document.TPID,
			LinkID:    h.Document.LinkID,
			Text:      h.Document.Text,
			Score:     h.Score,
		})
	}

	s.ports.Events.Append(reqID, "mcp", "cmdb_query reply",
		map[string]any{"intent": output.Intent, "hits": len(output.Hits)})
	return nil, output, nil
}

// handleSQL handles the cmdb_sql tool invocation.
func (s *Server) handleSQL(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SQLInput,
) (*mcp.CallToolResult, SQLOutput, error) {
	reqID := s.ports.Events.NewRequestID()
	s.ports.Events.Append(reqID, "mcp", "cmdb_sql request", input)

	result, err := s.ports.Query.RawSQL(ctx, input.SQL, nil)
	if err != nil {
		s.ports.Events.Append(reqID, "mcp", "cmdb_sql error", err.Error())
		return nil, SQLOutput{}, err
	}

	output := SQLOutput{
		Columns:   result.Columns,
		Rows:      result.Rows,
		Count:     len(result.Rows),
		Truncated: result.Truncated,
	}
	s.ports.Events.Append(reqID, "mcp", "cmdb_sql reply",
		map[string]any{"count": output.Count, "truncated": output.Truncated})
	return nil, output, nil
}

// handleLinks handles the cmdb_links tool invocation.
func (s *Server) handleLinks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LinksInput,
) (*mcp.CallToolResult, LinksOutput, error) {
	reqID := s.ports.Events.NewRequestID()
	s.ports.Events.Append(reqID, "mcp", "cmdb_links request", input)

	var edges []domain.Edge
	var err error
	switch {
	case input.TP != "":
		node, tp, ok := strings.Cut(input.TP, ":")
		if !ok {
			err = domain.ErrInvalidInput
		} else {
			edges, err = s.ports.Topology.InterfaceAdjacency(ctx, node, tp)
		}
	case input.Node != "":
		edges, err = s.ports.Topology.NodeAdjacency(ctx, input.Node)
	default:
		edges, err = s.ports.Topology.Edges(ctx)
	}
	if err != nil {
		s.ports.Events.Append(reqID, "mcp", "cmdb_links error", err.Error())
		return nil, LinksOutput{}, err
	}

	output := LinksOutput{Count: len(edges)}
	for _, e := range edges {
		output.Links = append(output.Links, e.String())
	}
	s.ports.Events.Append(reqID, "mcp", "cmdb_links reply",
		map[string]any{"count": output.Count})
	return nil, output, nil
}
