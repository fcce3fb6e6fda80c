package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for netquery resources.
	uriScheme = "netquery://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Topology == nil {
		return
	}

	// Static resource for the full adjacency graph.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "topology",
		Name:        "topology",
		Description: "Full link-adjacency graph, one block per node including isolated nodes",
		MIMEType:    "text/plain",
	}, s.handleTopologyResource)
}

// handleTopologyResource renders the full adjacency graph.
func (s *Server) handleTopologyResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	adj, err := s.ports.Topology.FullAdjacency(ctx)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, node := range adj.Nodes {
		b.WriteString(node + ":\n")
		edges := adj.Edges[node]
		if len(edges) == 0 {
			b.WriteString("  - (no links)\n")
			continue
		}
		for _, e := range edges {
			b.WriteString("  - " + e.String() + "\n")
		}
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     b.String(),
		}},
	}, nil
}
