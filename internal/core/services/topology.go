package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/opscore-io/netquery/internal/core/domain"
	"github.com/opscore-io/netquery/internal/core/ports/driven"
	"github.com/opscore-io/netquery/internal/core/ports/driving"
	"github.com/opscore-io/netquery/internal/logger"
)

// linkVLANSuffixPattern recovers a VLAN id embedded in a link id such
// as "L2SW1-vlan10". The leading non-digit guard keeps ids like
// "x1vlan2" from matching the wrong digits.
var linkVLANSuffixPattern = regexp.MustCompile(`(?i)(?:^|[^0-9])vlan(\d+)$`)

// TopologyService derives the link-adjacency graph from stored link
// documents, resolving VLAN membership per edge.
type TopologyService struct {
	store driven.DocumentStore
}

var _ driving.TopologyService = (*TopologyService)(nil)

// NewTopologyService creates a topology service over a document store.
func NewTopologyService(store driven.DocumentStore) *TopologyService {
	return &TopologyService{store: store}
}

// Edges loads every link document and resolves it into an edge.
// Resolution precedence for the VLAN: explicit link attribute, then
// agreeing endpoint VLANs, then a vlanN token in the link id. When the
// endpoints disagree the edge keeps both sides and VLAN stays nil.
func (s *TopologyService) Edges(ctx context.Context) ([]domain.Edge, error) {
	links, err := s.store.ListLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	tpVLANs, err := s.store.ListTPVLANs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tp vlans: %w", err)
	}
	logger.Debug("topology: %d links, %d vlan-bearing interfaces", len(links), len(tpVLANs))

	edges := make([]domain.Edge, 0, len(links))
	for i := range links {
		doc := &links[i]
		a := doc.Attributes.Link
		if a == nil {
			logger.Warn("link %s has no endpoint attributes, skipping", doc.LinkID)
			continue
		}
		e := domain.Edge{
			LinkID:     doc.LinkID,
			SrcNode:    a.SrcNode,
			SrcTP:      a.SrcTP,
			DstNode:    a.DstNode,
			DstTP:      a.DstTP,
			OperStatus: a.OperStatus,
			Bandwidth:  a.Bandwidth,
			DelayMS:    a.DelayMS,
		}
		resolveVLAN(&e, a.VLANID, tpVLANs)
		edges = append(edges, e)
	}
	return edges, nil
}

// resolveVLAN applies the VLAN resolution precedence in place.
func resolveVLAN(e *domain.Edge, explicit *int, tpVLANs map[string]int) {
	if v, ok := tpVLANs[e.SrcNode+":"+e.SrcTP]; ok {
		e.SrcVLAN = &v
	}
	if v, ok := tpVLANs[e.DstNode+":"+e.DstTP]; ok {
		e.DstVLAN = &v
	}

	if explicit != nil {
		e.VLAN = explicit
		return
	}
	if e.SrcVLAN != nil && e.DstVLAN != nil && *e.SrcVLAN == *e.DstVLAN {
		e.VLAN = e.SrcVLAN
		return
	}
	if m := linkVLANSuffixPattern.FindStringSubmatch(e.LinkID); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			e.VLAN = &v
			return
		}
	}
	// Still unresolved: both endpoint values are reported side by side.
}

// NodeAdjacency returns the edges touching node, deduplicated by link
// id and endpoint pair, insertion order preserved.
func (s *TopologyService) NodeAdjacency(ctx context.Context, node string) ([]domain.Edge, error) {
	edges, err := s.Edges(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Edge
	seen := make(map[string]bool)
	for _, e := range edges {
		if !e.Touches(node) {
			continue
		}
		key := edgeKey(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out, nil
}

// InterfaceAdjacency returns the edges where either endpoint is exactly
// node:tp.
func (s *TopologyService) InterfaceAdjacency(ctx context.Context, node, tp string) ([]domain.Edge, error) {
	edges, err := s.Edges(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Edge
	for _, e := range edges {
		if e.TouchesTP(node, tp) {
			out = append(out, e)
		}
	}
	return out, nil
}

// FullAdjacency builds the whole per-node graph. Every node known to
// the store appears, including isolated ones; nodes that appear only as
// link endpoints are included too.
func (s *TopologyService) FullAdjacency(ctx context.Context) (*domain.Adjacency, error) {
	edges, err := s.Edges(ctx)
	if err != nil {
		return nil, err
	}
	nodes, err := s.store.ListNodes(ctx, driven.NodeScope{})
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	adj := &domain.Adjacency{Edges: make(map[string][]domain.Edge)}
	known := make(map[string]bool, len(nodes))
	add := func(n string) {
		if n == "" || known[n] {
			return
		}
		known[n] = true
		adj.Nodes = append(adj.Nodes, n)
	}
	for _, n := range nodes {
		add(n)
	}
	for _, e := range edges {
		add(e.SrcNode)
		add(e.DstNode)
	}

	seen := make(map[string]map[string]bool)
	for _, e := range edges {
		for _, n := range []string{e.SrcNode, e.DstNode} {
			if n == "" {
				continue
			}
			if seen[n] == nil {
				seen[n] = make(map[string]bool)
			}
			key := edgeKey(e)
			if seen[n][key] {
				continue
			}
			seen[n][key] = true
			adj.Edges[n] = append(adj.Edges[n], e)
		}
	}
	return adj, nil
}

func edgeKey(e domain.Edge) string {
	return e.LinkID + "|" + e.SrcNode + ":" + e.SrcTP + "|" + e.DstNode + ":" + e.DstTP
}
