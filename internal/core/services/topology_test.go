package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscore-io/netquery/internal/core/domain"
)

// testLink builds the canned L2SW1:eth1 <-> L2SW2:eth1 link.
func testLink(linkID string, vlan *int) domain.Document {
	return linkDoc(linkID, "L2SW1", "eth1", "L2SW2", "eth1", vlan)
}

func TestTopologyService_Edges_ExplicitVLANWins(t *testing.T) {
	store := &fakeStore{
		links: []domain.Document{testLink("link-1", intPtr(99))},
		tpVLANs: map[string]int{
			"L2SW1:eth1": 10,
			"L2SW2:eth1": 10,
		},
	}
	svc := NewTopologyService(store)

	edges, err := svc.Edges(context.Background())
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.NotNil(t, edges[0].VLAN)
	assert.Equal(t, 99, *edges[0].VLAN)
}

func TestTopologyService_Edges_AgreeingEndpoints(t *testing.T) {
	store := &fakeStore{
		links: []domain.Document{testLink("link-1", nil)},
		tpVLANs: map[string]int{
			"L2SW1:eth1": 10,
			"L2SW2:eth1": 10,
		},
	}
	svc := NewTopologyService(store)

	edges, err := svc.Edges(context.Background())
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.NotNil(t, edges[0].VLAN)
	assert.Equal(t, 10, *edges[0].VLAN)
}

func TestTopologyService_Edges_DisagreeingEndpointsUnresolved(t *testing.T) {
	store := &fakeStore{
		links: []domain.Document{testLink("link-1", nil)},
		tpVLANs: map[string]int{
			"L2SW1:eth1": 10,
			"L2SW2:eth1": 20,
		},
	}
	svc := NewTopologyService(store)

	edges, err := svc.Edges(context.Background())
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Nil(t, edges[0].VLAN)
	assert.Contains(t, edges[0].String(), "vlan=10|20")
}

func TestTopologyService_Edges_LinkIDSuffixFallback(t *testing.T) {
	// Disagreeing endpoints, but the link id names the VLAN.
	store := &fakeStore{
		links: []domain.Document{testLink("trunk-vlan30", nil)},
		tpVLANs: map[string]int{
			"L2SW1:eth1": 10,
			"L2SW2:eth1": 20,
		},
	}
	svc := NewTopologyService(store)

	edges, err := svc.Edges(context.Background())
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.NotNil(t, edges[0].VLAN)
	assert.Equal(t, 30, *edges[0].VLAN)
}

func TestTopologyService_Edges_SuffixNeedsNonDigitBoundary(t *testing.T) {
	// A digit right before "vlan" makes the token ambiguous, so it is
	// not treated as a VLAN marker.
	store := &fakeStore{links: []domain.Document{testLink("x1vlan2", nil)}}
	svc := NewTopologyService(store)

	edges, err := svc.Edges(context.Background())
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Nil(t, edges[0].VLAN)

	// A bare "vlan5" id resolves.
	store = &fakeStore{links: []domain.Document{testLink("vlan5", nil)}}
	edges, err = NewTopologyService(store).Edges(context.Background())
	require.NoError(t, err)
	require.NotNil(t, edges[0].VLAN)
	assert.Equal(t, 5, *edges[0].VLAN)
}

func TestTopologyService_Edges_OneSidedEndpoint(t *testing.T) {
	store := &fakeStore{
		links:   []domain.Document{testLink("link-1", nil)},
		tpVLANs: map[string]int{"L2SW1:eth1": 10},
	}
	svc := NewTopologyService(store)

	edges, err := svc.Edges(context.Background())
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Nil(t, edges[0].VLAN)
	assert.Contains(t, edges[0].String(), "vlan=10|?")
}

func TestTopologyService_Edges_SkipsLinkWithoutAttributes(t *testing.T) {
	bare := domain.Document{Type: domain.DocTypeLink, LinkID: "broken"}
	store := &fakeStore{links: []domain.Document{testLink("link-1", nil), bare}}
	svc := NewTopologyService(store)

	edges, err := svc.Edges(context.Background())
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestTopologyService_NodeAdjacency_Dedup(t *testing.T) {
	store := &fakeStore{links: []domain.Document{
		testLink("link-1", nil),
		testLink("link-1", nil),
	}}
	svc := NewTopologyService(store)

	edges, err := svc.NodeAdjacency(context.Background(), "L2SW1")
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestTopologyService_NodeAdjacency_FiltersByNode(t *testing.T) {
	store := &fakeStore{links: []domain.Document{
		testLink("link-1", nil),
		linkDoc("link-2", "L3SW1", "ae1", "L3SW2", "ae1", nil),
	}}
	svc := NewTopologyService(store)

	edges, err := svc.NodeAdjacency(context.Background(), "L3SW1")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "link-2", edges[0].LinkID)
}

func TestTopologyService_InterfaceAdjacency(t *testing.T) {
	store := &fakeStore{links: []domain.Document{testLink("link-1", nil)}}
	svc := NewTopologyService(store)

	edges, err := svc.InterfaceAdjacency(context.Background(), "L2SW2", "eth1")
	require.NoError(t, err)
	assert.Len(t, edges, 1)

	edges, err = svc.InterfaceAdjacency(context.Background(), "L2SW2", "eth9")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestTopologyService_FullAdjacency_IncludesIsolatedNodes(t *testing.T) {
	store := &fakeStore{
		links: []domain.Document{testLink("link-1", nil)},
		nodes: []string{"L2SW1", "L2SW2", "LONELY1"},
	}
	svc := NewTopologyService(store)

	adj, err := svc.FullAdjacency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"L2SW1", "L2SW2", "LONELY1"}, adj.Nodes)
	assert.Len(t, adj.Edges["L2SW1"], 1)
	assert.Len(t, adj.Edges["L2SW2"], 1)
	assert.Empty(t, adj.Edges["LONELY1"])
}

func TestTopologyService_FullAdjacency_EndpointOnlyNode(t *testing.T) {
	// No node documents at all; both link endpoints still appear.
	store := &fakeStore{links: []domain.Document{testLink("link-1", nil)}}
	svc := NewTopologyService(store)

	adj, err := svc.FullAdjacency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"L2SW1", "L2SW2"}, adj.Nodes)
}
