package domain

import (
	"fmt"
	"strings"
)

// Edge is a link document resolved into its endpoints with VLAN
// membership attached.
type Edge struct {
	LinkID     string
	SrcNode    string
	SrcTP      string
	DstNode    string
	DstTP      string
	OperStatus string
	Bandwidth  int64
	DelayMS    int

	// VLAN is the resolved VLAN id; nil when resolution failed and the
	// endpoint VLANs disagree (then SrcVLAN/DstVLAN are reported side
	// by side).
	VLAN    *int
	SrcVLAN *int
	DstVLAN *int
}

// Touches reports whether the edge has node as either endpoint.
func (e Edge) Touches(node string) bool {
	return e.SrcNode == node || e.DstNode == node
}

// TouchesTP reports whether either endpoint is exactly node:tp.
func (e Edge) TouchesTP(node, tp string) bool {
	return (e.SrcNode == node && e.SrcTP == tp) || (e.DstNode == node && e.DstTP == tp)
}

// String renders the edge in the canonical adjacency format:
//
//	L3SW1:ae1 <-> L2SW1:ae1 [link-1] (oper=up, bw=10000, delay-ms=2, vlan=10)
//
// An unresolved VLAN shows both endpoint values with "?" for unknown sides.
func (e Edge) String() string {
	var tags []string
	if e.OperStatus != "" {
		tags = append(tags, "oper="+e.OperStatus)
	}
	if e.Bandwidth > 0 {
		tags = append(tags, fmt.Sprintf("bw=%d", e.Bandwidth))
	}
	if e.DelayMS > 0 {
		tags = append(tags, fmt.Sprintf("delay-ms=%d", e.DelayMS))
	}
	switch {
	case e.VLAN != nil:
		tags = append(tags, fmt.Sprintf("vlan=%d", *e.VLAN))
	case e.SrcVLAN != nil || e.DstVLAN != nil:
		tags = append(tags, fmt.Sprintf("vlan=%s|%s", fmtVLAN(e.SrcVLAN), fmtVLAN(e.DstVLAN)))
	}

	s := fmt.Sprintf("%s:%s <-> %s:%s", e.SrcNode, e.SrcTP, e.DstNode, e.DstTP)
	if e.LinkID != "" {
		s += " [" + e.LinkID + "]"
	}
	if len(tags) > 0 {
		s += " (" + strings.Join(tags, ", ") + ")"
	}
	return s
}

func fmtVLAN(v *int) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *v)
}

// Adjacency is the per-node view of the topology graph. Nodes preserves
// store order; isolated nodes map to an empty edge list.
type Adjacency struct {
	Nodes []string
	Edges map[string][]Edge
}
