package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DocType identifies the kind of CMDB record a Document describes.
type DocType string

// Document types stored in the CMDB.
const (
	DocTypeNode    DocType = "node"
	DocTypeTP      DocType = "tp"
	DocTypeLink    DocType = "link"
	DocTypeRoute   DocType = "route"
	DocTypeNetwork DocType = "network"
)

// Valid reports whether t is a known document type.
func (t DocType) Valid() bool {
	switch t {
	case DocTypeNode, DocTypeTP, DocTypeLink, DocTypeRoute, DocTypeNetwork:
		return true
	}
	return false
}

// Document is the atomic retrievable unit of the CMDB.
// Exactly the identifier subset relevant to Type is populated:
// tp documents always set NodeID and TPID, link documents set LinkID,
// route documents set NodeID.
type Document struct {
	// Type is the kind of record.
	Type DocType

	// NetworkID is the owning network, when known.
	NetworkID string

	// NodeID identifies the device.
	NodeID string

	// TPID identifies the termination point (interface) on NodeID.
	TPID string

	// LinkID identifies the link.
	LinkID string

	// Attributes holds the typed attribute payload.
	Attributes Attributes

	// Text is a human-readable one-line summary derived from Attributes.
	Text string

	// ObservedAt is the last known state change; zero when unknown.
	ObservedAt time.Time
}

// Key returns the storage identity of the document. Two documents with
// the same key describe the same CMDB object.
func (d *Document) Key() string {
	return strings.Join([]string{string(d.Type), d.NetworkID, d.NodeID, d.TPID, d.LinkID}, "|")
}

// Label returns a short display label such as "tp node=L3SW1 tp=ae1".
func (d *Document) Label() string {
	var b strings.Builder
	b.WriteString(string(d.Type))
	if d.NodeID != "" {
		fmt.Fprintf(&b, " node=%s", d.NodeID)
	}
	if d.TPID != "" {
		fmt.Fprintf(&b, " tp=%s", d.TPID)
	}
	if d.LinkID != "" {
		fmt.Fprintf(&b, " link=%s", d.LinkID)
	}
	return b.String()
}

// SearchText builds the full-text field for the document: identifiers,
// the human summary, and a compact serialization of the attributes, so
// that both identifier tokens and attribute tokens are searchable.
func (d *Document) SearchText() string {
	parts := make([]string, 0, 8)
	for _, v := range []string{string(d.Type), d.NetworkID, d.NodeID, d.TPID, d.LinkID} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	if d.NodeID != "" && d.TPID != "" {
		parts = append(parts, d.NodeID+":"+d.TPID)
	}
	if d.Text != "" {
		parts = append(parts, d.Text)
	}
	if blob, err := json.Marshal(d.Attributes); err == nil && string(blob) != "{}" {
		parts = append(parts, string(blob))
	}
	return strings.Join(parts, " ")
}

// Attributes is a tagged union over the known attribute shapes plus an
// open side-channel for fields the schema does not model. At most one
// of the typed records is set, matching the document type.
type Attributes struct {
	Node  *NodeAttributes  `json:"node,omitempty"`
	TP    *TPAttributes    `json:"tp,omitempty"`
	Link  *LinkAttributes  `json:"link,omitempty"`
	Route *RouteAttributes `json:"route,omitempty"`

	// Extra carries unrecognized fields from the source payload.
	Extra map[string]any `json:"extra,omitempty"`
}

// NodeAttributes describes a device.
type NodeAttributes struct {
	Hostname string `json:"hostname,omitempty"`
	Platform string `json:"platform,omitempty"`
	MgmtIPv4 string `json:"mgmt_ipv4,omitempty"`
}

// TPAttributes describes a termination point (interface).
type TPAttributes struct {
	AdminStatus string `json:"admin_status,omitempty"`
	OperStatus  string `json:"oper_status,omitempty"`
	MTU         int    `json:"mtu,omitempty"`
	Duplex      string `json:"duplex,omitempty"`
	SpeedBPS    int64  `json:"speed_bps,omitempty"`
	IPAddress   string `json:"ip_address,omitempty"`

	// PrefixLength is nil when the address mask is unknown.
	PrefixLength *int `json:"prefix_length,omitempty"`

	// VLANID is the layer-2 VLAN membership; nil when not configured.
	VLANID *int `json:"vlan_id,omitempty"`
}

// LinkAttributes describes a link between two termination points.
type LinkAttributes struct {
	SrcNode    string `json:"src_node"`
	SrcTP      string `json:"src_tp"`
	DstNode    string `json:"dst_node"`
	DstTP      string `json:"dst_tp"`
	OperStatus string `json:"oper_status,omitempty"`
	Bandwidth  int64  `json:"bandwidth,omitempty"`
	DelayMS    int    `json:"delay_ms,omitempty"`

	// VLANID is the link-level VLAN, when declared explicitly.
	VLANID *int `json:"vlan_id,omitempty"`
}

// RouteAttributes describes a routing table entry on a node.
type RouteAttributes struct {
	VRF      string `json:"vrf,omitempty"`
	Prefix   string `json:"prefix"`
	NextHop  string `json:"next_hop,omitempty"`
	Protocol string `json:"protocol,omitempty"`
	Metric   int    `json:"metric,omitempty"`
}

// Summarize derives the human-readable Text field from the attributes.
// Used by ingestion when the source payload carries no summary of its own.
func (d *Document) Summarize() string {
	switch d.Type {
	case DocTypeNode:
		s := fmt.Sprintf("Node %s", d.NodeID)
		if a := d.Attributes.Node; a != nil && a.Platform != "" {
			s += fmt.Sprintf(" (%s)", a.Platform)
		}
		return s
	case DocTypeTP:
		s := fmt.Sprintf("TP %s:%s", d.NodeID, d.TPID)
		if a := d.Attributes.TP; a != nil {
			var tags []string
			if a.AdminStatus != "" {
				tags = append(tags, "admin="+a.AdminStatus)
			}
			if a.OperStatus != "" {
				tags = append(tags, "oper="+a.OperStatus)
			}
			if a.MTU > 0 {
				tags = append(tags, fmt.Sprintf("mtu=%d", a.MTU))
			}
			if a.IPAddress != "" {
				tags = append(tags, "ip="+a.IPAddress)
			}
			if len(tags) > 0 {
				s += " (" + strings.Join(tags, ", ") + ")"
			}
		}
		return s
	case DocTypeLink:
		if a := d.Attributes.Link; a != nil {
			return fmt.Sprintf("Link %s: %s:%s <-> %s:%s", d.LinkID, a.SrcNode, a.SrcTP, a.DstNode, a.DstTP)
		}
		return fmt.Sprintf("Link %s", d.LinkID)
	case DocTypeRoute:
		if a := d.Attributes.Route; a != nil {
			return fmt.Sprintf("Route %s %s via %s", d.NodeID, a.Prefix, a.NextHop)
		}
		return fmt.Sprintf("Route on %s", d.NodeID)
	case DocTypeNetwork:
		return fmt.Sprintf("Network %s", d.NetworkID)
	}
	return string(d.Type)
}
