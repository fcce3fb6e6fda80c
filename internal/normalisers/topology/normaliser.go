package topology

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/opscore-io/netquery/internal/core/domain"
)

// YANG module prefixes used by the topology export.
const (
	keyNetworks = "ietf-network:networks"
	keySource   = "ietf-network-topology:source"
	keyDest     = "ietf-network-topology:destination"
	keyLink     = "ietf-network-topology:link"
	keyL2TP     = "ietf-l2-topology:l2-termination-point-attributes"
	keyL2Link   = "ietf-l2-topology:l2-link-attributes"
)

// Normaliser converts an IETF-network YAML topology export into CMDB
// documents. One document per network, node, termination point and
// link; attribute keys the schema does not model land in Extra.
type Normaliser struct{}

// New creates a topology normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise parses the YAML payload and returns the extracted
// documents in source order.
func (n *Normaliser) Normalise(r io.Reader) ([]domain.Document, error) {
	var root map[string]any
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: parse topology yaml: %v", domain.ErrInvalidInput, err)
	}

	networks, _ := asMap(root[keyNetworks])
	if networks == nil {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, keyNetworks)
	}

	var docs []domain.Document
	for _, rawNet := range asSlice(networks["network"]) {
		net, ok := asMap(rawNet)
		if !ok {
			continue
		}
		networkID := asString(net["network-id"])
		docs = append(docs, newDoc(domain.DocTypeNetwork, networkID, "", "", "", domain.Attributes{}))

		for _, rawNode := range asSlice(net["node"]) {
			node, ok := asMap(rawNode)
			if !ok {
				continue
			}
			nodeID := asString(node["node-id"])
			docs = append(docs, newDoc(domain.DocTypeNode, networkID, nodeID, "", "",
				domain.Attributes{Extra: extraFields(node, "node-id", "termination-point")}))

			for _, rawTP := range asSlice(node["termination-point"]) {
				tp, ok := asMap(rawTP)
				if !ok {
					continue
				}
				docs = append(docs, normaliseTP(networkID, nodeID, tp))
			}
		}

		for _, rawLink := range asSlice(net[keyLink]) {
			link, ok := asMap(rawLink)
			if !ok {
				continue
			}
			docs = append(docs, normaliseLink(networkID, link))
		}
	}
	return docs, nil
}

func normaliseTP(networkID, nodeID string, tp map[string]any) domain.Document {
	attrs := &domain.TPAttributes{}

	if l2, ok := asMap(tp[keyL2TP]); ok {
		if v, ok := asInt(l2["vlan-id"]); ok {
			attrs.VLANID = &v
		}
	}
	if op, ok := asMap(tp["operational"]); ok {
		attrs.AdminStatus = asString(op["admin-status"])
		attrs.OperStatus = asString(op["oper-status"])
		attrs.Duplex = asString(op["duplex"])
		if v, ok := asInt(op["mtu"]); ok {
			attrs.MTU = v
		}
		if v, ok := asInt64(op["speed-bps"]); ok {
			attrs.SpeedBPS = v
		}
		if ipv4, ok := asMap(op["ipv4"]); ok {
			attrs.IPAddress = asString(ipv4["address"])
			if v, ok := asInt(ipv4["prefix-length"]); ok {
				attrs.PrefixLength = &v
			}
		}
	}

	return newDoc(domain.DocTypeTP, networkID, nodeID, asString(tp["tp-id"]), "", domain.Attributes{
		TP:    attrs,
		Extra: extraFields(tp, "tp-id", keyL2TP, "operational"),
	})
}

func normaliseLink(networkID string, link map[string]any) domain.Document {
	attrs := &domain.LinkAttributes{}

	if src, ok := asMap(link[keySource]); ok {
		attrs.SrcNode = asString(src["source-node"])
		attrs.SrcTP = asString(src["source-tp"])
	}
	if dst, ok := asMap(link[keyDest]); ok {
		attrs.DstNode = asString(dst["dest-node"])
		attrs.DstTP = asString(dst["dest-tp"])
	}
	if state, ok := asMap(link["operational:link-state"]); ok {
		attrs.OperStatus = asString(state["oper-status"])
		if v, ok := asInt64(state["bandwidth"]); ok {
			attrs.Bandwidth = v
		}
		if v, ok := asInt(state["delay-ms"]); ok {
			attrs.DelayMS = v
		}
	}
	if l2, ok := asMap(link[keyL2Link]); ok {
		if v, ok := asInt(l2["vlan-id"]); ok {
			attrs.VLANID = &v
		}
	}

	return newDoc(domain.DocTypeLink, networkID, "", "", asString(link["link-id"]), domain.Attributes{
		Link:  attrs,
		Extra: extraFields(link, "link-id", keySource, keyDest, "operational:link-state", keyL2Link),
	})
}

func newDoc(typ domain.DocType, networkID, nodeID, tpID, linkID string, attrs domain.Attributes) domain.Document {
	d := domain.Document{
		Type:       typ,
		NetworkID:  networkID,
		NodeID:     nodeID,
		TPID:       tpID,
		LinkID:     linkID,
		Attributes: attrs,
	}
	d.Text = d.Summarize()
	return d
}

// extraFields copies the map minus the keys the schema models.
func extraFields(m map[string]any, modelled ...string) map[string]any {
	skip := make(map[string]bool, len(modelled))
	for _, k := range modelled {
		skip[k] = true
	}
	var extra map[string]any
	for k, v := range m {
		if skip[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return extra
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}
