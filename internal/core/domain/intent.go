package domain

// IntentKind is the classified purpose of a free-text query.
type IntentKind string

// Intent kinds, in rule-table order. Retrieval is the fallback and
// always applicable.
const (
	IntentCountNodes    IntentKind = "count_nodes"
	IntentCountTPs      IntentKind = "count_tps"
	IntentCountRoutes   IntentKind = "count_routes"
	IntentListNodes     IntentKind = "list_nodes"
	IntentListTPs       IntentKind = "list_tps"
	IntentListRoutes    IntentKind = "list_routes"
	IntentListAddresses IntentKind = "list_addresses"
	IntentListSVIs      IntentKind = "list_svis"
	IntentListVLANTPs   IntentKind = "list_vlan_tps"
	IntentSummary       IntentKind = "summary"
	IntentAdjacency     IntentKind = "adjacency"
	IntentRetrieval     IntentKind = "retrieval"
)

// Entities are identifier references extracted from a query, applied
// regardless of which intent matched.
type Entities struct {
	// NodeID is an exact device identifier (token ending in a digit).
	NodeID string

	// NodePrefix is a device-class prefix such as "L3SW"; only set when
	// no exact NodeID was found (exactness beats prefix).
	NodePrefix string

	// TPID is an interface identifier.
	TPID string

	// LinkID is a link identifier.
	LinkID string

	// Type is a document-type filter inferred from type synonyms.
	Type DocType

	// VLAN is an explicit VLAN number; 0 means absent.
	VLAN int
}

// Intent is the transient, request-scoped classification of a query.
type Intent struct {
	Kind     IntentKind
	Entities Entities
}

// NodeScope returns the exact node id and prefix for structured filters.
func (i Intent) NodeScope() (nodeID, nodePrefix string) {
	return i.Entities.NodeID, i.Entities.NodePrefix
}
