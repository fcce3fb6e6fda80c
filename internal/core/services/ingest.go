package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/opscore-io/netquery/internal/core/domain"
	"github.com/opscore-io/netquery/internal/core/ports/driven"
	"github.com/opscore-io/netquery/internal/core/ports/driving"
	"github.com/opscore-io/netquery/internal/logger"
)

// TopologyNormaliser converts a topology export into documents.
// Implemented by normalisers/topology.
type TopologyNormaliser interface {
	Normalise(r io.Reader) ([]domain.Document, error)
}

// IngestService is the write path: topology YAML and JSONL object
// streams are converted to documents and upserted idempotently.
type IngestService struct {
	store      driven.DocumentStore
	normaliser TopologyNormaliser
}

var _ driving.IngestService = (*IngestService)(nil)

// NewIngestService creates an ingest service.
func NewIngestService(store driven.DocumentStore, normaliser TopologyNormaliser) *IngestService {
	return &IngestService{store: store, normaliser: normaliser}
}

// IngestTopologyYAML parses an IETF-network YAML topology and upserts
// every extracted document. Returns the number ingested.
func (s *IngestService) IngestTopologyYAML(ctx context.Context, r io.Reader) (int, error) {
	docs, err := s.normaliser.Normalise(r)
	if err != nil {
		return 0, fmt.Errorf("normalise topology: %w", err)
	}
	for i := range docs {
		if err := s.UpsertDocument(ctx, &docs[i]); err != nil {
			return i, fmt.Errorf("upsert %s: %w", docs[i].Label(), err)
		}
	}
	logger.Info("ingested %d documents from topology", len(docs))
	return len(docs), nil
}

// IngestJSONL reads one JSON object per line and upserts each. Blank
// lines are skipped; a malformed line aborts with its line number.
func (s *IngestService) IngestJSONL(ctx context.Context, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	n := 0
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		doc, err := decodeJSONLObject(raw)
		if err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		if err := s.UpsertDocument(ctx, doc); err != nil {
			return n, fmt.Errorf("line %d: upsert %s: %w", line, doc.Label(), err)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("read jsonl: %w", err)
	}
	logger.Info("ingested %d documents from jsonl", n)
	return n, nil
}

// UpsertDocument validates and stores a single document.
func (s *IngestService) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || !doc.Type.Valid() {
		return fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidInput, doc.Type)
	}
	if doc.Text == "" {
		doc.Text = doc.Summarize()
	}
	return s.store.Upsert(ctx, doc)
}

// JSONL object keys produced by the upstream exporters. Termination
// points carry their attributes under nested YANG-module keys.
const (
	jsonlL3TP = "ietf-l3-unicast-topology:l3-termination-point-attributes"
	jsonlL2TP = "ietf-l2-topology:l2-termination-point-attributes"
	jsonlSrc  = "ietf-network-topology:source"
	jsonlDst  = "ietf-network-topology:destination"
	jsonlL2L  = "ietf-l2-topology:l2-link-attributes"
)

func decodeJSONLObject(raw []byte) (*domain.Document, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	typ := domain.DocType(asString(obj["type"]))
	if typ == "termination-point" {
		typ = domain.DocTypeTP
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidInput, obj["type"])
	}

	doc := &domain.Document{
		Type:      typ,
		NetworkID: asString(obj["network-id"]),
		NodeID:    asString(obj["node-id"]),
		TPID:      asString(obj["tp-id"]),
		LinkID:    asString(obj["link-id"]),
		Text:      asString(obj["text"]),
	}

	switch typ {
	case domain.DocTypeTP:
		doc.Attributes.TP = decodeTPAttrs(obj)
	case domain.DocTypeLink:
		doc.Attributes.Link = decodeLinkAttrs(obj)
	case domain.DocTypeRoute:
		doc.Attributes.Route = &domain.RouteAttributes{
			VRF:      asString(obj["vrf"]),
			Prefix:   asString(obj["prefix"]),
			NextHop:  asString(obj["next_hop"]),
			Protocol: asString(obj["protocol"]),
		}
		if m, ok := asInt(obj["metric"]); ok {
			doc.Attributes.Route.Metric = m
		}
	}

	doc.Attributes.Extra = extraJSONLFields(obj)
	return doc, nil
}

func decodeTPAttrs(obj map[string]any) *domain.TPAttributes {
	attrs := &domain.TPAttributes{}
	tp, _ := asMap(obj["tp"])

	if l3, ok := asMap(tp[jsonlL3TP]); ok {
		attrs.IPAddress = asString(l3["ip-address"])
		if v, ok := asInt(l3["prefix-length"]); ok {
			attrs.PrefixLength = &v
		}
	}
	if l2, ok := asMap(tp[jsonlL2TP]); ok {
		if v, ok := asInt(l2["vlan-id"]); ok {
			attrs.VLANID = &v
		}
	}
	if op, ok := asMap(obj["operational"]); ok {
		attrs.AdminStatus = asString(op["admin-status"])
		attrs.OperStatus = asString(op["oper-status"])
		attrs.Duplex = asString(op["duplex"])
		if v, ok := asInt(op["mtu"]); ok {
			attrs.MTU = v
		}
		if v, ok := asInt64(op["speed-bps"]); ok {
			attrs.SpeedBPS = v
		}
	}
	return attrs
}

func decodeLinkAttrs(obj map[string]any) *domain.LinkAttributes {
	attrs := &domain.LinkAttributes{}
	link, _ := asMap(obj["link"])

	if src, ok := asMap(link[jsonlSrc]); ok {
		attrs.SrcNode = asString(src["source-node"])
		attrs.SrcTP = asString(src["source-tp"])
	}
	if dst, ok := asMap(link[jsonlDst]); ok {
		attrs.DstNode = asString(dst["dest-node"])
		attrs.DstTP = asString(dst["dest-tp"])
	}

	// Link state lives either under the object or under the link entry.
	state, ok := asMap(asMapField(obj, "operational")["link-state"])
	if !ok {
		state, _ = asMap(link["operational:link-state"])
	}
	if state != nil {
		attrs.OperStatus = asString(state["oper-status"])
		if v, ok := asInt64(state["bandwidth"]); ok {
			attrs.Bandwidth = v
		}
		if v, ok := asInt(state["delay-ms"]); ok {
			attrs.DelayMS = v
		}
	}
	if l2, ok := asMap(link[jsonlL2L]); ok {
		if v, ok := asInt(l2["vlan-id"]); ok {
			attrs.VLANID = &v
		}
	}
	return attrs
}

// extraJSONLFields keeps source fields the schema does not model.
func extraJSONLFields(obj map[string]any) map[string]any {
	modelled := map[string]bool{
		"type": true, "network-id": true, "node-id": true, "tp-id": true,
		"link-id": true, "text": true, "tp": true, "link": true,
		"operational": true, "vrf": true, "prefix": true, "next_hop": true,
		"protocol": true, "metric": true,
	}
	var extra map[string]any
	for k, v := range obj {
		if modelled[k] {
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

func asMapField(obj map[string]any, key string) map[string]any {
	m, _ := asMap(obj[key])
	return m
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
	}
	return 0, false
}
