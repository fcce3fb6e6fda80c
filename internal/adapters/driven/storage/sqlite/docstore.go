package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opscore-io/netquery/internal/core/domain"
	"github.com/opscore-io/netquery/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// Upsert stores or replaces a document by its identifier tuple. The
// typed columns and the derived full-text field are rebuilt from the
// attributes; the FTS entry follows via triggers in the same statement.
func (s *documentStore) Upsert(ctx context.Context, doc *domain.Document) error {
	attrsJSON, err := json.Marshal(doc.Attributes)
	if err != nil {
		return fmt.Errorf("marshalling attributes: %w", err)
	}

	var (
		ipAddress    sql.NullString
		prefixLength sql.NullInt64
		vlanID       sql.NullInt64
		vrf          sql.NullString
		prefix       sql.NullString
		nextHop      sql.NullString
		protocol     sql.NullString
		srcNode      sql.NullString
		srcTP        sql.NullString
		dstNode      sql.NullString
		dstTP        sql.NullString
	)
	if a := doc.Attributes.TP; a != nil {
		ipAddress = nullString(a.IPAddress)
		prefixLength = nullIntPtr(a.PrefixLength)
		vlanID = nullIntPtr(a.VLANID)
	}
	if a := doc.Attributes.Route; a != nil {
		vrf = sql.NullString{String: a.VRF, Valid: true}
		if a.VRF == "" {
			vrf.String = "default"
		}
		prefix = nullString(a.Prefix)
		nextHop = nullString(a.NextHop)
		protocol = nullString(a.Protocol)
	}
	if a := doc.Attributes.Link; a != nil {
		srcNode = nullString(a.SrcNode)
		srcTP = nullString(a.SrcTP)
		dstNode = nullString(a.DstNode)
		dstTP = nullString(a.DstTP)
	}

	var observedAt sql.NullTime
	if !doc.ObservedAt.IsZero() {
		observedAt = sql.NullTime{Time: doc.ObservedAt.UTC(), Valid: true}
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (
			type, network_id, node_id, tp_id, link_id,
			text, attrs, search_text,
			ip_address, prefix_length, vlan_id,
			vrf, prefix, next_hop, protocol,
			src_node, src_tp, dst_node, dst_tp,
			observed_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(type, network_id, node_id, tp_id, link_id) DO UPDATE SET
			text = excluded.text,
			attrs = excluded.attrs,
			search_text = excluded.search_text,
			ip_address = excluded.ip_address,
			prefix_length = excluded.prefix_length,
			vlan_id = excluded.vlan_id,
			vrf = excluded.vrf,
			prefix = excluded.prefix,
			next_hop = excluded.next_hop,
			protocol = excluded.protocol,
			src_node = excluded.src_node,
			src_tp = excluded.src_tp,
			dst_node = excluded.dst_node,
			dst_tp = excluded.dst_tp,
			observed_at = excluded.observed_at,
			updated_at = excluded.updated_at
	`, string(doc.Type), doc.NetworkID, doc.NodeID, doc.TPID, doc.LinkID,
		doc.Text, string(attrsJSON), doc.SearchText(),
		ipAddress, prefixLength, vlanID,
		vrf, prefix, nextHop, protocol,
		srcNode, srcTP, dstNode, dstTP,
		observedAt, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("upserting document: %w", mapErr(ctx, err))
	}
	return nil
}

// Get retrieves a document by its identity.
func (s *documentStore) Get(ctx context.Context, typ domain.DocType, networkID, nodeID, tpID, linkID string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT type, network_id, node_id, tp_id, link_id, text, attrs, observed_at
		FROM documents
		WHERE type = ? AND network_id = ? AND node_id = ? AND tp_id = ? AND link_id = ?
	`, string(typ), networkID, nodeID, tpID, linkID)

	doc, err := scanDocument(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting document: %w", mapErr(ctx, err))
	}
	return doc, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var typ, attrsJSON string
	var observedAt sql.NullTime
	if err := row.Scan(&typ, &doc.NetworkID, &doc.NodeID, &doc.TPID, &doc.LinkID,
		&doc.Text, &attrsJSON, &observedAt); err != nil {
		return nil, err
	}
	doc.Type = domain.DocType(typ)
	if err := json.Unmarshal([]byte(attrsJSON), &doc.Attributes); err != nil {
		return nil, fmt.Errorf("unmarshaling attributes: %w", err)
	}
	if observedAt.Valid {
		doc.ObservedAt = observedAt.Time
	}
	return &doc, nil
}

// scopeClause appends the node scope filter. An exact id wins over a
// prefix; the prefix is bound as a parameter with % appended, never
// concatenated into the statement.
func scopeClause(where string, args []any, scope driven.NodeScope) (string, []any) {
	switch {
	case scope.NodeID != "":
		return where + " AND node_id = ?", append(args, scope.NodeID)
	case scope.NodePrefix != "":
		return where + " AND node_id LIKE ?", append(args, scope.NodePrefix+"%")
	}
	return where, args
}

// CountNodes counts distinct device ids. A node document exists once
// per network view, so the same device in the l2 and l3 networks is
// still one node.
func (s *documentStore) CountNodes(ctx context.Context, scope driven.NodeScope) (int, error) {
	where, args := scopeClause("type = 'node'", nil, scope)
	var n int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT node_id) FROM documents WHERE "+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting nodes: %w", mapErr(ctx, err))
	}
	return n, nil
}

func (s *documentStore) CountTPs(ctx context.Context, scope driven.NodeScope) (int, []driven.TPCount, error) {
	where, args := scopeClause("type = 'tp'", nil, scope)
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT node_id, COUNT(*) FROM documents WHERE "+where+" GROUP BY node_id ORDER BY node_id", args...)
	if err != nil {
		return 0, nil, fmt.Errorf("counting tps: %w", mapErr(ctx, err))
	}
	defer rows.Close()

	var total int
	var byNode []driven.TPCount
	for rows.Next() {
		var c driven.TPCount
		if err := rows.Scan(&c.NodeID, &c.Count); err != nil {
			return 0, nil, fmt.Errorf("scanning tp count: %w", err)
		}
		total += c.Count
		byNode = append(byNode, c)
	}
	return total, byNode, rows.Err()
}

func (s *documentStore) CountRoutes(ctx context.Context, scope driven.NodeScope) (int, error) {
	where, args := scopeClause("type = 'route'", nil, scope)
	var n int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE "+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting routes: %w", mapErr(ctx, err))
	}
	return n, nil
}

func (s *documentStore) CountLinks(ctx context.Context) (int, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE type = 'link'").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting links: %w", mapErr(ctx, err))
	}
	return n, nil
}

// ListNodes lists distinct device ids, one entry per device regardless
// of how many network views carry it.
func (s *documentStore) ListNodes(ctx context.Context, scope driven.NodeScope) ([]string, error) {
	where, args := scopeClause("type = 'node'", nil, scope)
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT DISTINCT node_id FROM documents WHERE "+where+" ORDER BY node_id", args...)
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", mapErr(ctx, err))
	}
	defer rows.Close()

	var nodes []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (s *documentStore) ListTPs(ctx context.Context, scope driven.NodeScope) ([]driven.TPRef, error) {
	where, args := scopeClause("type = 'tp'", nil, scope)
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT node_id, tp_id FROM documents WHERE "+where+" ORDER BY node_id, tp_id", args...)
	if err != nil {
		return nil, fmt.Errorf("listing tps: %w", mapErr(ctx, err))
	}
	defer rows.Close()
	return scanTPRefs(rows)
}

func scanTPRefs(rows *sql.Rows) ([]driven.TPRef, error) {
	var tps []driven.TPRef
	for rows.Next() {
		var tp driven.TPRef
		if err := rows.Scan(&tp.NodeID, &tp.TPID); err != nil {
			return nil, fmt.Errorf("scanning tp: %w", err)
		}
		tps = append(tps, tp)
	}
	return tps, rows.Err()
}

func (s *documentStore) ListRoutes(ctx context.Context, scope driven.NodeScope) ([]driven.RouteRow, error) {
	where, args := scopeClause("type = 'route'", nil, scope)
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT node_id, COALESCE(vrf, 'default'), COALESCE(prefix, ''), COALESCE(next_hop, ''), COALESCE(protocol, '')
		FROM documents WHERE `+where+`
		ORDER BY node_id, vrf, prefix`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing routes: %w", mapErr(ctx, err))
	}
	defer rows.Close()

	var routes []driven.RouteRow
	for rows.Next() {
		var r driven.RouteRow
		if err := rows.Scan(&r.NodeID, &r.VRF, &r.Prefix, &r.NextHop, &r.Protocol); err != nil {
			return nil, fmt.Errorf("scanning route: %w", err)
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

func (s *documentStore) ListAddresses(ctx context.Context, scope driven.NodeScope) ([]driven.AddressRow, error) {
	where, args := scopeClause("type = 'tp' AND ip_address IS NOT NULL", nil, scope)
	return s.listAddressRows(ctx, where, args)
}

func (s *documentStore) ListSVIs(ctx context.Context, scope driven.NodeScope) ([]driven.AddressRow, error) {
	where, args := scopeClause("type = 'tp' AND tp_id LIKE 'vlan%'", nil, scope)
	return s.listAddressRows(ctx, where, args)
}

func (s *documentStore) listAddressRows(ctx context.Context, where string, args []any) ([]driven.AddressRow, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT node_id, tp_id, COALESCE(ip_address, ''), prefix_length
		FROM documents WHERE `+where+`
		ORDER BY node_id, tp_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing addresses: %w", mapErr(ctx, err))
	}
	defer rows.Close()

	var out []driven.AddressRow
	for rows.Next() {
		var r driven.AddressRow
		var plen sql.NullInt64
		if err := rows.Scan(&r.NodeID, &r.TPID, &r.IPAddress, &plen); err != nil {
			return nil, fmt.Errorf("scanning address: %w", err)
		}
		r.PrefixLength = -1
		if plen.Valid {
			r.PrefixLength = int(plen.Int64)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *documentStore) ListVLANTPs(ctx context.Context, vlan int) ([]driven.TPRef, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT node_id, tp_id FROM documents
		WHERE type = 'tp' AND vlan_id = ?
		ORDER BY node_id, tp_id`, vlan)
	if err != nil {
		return nil, fmt.Errorf("listing vlan tps: %w", mapErr(ctx, err))
	}
	defer rows.Close()
	return scanTPRefs(rows)
}

func (s *documentStore) ListTPVLANs(ctx context.Context) (map[string]int, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT node_id, tp_id, vlan_id FROM documents
		WHERE type = 'tp' AND vlan_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("listing tp vlans: %w", mapErr(ctx, err))
	}
	defer rows.Close()

	vlans := make(map[string]int)
	for rows.Next() {
		var node, tp string
		var vlan int
		if err := rows.Scan(&node, &tp, &vlan); err != nil {
			return nil, fmt.Errorf("scanning tp vlan: %w", err)
		}
		vlans[node+":"+tp] = vlan
	}
	return vlans, rows.Err()
}

func (s *documentStore) ListLinks(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT type, network_id, node_id, tp_id, link_id, text, attrs, observed_at
		FROM documents WHERE type = 'link'
		ORDER BY link_id`)
	if err != nil {
		return nil, fmt.Errorf("listing links: %w", mapErr(ctx, err))
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (s *documentStore) ResolveTPByIP(ctx context.Context, ip string) (*driven.TPRef, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT node_id, tp_id FROM documents
		WHERE type = 'tp' AND ip_address = ?
		LIMIT 1`, ip)

	var tp driven.TPRef
	if err := row.Scan(&tp.NodeID, &tp.TPID); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resolving tp by ip: %w", mapErr(ctx, err))
	}
	return &tp, nil
}
