package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opscore-io/netquery/internal/core/domain"
	"github.com/opscore-io/netquery/internal/core/ports/driven"
	"github.com/opscore-io/netquery/internal/logger"
)

// searchIndex implements driven.SearchIndex over the FTS5 docs table.
type searchIndex struct {
	store *Store
}

var _ driven.SearchIndex = (*searchIndex)(nil)

// Search executes a MATCH expression against the FTS5 index. The MATCH
// is isolated in a CTE bounded by the row cap; equality filters apply
// to the joined documents row, so a hostile filter value can never
// reach the MATCH grammar. Scores are bm25 ranks: ascending, lower is
// more relevant.
//
// The CTE scans one row past the cap so truncation is only reported on
// actual overflow, not when the match count lands exactly on the cap.
func (s *searchIndex) Search(ctx context.Context, match string, opts domain.SearchOptions) (*domain.SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultHitLimit
	}
	rowCap := opts.RowCap
	if rowCap <= 0 {
		rowCap = domain.DefaultRowCap
	}

	query := `
		WITH match_rows AS (
			SELECT rowid, bm25(docs) AS score
			FROM docs
			WHERE docs MATCH :match
			LIMIT :cap
		)
		SELECT d.type, d.network_id, d.node_id, d.tp_id, d.link_id, d.text, d.attrs, d.observed_at,
		       m.score, (SELECT COUNT(*) FROM match_rows) AS scanned
		FROM documents d
		JOIN match_rows m ON m.rowid = d.id`

	args := []any{
		sql.Named("match", match),
		sql.Named("cap", rowCap+1),
		sql.Named("k", limit),
	}
	var where []string
	appendFilter := func(column, name, value string) {
		if value == "" {
			return
		}
		where = append(where, fmt.Sprintf("d.%s = :%s", column, name))
		args = append(args, sql.Named(name, value))
	}
	appendFilter("type", "type", string(opts.Filters.Type))
	appendFilter("network_id", "network_id", opts.Filters.NetworkID)
	appendFilter("node_id", "node_id", opts.Filters.NodeID)
	appendFilter("tp_id", "tp_id", opts.Filters.TPID)
	appendFilter("link_id", "link_id", opts.Filters.LinkID)
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY m.score ASC LIMIT :k"

	logger.Debug("fts query: match=%q cap=%d k=%d filters=%d", match, rowCap, limit, len(where))

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", mapErr(ctx, err))
	}
	defer rows.Close()

	result := &domain.SearchResult{}
	for rows.Next() {
		// The sentinel row past the cap marks overflow; it is not a hit.
		if len(result.Hits) >= rowCap {
			result.Truncated = true
			break
		}
		var doc domain.Document
		var typ, attrsJSON string
		var observedAt sql.NullTime
		var score float64
		var scanned int
		if err := rows.Scan(&typ, &doc.NetworkID, &doc.NodeID, &doc.TPID, &doc.LinkID,
			&doc.Text, &attrsJSON, &observedAt, &score, &scanned); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		doc.Type = domain.DocType(typ)
		if err := unmarshalAttrs(attrsJSON, &doc); err != nil {
			return nil, err
		}
		if observedAt.Valid {
			doc.ObservedAt = observedAt.Time
		}
		result.Hits = append(result.Hits, domain.Hit{Document: doc, Score: score})
		if scanned > rowCap {
			result.Truncated = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searching index: %w", mapErr(ctx, err))
	}

	// With zero result rows the scanned count was never read; a capped
	// scan whose rows were all filtered out must still be flagged.
	if len(result.Hits) == 0 {
		var scanned int
		err := s.store.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM (
				SELECT rowid FROM docs WHERE docs MATCH :match LIMIT :cap
			)`, sql.Named("match", match), sql.Named("cap", rowCap+1)).Scan(&scanned)
		if err != nil {
			return nil, fmt.Errorf("counting matches: %w", mapErr(ctx, err))
		}
		if scanned > rowCap {
			result.Truncated = true
		}
	}
	return result, nil
}

func unmarshalAttrs(attrsJSON string, doc *domain.Document) error {
	if attrsJSON == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(attrsJSON), &doc.Attributes); err != nil {
		return fmt.Errorf("unmarshaling attributes: %w", err)
	}
	return nil
}

// rawQuerier implements driven.RawQuerier. It assumes the statement has
// already passed the read-only sanitizer; the row cap is a second line
// of defence against unbounded result sets.
type rawQuerier struct {
	store *Store
}

var _ driven.RawQuerier = (*rawQuerier)(nil)

// Select executes a read-only statement, returning up to rowCap rows.
// One extra row is fetched to detect truncation.
func (q *rawQuerier) Select(ctx context.Context, query string, args []any, rowCap int) (*domain.TableResult, error) {
	if rowCap <= 0 {
		rowCap = domain.DefaultRowCap
	}

	rows, err := q.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidQuery, mapErr(ctx, err))
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	result := &domain.TableResult{Columns: cols}
	for rows.Next() {
		if len(result.Rows) >= rowCap {
			result.Truncated = true
			break
		}
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", mapErr(ctx, err))
	}
	return result, nil
}
