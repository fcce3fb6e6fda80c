package services

import (
	"regexp"
	"strings"

	"github.com/opscore-io/netquery/internal/core/domain"
)

// filterColumns are the column names the index engine may interpret as
// column-scoped terms; a token like "oper:up" with any other left-hand
// side gets quoted so FTS5 treats it as a phrase.
var filterColumns = map[string]bool{
	"type":       true,
	"network_id": true,
	"node_id":    true,
	"tp_id":      true,
	"link_id":    true,
}

// asciiTokenPattern extracts identifier-like tokens for the index:
// letters, digits, underscore, colon and hyphen. Everything else
// (Japanese prose included) is dropped; synonym mapping below recovers
// the attribute vocabulary.
var asciiTokenPattern = regexp.MustCompile(`[A-Za-z0-9_:\-]+`)

// fieldSynonyms maps domain-language words to the canonical tokens used
// in the indexed attribute text, so that e.g. 遅延 reaches "delay-ms".
var fieldSynonyms = []struct {
	canonical string
	words     []string
}{
	{"mtu", []string{"mtu", "エムティーユー"}},
	{"duplex", []string{"duplex", "デュプレックス", "フル", "ハーフ"}},
	{"admin-status", []string{"admin", "管理", "管理状態"}},
	{"oper-status", []string{"oper", "運用", "運用状態", "状態"}},
	{"delay-ms", []string{"delay", "遅延", "レイテンシ", "latency"}},
	{"bandwidth", []string{"bandwidth", "帯域"}},
	{"speed-bps", []string{"speed", "速度", "スピード", "bps"}},
	{"up", []string{"up", "有効", "リンクアップ", "稼働"}},
	{"down", []string{"down", "無効", "ダウン", "障害", "断"}},
	{"prefix", []string{"prefix", "プレフィックス", "経路"}},
	{"next-hop", []string{"next-hop", "ネクストホップ", "次ホップ", "次のホップ"}},
}

// defaultMatchTerms is the last-resort term set; an empty MATCH
// expression must never be sent to the index.
var defaultMatchTerms = []string{"node", "tp", "link"}

// BuildMatch synthesizes a bounded FTS5 MATCH expression from a raw
// query and the entities already extracted from it. Terms are combined
// with OR (recall-favoring); an exact node:tp pair is added as a quoted
// phrase to boost precision.
func BuildMatch(query string, e domain.Entities) string {
	var tokens []string

	if e.NodeID != "" && e.TPID != "" {
		tokens = append(tokens, quote(e.NodeID+":"+e.TPID))
	}

	for _, t := range asciiTokenPattern.FindAllString(query, -1) {
		tokens = append(tokens, sanitizeToken(t))
	}

	lower := strings.ToLower(query)
	for _, syn := range fieldSynonyms {
		for _, w := range syn.words {
			if strings.Contains(lower, strings.ToLower(w)) {
				tokens = append(tokens, sanitizeToken(syn.canonical))
				break
			}
		}
	}

	if len(tokens) == 0 {
		for _, id := range []string{e.NodeID, e.TPID, e.LinkID} {
			if id != "" {
				tokens = append(tokens, sanitizeToken(id))
			}
		}
	}
	if len(tokens) == 0 {
		tokens = append(tokens, defaultMatchTerms...)
	}

	return strings.Join(dedupe(tokens), " OR ")
}

// sanitizeToken quotes tokens FTS5 would otherwise misparse: a colon
// token whose left side is not a filter column (column-scoped term),
// and any token containing a hyphen (NOT operator).
func sanitizeToken(t string) string {
	if left, _, ok := strings.Cut(t, ":"); ok {
		if !filterColumns[left] {
			return quote(t)
		}
		return t
	}
	if strings.Contains(t, "-") {
		return quote(t)
	}
	return t
}

func quote(t string) string {
	return `"` + t + `"`
}

// dedupe drops repeated tokens, keeping first-seen order.
func dedupe(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// SynthesizeFilters derives equality filters for the retrieval path
// from extracted entities.
func SynthesizeFilters(e domain.Entities) domain.Filters {
	f := domain.Filters{Type: e.Type}
	f.NodeID = e.NodeID
	f.TPID = e.TPID
	f.LinkID = e.LinkID
	return f
}
