package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/opscore-io/netquery/internal/core/domain"
)

// Trigger vocabularies. Operators of the deployed CMDB write both
// English and Japanese; the index itself stores ASCII tokens, so the
// classifier accepts either while the synthesizer emits canonical
// English terms.
var (
	countTriggers = []string{"いくつ", "何台", "台数", "何個", "本数", "数", "how many", "count"}
	listTriggers  = []string{"一覧", "リスト", "全部", "すべて", "全て", "list"}
	// "IP" stays case-sensitive so that words like "ship" don't trip it.
	addrTriggersExact = []string{"アドレス", "IPアドレス", "IP"}
	addrTriggersFold  = []string{"ip address", "address"}
	routeTriggers = []string{"ルーティング", "routing"}
	vlanTriggers  = []string{"VLAN", "vlan", "SVI", "svi"}

	summaryTriggers = []string{
		"どんなネットワーク", "ネットワーク概要", "このネットワーク", "ネットワークって",
		"network overview", "network summary",
	}
	adjacencyTriggers = []string{
		"接続", "つなが", "繋が", "対向", "隣接",
		"connected", "adjacent", "adjacency", "neighbor",
	}

	subjectNodes  = []string{"デバイス", "ノード", "device", "node"}
	subjectIfs    = []string{"インターフェース", "インタフェース", "ポート", "IF", "interface", "port"}
	subjectRoutes = []string{"ルート", "経路", "route"}
)

// typeSynonyms maps document types to the tokens that select them as a
// retrieval filter.
var typeSynonyms = []struct {
	typ  domain.DocType
	keys []string
}{
	{domain.DocTypeNode, []string{"node", "ノード"}},
	{domain.DocTypeTP, []string{"tp", "ポート", "インターフェース", "インタフェース", "if"}},
	{domain.DocTypeLink, []string{"link", "リンク"}},
	{domain.DocTypeRoute, []string{"route", "ルート", "経路"}},
}

var (
	// NODE:INTERFACE such as L3SW1:ae1.
	nodeTPPattern = regexp.MustCompile(`([A-Za-z0-9_.\-]+):([A-Za-z0-9_.\-]+)`)

	// Identifier named after an explicit keyword.
	nodeKeywordPattern = regexp.MustCompile(`(?i)(?:ノード|node)\s*([A-Za-z0-9_.\-]+)`)
	tpKeywordPattern   = regexp.MustCompile(`(?:ポート|インターフェース|インタフェース|IF|if|tp)\s*([A-Za-z0-9_.\-]+)`)
	linkKeywordPattern = regexp.MustCompile(`(?i)(?:リンク|link)\s*([A-Za-z0-9_.\-]+)`)

	// Bare token ending in a digit is an exact node id (L3SW1).
	exactNodePattern = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9_.\-]*\d\b`)

	// Device-class token (L3SW, L2SW); a following digit makes it an
	// exact id instead, checked manually since RE2 has no lookahead.
	classPrefixPattern = regexp.MustCompile(`(?i)L[23]SW`)

	vlanNumberPattern = regexp.MustCompile(`(?i)vlan\s*(\d+)`)
)

// Classifier turns a free-text query into an Intent. Detection is an
// ordered list of pure predicate rules; the first match wins and the
// retrieval fallback always applies, so classification never fails.
type Classifier struct {
	rules []rule
}

type rule struct {
	name   string
	detect func(q string, e domain.Entities) (domain.Intent, bool)
}

// NewClassifier builds the rule table in spec order.
func NewClassifier() *Classifier {
	return &Classifier{rules: []rule{
		{"count", detectCount},
		{"list", detectList},
		{"address", detectAddress},
		{"vlan", detectVLAN},
		{"routing", detectRouting},
		{"summary", detectSummary},
		{"adjacency", detectAdjacency},
	}}
}

// Classify extracts entities and runs the rule table. The returned
// intent is IntentRetrieval when no rule matched.
func (c *Classifier) Classify(query string) domain.Intent {
	entities := ExtractEntities(query)
	for _, r := range c.rules {
		if intent, ok := r.detect(query, entities); ok {
			return intent
		}
	}
	return domain.Intent{Kind: domain.IntentRetrieval, Entities: entities}
}

// ExtractEntities applies the identifier rules to a query, regardless
// of intent. Exactness beats prefix: a prefix is only reported when no
// exact node id was found.
func ExtractEntities(query string) domain.Entities {
	var e domain.Entities

	if m := nodeTPPattern.FindStringSubmatch(query); m != nil {
		e.NodeID = m[1]
		e.TPID = m[2]
	}
	if e.NodeID == "" {
		if m := nodeKeywordPattern.FindStringSubmatch(query); m != nil {
			e.NodeID = m[1]
		}
	}
	if e.TPID == "" {
		if m := tpKeywordPattern.FindStringSubmatch(query); m != nil {
			e.TPID = m[1]
		}
	}
	if m := linkKeywordPattern.FindStringSubmatch(query); m != nil {
		e.LinkID = m[1]
	}

	if e.NodeID == "" {
		exact, prefix := extractNodeToken(query)
		e.NodeID = exact
		e.NodePrefix = prefix
	}

	if m := vlanNumberPattern.FindStringSubmatch(query); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			e.VLAN = v
		}
	}

	e.Type = detectType(query)
	return e
}

// extractNodeToken finds either an exact node id (token ending in a
// digit) or a device-class prefix, never both.
func extractNodeToken(query string) (exact, prefix string) {
	if m := exactNodePattern.FindString(query); m != "" {
		return m, ""
	}
	for _, loc := range classPrefixPattern.FindAllStringIndex(query, -1) {
		rest := query[loc[1]:]
		if rest == "" || rest[0] < '0' || rest[0] > '9' {
			return "", query[loc[0]:loc[1]]
		}
	}
	return "", ""
}

// detectType returns the document type selected by type synonyms, or
// the empty type when none apply.
func detectType(query string) domain.DocType {
	lower := strings.ToLower(query)
	for _, syn := range typeSynonyms {
		for _, k := range syn.keys {
			if strings.Contains(lower, strings.ToLower(k)) {
				return syn.typ
			}
		}
	}
	return ""
}

func hasAny(query string, words []string) bool {
	for _, w := range words {
		if strings.Contains(query, w) {
			return true
		}
	}
	return false
}

// hasAnyFold matches English triggers case-insensitively while leaving
// Japanese triggers exact.
func hasAnyFold(query string, words []string) bool {
	lower := strings.ToLower(query)
	for _, w := range words {
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

func detectCount(q string, e domain.Entities) (domain.Intent, bool) {
	if !hasAnyFold(q, countTriggers) {
		return domain.Intent{}, false
	}
	kind := domain.IntentCountNodes
	switch {
	case hasAnyFold(q, subjectNodes) && !hasAnyFold(q, subjectIfs) && !hasAnyFold(q, subjectRoutes):
		kind = domain.IntentCountNodes
	case hasAnyFold(q, subjectIfs):
		kind = domain.IntentCountTPs
	case hasAnyFold(q, subjectRoutes):
		kind = domain.IntentCountRoutes
	default:
		// Subject unspecified: default to node count. Known source of
		// false positives; see the classifier tests.
		kind = domain.IntentCountNodes
	}
	return domain.Intent{Kind: kind, Entities: e}, true
}

func detectList(q string, e domain.Entities) (domain.Intent, bool) {
	if !hasAnyFold(q, listTriggers) {
		return domain.Intent{}, false
	}
	kind := domain.IntentListNodes
	switch {
	case hasAnyFold(q, subjectIfs):
		kind = domain.IntentListTPs
	case hasAnyFold(q, subjectRoutes):
		kind = domain.IntentListRoutes
	}
	return domain.Intent{Kind: kind, Entities: e}, true
}

func detectAddress(q string, e domain.Entities) (domain.Intent, bool) {
	if !hasAny(q, addrTriggersExact) && !hasAnyFold(q, addrTriggersFold) {
		return domain.Intent{}, false
	}
	return domain.Intent{Kind: domain.IntentListAddresses, Entities: e}, true
}

func detectVLAN(q string, e domain.Entities) (domain.Intent, bool) {
	if !hasAny(q, vlanTriggers) {
		return domain.Intent{}, false
	}
	if e.VLAN > 0 {
		return domain.Intent{Kind: domain.IntentListVLANTPs, Entities: e}, true
	}
	return domain.Intent{Kind: domain.IntentListSVIs, Entities: e}, true
}

func detectRouting(q string, e domain.Entities) (domain.Intent, bool) {
	if !hasAnyFold(q, routeTriggers) {
		return domain.Intent{}, false
	}
	return domain.Intent{Kind: domain.IntentListRoutes, Entities: e}, true
}

func detectSummary(q string, e domain.Entities) (domain.Intent, bool) {
	if !hasAnyFold(q, summaryTriggers) {
		return domain.Intent{}, false
	}
	return domain.Intent{Kind: domain.IntentSummary, Entities: e}, true
}

func detectAdjacency(q string, e domain.Entities) (domain.Intent, bool) {
	if !hasAnyFold(q, adjacencyTriggers) {
		return domain.Intent{}, false
	}
	return domain.Intent{Kind: domain.IntentAdjacency, Entities: e}, true
}
