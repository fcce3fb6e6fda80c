package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/opscore-io/netquery/internal/core/domain"
	"github.com/opscore-io/netquery/internal/core/ports/driven"
	"github.com/opscore-io/netquery/internal/core/ports/driving"
	"github.com/opscore-io/netquery/internal/logger"
)

// QueryService answers natural-language CMDB questions. Structured
// intents go straight to the document store; everything else runs the
// ranked full-text path. The LLM is optional and only used to rewrite
// queries for recall; its absence or failure changes nothing.
type QueryService struct {
	classifier *Classifier
	store      driven.DocumentStore
	index      driven.SearchIndex
	raw        driven.RawQuerier
	topology   driving.TopologyService
	llm        driven.LLMService
}

var _ driving.QueryService = (*QueryService)(nil)

// NewQueryService wires the query pipeline. llm may be nil.
func NewQueryService(
	store driven.DocumentStore,
	index driven.SearchIndex,
	raw driven.RawQuerier,
	topology driving.TopologyService,
	llm driven.LLMService,
) *QueryService {
	return &QueryService{
		classifier: NewClassifier(),
		store:      store,
		index:      index,
		raw:        raw,
		topology:   topology,
		llm:        llm,
	}
}

// Ask classifies the query and dispatches to the matching path. It
// never fails on unrecognized input; classification always produces an
// intent, with retrieval as the fallback.
func (s *QueryService) Ask(ctx context.Context, query string, opts domain.SearchOptions) (*domain.Answer, error) {
	intent := s.classifier.Classify(query)
	logger.Debug("intent: %s node=%q prefix=%q tp=%q vlan=%d",
		intent.Kind, intent.Entities.NodeID, intent.Entities.NodePrefix, intent.Entities.TPID, intent.Entities.VLAN)

	scope := driven.NodeScope{NodeID: intent.Entities.NodeID, NodePrefix: intent.Entities.NodePrefix}

	switch intent.Kind {
	case domain.IntentCountNodes:
		return s.countNodes(ctx, intent, scope)
	case domain.IntentCountTPs:
		return s.countTPs(ctx, intent, scope)
	case domain.IntentCountRoutes:
		return s.countRoutes(ctx, intent, scope)
	case domain.IntentListNodes:
		return s.listNodes(ctx, intent, scope)
	case domain.IntentListTPs:
		return s.listTPs(ctx, intent, scope)
	case domain.IntentListRoutes:
		return s.listRoutes(ctx, intent, scope)
	case domain.IntentListAddresses:
		return s.listAddresses(ctx, intent, scope)
	case domain.IntentListSVIs:
		return s.listSVIs(ctx, intent, scope)
	case domain.IntentListVLANTPs:
		return s.listVLANTPs(ctx, intent)
	case domain.IntentSummary:
		return s.summary(ctx, intent)
	case domain.IntentAdjacency:
		return s.adjacency(ctx, intent)
	}
	return s.retrieve(ctx, query, intent.Entities, opts)
}

// Retrieve runs the ranked full-text path directly, skipping intent
// classification (entities are still extracted for filters).
func (s *QueryService) Retrieve(ctx context.Context, query string, opts domain.SearchOptions) (*domain.Answer, error) {
	return s.retrieve(ctx, query, ExtractEntities(query), opts)
}

// RawSQL sanitizes and executes a caller-supplied read-only statement.
func (s *QueryService) RawSQL(ctx context.Context, query string, args []any) (*domain.TableResult, error) {
	q, err := SanitizeSQL(query)
	if err != nil {
		return nil, err
	}
	rowCap := domain.DefaultRowCap
	res, err := s.raw.Select(ctx, q, args, rowCap)
	if err != nil {
		return nil, fmt.Errorf("raw query: %w", err)
	}
	return res, nil
}

func (s *QueryService) countNodes(ctx context.Context, intent domain.Intent, scope driven.NodeScope) (*domain.Answer, error) {
	n, err := s.store.CountNodes(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("count nodes: %w", err)
	}
	var text string
	switch {
	case scope.NodeID != "":
		text = fmt.Sprintf("ノード %s の存在数: %d", scope.NodeID, n)
	case scope.NodePrefix != "":
		text = fmt.Sprintf("%s* のノード数: %d", scope.NodePrefix, n)
	default:
		text = fmt.Sprintf("ノード数: %d", n)
	}
	return &domain.Answer{Kind: intent.Kind, Text: text}, nil
}

func (s *QueryService) countTPs(ctx context.Context, intent domain.Intent, scope driven.NodeScope) (*domain.Answer, error) {
	total, byNode, err := s.store.CountTPs(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("count tps: %w", err)
	}
	var text string
	switch {
	case scope.NodeID != "":
		text = fmt.Sprintf("%s のインターフェース数: %d", scope.NodeID, total)
	case scope.NodePrefix != "":
		parts := make([]string, 0, len(byNode))
		for _, c := range byNode {
			parts = append(parts, fmt.Sprintf("%s:%d", c.NodeID, c.Count))
		}
		text = fmt.Sprintf("%s* のインターフェース合計: %d (%s)", scope.NodePrefix, total, strings.Join(parts, ", "))
	default:
		text = fmt.Sprintf("全ノードのインターフェース合計: %d", total)
	}
	return &domain.Answer{Kind: intent.Kind, Text: text}, nil
}

func (s *QueryService) countRoutes(ctx context.Context, intent domain.Intent, scope driven.NodeScope) (*domain.Answer, error) {
	n, err := s.store.CountRoutes(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("count routes: %w", err)
	}
	var text string
	switch {
	case scope.NodeID != "":
		text = fmt.Sprintf("%s のルート数: %d", scope.NodeID, n)
	case scope.NodePrefix != "":
		text = fmt.Sprintf("%s* のルート数: %d", scope.NodePrefix, n)
	default:
		text = fmt.Sprintf("ルート数: %d", n)
	}
	return &domain.Answer{Kind: intent.Kind, Text: text}, nil
}

func (s *QueryService) listNodes(ctx context.Context, intent domain.Intent, scope driven.NodeScope) (*domain.Answer, error) {
	nodes, err := s.store.ListNodes(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	if len(nodes) == 0 {
		return &domain.Answer{Kind: intent.Kind, Text: "(no nodes)"}, nil
	}
	var b strings.Builder
	if scope.NodePrefix != "" {
		fmt.Fprintf(&b, "%s* のデバイス一覧:\n", scope.NodePrefix)
	} else {
		b.WriteString("デバイス一覧:\n")
	}
	for _, n := range nodes {
		fmt.Fprintf(&b, "- %s\n", n)
	}
	return &domain.Answer{Kind: intent.Kind, Text: strings.TrimRight(b.String(), "\n")}, nil
}

func (s *QueryService) listTPs(ctx context.Context, intent domain.Intent, scope driven.NodeScope) (*domain.Answer, error) {
	tps, err := s.store.ListTPs(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list tps: %w", err)
	}
	if len(tps) == 0 {
		return &domain.Answer{Kind: intent.Kind, Text: "(no interfaces)"}, nil
	}
	var b strings.Builder
	switch {
	case scope.NodeID != "":
		fmt.Fprintf(&b, "%s のインターフェース一覧:\n", scope.NodeID)
	case scope.NodePrefix != "":
		fmt.Fprintf(&b, "%s* のインターフェース一覧:\n", scope.NodePrefix)
	default:
		b.WriteString("インターフェース一覧:\n")
	}
	for _, tp := range tps {
		fmt.Fprintf(&b, "- %s:%s\n", tp.NodeID, tp.TPID)
	}
	return &domain.Answer{Kind: intent.Kind, Text: strings.TrimRight(b.String(), "\n")}, nil
}

func (s *QueryService) listRoutes(ctx context.Context, intent domain.Intent, scope driven.NodeScope) (*domain.Answer, error) {
	routes, err := s.store.ListRoutes(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	if len(routes) == 0 {
		return &domain.Answer{Kind: intent.Kind, Text: "(no routes)"}, nil
	}
	var b strings.Builder
	switch {
	case scope.NodeID != "":
		fmt.Fprintf(&b, "%s のルート一覧:\n", scope.NodeID)
	case scope.NodePrefix != "":
		fmt.Fprintf(&b, "%s* のルート一覧:\n", scope.NodePrefix)
	default:
		b.WriteString("ルート一覧:\n")
	}
	for _, r := range routes {
		b.WriteString("- " + s.formatRoute(ctx, r) + "\n")
	}
	return &domain.Answer{Kind: intent.Kind, Text: strings.TrimRight(b.String(), "\n")}, nil
}

// formatRoute renders one route row, resolving the next-hop IP back to
// its owning interface when a tp document carries that address.
func (s *QueryService) formatRoute(ctx context.Context, r driven.RouteRow) string {
	nh := r.NextHop
	if nh == "" {
		nh = "?"
	} else if peer, err := s.store.ResolveTPByIP(ctx, r.NextHop); err == nil {
		nh += fmt.Sprintf(" (%s:%s)", peer.NodeID, peer.TPID)
	}
	line := fmt.Sprintf("%s vrf=%s %s -> %s", r.NodeID, r.VRF, r.Prefix, nh)
	if r.Protocol != "" {
		line += " (" + r.Protocol + ")"
	}
	return line
}

func (s *QueryService) listAddresses(ctx context.Context, intent domain.Intent, scope driven.NodeScope) (*domain.Answer, error) {
	rows, err := s.store.ListAddresses(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	if len(rows) == 0 {
		return &domain.Answer{Kind: intent.Kind, Text: "(no addresses)"}, nil
	}
	var b strings.Builder
	switch {
	case scope.NodeID != "":
		fmt.Fprintf(&b, "%s のアドレス一覧:\n", scope.NodeID)
	case scope.NodePrefix != "":
		fmt.Fprintf(&b, "%s* のアドレス一覧:\n", scope.NodePrefix)
	default:
		b.WriteString("アドレス一覧:\n")
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "- %s:%s %s\n", r.NodeID, r.TPID, formatAddress(r))
	}
	return &domain.Answer{Kind: intent.Kind, Text: strings.TrimRight(b.String(), "\n")}, nil
}

func (s *QueryService) listSVIs(ctx context.Context, intent domain.Intent, scope driven.NodeScope) (*domain.Answer, error) {
	rows, err := s.store.ListSVIs(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list svis: %w", err)
	}
	if len(rows) == 0 {
		return &domain.Answer{Kind: intent.Kind, Text: "(no SVI)"}, nil
	}
	var b strings.Builder
	switch {
	case scope.NodeID != "":
		fmt.Fprintf(&b, "%s のSVI一覧:\n", scope.NodeID)
	case scope.NodePrefix != "":
		fmt.Fprintf(&b, "%s* のSVI一覧:\n", scope.NodePrefix)
	default:
		b.WriteString("SVI一覧:\n")
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "- %s:%s %s\n", r.NodeID, r.TPID, formatAddress(r))
	}
	return &domain.Answer{Kind: intent.Kind, Text: strings.TrimRight(b.String(), "\n")}, nil
}

func formatAddress(r driven.AddressRow) string {
	if r.IPAddress == "" {
		return "-"
	}
	if r.PrefixLength >= 0 {
		return fmt.Sprintf("%s/%d", r.IPAddress, r.PrefixLength)
	}
	return r.IPAddress
}

func (s *QueryService) listVLANTPs(ctx context.Context, intent domain.Intent) (*domain.Answer, error) {
	tps, err := s.store.ListVLANTPs(ctx, intent.Entities.VLAN)
	if err != nil {
		return nil, fmt.Errorf("list vlan tps: %w", err)
	}
	if len(tps) == 0 {
		return &domain.Answer{Kind: intent.Kind, Text: "(no interfaces)"}, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "VLAN%d のインターフェース一覧:\n", intent.Entities.VLAN)
	for _, tp := range tps {
		fmt.Fprintf(&b, "- %s:%s\n", tp.NodeID, tp.TPID)
	}
	return &domain.Answer{Kind: intent.Kind, Text: strings.TrimRight(b.String(), "\n")}, nil
}

// summary builds the network overview: aggregate counts, the device
// list, and the full adjacency including isolated nodes.
func (s *QueryService) summary(ctx context.Context, intent domain.Intent) (*domain.Answer, error) {
	nodes, err := s.store.ListNodes(ctx, driven.NodeScope{})
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	nLinks, err := s.store.CountLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	nTPs, _, err := s.store.CountTPs(ctx, driven.NodeScope{})
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	adj, err := s.topology.FullAdjacency(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	var b strings.Builder
	b.WriteString("ネットワーク概要:\n")
	fmt.Fprintf(&b, "- デバイス数: %d\n", len(nodes))
	fmt.Fprintf(&b, "- インターフェース数: %d\n", nTPs)
	fmt.Fprintf(&b, "- リンク数: %d\n", nLinks)
	if len(nodes) > 0 {
		b.WriteString("- デバイス一覧:\n")
		for _, n := range nodes {
			fmt.Fprintf(&b, "  - %s\n", n)
		}
	}
	b.WriteString("- 接続一覧:\n")
	writeAdjacency(&b, adj, "")
	return &domain.Answer{Kind: intent.Kind, Text: strings.TrimRight(b.String(), "\n")}, nil
}

// adjacency answers connection questions: exact interface scope, node
// scope, or the full graph.
func (s *QueryService) adjacency(ctx context.Context, intent domain.Intent) (*domain.Answer, error) {
	e := intent.Entities
	switch {
	case e.NodeID != "" && e.TPID != "":
		edges, err := s.topology.InterfaceAdjacency(ctx, e.NodeID, e.TPID)
		if err != nil {
			return nil, fmt.Errorf("adjacency: %w", err)
		}
		if len(edges) == 0 {
			return &domain.Answer{Kind: intent.Kind, Text: "(no links)"}, nil
		}
		lines := make([]string, 0, len(edges))
		for _, edge := range edges {
			lines = append(lines, edge.String())
		}
		return &domain.Answer{Kind: intent.Kind, Text: strings.Join(lines, "\n")}, nil

	case e.NodeID != "":
		adj, err := s.topology.FullAdjacency(ctx)
		if err != nil {
			return nil, fmt.Errorf("adjacency: %w", err)
		}
		known := false
		for _, n := range adj.Nodes {
			if n == e.NodeID {
				known = true
				break
			}
		}
		if !known {
			return &domain.Answer{Kind: intent.Kind, Text: "(unknown node)"}, nil
		}
		var b strings.Builder
		writeNodeAdjacency(&b, e.NodeID, adj.Edges[e.NodeID], "")
		return &domain.Answer{Kind: intent.Kind, Text: strings.TrimRight(b.String(), "\n")}, nil

	default:
		adj, err := s.topology.FullAdjacency(ctx)
		if err != nil {
			return nil, fmt.Errorf("adjacency: %w", err)
		}
		var b strings.Builder
		writeAdjacency(&b, adj, "")
		return &domain.Answer{Kind: intent.Kind, Text: strings.TrimRight(b.String(), "\n")}, nil
	}
}

func writeAdjacency(b *strings.Builder, adj *domain.Adjacency, indent string) {
	for _, n := range adj.Nodes {
		writeNodeAdjacency(b, n, adj.Edges[n], indent)
	}
}

func writeNodeAdjacency(b *strings.Builder, node string, edges []domain.Edge, indent string) {
	fmt.Fprintf(b, "%s%s:\n", indent, node)
	if len(edges) == 0 {
		fmt.Fprintf(b, "%s  - (no links)\n", indent)
		return
	}
	for _, e := range edges {
		fmt.Fprintf(b, "%s  - %s\n", indent, e.String())
	}
}

// retrieve runs the full-text path: optional LLM rewrite, MATCH
// synthesis, ranked index search, hit formatting plus context block.
func (s *QueryService) retrieve(ctx context.Context, query string, e domain.Entities, opts domain.SearchOptions) (*domain.Answer, error) {
	effective := query
	if s.llm != nil {
		rewritten, limit, err := s.llm.RewriteQuery(ctx, query)
		switch {
		case err != nil:
			logger.Warn("query rewrite failed, using original: %v", err)
		case rewritten != "":
			logger.Debug("query rewritten: %q", rewritten)
			effective = rewritten
			if limit > 0 && opts.Limit <= 0 {
				opts.Limit = limit
			}
		}
	}

	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultHitLimit
	}
	if opts.RowCap <= 0 {
		opts.RowCap = domain.DefaultRowCap
	}
	if opts.Filters.Empty() {
		opts.Filters = SynthesizeFilters(e)
	}

	match := BuildMatch(effective, e)
	logger.Debug("match: %s filters: %+v", match, opts.Filters)

	res, err := s.index.Search(ctx, match, opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search: %w", domain.ErrTimeout)
		}
		return nil, fmt.Errorf("search: %w", err)
	}

	ans := &domain.Answer{
		Kind:      domain.IntentRetrieval,
		Hits:      res.Hits,
		Context:   MakeContext(res.Hits),
		Truncated: res.Truncated,
	}
	ans.Text = formatHits(res.Hits)
	return ans, nil
}

// formatHits renders the concise per-hit summary view.
func formatHits(hits []domain.Hit) string {
	if len(hits) == 0 {
		return "(no hits)"
	}
	var b strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, h.Document.Label())
		if h.Document.Text != "" {
			fmt.Fprintf(&b, "  %s\n", h.Document.Text)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// MakeContext renders hits as a numbered excerpt block suitable for a
// text-generation collaborator: label, one-line summary, compact JSON.
func MakeContext(hits []domain.Hit) string {
	var b strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, h.Document.Label())
		if h.Document.Text != "" {
			fmt.Fprintf(&b, "text: %s\n", h.Document.Text)
		}
		if blob, err := json.Marshal(h.Document.Attributes); err == nil {
			fmt.Fprintf(&b, "json: %s\n", blob)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildAnswerPrompt builds the grounded QA prompt from a question and
// its retrieved context block. The instruction asks for a concise
// answer citing the [n] excerpt numbers.
func BuildAnswerPrompt(question, context string) string {
	return fmt.Sprintf(`あなたはネットワーク運用のアシスタントです。以下の「コンテキスト」だけを根拠に、
日本語で簡潔・正確に回答してください。推測は避け、根拠となる [n] 番号も必ず併記してください。

コンテキスト:
%s

質問: %s
回答（根拠の [n] を明記）: `, context, question)
}
