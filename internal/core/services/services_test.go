package services

// Shared fakes for the service tests.

import (
	"context"

	"github.com/opscore-io/netquery/internal/core/domain"
	"github.com/opscore-io/netquery/internal/core/ports/driven"
)

// fakeStore implements driven.DocumentStore over canned data.
type fakeStore struct {
	upserts []domain.Document

	links   []domain.Document
	tpVLANs map[string]int

	nodeCount  int
	tpTotal    int
	tpByNode   []driven.TPCount
	routeCount int
	linkCount  int

	nodes     []string
	tps       []driven.TPRef
	routes    []driven.RouteRow
	addresses []driven.AddressRow
	svis      []driven.AddressRow
	vlanTPs   []driven.TPRef
	ipOwners  map[string]driven.TPRef

	err error
}

var _ driven.DocumentStore = (*fakeStore)(nil)

func (f *fakeStore) Upsert(_ context.Context, doc *domain.Document) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, *doc)
	return nil
}

func (f *fakeStore) Get(_ context.Context, _ domain.DocType, _, _, _, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeStore) CountNodes(_ context.Context, _ driven.NodeScope) (int, error) {
	return f.nodeCount, f.err
}

func (f *fakeStore) CountTPs(_ context.Context, _ driven.NodeScope) (int, []driven.TPCount, error) {
	return f.tpTotal, f.tpByNode, f.err
}

func (f *fakeStore) CountRoutes(_ context.Context, _ driven.NodeScope) (int, error) {
	return f.routeCount, f.err
}

func (f *fakeStore) CountLinks(_ context.Context) (int, error) {
	return f.linkCount, f.err
}

func (f *fakeStore) ListNodes(_ context.Context, _ driven.NodeScope) ([]string, error) {
	return f.nodes, f.err
}

func (f *fakeStore) ListTPs(_ context.Context, _ driven.NodeScope) ([]driven.TPRef, error) {
	return f.tps, f.err
}

func (f *fakeStore) ListRoutes(_ context.Context, _ driven.NodeScope) ([]driven.RouteRow, error) {
	return f.routes, f.err
}

func (f *fakeStore) ListAddresses(_ context.Context, _ driven.NodeScope) ([]driven.AddressRow, error) {
	return f.addresses, f.err
}

func (f *fakeStore) ListSVIs(_ context.Context, _ driven.NodeScope) ([]driven.AddressRow, error) {
	return f.svis, f.err
}

func (f *fakeStore) ListVLANTPs(_ context.Context, _ int) ([]driven.TPRef, error) {
	return f.vlanTPs, f.err
}

func (f *fakeStore) ListTPVLANs(_ context.Context) (map[string]int, error) {
	return f.tpVLANs, f.err
}

func (f *fakeStore) ListLinks(_ context.Context) ([]domain.Document, error) {
	return f.links, f.err
}

func (f *fakeStore) ResolveTPByIP(_ context.Context, ip string) (*driven.TPRef, error) {
	if ref, ok := f.ipOwners[ip]; ok {
		return &ref, nil
	}
	return nil, domain.ErrNotFound
}

// fakeIndex implements driven.SearchIndex.
type fakeIndex struct {
	result    *domain.SearchResult
	err       error
	lastMatch string
	lastOpts  domain.SearchOptions
}

func (f *fakeIndex) Search(_ context.Context, match string, opts domain.SearchOptions) (*domain.SearchResult, error) {
	f.lastMatch = match
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &domain.SearchResult{}, nil
	}
	return f.result, nil
}

// fakeRaw implements driven.RawQuerier.
type fakeRaw struct {
	result    *domain.TableResult
	err       error
	lastQuery string
}

func (f *fakeRaw) Select(_ context.Context, query string, _ []any, _ int) (*domain.TableResult, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeLLM implements driven.LLMService.
type fakeLLM struct {
	rewritten  string
	limit      int
	rewriteErr error
	generated  string
}

func (f *fakeLLM) RewriteQuery(_ context.Context, _ string) (string, int, error) {
	return f.rewritten, f.limit, f.rewriteErr
}

func (f *fakeLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return f.generated, nil
}

func (f *fakeLLM) ModelName() string { return "fake" }

func (f *fakeLLM) Close() error { return nil }

// linkDoc builds a link document for topology tests.
func linkDoc(linkID, srcNode, srcTP, dstNode, dstTP string, vlan *int) domain.Document {
	return domain.Document{
		Type:   domain.DocTypeLink,
		LinkID: linkID,
		Attributes: domain.Attributes{Link: &domain.LinkAttributes{
			SrcNode: srcNode,
			SrcTP:   srcTP,
			DstNode: dstNode,
			DstTP:   dstTP,
			VLANID:  vlan,
		}},
	}
}

func intPtr(v int) *int { return &v }
