package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opscore-io/netquery/internal/core/domain"
	"github.com/opscore-io/netquery/internal/core/ports/driven"
)

// fakeQueryService implements driving.QueryService for command tests.
type fakeQueryService struct {
	answer    *domain.Answer
	table     *domain.TableResult
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (f *fakeQueryService) Ask(_ context.Context, query string, opts domain.SearchOptions) (*domain.Answer, error) {
	f.lastQuery, f.lastOpts = query, opts
	return f.answer, f.err
}

func (f *fakeQueryService) Retrieve(_ context.Context, query string, opts domain.SearchOptions) (*domain.Answer, error) {
	f.lastQuery, f.lastOpts = query, opts
	return f.answer, f.err
}

func (f *fakeQueryService) RawSQL(_ context.Context, query string, _ []any) (*domain.TableResult, error) {
	f.lastQuery = query
	return f.table, f.err
}

// fakeTopologyService implements driving.TopologyService for command tests.
type fakeTopologyService struct {
	edges []domain.Edge
	adj   *domain.Adjacency
	err   error
}

func (f *fakeTopologyService) Edges(_ context.Context) ([]domain.Edge, error) {
	return f.edges, f.err
}

func (f *fakeTopologyService) NodeAdjacency(_ context.Context, _ string) ([]domain.Edge, error) {
	return f.edges, f.err
}

func (f *fakeTopologyService) InterfaceAdjacency(_ context.Context, _, _ string) ([]domain.Edge, error) {
	return f.edges, f.err
}

func (f *fakeTopologyService) FullAdjacency(_ context.Context) (*domain.Adjacency, error) {
	return f.adj, f.err
}

// fakeLLMService implements driven.LLMService for command tests.
type fakeLLMService struct {
	generated  string
	err        error
	lastPrompt string
}

func (f *fakeLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.lastPrompt = prompt
	return f.generated, f.err
}

func (f *fakeLLMService) RewriteQuery(_ context.Context, query string) (string, int, error) {
	return query, 0, nil
}

func (f *fakeLLMService) ModelName() string { return "fake-model" }

func (f *fakeLLMService) Ping(_ context.Context) error { return f.err }

func (f *fakeLLMService) Close() error { return nil }

// fakeConfigStore implements driven.ConfigStore for command tests.
type fakeConfigStore struct {
	values map[string]any
}

func (f *fakeConfigStore) GetString(key string) string {
	s, _ := f.values[key].(string)
	return s
}

func (f *fakeConfigStore) GetInt(key string) int {
	n, _ := f.values[key].(int)
	return n
}

func (f *fakeConfigStore) GetBool(key string) bool {
	b, _ := f.values[key].(bool)
	return b
}

func (f *fakeConfigStore) Set(key string, value any) error {
	if f.values == nil {
		f.values = map[string]any{}
	}
	f.values[key] = value
	return nil
}

func (f *fakeConfigStore) Load() error { return nil }

// setupTestServices installs fakes behind the package-level service
// variables so ensureServices short-circuits. Returns a cleanup that
// restores the previous wiring.
func setupTestServices(query *fakeQueryService, topo *fakeTopologyService) func() {
	oldQuery, oldTopo, oldLLM := queryService, topologyService, llmService
	queryService, topologyService = query, topo
	llmService = nil
	return func() {
		queryService, topologyService, llmService = oldQuery, oldTopo, oldLLM
	}
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "netquery", rootCmd.Use)
}

func TestRootCmd_SilencesUsageOnError(t *testing.T) {
	assert.True(t, rootCmd.SilenceUsage)
	assert.True(t, rootCmd.SilenceErrors)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"verbose", "db", "config-dir", "events-dir"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ask", "search", "links", "sql", "ingest", "diag", "mcp", "config", "repl", "version"} {
		assert.True(t, names[want], want)
	}
}
