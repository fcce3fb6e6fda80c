package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscore-io/netquery/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_HasLimitFlag(t *testing.T) {
	flag := askCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestAskCmd_PrintsAnswer(t *testing.T) {
	query := &fakeQueryService{answer: &domain.Answer{
		Kind: domain.IntentCountNodes,
		Text: "ノード数: 3",
	}}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "ノード数は?"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ノード数: 3")
	assert.Equal(t, "ノード数は?", query.lastQuery)
}

func TestAskCmd_JoinsMultipleArgs(t *testing.T) {
	query := &fakeQueryService{answer: &domain.Answer{Text: "ok"}}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "vlan", "10", "のポート"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "vlan 10 のポート", query.lastQuery)
}

func TestAskCmd_LimitFlagReachesService(t *testing.T) {
	query := &fakeQueryService{answer: &domain.Answer{Text: "ok"}}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "-n", "7", "eth1"})
	defer func() {
		rootCmd.SetArgs(nil)
		askLimit = 0
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 7, query.lastOpts.Limit)
}

func TestAskCmd_RowCapFromConfig(t *testing.T) {
	query := &fakeQueryService{answer: &domain.Answer{Text: "ok"}}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()
	oldConfig := configStore
	configStore = &fakeConfigStore{values: map[string]any{"search.row_cap": 500}}
	defer func() { configStore = oldConfig }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "eth1"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 500, query.lastOpts.RowCap)
}

func TestAskCmd_RowCapDefaultsWhenUnconfigured(t *testing.T) {
	query := &fakeQueryService{answer: &domain.Answer{Text: "ok"}}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "eth1"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	// Zero defers to the service default.
	assert.Equal(t, 0, query.lastOpts.RowCap)
}

func TestAskCmd_TruncationNote(t *testing.T) {
	query := &fakeQueryService{answer: &domain.Answer{
		Kind:      domain.IntentRetrieval,
		Text:      "- hit",
		Truncated: true,
	}}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "eth1"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "row cap")
}

func TestAskCmd_ContextFlag(t *testing.T) {
	query := &fakeQueryService{answer: &domain.Answer{
		Kind:    domain.IntentRetrieval,
		Text:    "- hit",
		Context: "[1] tp node=L2SW1 tp=eth1",
	}}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--context", "eth1"})
	defer func() {
		rootCmd.SetArgs(nil)
		askContext = false
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "[1] tp node=L2SW1 tp=eth1")
}

func TestAskCmd_DryRunPrintsPrompt(t *testing.T) {
	query := &fakeQueryService{answer: &domain.Answer{
		Kind:    domain.IntentRetrieval,
		Text:    "- hit",
		Context: "[1] tp node=L2SW1 tp=eth1",
	}}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--dry-run", "which port is down"})
	defer func() {
		rootCmd.SetArgs(nil)
		askDryRun = false
	}()

	require.NoError(t, rootCmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "--- prompt ---")
	assert.Contains(t, out, "which port is down")
	assert.Contains(t, out, "[1] tp node=L2SW1 tp=eth1")
}

func TestAskCmd_AnswerWithoutLLMFails(t *testing.T) {
	query := &fakeQueryService{answer: &domain.Answer{
		Kind:    domain.IntentRetrieval,
		Text:    "- hit",
		Context: "[1] tp node=L2SW1 tp=eth1",
	}}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "--answer", "eth1"})
	defer func() {
		rootCmd.SetArgs(nil)
		askAnswer = false
	}()

	err := rootCmd.Execute()
	assert.ErrorContains(t, err, "no LLM configured")
}

func TestAskCmd_AnswerUsesLLM(t *testing.T) {
	query := &fakeQueryService{answer: &domain.Answer{
		Kind:    domain.IntentRetrieval,
		Text:    "- hit",
		Context: "[1] tp node=L2SW1 tp=eth1",
	}}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()
	llm := &fakeLLMService{generated: "eth1 is down"}
	llmService = llm

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--answer", "which port is down"})
	defer func() {
		rootCmd.SetArgs(nil)
		askAnswer = false
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "eth1 is down")
	assert.Contains(t, llm.lastPrompt, "which port is down")
}

func TestAskCmd_AnswerWithoutContextIsNoop(t *testing.T) {
	query := &fakeQueryService{answer: &domain.Answer{
		Kind: domain.IntentCountNodes,
		Text: "ノード数: 3",
	}}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--answer", "ノード数は?"})
	defer func() {
		rootCmd.SetArgs(nil)
		askAnswer = false
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "no retrieval context")
}

func TestAskCmd_JSONOutput(t *testing.T) {
	query := &fakeQueryService{answer: &domain.Answer{
		Kind: domain.IntentCountNodes,
		Text: "ノード数: 3",
	}}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--json", "ノード数は?"})
	defer func() {
		rootCmd.SetArgs(nil)
		askJSON = false
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), `"Kind"`)
	assert.Contains(t, buf.String(), "count_nodes")
}
