package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscore-io/netquery/internal/core/domain"
)

func TestSQLCmd_Use(t *testing.T) {
	assert.Equal(t, "sql [statement]", sqlCmd.Use)
}

func TestSQLCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sql"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSQLCmd_PrintsTable(t *testing.T) {
	query := &fakeQueryService{table: &domain.TableResult{
		Columns: []string{"node_id", "mtu"},
		Rows:    [][]any{{"L2SW1", 1500}, {"L2SW2", nil}},
	}}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sql", "select node_id, mtu from documents"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "node_id\tmtu")
	assert.Contains(t, out, "L2SW1\t1500")
	assert.Contains(t, out, "L2SW2\tNULL")
	assert.Contains(t, out, "(2 rows)")
	assert.Equal(t, "select node_id, mtu from documents", query.lastQuery)
}

func TestSQLCmd_TruncationNote(t *testing.T) {
	query := &fakeQueryService{table: &domain.TableResult{
		Columns:   []string{"id"},
		Rows:      [][]any{{1}},
		Truncated: true,
	}}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sql", "select id from documents"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "row cap")
}

func TestSQLCmd_RejectionSurfaces(t *testing.T) {
	query := &fakeQueryService{err: domain.ErrInvalidQuery}
	cleanup := setupTestServices(query, &fakeTopologyService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sql", "delete from documents"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}
