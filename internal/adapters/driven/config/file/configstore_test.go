package file

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewConfigStore_DefaultsEmpty(t *testing.T) {
	store, dir := newTestConfigStore(t)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	assert.Empty(t, store.GetString("db.path"))
	assert.Empty(t, store.GetString("llm.api_key"))
	assert.Zero(t, store.GetInt("search.row_cap"))
}

func TestConfigStore_SetPersistsImmediately(t *testing.T) {
	store, dir := newTestConfigStore(t)

	require.NoError(t, store.Set("db.path", "/var/lib/netquery/cmdb.db"))
	require.NoError(t, store.Set("search.row_cap", 500))

	// A fresh store over the same directory sees the values.
	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/netquery/cmdb.db", reopened.GetString("db.path"))
	assert.Equal(t, 500, reopened.GetInt("search.row_cap"))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	// Users edit the file by hand as nested TOML tables; lookups use
	// dot-notation keys.
	dir := t.TempDir()
	content := `
[db]
path = "/home/ops/cmdb.db"

[llm]
api_key = "sk-ant-test-key"
model = "claude-sonnet-4-5"
base_url = "http://localhost:8089"

[search]
row_cap = 1000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "/home/ops/cmdb.db", store.GetString("db.path"))
	assert.Equal(t, "sk-ant-test-key", store.GetString("llm.api_key"))
	assert.Equal(t, "claude-sonnet-4-5", store.GetString("llm.model"))
	assert.Equal(t, "http://localhost:8089", store.GetString("llm.base_url"))
	assert.Equal(t, 1000, store.GetInt("search.row_cap"))
}

func TestConfigStore_GetInt_TOMLInt64(t *testing.T) {
	// TOML integers unmarshal as int64; GetInt must still return them.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[search]\nrow_cap = 200\n"), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 200, store.GetInt("search.row_cap"))
}

func TestConfigStore_TypeMismatchesReturnZeroValues(t *testing.T) {
	store, _ := newTestConfigStore(t)

	require.NoError(t, store.Set("search.row_cap", "not-a-number"))
	require.NoError(t, store.Set("db.path", 42))

	assert.Zero(t, store.GetInt("search.row_cap"))
	assert.Empty(t, store.GetString("db.path"))
	assert.False(t, store.GetBool("db.path"))
}

func TestConfigStore_GetBool(t *testing.T) {
	store, _ := newTestConfigStore(t)

	require.NoError(t, store.Set("llm.disable_rewrite", true))
	assert.True(t, store.GetBool("llm.disable_rewrite"))
	assert.False(t, store.GetBool("llm.missing"))
}

func TestConfigStore_Load_ReplacesInMemoryState(t *testing.T) {
	store, _ := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.model", "claude-haiku-4-5"))

	// Simulate a hand edit of the file behind the running store.
	content := "[llm]\nmodel = \"claude-sonnet-4-5\"\n"
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0600))

	require.NoError(t, store.Load())
	assert.Equal(t, "claude-sonnet-4-5", store.GetString("llm.model"))
}

func TestConfigStore_Load_CorruptedTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[llm\nmodel = broken"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	store, _ := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.api_key", "sk-ant-secret"))

	// The file carries an API key, so it must not be group readable.
	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[ingest]\ndefault_files = [\"topo.yaml\", \"routes.jsonl\"]\n"), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"topo.yaml", "routes.jsonl"}, store.GetStringSlice("ingest.default_files"))
	assert.Nil(t, store.GetStringSlice("ingest.missing"))
}
