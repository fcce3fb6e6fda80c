package eventlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyDirDisablesLogging(t *testing.T) {
	log, err := New("")
	require.NoError(t, err)
	assert.Empty(t, log.Path())

	// Appending to a disabled log is a no-op, not a crash.
	log.Append(log.NewRequestID(), "user", "ask", "何個?")
}

func TestNew_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "events")
	log, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(log.Path()))
	assert.True(t, strings.HasSuffix(log.Path(), ".jsonl"))
}

func TestLog_Append(t *testing.T) {
	log, err := New(t.TempDir())
	require.NoError(t, err)

	id := log.NewRequestID()
	require.NotEmpty(t, id)
	log.Append(id, "user", "ask", "ノード数は?")
	log.Append(id, "system", "answer", map[string]any{"count": 3})

	f, err := os.Open(log.Path())
	require.NoError(t, err)
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		events = append(events, e)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, events, 2)
	assert.Equal(t, id, events[0].RequestID)
	assert.Equal(t, "user", events[0].Actor)
	assert.Equal(t, "ask", events[0].Tag)
	assert.Equal(t, "ノード数は?", events[0].Content)
	assert.NotEmpty(t, events[0].Timestamp)
	assert.Equal(t, "answer", events[1].Tag)
}

func TestLog_NilSafe(t *testing.T) {
	var log *Log
	assert.Empty(t, log.Path())
	assert.NotEmpty(t, log.NewRequestID())
	log.Append("id", "user", "ask", nil)
}
