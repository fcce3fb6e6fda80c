// Package eventlog appends request events to a JSONL file. Each MCP
// tool call gets a uuid request id so a transcript can be correlated
// with server-side behaviour. Logging failures never fail the request.
package eventlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a single JSONL record.
type Event struct {
	Timestamp string `json:"ts"`
	RequestID string `json:"request_id"`
	Actor     string `json:"actor"`
	Tag       string `json:"tag"`
	Content   any    `json:"content,omitempty"`
}

// Log appends events to a JSONL file. The zero value is a no-op logger,
// so callers never need to nil-check.
type Log struct {
	mu   sync.Mutex
	path string
}

// New creates an event log writing to dir. The file name carries the
// process start timestamp, one file per run. An empty dir disables
// logging.
func New(dir string) (*Log, error) {
	if dir == "" {
		return &Log{}, nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	name := "netquery_events_" + time.Now().Format("20060102-150405") + ".jsonl"
	return &Log{path: filepath.Join(dir, name)}, nil
}

// NewRequestID returns a fresh correlation id. Safe on a nil log.
func (l *Log) NewRequestID() string {
	return uuid.New().String()
}

// Append writes one event. Errors are swallowed: the event log is an
// audit aid, never a point of failure for the request itself.
func (l *Log) Append(requestID, actor, tag string, content any) {
	if l == nil || l.path == "" {
		return
	}
	rec := Event{
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: requestID,
		Actor:     actor,
		Tag:       tag,
		Content:   content,
	}
	blob, err := json.Marshal(rec)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	f.Write(append(blob, '\n'))
}

// Path returns the log file path, empty when logging is disabled.
func (l *Log) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}
