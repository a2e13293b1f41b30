package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Mahi3005/data-alchemist/pkg/config"
	"github.com/Mahi3005/data-alchemist/pkg/telemetry/logging"
)

const (
	cleanClientsCSV = "ClientID,ClientName,PriorityLevel,RequestedTaskIDs,GroupTag,AttributesJSON\n" +
		"C1,Acme,3,T1,g,{}\n"

	cleanWorkersJSON = `[{"WorkerID": "W1", "WorkerName": "Ann", "Skills": "go", "AvailableSlots": "[1,2,3]", "MaxLoadPerPhase": 1, "WorkerGroup": "g", "QualificationLevel": 2}]`

	cleanTasksYAML = `- TaskID: T1
  TaskName: Build
  Category: eng
  Duration: 1
  RequiredSkills: go
  PreferredPhases: "1-2"
  MaxConcurrent: 1
`
)

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a polling test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testApp struct {
	env    *appEnv
	stdout *syncBuffer
	stderr *syncBuffer
	dir    string
}

// newTestApp returns an environment with the default configuration and a
// SQLite history in a temporary directory.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dir := t.TempDir()

	cfg := config.NewDefaultConfig()
	cfg.History.SQLitePath = filepath.Join(dir, "history.db")
	cfg.Watch.Debounce = 20 * time.Millisecond

	app := &testApp{stdout: &syncBuffer{}, stderr: &syncBuffer{}, dir: dir}
	app.env = &appEnv{
		cfg:    cfg,
		logger: logging.Discard(),
		level:  new(slog.LevelVar),
		stdout: app.stdout,
		stderr: app.stderr,
	}
	return app
}

// write creates a file in the app directory and returns its path.
func (a *testApp) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// cleanOptions writes a clean dataset and returns validate options for it.
func (a *testApp) cleanOptions(t *testing.T) validateOptions {
	t.Helper()
	return validateOptions{
		clients: a.write(t, "clients.csv", cleanClientsCSV),
		workers: a.write(t, "workers.json", cleanWorkersJSON),
		tasks:   a.write(t, "tasks.yaml", cleanTasksYAML),
		format:  "text",
		failOn:  "error",
	}
}
