package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/poiesic/chathouse/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const testExport = `[{"conversation_id": "c1", "title": "Hello", "mapping": {
  "root": {"message": null, "parent": null},
  "n1": {"message": {"id": "m1", "author": {"role": "user"}, "content": {"content_type": "text", "parts": ["hi"]}}, "parent": "root"},
  "n2": {"message": {"id": "m2", "author": {"role": "assistant"}, "content": {"content_type": "text", "parts": ["hello"]}}, "parent": "n1"},
  "n3": {"message": {"id": "m3", "author": {"role": "user"}, "content": {"content_type": "text", "parts": ["bye"]}}, "parent": "n2"}
}}]`

func writeExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conversations.json")
	require.NoError(t, os.WriteFile(path, []byte(testExport), 0644))
	return path
}

// runApp runs the CLI and returns what it wrote to stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"chathouse"}, args...))
	return out.String(), err
}

func findCommand(t *testing.T, name string) *cli.Command {
	t.Helper()
	for _, cmd := range newApp().Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %s not found", name)
	return nil
}

func TestIngestCommandFlags(t *testing.T) {
	cmd := findCommand(t, "ingest")

	stringFlag := func(name string) *cli.StringFlag {
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
				return f
			}
		}
		return nil
	}
	intFlag := func(name string) *cli.IntFlag {
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == name {
				return f
			}
		}
		return nil
	}

	t.Run("input has default value and alias", func(t *testing.T) {
		f := stringFlag("input")
		require.NotNil(t, f)
		assert.Equal(t, "~/cosmocrat-core/data/ingest/ChatGPT-Data/conversations.json", f.Value)
		assert.Equal(t, []string{"i"}, f.Aliases)
	})

	t.Run("batch-size has default value of 500", func(t *testing.T) {
		f := intFlag("batch-size")
		require.NotNil(t, f)
		assert.Equal(t, 500, f.Value)
	})

	t.Run("clickhouse flags read the environment", func(t *testing.T) {
		for name, env := range map[string]string{
			"clickhouse-url":      "CLICKHOUSE_URL",
			"clickhouse-user":     "CLICKHOUSE_USER",
			"clickhouse-password": "CLICKHOUSE_PASSWORD",
			"clickhouse-database": "CLICKHOUSE_DATABASE",
		} {
			f := stringFlag(name)
			require.NotNil(t, f, name)
			assert.Equal(t, []string{env}, f.EnvVars)
		}

		timeout := intFlag("clickhouse-timeout")
		require.NotNil(t, timeout)
		assert.Equal(t, []string{"CLICKHOUSE_HTTP_TIMEOUT"}, timeout.EnvVars)
		assert.Equal(t, 180, timeout.Value)
	})

	t.Run("clickhouse defaults", func(t *testing.T) {
		assert.Equal(t, "http://localhost:8123", stringFlag("clickhouse-url").Value)
		assert.Equal(t, "default", stringFlag("clickhouse-database").Value)
		assert.Empty(t, stringFlag("clickhouse-user").Value)
	})
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "warning", "Warn", "error"} {
		_, err := parseLevel(s)
		assert.NoError(t, err, s)
	}

	_, err := parseLevel("verbose")
	assert.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := runApp(t, "--log-level", "loud", "ingest", "--dry-run", "-i", writeExport(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandHome("~/data/conversations.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data/conversations.json"), got)

	got, err = expandHome("/abs/path.json")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path.json", got)

	got, err = expandHome("~user/path.json")
	require.NoError(t, err)
	assert.Equal(t, "~user/path.json", got)
}

func TestIngestCommand_DryRun(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	out, err := runApp(t, "ingest", "--dry-run", "-i", writeExport(t),
		"--batch-size", "2", "--clickhouse-url", server.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run: 3 rows in 2 batches from 1 conversations")
	assert.Zero(t, requests.Load())
}

func TestIngestCommand_InvalidBatchSize(t *testing.T) {
	_, err := runApp(t, "ingest", "--dry-run", "-i", writeExport(t), "--batch-size", "0")
	assert.ErrorIs(t, err, ingestion.ErrInvalidBatchSize)
}

func TestIngestCommand_MissingInput(t *testing.T) {
	_, err := runApp(t, "ingest", "--dry-run", "-i", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestIngestCommand_InvalidURL(t *testing.T) {
	_, err := runApp(t, "ingest", "-i", writeExport(t), "--clickhouse-url", "localhost:8123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ClickHouse configuration")
}

func TestIngestCommand_Insert(t *testing.T) {
	var inserts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Query().Get("query"), "INSERT") {
			inserts.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ledger := filepath.Join(t.TempDir(), "ledger")
	out, err := runApp(t, "ingest", "-i", writeExport(t), "--batch-size", "2",
		"--clickhouse-url", server.URL, "--ledger", ledger, "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted 3 rows in 2 batches")
	assert.Equal(t, int32(2), inserts.Load())

	out, err = runApp(t, "runs", "--ledger", ledger)
	require.NoError(t, err)
	assert.Contains(t, out, "succeeded")
	assert.Contains(t, out, "chatgpt_messages")
}

func TestIngestCommand_StoreFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Query().Get("query"), "INSERT") {
			http.Error(w, "Code: 60. Unknown table", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := runApp(t, "ingest", "-i", writeExport(t), "--clickhouse-url", server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingestion failed after 0 of 3 rows")
	assert.Contains(t, err.Error(), "404")
}

func TestRunsCommand_MissingLedger(t *testing.T) {
	_, err := runApp(t, "runs", "--ledger", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger not found")
}

func TestLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "chathouse.log")
	_, err := runApp(t, "--log-file", logPath, "ingest", "--dry-run", "-i", writeExport(t))
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"prepared rows"`)
}
