package export

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/chathouse/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExport(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conversations.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	contents := `[{"conversation_id":"c1","title":"One","mapping":{"n":{"message":{"id":"m"}}}},{"id":"c2"}]`
	path := writeExport(t, contents)

	doc, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, doc.Path)
	assert.Equal(t, int64(len(contents)), doc.Size)
	assert.Equal(t, core.Fingerprint([]byte(contents)), doc.Fingerprint)
	require.Len(t, doc.Conversations, 2)
	assert.Equal(t, "One", doc.Conversations[0].Title)
	assert.Equal(t, "c2", doc.Conversations[1].Identifier())
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"truncated", `[{"conversation_id":`},
		{"object at top level", `{"conversation_id":"c1"}`},
		{"mapping is a list", `[{"mapping":["a"]}]`},
		{"message is a string", `[{"mapping":{"n":{"message":"hi"}}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeExport(t, tt.contents))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedExport), "got %v", err)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	conversations, err := Decode([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, conversations)
}

func TestDecode_FalsyMessageIsSkipped(t *testing.T) {
	for _, falsy := range []string{`false`, `""`, `0`, `[]`, `{}`} {
		t.Run(falsy, func(t *testing.T) {
			contents := `[{"conversation_id":"c","mapping":{"a":{"message":` + falsy + `},"b":{"message":{"id":"m"}}}}]`
			conversations, err := Decode([]byte(contents))
			require.NoError(t, err)

			rows, stats := CollectRowsWithStats(conversations)
			require.Len(t, rows, 1)
			assert.Equal(t, "m", rows[0].MessageID)
			assert.Equal(t, 1, stats.Skipped)
		})
	}
}

func TestDecode_TruthyNonObjectMessageIsMalformed(t *testing.T) {
	for _, value := range []string{`true`, `1`, `["x"]`} {
		t.Run(value, func(t *testing.T) {
			_, err := Decode([]byte(`[{"mapping":{"n":{"message":` + value + `}}}]`))
			assert.ErrorIs(t, err, ErrMalformedExport)
		})
	}
}
