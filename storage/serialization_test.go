package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/poiesic/chathouse/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRun(t *testing.T) {
	started := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name string
		run  core.Run
	}{
		{
			name: "finished run",
			run: core.Run{
				Id:            "6f1c1f0e-8a4e-4a44-9b0a-0d6f3c2a1b11",
				InputPath:     "/data/ChatGPT-Data/conversations.json",
				Fingerprint:   core.Fingerprint([]byte("export")),
				Table:         "chatgpt_messages",
				Status:        core.RunStatusFailed,
				Conversations: 12,
				Rows:          1234,
				Batches:       2,
				Inserted:      1000,
				Error:         "clickhouse insert: status 500: boom",
				StartedAt:     started,
				FinishedAt:    started.Add(3 * time.Second),
			},
		},
		{
			name: "running run with zero finish time",
			run: core.Run{
				Id:        "r2",
				Status:    core.RunStatusRunning,
				StartedAt: started,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalRun(&tt.run)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalRun(data)
			require.NoError(t, err)
			assert.Equal(t, tt.run, *decoded)
		})
	}
}

func TestUnmarshalRun_Truncated(t *testing.T) {
	run := core.Run{Id: "r1", InputPath: "/tmp/x.json", Status: core.RunStatusSucceeded}
	data := MarshalRun(&run)

	_, err := UnmarshalRun(data[:len(data)/2])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSerializationFailed))
}

func TestMarshalRun_EncodedLength(t *testing.T) {
	run := core.Run{
		Id:        "r1",
		Status:    core.RunStatusDryRun,
		Rows:      300,
		StartedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	data := MarshalRun(&run)
	assert.Len(t, data, core.RunMUS.Size(run))

	n, err := core.RunMUS.Skip(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
}

func TestUnmarshalRun_ReturnsUTC(t *testing.T) {
	local := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60))
	run := core.Run{Id: "r1", Status: core.RunStatusSucceeded, StartedAt: local}

	decoded, err := UnmarshalRun(MarshalRun(&run))
	require.NoError(t, err)
	assert.True(t, local.Equal(decoded.StartedAt))
	assert.Equal(t, time.UTC, decoded.StartedAt.Location())
	assert.True(t, decoded.FinishedAt.IsZero())
}
