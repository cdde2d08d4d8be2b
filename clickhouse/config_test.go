package clickhouse

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8123", cfg.BaseURL)
	assert.Equal(t, "default", cfg.Database)
	assert.Equal(t, 180*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.User)
	assert.False(t, cfg.Compress)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithBaseURL("https://ch.example.com:8443/"),
		WithUser("ingest"),
		WithPassword("secret"),
		WithDatabase("analytics"),
		WithTimeout(5*time.Second),
		WithCompression(true),
	)

	assert.Equal(t, "https://ch.example.com:8443/", cfg.BaseURL)
	assert.Equal(t, "ingest", cfg.User)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "analytics", cfg.Database)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Compress)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		opts []ConfigOption
	}{
		{"empty base URL", []ConfigOption{WithBaseURL("")}},
		{"unsupported scheme", []ConfigOption{WithBaseURL("tcp://localhost:9000")}},
		{"missing host", []ConfigOption{WithBaseURL("http://")}},
		{"empty database", []ConfigOption{WithDatabase("")}},
		{"zero timeout", []ConfigOption{WithTimeout(0)}},
		{"negative timeout", []ConfigOption{WithTimeout(-time.Second)}},
		{"password without user", []ConfigOption{WithPassword("secret")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opts...).Validate()
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}
