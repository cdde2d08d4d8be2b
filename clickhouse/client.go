// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package clickhouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/poiesic/chathouse/core"
)

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 64 * 1024

// Client talks to one ClickHouse HTTP endpoint. It keeps no state between
// calls beyond its configuration.
type Client struct {
	cfg        Config
	endpoint   *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client. The Client works on a copy whose
// Timeout is the configured request timeout; hc itself is left untouched.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient validates cfg and creates a Client.
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c := &Client{
		cfg:        *cfg,
		endpoint:   endpoint,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	hc := *c.httpClient
	hc.Timeout = cfg.Timeout
	c.httpClient = &hc
	c.logger = c.logger.With("component", "clickhouse", "database", cfg.Database)

	return c, nil
}

// EnsureSchema creates the message table if it does not exist yet.
func (c *Client) EnsureSchema(ctx context.Context, table string) error {
	ddl, err := CreateTableStatement(table)
	if err != nil {
		return err
	}
	c.logger.Debug("executing DDL", "table", table, "statement", ddl)
	return c.execute(ctx, "create table", ddl, nil)
}

// Ping runs SELECT 1 to check connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	return c.execute(ctx, "ping", "SELECT 1", nil)
}

// InsertBatch sends rows to table in one JSONEachRow request. Rows are
// validated first; an invalid row fails the batch before any I/O. An empty
// batch is a no-op.
func (c *Client) InsertBatch(ctx context.Context, table string, rows []core.Row) error {
	if len(rows) == 0 {
		return nil
	}

	query, err := InsertStatement(table)
	if err != nil {
		return err
	}

	payload, err := EncodeRows(rows)
	if err != nil {
		return err
	}

	c.logger.Debug("inserting rows", "table", table, "rows", len(rows), "bytes", len(payload))
	return c.execute(ctx, "insert", query, payload)
}

// EncodeRows renders rows as newline separated JSON objects. HTML characters
// are not escaped so text columns keep their original bytes.
func EncodeRows(rows []core.Row) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i := range rows {
		if err := core.ValidateRow(&rows[i]); err != nil {
			return nil, fmt.Errorf("row %d (message %q): %w", i, rows[i].MessageID, err)
		}
		if err := enc.Encode(&rows[i]); err != nil {
			return nil, fmt.Errorf("row %d (message %q): %w", i, rows[i].MessageID, err)
		}
	}
	// Encode terminates every object with a newline; the payload is joined, not terminated.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (c *Client) execute(ctx context.Context, op, query string, payload []byte) error {
	u := *c.endpoint
	params := u.Query()
	params.Set("database", c.cfg.Database)
	params.Set("query", query)
	u.RawQuery = params.Encode()

	body, compressed, err := c.requestBody(payload)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequestFailed, op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), body)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequestFailed, op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/x-ndjson; charset=utf-8")
	}
	if compressed {
		req.Header.Set("Content-Encoding", "gzip")
	}
	if c.cfg.User != "" {
		req.SetBasicAuth(c.cfg.User, c.cfg.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequestFailed, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		storeErr := &StoreError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
		c.logger.Error("clickhouse error", "op", op, "status", resp.StatusCode, "body", storeErr.Body)
		return storeErr
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) requestBody(payload []byte) (io.Reader, bool, error) {
	if payload == nil {
		return nil, false, nil
	}
	if !c.cfg.Compress {
		return bytes.NewReader(payload), false, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, false, err
	}
	if err := zw.Close(); err != nil {
		return nil, false, err
	}
	return &buf, true, nil
}
