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
	"fmt"
	"net/url"
	"time"
)

const (
	DefaultBaseURL  = "http://localhost:8123"
	DefaultDatabase = "default"
	DefaultTimeout  = 180 * time.Second
)

// Config holds connection settings for a ClickHouse HTTP endpoint.
type Config struct {
	// BaseURL is the HTTP endpoint, e.g. "http://localhost:8123".
	// A trailing slash is ignored.
	BaseURL string

	// User enables basic authentication when non-empty.
	User string

	// Password is sent with User. It may be empty.
	Password string

	// Database selects the target database for every statement.
	Database string

	// Timeout bounds each request, including reading the response.
	Timeout time.Duration

	// Compress gzips insert bodies.
	Compress bool
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBaseURL sets the HTTP endpoint.
func WithBaseURL(baseURL string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// WithUser sets the basic auth user.
func WithUser(user string) ConfigOption {
	return func(c *Config) {
		c.User = user
	}
}

// WithPassword sets the basic auth password.
func WithPassword(password string) ConfigOption {
	return func(c *Config) {
		c.Password = password
	}
}

// WithDatabase sets the target database.
func WithDatabase(database string) ConfigOption {
	return func(c *Config) {
		c.Database = database
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithCompression toggles gzip insert bodies.
func WithCompression(enabled bool) ConfigOption {
	return func(c *Config) {
		c.Compress = enabled
	}
}

// DefaultConfig returns a Config pointing at a local server.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:  DefaultBaseURL,
		Database: DefaultDatabase,
		Timeout:  DefaultTimeout,
	}
}

// NewConfig creates a Config from defaults with the given options applied.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is usable before any I/O happens.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: base URL: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: base URL scheme must be http or https, got %q", ErrInvalidConfig, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: base URL has no host", ErrInvalidConfig)
	}
	if c.Database == "" {
		return fmt.Errorf("%w: database is required", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be greater than 0", ErrInvalidConfig)
	}
	if c.Password != "" && c.User == "" {
		return fmt.Errorf("%w: password given without a user", ErrInvalidConfig)
	}
	return nil
}
