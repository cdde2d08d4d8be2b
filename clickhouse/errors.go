package clickhouse

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when the client configuration is unusable.
	ErrInvalidConfig = errors.New("invalid clickhouse configuration")

	// ErrInvalidTable is returned for table names that are not plain identifiers.
	ErrInvalidTable = errors.New("invalid table name")

	// ErrRequestFailed is returned when a request could not complete, e.g. on
	// connection failures and timeouts.
	ErrRequestFailed = errors.New("clickhouse request failed")
)

// StoreError is a non-2xx response from ClickHouse.
type StoreError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("clickhouse %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}
