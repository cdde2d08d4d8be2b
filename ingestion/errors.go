package ingestion

import (
	"errors"

	"github.com/poiesic/chathouse/batch"
)

var (
	// ErrStoreRequired is returned when a non dry-run pipeline has no store.
	ErrStoreRequired = errors.New("store required")

	// ErrInvalidBatchSize is returned when the batch size is <= 0.
	ErrInvalidBatchSize = batch.ErrInvalidBatchSize

	// ErrInvalidConcurrency is returned when the concurrency is < 1.
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")
)
