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


package chathouse

import (
	"errors"
	"log/slog"

	"github.com/poiesic/chathouse/clickhouse"
	"github.com/poiesic/chathouse/ingestion"
	"github.com/poiesic/chathouse/storage"
	"github.com/poiesic/chathouse/storage/badger"
)

// Ingester owns the long lived pieces of an ingest: the ClickHouse client
// and the optional run ledger.
type Ingester struct {
	client  *clickhouse.Client
	backend *badger.Backend
	runs    storage.RunRepository
	logger  *slog.Logger
}

// IngesterOption configures an Ingester.
type IngesterOption func(*ingesterOptions)

type ingesterOptions struct {
	storeConfig    *clickhouse.Config
	ledgerPath     string
	inMemoryLedger bool
	logger         *slog.Logger
}

// WithStore connects the Ingester to ClickHouse. Without it only dry runs
// are possible.
func WithStore(cfg *clickhouse.Config) IngesterOption {
	return func(o *ingesterOptions) {
		o.storeConfig = cfg
	}
}

// WithLedger records runs in a BadgerDB directory at path.
func WithLedger(path string) IngesterOption {
	return func(o *ingesterOptions) {
		o.ledgerPath = path
	}
}

// WithInMemoryLedger records runs in memory; used by tests.
func WithInMemoryLedger() IngesterOption {
	return func(o *ingesterOptions) {
		o.inMemoryLedger = true
	}
}

// WithLogger sets the logger handed to the client and pipelines.
func WithLogger(logger *slog.Logger) IngesterOption {
	return func(o *ingesterOptions) {
		o.logger = logger
	}
}

func New(opts ...IngesterOption) (*Ingester, error) {
	options := &ingesterOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	ing := &Ingester{logger: options.logger}

	if options.storeConfig != nil {
		client, err := clickhouse.NewClient(options.storeConfig, clickhouse.WithLogger(options.logger))
		if err != nil {
			return nil, err
		}
		ing.client = client
	}

	if options.ledgerPath != "" || options.inMemoryLedger {
		backend, err := badger.OpenBackend(options.ledgerPath, options.inMemoryLedger)
		if err != nil {
			return nil, err
		}

		runs, err := badger.NewRunRepository(backend)
		if err != nil {
			backend.Close()
			return nil, err
		}
		ing.backend = backend
		ing.runs = runs
	}

	return ing, nil
}

func (i *Ingester) Close() error {
	var errs []error
	if i.runs != nil {
		if err := i.runs.Close(); err != nil {
			i.logger.Error("error closing run repository", "err", err)
			errs = append(errs, err)
		}
	}
	if i.backend != nil {
		if err := i.backend.Close(); err != nil {
			i.logger.Error("error closing ledger", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Client returns the ClickHouse client, or nil without WithStore.
func (i *Ingester) Client() *clickhouse.Client {
	return i.client
}

// RunRepository returns the run ledger, or nil without a ledger option.
func (i *Ingester) RunRepository() storage.RunRepository {
	return i.runs
}

// NewPipeline creates a pipeline bound to this Ingester's client and
// ledger. opts are applied after the defaults and may override them.
func (i *Ingester) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	defaults := []ingestion.Option{ingestion.WithLogger(i.logger)}
	if i.runs != nil {
		defaults = append(defaults, ingestion.WithRecorder(i.runs))
	}

	// a nil *Client must not become a non-nil Store
	var store ingestion.Store
	if i.client != nil {
		store = i.client
	}
	return ingestion.NewPipeline(store, append(defaults, opts...)...)
}
