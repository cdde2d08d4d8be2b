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


package ingestion

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/chathouse/batch"
	"github.com/poiesic/chathouse/clickhouse"
	"github.com/poiesic/chathouse/core"
	"github.com/poiesic/chathouse/export"
	"github.com/poiesic/chathouse/storage"
)

// Store is the destination of an ingest. *clickhouse.Client satisfies it.
type Store interface {
	EnsureSchema(ctx context.Context, table string) error
	InsertBatch(ctx context.Context, table string, rows []core.Row) error
}

var _ Store = (*clickhouse.Client)(nil)

// Pipeline loads an export and writes its rows to a Store.
type Pipeline struct {
	store            Store
	table            string
	batchSize        int
	concurrency      int
	dryRun           bool
	recorder         storage.RunRepository
	progress         io.Writer
	progressInterval int
	logger           *slog.Logger
}

// Result summarises a run. Inserted counts rows acknowledged by the store
// and is meaningful on failure too.
type Result struct {
	RunID         string // empty unless a recorder is configured
	Conversations int
	Rows          int
	Batches       int // planned batches
	Committed     int // batches acknowledged by the store
	Inserted      int
	DryRun        bool
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithBatchSize sets the number of rows per insert request.
// Default is batch.DefaultSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size <= 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidBatchSize, size)
		}
		p.batchSize = size
		return nil
	}
}

// WithDryRun stops the pipeline after rows are prepared.
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) error {
		p.dryRun = dryRun
		return nil
	}
}

// WithTable sets the destination table.
// Default is clickhouse.TableName.
func WithTable(table string) Option {
	return func(p *Pipeline) error {
		if table == "" {
			table = clickhouse.TableName
		}
		p.table = table
		return nil
	}
}

// WithConcurrency sets the maximum number of in-flight insert requests.
// Default is 1, which inserts strictly in order.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidConcurrency, n)
		}
		p.concurrency = n
		return nil
	}
}

// WithRecorder records every run in the given ledger.
func WithRecorder(recorder storage.RunRepository) Option {
	return func(p *Pipeline) error {
		p.recorder = recorder
		return nil
	}
}

// WithProgress writes a progress line to w every interval inserted rows.
func WithProgress(w io.Writer, interval int) Option {
	return func(p *Pipeline) error {
		p.progress = w
		p.progressInterval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline. store may be nil only for a
// dry run.
func NewPipeline(store Store, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		store:       store,
		table:       clickhouse.TableName,
		batchSize:   batch.DefaultSize,
		concurrency: 1,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if p.store == nil && !p.dryRun {
		return nil, ErrStoreRequired
	}

	p.logger = p.logger.With("component", "ingestion")
	return p, nil
}

// Run ingests the export at inputPath.
//
// Load and decode failures return a nil Result. Once rows are prepared the
// Result is always returned, and after an insert failure it reports the rows
// committed before the failure.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (*Result, error) {
	started := time.Now()

	p.logger.Info("loading conversations", "path", inputPath)
	doc, err := export.Load(inputPath)
	if err != nil {
		return nil, err
	}

	rows, stats := export.CollectRowsWithStats(doc.Conversations)
	p.logger.Info("prepared rows",
		"conversations", stats.Conversations,
		"rows", humanize.Comma(int64(stats.Rows)),
		"skipped", stats.Skipped,
		"size", humanize.Bytes(uint64(doc.Size)))

	result := &Result{
		Conversations: stats.Conversations,
		Rows:          stats.Rows,
		Batches:       batch.Count(len(rows), p.batchSize),
		DryRun:        p.dryRun,
	}

	run := p.beginRun(ctx, doc)
	if run != nil {
		result.RunID = run.Id
	}

	if p.dryRun {
		p.logger.Info("dry run complete, nothing sent",
			"rows", result.Rows,
			"batches", result.Batches,
			"batch_size", p.batchSize)
		p.finishRun(run, result, nil)
		return result, nil
	}

	if err := p.store.EnsureSchema(ctx, p.table); err != nil {
		err = fmt.Errorf("failed to ensure table %s: %w", p.table, err)
		p.finishRun(run, result, err)
		return result, err
	}

	batches, err := batch.Plan(rows, p.batchSize)
	if err != nil {
		p.finishRun(run, result, err)
		return result, err
	}

	var tracker *batch.ProgressTracker
	if p.progress != nil {
		tracker = batch.NewProgressTracker(p.progress, len(rows), p.progressInterval)
		tracker.Start()
	}

	if p.concurrency > 1 {
		err = p.insertConcurrent(ctx, batches, result, tracker)
	} else {
		err = p.insertSequential(ctx, batches, result, tracker)
	}

	if tracker != nil {
		tracker.Finish(err != nil)
	}
	p.finishRun(run, result, err)

	if err != nil {
		p.logger.Error("ingestion aborted", "err", err,
			"inserted", result.Inserted,
			"committed_batches", result.Committed,
			"batches", result.Batches)
		return result, err
	}

	p.logger.Info("ingestion complete",
		"rows", humanize.Comma(int64(result.Inserted)),
		"batches", result.Committed,
		"table", p.table,
		"elapsed", time.Since(started).Round(time.Millisecond))
	return result, nil
}

func (p *Pipeline) insertSequential(ctx context.Context, batches iter.Seq2[int, []core.Row], result *Result, tracker *batch.ProgressTracker) error {
	for i, rows := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.store.InsertBatch(ctx, p.table, rows); err != nil {
			return fmt.Errorf("batch %d of %d: %w", i+1, result.Batches, err)
		}
		result.Committed++
		result.Inserted += len(rows)
		if tracker != nil {
			tracker.Add(len(rows))
		}
		p.logger.Debug("inserted batch", "batch", i+1, "of", result.Batches, "rows", len(rows))
	}
	return nil
}

// insertConcurrent keeps at most p.concurrency inserts in flight. After the
// first failure no new batch is started; batches already running finish and
// still count towards the result.
func (p *Pipeline) insertConcurrent(ctx context.Context, batches iter.Seq2[int, []core.Row], result *Result, tracker *batch.ProgressTracker) error {
	pool, err := ants.NewPool(p.concurrency)
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failed   atomic.Bool
		firstErr error
	)

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
		failed.Store(true)
	}

	for i, rows := range batches {
		if failed.Load() {
			break
		}
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}

		wg.Add(1)
		// Submit blocks while every worker is busy.
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if failed.Load() {
				return
			}
			if err := p.store.InsertBatch(ctx, p.table, rows); err != nil {
				fail(fmt.Errorf("batch %d of %d: %w", i+1, result.Batches, err))
				return
			}

			mu.Lock()
			result.Committed++
			result.Inserted += len(rows)
			mu.Unlock()
			if tracker != nil {
				tracker.Add(len(rows))
			}
			p.logger.Debug("inserted batch", "batch", i+1, "of", result.Batches, "rows", len(rows))
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
			break
		}
	}

	wg.Wait()
	return firstErr
}

// beginRun records a running entry in the ledger. Ledger problems are logged
// and never fail the ingest.
func (p *Pipeline) beginRun(ctx context.Context, doc *export.Document) *core.Run {
	if p.recorder == nil {
		return nil
	}

	previous, err := p.recorder.FindRunsByFingerprint(ctx, doc.Fingerprint)
	if err != nil {
		p.logger.Warn("failed to look up previous runs", "err", err)
	}
	for _, prev := range previous {
		if prev.Status == core.RunStatusSucceeded {
			p.logger.Warn("export was already ingested, rows will be inserted again",
				"previous_run", prev.Id,
				"finished", humanize.Time(prev.FinishedAt),
				"fingerprint", doc.Fingerprint)
			break
		}
	}

	run := &core.Run{
		Id:          uuid.NewString(),
		InputPath:   doc.Path,
		Fingerprint: doc.Fingerprint,
		Table:       p.table,
		Status:      core.RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}
	if err := p.recorder.AddRun(ctx, run); err != nil {
		p.logger.Warn("failed to record run", "err", err)
		return nil
	}
	return run
}

func (p *Pipeline) finishRun(run *core.Run, result *Result, runErr error) {
	if run == nil {
		return
	}

	run.Conversations = result.Conversations
	run.Rows = result.Rows
	run.Batches = result.Committed
	run.Inserted = result.Inserted
	run.FinishedAt = time.Now().UTC()
	switch {
	case runErr != nil:
		run.Status = core.RunStatusFailed
		run.Error = runErr.Error()
	case result.DryRun:
		run.Status = core.RunStatusDryRun
	default:
		run.Status = core.RunStatusSucceeded
	}

	// The run context may already be cancelled; the final state is still written.
	if err := p.recorder.UpdateRun(context.Background(), run); err != nil {
		p.logger.Warn("failed to update run", "run", run.Id, "err", err)
	}
}
