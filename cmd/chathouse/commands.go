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


package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/poiesic/chathouse"
	"github.com/poiesic/chathouse/clickhouse"
	"github.com/poiesic/chathouse/ingestion"
	"github.com/urfave/cli/v2"
)

func ingestCommand(c *cli.Context) error {
	ctx := c.Context

	inputPath, err := expandHome(c.String("input"))
	if err != nil {
		return err
	}

	// Configuration problems surface before any file or network I/O.
	batchSize := c.Int("batch-size")
	if batchSize <= 0 {
		return fmt.Errorf("%w: got %d", ingestion.ErrInvalidBatchSize, batchSize)
	}
	dryRun := c.Bool("dry-run")

	opts := []chathouse.IngesterOption{chathouse.WithLogger(slog.Default())}
	if !dryRun {
		storeConfig := clickhouse.NewConfig(
			clickhouse.WithBaseURL(c.String("clickhouse-url")),
			clickhouse.WithUser(c.String("clickhouse-user")),
			clickhouse.WithPassword(c.String("clickhouse-password")),
			clickhouse.WithDatabase(c.String("clickhouse-database")),
			clickhouse.WithTimeout(time.Duration(c.Int("clickhouse-timeout"))*time.Second),
			clickhouse.WithCompression(c.Bool("compress")),
		)
		if err := storeConfig.Validate(); err != nil {
			return fmt.Errorf("invalid ClickHouse configuration: %w", err)
		}
		opts = append(opts, chathouse.WithStore(storeConfig))
	}
	if ledger := c.String("ledger"); ledger != "" {
		ledger, err := expandHome(ledger)
		if err != nil {
			return err
		}
		opts = append(opts, chathouse.WithLedger(ledger))
	}

	ing, err := chathouse.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to set up ingester: %w", err)
	}
	defer ing.Close()

	if c.Bool("check") && ing.Client() != nil {
		if err := ing.Client().Ping(ctx); err != nil {
			return fmt.Errorf("ClickHouse is not reachable: %w", err)
		}
		slog.Info("ClickHouse is reachable", "url", c.String("clickhouse-url"))
	}

	pipelineOpts := []ingestion.Option{
		ingestion.WithBatchSize(batchSize),
		ingestion.WithDryRun(dryRun),
		ingestion.WithConcurrency(c.Int("concurrency")),
	}
	if c.Bool("progress") {
		pipelineOpts = append(pipelineOpts, ingestion.WithProgress(c.App.ErrWriter, batchSize))
	}

	pipeline, err := ing.NewPipeline(pipelineOpts...)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(ctx, inputPath)
	if err != nil {
		if result != nil {
			return fmt.Errorf("ingestion failed after %s of %s rows: %w",
				humanize.Comma(int64(result.Inserted)), humanize.Comma(int64(result.Rows)), err)
		}
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if result.DryRun {
		fmt.Fprintf(c.App.Writer, "Dry run: %s rows in %d batches from %d conversations\n",
			humanize.Comma(int64(result.Rows)), result.Batches, result.Conversations)
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Inserted %s rows in %d batches from %d conversations\n",
		humanize.Comma(int64(result.Inserted)), result.Committed, result.Conversations)
	return nil
}

func runsCommand(c *cli.Context) error {
	ledger, err := expandHome(c.String("ledger"))
	if err != nil {
		return err
	}
	if _, err := os.Stat(ledger); err != nil {
		return fmt.Errorf("ledger not found: %w", err)
	}

	ing, err := chathouse.New(chathouse.WithLedger(ledger), chathouse.WithLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer ing.Close()

	runs, err := ing.RunRepository().ListRuns(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(c.App.Writer, "No runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tINSERTED\tROWS\tTABLE\tINPUT")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			run.Id,
			humanize.Time(run.StartedAt),
			run.Status,
			humanize.Comma(int64(run.Inserted)),
			humanize.Comma(int64(run.Rows)),
			run.Table,
			run.InputPath)
		if run.Error != "" {
			fmt.Fprintf(tw, "\t\terror: %s\t\t\t\t\n", run.Error)
		}
	}
	return tw.Flush()
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
