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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	slogmulti "github.com/samber/slog-multi"
	"github.com/urfave/cli/v2"
)

const defaultInput = "~/cosmocrat-core/data/ingest/ChatGPT-Data/conversations.json"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		slog.Error("chathouse failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "chathouse",
		Usage: "Load ChatGPT conversation exports into ClickHouse",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"verbosity", "l"},
				Usage:   "Set logging level (debug, info, warning, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log output format (text, json)",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Also append JSON logs to this file",
			},
		},
		Before: setupLogger,
		After:  closeLogFile,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Flatten an export and insert its messages into ClickHouse",
				Action: ingestCommand,
				Flags:  ingestFlags(),
			},
			{
				Name:   "runs",
				Usage:  "List recorded ingestion runs",
				Action: runsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "ledger",
						Usage:    "Path to the BadgerDB run ledger directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show (0 for all)",
						Value: 20,
					},
				},
			},
		},
	}
}

func ingestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Path to conversations.json",
			Value:   defaultInput,
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of rows per insert request",
			Value: 500,
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Prepare rows without contacting ClickHouse",
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "Maximum number of insert requests in flight",
			Value: 1,
		},
		&cli.BoolFlag{
			Name:  "compress",
			Usage: "Gzip insert request bodies",
		},
		&cli.StringFlag{
			Name:  "ledger",
			Usage: "Record the run in a BadgerDB ledger at this directory",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "Print insert progress to stderr",
		},
		&cli.BoolFlag{
			Name:  "check",
			Usage: "Ping ClickHouse before ingesting",
		},
		&cli.StringFlag{
			Name:    "clickhouse-url",
			Usage:   "ClickHouse HTTP interface URL",
			Value:   "http://localhost:8123",
			EnvVars: []string{"CLICKHOUSE_URL"},
		},
		&cli.StringFlag{
			Name:    "clickhouse-user",
			Usage:   "ClickHouse user",
			EnvVars: []string{"CLICKHOUSE_USER"},
		},
		&cli.StringFlag{
			Name:    "clickhouse-password",
			Usage:   "ClickHouse password",
			EnvVars: []string{"CLICKHOUSE_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "clickhouse-database",
			Usage:   "ClickHouse database",
			Value:   "default",
			EnvVars: []string{"CLICKHOUSE_DATABASE"},
		},
		&cli.IntFlag{
			Name:    "clickhouse-timeout",
			Usage:   "Per request timeout in seconds",
			Value:   180,
			EnvVars: []string{"CLICKHOUSE_HTTP_TIMEOUT"},
		},
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warning, warn, error", s)
}

func setupLogger(c *cli.Context) error {
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(c.String("log-format")) {
	case "text":
		handler = slog.NewTextHandler(c.App.ErrWriter, opts)
	case "json":
		handler = slog.NewJSONHandler(c.App.ErrWriter, opts)
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.String("log-format"))
	}

	if path := c.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		if c.App.Metadata == nil {
			c.App.Metadata = map[string]any{}
		}
		c.App.Metadata["logFile"] = f
		handler = slogmulti.Fanout(handler, slog.NewJSONHandler(f, opts))
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

func closeLogFile(c *cli.Context) error {
	if f, ok := c.App.Metadata["logFile"].(io.Closer); ok {
		delete(c.App.Metadata, "logFile")
		return f.Close()
	}
	return nil
}
