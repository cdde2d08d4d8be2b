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


package storage

import (
	"context"

	"github.com/poiesic/chathouse/core"
)

// RunRepository records ingestion runs.
type RunRepository interface {
	// AddRun stores a new run. Returns ErrDuplicateKey if the id exists.
	AddRun(ctx context.Context, run *core.Run) error

	// UpdateRun replaces an existing run.
	// Returns ErrNotFound if the run doesn't exist.
	UpdateRun(ctx context.Context, run *core.Run) error

	// GetRun retrieves a run by id.
	// Returns ErrNotFound if the run doesn't exist.
	GetRun(ctx context.Context, id string) (*core.Run, error)

	// ListRuns returns up to limit runs, most recently started first.
	// A limit <= 0 returns every run.
	ListRuns(ctx context.Context, limit int) ([]*core.Run, error)

	// FindRunsByFingerprint returns every run of the export with the given
	// fingerprint, most recently started first.
	FindRunsByFingerprint(ctx context.Context, fingerprint string) ([]*core.Run, error)

	// Close releases resources held by the repository.
	Close() error
}
