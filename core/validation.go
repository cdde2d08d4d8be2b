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


package core

import (
	"encoding/json"
	"fmt"
	"math"
)

// ValidateRow checks that a Row can be encoded and accepted by the store.
//
// Validation rules:
//   - EndTurn must be 0 or 1
//   - CreateTime, UpdateTime and a non-nil Weight must be finite
//   - MetadataJSON and RawMessageJSON must hold valid JSON
//
// Identifiers are not validated; an empty message id is a legal value.
func ValidateRow(row *Row) error {
	if row == nil {
		return fmt.Errorf("%w: row is nil", ErrInvalidRow)
	}

	if row.EndTurn > 1 {
		return fmt.Errorf("%w: end_turn %d: %w", ErrInvalidRow, row.EndTurn, ErrInvalidIndicator)
	}

	if !isFinite(row.CreateTime) || !isFinite(row.UpdateTime) {
		return fmt.Errorf("%w: timestamps: %w", ErrInvalidRow, ErrNonFiniteFloat)
	}
	if row.Weight != nil && !isFinite(*row.Weight) {
		return fmt.Errorf("%w: weight: %w", ErrInvalidRow, ErrNonFiniteFloat)
	}

	if !json.Valid([]byte(row.MetadataJSON)) {
		return fmt.Errorf("%w: metadata_json: %w", ErrInvalidRow, ErrInvalidJSONColumn)
	}
	if !json.Valid([]byte(row.RawMessageJSON)) {
		return fmt.Errorf("%w: raw_message_json: %w", ErrInvalidRow, ErrInvalidJSONColumn)
	}

	return nil
}

// ValidateRun validates a ledger Run before it is persisted.
func ValidateRun(run *Run) error {
	if run == nil {
		return fmt.Errorf("%w: run is nil", ErrInvalidRun)
	}

	if run.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRun, ErrEmptyRunID)
	}

	if err := ValidateRunStatus(run.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRun, err)
	}

	if run.Inserted > run.Rows {
		return fmt.Errorf("%w: inserted %d exceeds rows %d", ErrInvalidRun, run.Inserted, run.Rows)
	}

	return nil
}

// ValidateRunStatus validates that a RunStatus has a known value.
func ValidateRunStatus(status RunStatus) error {
	switch status {
	case RunStatusRunning, RunStatusSucceeded, RunStatusFailed, RunStatusDryRun:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidRunStatus, status)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
