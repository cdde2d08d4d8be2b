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

import "errors"

// Domain validation errors
var (
	// ErrInvalidRow indicates a Row failed validation.
	ErrInvalidRow = errors.New("invalid row")

	// ErrInvalidRun indicates a Run failed validation.
	ErrInvalidRun = errors.New("invalid run")

	// ErrInvalidIndicator indicates a UInt8 flag outside of 0/1.
	ErrInvalidIndicator = errors.New("indicator must be 0 or 1")

	// ErrInvalidJSONColumn indicates a JSON text column does not hold valid JSON.
	ErrInvalidJSONColumn = errors.New("column does not hold valid JSON")

	// ErrNonFiniteFloat indicates a NaN or infinite float, which JSON cannot carry.
	ErrNonFiniteFloat = errors.New("float must be finite")

	// ErrEmptyRunID indicates the Run Id field is empty.
	ErrEmptyRunID = errors.New("run id cannot be empty")

	// ErrInvalidRunStatus indicates an unknown RunStatus value.
	ErrInvalidRunStatus = errors.New("invalid run status")
)
