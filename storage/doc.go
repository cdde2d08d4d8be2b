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


// Package storage provides the storage abstraction for the ingestion run
// ledger.
//
// The ledger is a local audit log: one Run per ingestion attempt, with the
// export fingerprint, final counts and status. It never influences what is
// sent to ClickHouse; it only lets operators see what was loaded, when, and
// whether an export has been loaded before.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the interfaces defined here,
// so consumers do not couple to BadgerDB specifics:
//
//	backend, err := badger.OpenBackend("/path/to/ledger", false)
//	runs, err := badger.NewRunRepository(backend) // storage.RunRepository
//
// Use in tests with in-memory storage:
//
//	runs, backend, err := badger.NewMemoryRunRepository()
//
// # Thread Safety
//
// All repository implementations must be safe for concurrent use.
package storage
