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


package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/chathouse/core"
	"github.com/poiesic/chathouse/storage"
)

// RunRepository implements storage.RunRepository for BadgerDB.
type RunRepository struct {
	backend *Backend
}

var _ storage.RunRepository = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository.
func NewRunRepository(backend *Backend) (storage.RunRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &RunRepository{
		backend: backend,
	}, nil
}

// Close is a no-op; the backend is closed by its owner.
func (r *RunRepository) Close() error {
	return nil
}

// AddRun stores a new run together with its index entries.
func (r *RunRepository) AddRun(ctx context.Context, run *core.Run) error {
	if err := core.ValidateRun(run); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRunKey(run.Id)
		if _, err := tx.Get(key); err == nil {
			return fmt.Errorf("%w: run %s", storage.ErrDuplicateKey, run.Id)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := tx.Set(key, storage.MarshalRun(run)); err != nil {
			return err
		}
		if err := r.setIndexes(tx, run); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// UpdateRun replaces an existing run. StartedAt and Fingerprint are part of
// the index keys; the old entries are rewritten when they change.
func (r *RunRepository) UpdateRun(ctx context.Context, run *core.Run) error {
	if err := core.ValidateRun(run); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRunKey(run.Id)
		old, err := r.readRun(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return fmt.Errorf("%w: run %s", storage.ErrNotFound, run.Id)
		}

		if !old.StartedAt.Equal(run.StartedAt) || old.Fingerprint != run.Fingerprint {
			if err := tx.Delete(makeRunStartedKey(old.StartedAt, old.Id)); err != nil {
				return err
			}
			if err := tx.Delete(makeRunFingerprintKey(old.Fingerprint, old.StartedAt, old.Id)); err != nil {
				return err
			}
			if err := r.setIndexes(tx, run); err != nil {
				return err
			}
		}

		if err := tx.Set(key, storage.MarshalRun(run)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetRun retrieves a run by id.
func (r *RunRepository) GetRun(ctx context.Context, id string) (*core.Run, error) {
	var result *core.Run
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readRun(tx, makeRunKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: run %s", storage.ErrNotFound, id)
		}
		return nil
	}, false)
	return result, err
}

// ListRuns returns up to limit runs, most recently started first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]*core.Run, error) {
	return r.scanNewestFirst(ctx, []byte(runStartedPrefix), limit)
}

// FindRunsByFingerprint returns every run of one export, newest first.
func (r *RunRepository) FindRunsByFingerprint(ctx context.Context, fingerprint string) ([]*core.Run, error) {
	return r.scanNewestFirst(ctx, makeRunFingerprintPrefix(fingerprint), 0)
}

// scanNewestFirst walks an index prefix backwards and resolves each entry
// to its run.
func (r *RunRepository) scanNewestFirst(ctx context.Context, prefix []byte, limit int) ([]*core.Run, error) {
	var runs []*core.Run
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Reverse iteration must seek past the last key carrying the prefix.
		seek := append(append([]byte{}, prefix...), 0xFF)
		for iter.Seek(seek); iter.ValidForPrefix(prefix); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			id, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			run, err := r.readRun(tx, makeRunKey(string(id)))
			if err != nil {
				return err
			}
			if run == nil {
				continue
			}

			runs = append(runs, run)
			if limit > 0 && len(runs) >= limit {
				break
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *RunRepository) setIndexes(tx *badger.Txn, run *core.Run) error {
	id := []byte(run.Id)
	if err := tx.Set(makeRunStartedKey(run.StartedAt, run.Id), id); err != nil {
		return err
	}
	return tx.Set(makeRunFingerprintKey(run.Fingerprint, run.StartedAt, run.Id), id)
}

// readRun returns nil, nil when the key does not exist.
func (r *RunRepository) readRun(tx *badger.Txn, key []byte) (*core.Run, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var run *core.Run
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		run, unmarshalErr = storage.UnmarshalRun(val)
		return unmarshalErr
	})
	return run, err
}
