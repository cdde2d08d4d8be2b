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


package batch

import (
	"fmt"
	"iter"
)

const (
	// DefaultSize is the default number of rows per insert request
	DefaultSize = 500
)

// Plan returns a lazy sequence of (index, batch) pairs over items.
// Every batch holds exactly size items except possibly the last.
// An empty input yields no batches. A size <= 0 is rejected.
func Plan[T any](items []T, size int) (iter.Seq2[int, []T], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, size)
	}

	return func(yield func(int, []T) bool) {
		for i, index := 0, 0; i < len(items); i, index = i+size, index+1 {
			end := min(i+size, len(items))
			// cap the slice so appends by the consumer cannot reach the next batch
			if !yield(index, items[i:end:end]) {
				return
			}
		}
	}, nil
}

// Count returns the number of batches Plan yields for n items.
func Count(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
