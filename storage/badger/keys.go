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
	"encoding/binary"
	"time"
)

// Key prefixes for different data types
const (
	runPrefix            = "run:"
	runStartedPrefix     = "runs:"
	runFingerprintPrefix = "runf:"
)

// makeRunKey generates the primary key for a run.
func makeRunKey(id string) []byte {
	return []byte(runPrefix + id)
}

// makeRunStartedKey generates a composite key for the start time index.
// Format: prefix + started (8 bytes, big endian) + id
func makeRunStartedKey(started time.Time, id string) []byte {
	buf := make([]byte, 0, len(runStartedPrefix)+8+len(id))
	buf = append(buf, runStartedPrefix...)
	// BigEndian keeps lexicographic order equal to time order
	buf = binary.BigEndian.AppendUint64(buf, uint64(started.UnixMicro()))
	return append(buf, id...)
}

// makeRunFingerprintKey generates a composite key for the fingerprint index.
// Format: prefix + fingerprint + ":" + started (8 bytes, big endian) + id
func makeRunFingerprintKey(fingerprint string, started time.Time, id string) []byte {
	prefix := makeRunFingerprintPrefix(fingerprint)
	buf := make([]byte, 0, len(prefix)+8+len(id))
	buf = append(buf, prefix...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(started.UnixMicro()))
	return append(buf, id...)
}

// makeRunFingerprintPrefix generates the scan prefix for one fingerprint.
func makeRunFingerprintPrefix(fingerprint string) []byte {
	return []byte(runFingerprintPrefix + fingerprint + ":")
}
