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


package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/poiesic/chathouse/core"
)

// Document is a decoded export file.
type Document struct {
	Path          string
	Size          int64
	Fingerprint   string
	Conversations []core.Conversation
}

// Load reads and decodes the export at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
		}
		return nil, fmt.Errorf("failed to read export %s: %w", path, err)
	}

	conversations, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Document{
		Path:          path,
		Size:          int64(len(data)),
		Fingerprint:   core.Fingerprint(data),
		Conversations: conversations,
	}, nil
}

// Decode parses export bytes. The top level must be a JSON array; a null
// document decodes to no conversations.
func Decode(data []byte) ([]core.Conversation, error) {
	var conversations []core.Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedExport, err)
	}
	return conversations, nil
}
