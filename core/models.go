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

//go:generate go run ../cmd/musgen

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint returns the hex encoded 256 bit BLAKE2b digest of data.
// Two exports with the same bytes share a fingerprint.
func Fingerprint(data []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Conversation is a single entry of a ChatGPT export document.
type Conversation struct {
	ConversationID string  `json:"conversation_id"`
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Mapping        Mapping `json:"mapping"`
}

// Identifier returns conversation_id, falling back to id, then "".
func (c *Conversation) Identifier() string {
	if c.ConversationID != "" {
		return c.ConversationID
	}
	return c.ID
}

// Node is one vertex of a conversation's message tree.
// Parent is an opaque reference to another mapping key and is never resolved.
type Node struct {
	Message *Message `json:"message"`
	Parent  *string  `json:"parent"`
}

// MappingEntry pairs a node with the key it was stored under.
type MappingEntry struct {
	Key  string
	Node Node
}

// Mapping is the node table of a conversation, kept in source order.
// A key seen twice keeps its first position and its last value.
type Mapping []MappingEntry

// UnmarshalJSON decodes a JSON object into entries without losing key order.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("mapping must be an object, got %v", tok)
	}

	var entries Mapping
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected mapping key %v", keyTok)
		}

		var node Node
		if err := dec.Decode(&node); err != nil {
			return fmt.Errorf("mapping node %q: %w", key, err)
		}

		if i, seen := index[key]; seen {
			entries[i].Node = node
			continue
		}
		index[key] = len(entries)
		entries = append(entries, MappingEntry{Key: key, Node: node})
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = entries
	return nil
}

// Author identifies who wrote a message.
type Author struct {
	Role string `json:"role"`
}

// Content carries the typed body of a message.
type Content struct {
	ContentType string            `json:"content_type"`
	Parts       []json.RawMessage `json:"parts"`
}

// Message is the payload of a node. Loosely typed source fields are kept as
// raw JSON and coerced when a Row is built. Raw holds the compacted source
// object so it can be stored without loss.
type Message struct {
	ID         string          `json:"id"`
	Author     Author          `json:"author"`
	Content    Content         `json:"content"`
	CreateTime json.RawMessage `json:"create_time"`
	UpdateTime json.RawMessage `json:"update_time"`
	Weight     json.RawMessage `json:"weight"`
	Status     string          `json:"status"`
	EndTurn    json.RawMessage `json:"end_turn"`
	Metadata   json.RawMessage `json:"metadata"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and retains the full source object.
// A falsy non-object (false, 0, "", []) decodes to an empty message, which
// IsEmpty reports; any other non-object is an error.
func (m *Message) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] != '{' && !Truthy(trimmed) {
		*m = Message{}
		return nil
	}

	type plain Message
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw bytes.Buffer
	if err := json.Compact(&raw, data); err != nil {
		return err
	}
	*m = Message(p)
	m.Raw = raw.Bytes()
	return nil
}

// IsEmpty reports whether the message carries no fields at all.
func (m *Message) IsEmpty() bool {
	return m == nil || len(m.Raw) == 0 || bytes.Equal(m.Raw, []byte("{}"))
}

// Row is one flattened message, shaped like a chatgpt_messages table row.
type Row struct {
	ConversationID    string   `json:"conversation_id"`
	ConversationTitle string   `json:"conversation_title"`
	MessageID         string   `json:"message_id"`
	ParentID          *string  `json:"parent_id"`
	AuthorRole        string   `json:"author_role"`
	ContentType       string   `json:"content_type"`
	ContentText       string   `json:"content_text"`
	CreateTime        float64  `json:"create_time"`
	UpdateTime        float64  `json:"update_time"`
	Weight            *float64 `json:"weight"`
	Status            string   `json:"status"`
	EndTurn           uint8    `json:"end_turn"`
	MetadataJSON      string   `json:"metadata_json"`
	RawMessageJSON    string   `json:"raw_message_json"`
}

// RunStatus is the lifecycle state of a recorded ingestion run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
	RunStatusDryRun    RunStatus = "dry-run"
)

// Run is the ledger entry written for every ingestion attempt.
type Run struct {
	Id            string
	InputPath     string
	Fingerprint   string // BLAKE2b of the export file
	Table         string
	Status        RunStatus
	Conversations int
	Rows          int
	Batches       int // batches acknowledged by the store
	Inserted      int // rows acknowledged by the store
	Error         string
	StartedAt     time.Time
	FinishedAt    time.Time
}
