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
	"bytes"
	"encoding/json"
	"iter"
	"strings"

	"github.com/poiesic/chathouse/core"
)

const (
	defaultRole        = "unknown"
	defaultContentType = "unknown"
	partSeparator      = "\n\n"
)

// Stats summarises one extraction pass.
type Stats struct {
	Conversations int
	Nodes         int
	Skipped       int // nodes without a message
	Rows          int
}

// FlattenConversation yields one Row per mapping node that carries a
// message. The sequence walks the mapping once per iteration and has no side
// effects.
func FlattenConversation(conv *core.Conversation) iter.Seq[core.Row] {
	return func(yield func(core.Row) bool) {
		conversationID := conv.Identifier()
		for _, entry := range conv.Mapping {
			msg := entry.Node.Message
			if msg.IsEmpty() {
				continue
			}
			if !yield(buildRow(conversationID, conv.Title, entry.Key, entry.Node.Parent, msg)) {
				return
			}
		}
	}
}

// CollectRows flattens every conversation, keeping conversation order and
// node order within a conversation.
func CollectRows(conversations []core.Conversation) []core.Row {
	rows, _ := CollectRowsWithStats(conversations)
	return rows
}

// CollectRowsWithStats is CollectRows plus counters for logging.
func CollectRowsWithStats(conversations []core.Conversation) ([]core.Row, Stats) {
	stats := Stats{Conversations: len(conversations)}
	var rows []core.Row
	for i := range conversations {
		stats.Nodes += len(conversations[i].Mapping)
		for row := range FlattenConversation(&conversations[i]) {
			rows = append(rows, row)
		}
	}
	stats.Rows = len(rows)
	stats.Skipped = stats.Nodes - stats.Rows
	return rows, stats
}

func buildRow(conversationID, title, nodeKey string, parent *string, msg *core.Message) core.Row {
	messageID := msg.ID
	if messageID == "" {
		messageID = nodeKey
	}

	role := msg.Author.Role
	if role == "" {
		role = defaultRole
	}

	contentType := msg.Content.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	var parentID *string
	if parent != nil {
		p := *parent
		parentID = &p
	}

	return core.Row{
		ConversationID:    conversationID,
		ConversationTitle: title,
		MessageID:         messageID,
		ParentID:          parentID,
		AuthorRole:        role,
		ContentType:       contentType,
		ContentText:       joinParts(msg.Content.Parts),
		CreateTime:        core.ToFloat(msg.CreateTime),
		UpdateTime:        core.ToFloat(msg.UpdateTime),
		Weight:            core.NullableFloat(msg.Weight),
		Status:            msg.Status,
		EndTurn:           core.Indicator(msg.EndTurn),
		MetadataJSON:      core.CompactJSON(msg.Metadata, "{}"),
		RawMessageJSON:    string(msg.Raw),
	}
}

func joinParts(parts []json.RawMessage) string {
	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		texts = append(texts, partText(part))
	}
	return strings.Join(texts, partSeparator)
}

// partText renders one content part. Strings pass through, objects with a
// "text" key contribute that value, everything else is kept as compact JSON.
func partText(part json.RawMessage) string {
	part = bytes.TrimSpace(part)
	if len(part) == 0 {
		return ""
	}

	switch part[0] {
	case '"':
		var s string
		if err := json.Unmarshal(part, &s); err == nil {
			return s
		}
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(part, &obj); err == nil {
			if text, ok := obj["text"]; ok {
				return textValue(text)
			}
		}
	}

	return compact(part)
}

// textValue renders the value of a part's "text" key. Non-string values are
// kept as compact JSON.
func textValue(text json.RawMessage) string {
	text = bytes.TrimSpace(text)
	if len(text) > 0 && text[0] == '"' {
		var s string
		if err := json.Unmarshal(text, &s); err == nil {
			return s
		}
	}
	return compact(text)
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
