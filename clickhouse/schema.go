package clickhouse

import (
	"fmt"
	"regexp"
)

// TableName is the table rows are loaded into unless told otherwise.
const TableName = "chatgpt_messages"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// CreateTableStatement returns the DDL for the message table. The ordering
// key puts a conversation's messages next to each other in time order, so
// rows can be inserted in any order.
func CreateTableStatement(table string) (string, error) {
	if err := validateTable(table); err != nil {
		return "", err
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    conversation_id String,
    conversation_title String,
    message_id String,
    parent_id Nullable(String),
    author_role String,
    content_type String,
    content_text String,
    create_time Float64,
    update_time Float64,
    weight Nullable(Float64),
    status String,
    end_turn UInt8,
    metadata_json String,
    raw_message_json String
)
ENGINE = MergeTree
ORDER BY (conversation_id, create_time, message_id)`, table), nil
}

// InsertStatement returns the JSONEachRow insert statement for table.
func InsertStatement(table string) (string, error) {
	if err := validateTable(table); err != nil {
		return "", err
	}
	return "INSERT INTO " + table + " FORMAT JSONEachRow", nil
}

func validateTable(table string) error {
	if !identifierPattern.MatchString(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return nil
}
