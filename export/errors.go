package export

import "errors"

var (
	// ErrNotFound is returned when the export file does not exist.
	ErrNotFound = errors.New("export file not found")

	// ErrMalformedExport is returned when the export cannot be decoded as a
	// list of conversations.
	ErrMalformedExport = errors.New("malformed export")
)
