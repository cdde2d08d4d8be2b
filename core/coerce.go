package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToFloat coerces a loosely typed JSON value to a float64.
//
// Absent, null, false, the empty string and anything that does not parse as
// a finite number become 0. Numbers and numeric strings parse as float64,
// true becomes 1.
func ToFloat(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}

	switch raw[0] {
	case 'n', 'f':
		return 0
	case 't':
		return 1
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		return parseFinite(strings.TrimSpace(s))
	case '{', '[':
		return 0
	default:
		return parseFinite(string(raw))
	}
}

func parseFinite(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// NullableFloat returns the value of a JSON number or numeric string, and
// nil for anything else, including non-finite values.
func NullableFloat(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var s string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		s = string(raw)
	default:
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Truthy reports whether a JSON value is truthy: everything except absent,
// null, false, numeric zero, "", [] and {}.
func Truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}

	switch raw[0] {
	case 'n', 'f':
		return false
	case 't':
		return true
	case '"':
		return !bytes.Equal(raw, []byte(`""`))
	case '{', '[':
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return false
		}
		switch c := v.(type) {
		case map[string]any:
			return len(c) > 0
		case []any:
			return len(c) > 0
		}
		return false
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && f != 0
	}
}

// Indicator maps truthiness to the 0/1 encoding used by UInt8 columns.
func Indicator(raw json.RawMessage) uint8 {
	if Truthy(raw) {
		return 1
	}
	return 0
}

// CompactJSON returns raw as compact JSON text, or fallback when raw is
// falsy (absent, null, false, 0, "", [] or {}).
func CompactJSON(raw json.RawMessage, fallback string) string {
	if !Truthy(raw) {
		return fallback
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return fallback
	}
	return buf.String()
}
