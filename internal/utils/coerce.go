// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNotInteger is returned when a value cannot be read as an integer.
var ErrNotInteger = errors.New("value is not an integer")

// ParseID parses a positive decimal identifier such as a path parameter.
func ParseID(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrNotInteger
	}
	return n, nil
}

// ParseInt reads a raw JSON value as an integer. Numbers are truncated toward
// zero, booleans map to 0/1 and strings are accepted when they hold a decimal
// integer (surrounding whitespace is ignored). Absent values, null, objects,
// arrays and non-numeric strings yield ErrNotInteger.
//
// Example:
//
//	n, _ := utils.ParseInt(json.RawMessage(`"42"`)) // 42
//	n, _ = utils.ParseInt(json.RawMessage(`12.9`))  // 12
func ParseInt(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, ErrNotInteger
	}
	switch raw[0] {
	case 't':
		if string(raw) == "true" {
			return 1, nil
		}
	case 'f':
		if string(raw) == "false" {
			return 0, nil
		}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, ErrNotInteger
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		return n, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return parseNumber(string(raw))
	}
	return 0, ErrNotInteger
}

// IntOrZero is ParseInt with falsy values (absent, null, "", 0, false)
// mapped to 0.
func IntOrZero(raw json.RawMessage) (int64, error) {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", `""`, "false":
		return 0, nil
	}
	return ParseInt(raw)
}

func parseNumber(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotInteger
	}
	f = math.Trunc(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, ErrNotInteger
	}
	return int64(f), nil
}
