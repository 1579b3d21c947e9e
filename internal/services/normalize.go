package services

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeName trims surrounding whitespace and applies Unicode NFC so that
// visually identical shop, person and item names compare equal.
func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
