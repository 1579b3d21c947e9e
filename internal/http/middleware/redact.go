// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the scrubber used by Logger to keep obvious PII out of
// access logs. Bodies are never logged; only the query string and request
// headers pass through here.
package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

// RedactOptions configures additional scrub behavior.
//
// MaskHeaders names extra headers whose values are replaced with
// "[REDACTED]". Matching is case-insensitive and merged with the built-in
// set (Authorization, Cookie, Set-Cookie).
type RedactOptions struct {
	MaskHeaders []string
}

// UUIDs go first so the phone pattern cannot eat their digit groups.
var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// Headers that carry correlation or idempotency ids are kept verbatim.
var passthroughHeaders = map[string]struct{}{
	strings.ToLower(requestIDHeader):      {},
	strings.ToLower(HeaderIdempotencyKey): {},
}

type redactor struct {
	masked map[string]struct{}
}

func newRedactor(opts RedactOptions) *redactor {
	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}
	return &redactor{masked: masked}
}

// scrub replaces ids, e-mail addresses and phone numbers in s.
func (r *redactor) scrub(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// headers returns a flattened, scrubbed copy of h.
func (r *redactor) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		lk := strings.ToLower(k)
		val := strings.Join(vv, ", ")
		switch {
		case hasKey(r.masked, lk):
			out[k] = "[REDACTED]"
		case hasKey(passthroughHeaders, lk):
			out[k] = val
		default:
			out[k] = r.scrub(val)
		}
	}
	return out
}

func hasKey(m map[string]struct{}, k string) bool {
	_, ok := m[k]
	return ok
}
