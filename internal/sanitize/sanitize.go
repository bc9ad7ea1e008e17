// Package sanitize normalizes extracted text and cleans fetch URLs before
// they hit the network.
package sanitize

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// trackingParams are query parameters stripped before fetching. They add
// nothing to content identity and tend to trip bot detection.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
}

// CleanURL removes tracking parameters from a URL. Unparseable input is
// returned unchanged; the classifier has already routed those to an
// unsupported terminal outcome.
func CleanURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	changed := false
	for key := range q {
		if trackingParams[strings.ToLower(key)] {
			q.Del(key)
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Text strips control characters and binary junk from extracted text, applies
// Unicode NFC normalization, and trims surrounding whitespace. Newlines and
// tabs survive; carriage returns do not.
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r == '\r':
			// dropped; callers join lines with \n
		case unicode.IsControl(r):
			// dropped
		case r == unicode.ReplacementChar:
			// decoding junk
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
