package classify

import (
	"net/url"
	"regexp"
	"strings"
)

// SourceKind identifies which extraction policy applies to a URL. It is
// derived purely from the URL shape (host and path), never from content, so
// classification stays deterministic across polls.
type SourceKind string

const (
	KindDocument    SourceKind = "document"
	KindVideo       SourceKind = "video"
	KindPdf         SourceKind = "pdf"
	KindGenericPage SourceKind = "generic-page"
	KindUnknown     SourceKind = "unknown"
)

var docIDPattern = regexp.MustCompile(`/d/([A-Za-z0-9_-]+)`)

// videoHosts are the hosts served by the transcript backends.
var videoHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
}

// documentHosts serve structured documents addressable by a /d/<id> path
// segment.
var documentHosts = map[string]bool{
	"docs.google.com": true,
}

// Classify maps a raw URL to a SourceKind. It is total: malformed or
// non-HTTP input classifies as KindUnknown instead of failing, and anything
// else that is not a recognized document, video, or PDF URL falls back to
// KindGenericPage.
func Classify(rawURL string) SourceKind {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return KindUnknown
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return KindUnknown
	}
	host := strings.ToLower(u.Hostname())
	path := u.EscapedPath()

	if videoHosts[host] {
		return KindVideo
	}
	if documentHosts[host] {
		// Spreadsheet links are the tabular source itself, not content; there
		// is no extraction strategy for them.
		if strings.HasPrefix(path, "/spreadsheets/") {
			return KindUnknown
		}
		if docIDPattern.MatchString(path) {
			return KindDocument
		}
		return KindGenericPage
	}
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return KindPdf
	}
	return KindGenericPage
}

// DocumentID extracts the /d/<id> path segment from a document URL. It
// returns the empty string when the URL carries no document id.
func DocumentID(rawURL string) string {
	m := docIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}
