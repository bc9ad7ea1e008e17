// Package format renders extraction results into the Markdown artifact
// layout. Rendering is deterministic: the same result and timestamp always
// produce the same bytes, so repeated runs of a done task cannot churn the
// artifact store.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/linkmill/linkmill/internal/strategy"
)

// Render produces the artifact bytes for a successful extraction.
//
// Layout: title heading, a metadata block, any warnings gathered along the
// fallback path, the extracted body, and a provenance footer naming the
// strategy that produced the content.
func Render(r strategy.Result, extractedAt time.Time) []byte {
	var b strings.Builder

	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = r.SourceURL
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	fmt.Fprintf(&b, "- Source: %s\n", r.SourceURL)
	fmt.Fprintf(&b, "- Extracted: %s\n", extractedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Strategy: %s\n", r.StrategyUsed)
	b.WriteString("\n")

	if len(r.Warnings) > 0 {
		b.WriteString("## Notes\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	body := strings.TrimSpace(r.Body)
	b.WriteString(body)
	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "Retrieved by %s from %s\n", r.StrategyUsed, r.SourceURL)

	return []byte(b.String())
}
