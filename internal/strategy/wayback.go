package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/linkmill/linkmill/internal/classify"
	"github.com/linkmill/linkmill/internal/extract"
	"github.com/linkmill/linkmill/internal/fetch"
	"github.com/linkmill/linkmill/internal/sanitize"
)

// WaybackStrategy asks the archive availability API for the closest snapshot
// of a URL and extracts readable content from it. Last resort for pages the
// live web no longer serves.
type WaybackStrategy struct {
	Client *fetch.Client
	// Base of the archive API, e.g. https://archive.org.
	Base      string
	Extractor *extract.Extractor
}

func (s *WaybackStrategy) Name() string { return "WaybackFallback" }

type waybackAvailability struct {
	ArchivedSnapshots struct {
		Closest struct {
			Available bool   `json:"available"`
			URL       string `json:"url"`
		} `json:"closest"`
	} `json:"archived_snapshots"`
}

func (s *WaybackStrategy) Attempt(ctx context.Context, pageURL string) Outcome {
	api := fmt.Sprintf("%s/wayback/available?url=%s", strings.TrimRight(s.Base, "/"), url.QueryEscape(pageURL))
	res, err := s.Client.Get(ctx, api)
	if err != nil {
		return Retryable(fmt.Sprintf("archive availability lookup failed: %v", err))
	}
	var avail waybackAvailability
	if err := json.Unmarshal(res.Body, &avail); err != nil {
		return Retryable(fmt.Sprintf("archive availability response malformed: %v", err))
	}
	closest := avail.ArchivedSnapshots.Closest
	if !closest.Available || closest.URL == "" {
		return Retryable("no archived snapshot available")
	}

	snap, err := s.Client.GetWithHeaders(ctx, closest.URL, fetch.DefaultProfiles()[0].Headers())
	if err != nil {
		return Retryable(fmt.Sprintf("archived snapshot fetch failed: %v", err))
	}
	doc, err := s.Extractor.ReadableMarkdown(snap.Body, closest.URL)
	if err != nil {
		return Retryable(fmt.Sprintf("archived snapshot had no readable content: %v", err))
	}
	return Success(Result{
		Kind:         classify.KindGenericPage,
		Title:        doc.Title,
		Body:         sanitize.Text(doc.Body),
		SourceURL:    pageURL,
		StrategyUsed: s.Name(),
		Warnings:     []string{fmt.Sprintf("content retrieved from archived snapshot %s", closest.URL)},
	})
}
