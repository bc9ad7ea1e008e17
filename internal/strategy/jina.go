package strategy

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/linkmill/linkmill/internal/classify"
	"github.com/linkmill/linkmill/internal/fetch"
	"github.com/linkmill/linkmill/internal/sanitize"
)

// JinaReaderStrategy fetches a page through a reader proxy that returns the
// readable content as plain text. It is the second line for generic pages
// and the internal fallback for video transcripts.
type JinaReaderStrategy struct {
	Client *fetch.Client
	// Base of the reader proxy, e.g. https://r.jina.ai.
	Base string
	// MinChars rejects proxy responses too short to be real content. Zero
	// means default (200).
	MinChars int
}

func (s *JinaReaderStrategy) Name() string { return "JinaFallback" }

func (s *JinaReaderStrategy) Attempt(ctx context.Context, url string) Outcome {
	min := s.MinChars
	if min <= 0 {
		min = 200
	}
	proxied := strings.TrimRight(s.Base, "/") + "/" + url
	res, err := s.Client.GetWithHeaders(ctx, proxied, fetch.DefaultProfiles()[0].Headers())
	if err != nil {
		if fetch.StatusCode(err) == http.StatusTooManyRequests {
			return Fatal(FailQuota, fmt.Sprintf("reader proxy quota exhausted: %v", err))
		}
		return Retryable(fmt.Sprintf("reader proxy fetch failed: %v", err))
	}
	body := sanitize.Text(string(res.Body))
	if len(body) < min {
		return Retryable(fmt.Sprintf("reader proxy returned too little content (%d chars)", len(body)))
	}
	return Success(Result{
		Kind:         classify.KindGenericPage,
		Body:         body,
		SourceURL:    url,
		StrategyUsed: s.Name(),
		Warnings:     []string{"content retrieved via reader proxy"},
	})
}
