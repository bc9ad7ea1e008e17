package strategy

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/linkmill/linkmill/internal/classify"
	"github.com/linkmill/linkmill/internal/fetch"
	"github.com/linkmill/linkmill/internal/sanitize"
)

// videoIDPattern matches the 11-character video id in watch URLs and
// short-host paths.
var videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})(?:[&?#/]|$)`)

// VideoStrategy retrieves a video transcript from the timed-text endpoint.
// When the transcript is missing or the endpoint fails, it falls back to the
// reader proxy before surfacing a failure — both steps target the same
// source kind, so that fallback lives inside the strategy rather than the
// outer chain.
type VideoStrategy struct {
	Client *fetch.Client
	// Base of the transcript endpoint, e.g. https://www.youtube.com.
	Base string
	// Language of the requested transcript track. Empty means "en".
	Language string
	// Reader is the internal secondary transcript backend. Optional.
	Reader *JinaReaderStrategy
}

func (s *VideoStrategy) Name() string { return "VideoStrategy" }

// timedText is the transcript XML: <transcript><text ...>cue</text>...</transcript>.
type timedText struct {
	XMLName xml.Name `xml:"transcript"`
	Cues    []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

func (s *VideoStrategy) Attempt(ctx context.Context, url string) Outcome {
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil {
		return Fatal(FailMalformedURL, "no video id in URL")
	}
	videoID := m[1]

	body, err := s.fetchTranscript(ctx, videoID)
	if err == nil && body != "" {
		return Success(Result{
			Kind:         classify.KindVideo,
			Body:         body,
			SourceURL:    url,
			StrategyUsed: s.Name(),
		})
	}
	reason := "transcript track is empty"
	if err != nil {
		reason = err.Error()
	}

	if s.Reader != nil {
		out := s.Reader.Attempt(ctx, url)
		if out.Kind == OutcomeSuccess {
			r := out.Result
			r.Kind = classify.KindVideo
			r.SourceURL = url
			r.StrategyUsed = s.Name()
			r.Warnings = append([]string{fmt.Sprintf("transcript API failed (%s); used reader proxy", reason)}, r.Warnings...)
			return Success(r)
		}
		return Retryable(fmt.Sprintf("transcript unavailable via API (%s) or reader proxy (%s)", reason, out.Reason))
	}
	return Retryable(fmt.Sprintf("transcript unavailable: %s", reason))
}

func (s *VideoStrategy) fetchTranscript(ctx context.Context, videoID string) (string, error) {
	lang := s.Language
	if lang == "" {
		lang = "en"
	}
	endpoint := fmt.Sprintf("%s/api/timedtext?lang=%s&v=%s", strings.TrimRight(s.Base, "/"), lang, videoID)
	res, err := s.Client.Get(ctx, endpoint)
	if err != nil {
		return "", fmt.Errorf("timed-text fetch: %w", err)
	}
	var tt timedText
	if err := xml.Unmarshal(res.Body, &tt); err != nil {
		return "", fmt.Errorf("timed-text parse: %w", err)
	}
	parts := make([]string, 0, len(tt.Cues))
	for _, cue := range tt.Cues {
		text := strings.TrimSpace(html.UnescapeString(cue.Value))
		if text != "" {
			parts = append(parts, text)
		}
	}
	return sanitize.Text(strings.Join(parts, " ")), nil
}
