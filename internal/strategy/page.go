package strategy

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/linkmill/linkmill/internal/classify"
	"github.com/linkmill/linkmill/internal/extract"
	"github.com/linkmill/linkmill/internal/fetch"
	"github.com/linkmill/linkmill/internal/sanitize"
)

// ImpersonationStrategy fetches a generic page with rotating browser header
// profiles and extracts the readable content. Hosts that answer 401/403 to
// one fingerprint often accept another, so blocked profiles are rotated
// before the strategy gives up. A PDF discovered mid-flight by content type
// is handled inline.
type ImpersonationStrategy struct {
	Client    *fetch.Client
	Extractor *extract.Extractor
	// Profiles to rotate through. Empty means fetch.DefaultProfiles.
	Profiles []fetch.Profile
	// ProfileDelay spaces out successive profile attempts so the rotation
	// does not look like rapid-fire probing. Zero disables the pause.
	ProfileDelay time.Duration
}

func (s *ImpersonationStrategy) Name() string { return "Impersonation" }

func (s *ImpersonationStrategy) Attempt(ctx context.Context, rawURL string) Outcome {
	cleanURL := sanitize.CleanURL(rawURL)
	profiles := s.Profiles
	if len(profiles) == 0 {
		profiles = fetch.DefaultProfiles()
	}

	var blocked []string
	for i, profile := range profiles {
		if i > 0 && s.ProfileDelay > 0 {
			select {
			case <-ctx.Done():
				return Retryable(fmt.Sprintf("fetch cancelled: %v", ctx.Err()))
			case <-time.After(s.ProfileDelay):
			}
		}

		res, err := s.Client.GetWithHeaders(ctx, cleanURL, profile.Headers())
		if err != nil {
			switch fetch.StatusCode(err) {
			case http.StatusUnauthorized, http.StatusForbidden:
				blocked = append(blocked, profile.Name)
				continue
			case http.StatusNotFound:
				return Fatal(FailNotFound, fmt.Sprintf("page not found: %v", err))
			default:
				return Retryable(fmt.Sprintf("page fetch failed: %v", err))
			}
		}

		return s.extractResponse(rawURL, cleanURL, res, blocked)
	}
	return Retryable(fmt.Sprintf("all browser profiles blocked (%s)", strings.Join(blocked, ", ")))
}

func (s *ImpersonationStrategy) extractResponse(rawURL, cleanURL string, res *fetch.Result, blocked []string) Outcome {
	var warnings []string
	for _, name := range blocked {
		warnings = append(warnings, fmt.Sprintf("profile %s was blocked", name))
	}

	ct := strings.ToLower(res.ContentType)
	switch {
	case strings.Contains(ct, "application/pdf") || strings.HasSuffix(strings.ToLower(cleanURL), ".pdf"):
		// Content-type hint resolved here rather than at classification time.
		body, pdfWarnings, err := pdfText(res.Body)
		if err != nil {
			return Retryable(fmt.Sprintf("failed to extract text from PDF: %v", err))
		}
		warnings = append(warnings, "detected PDF content on a generic page")
		warnings = append(warnings, pdfWarnings...)
		return Success(Result{
			Kind:         classify.KindGenericPage,
			Body:         body,
			SourceURL:    rawURL,
			StrategyUsed: s.Name(),
			Warnings:     warnings,
		})

	case strings.HasPrefix(ct, "text/html"), strings.HasPrefix(ct, "application/xhtml+xml"), strings.HasPrefix(ct, "text/plain"), ct == "":
		if strings.HasPrefix(ct, "text/plain") {
			body := sanitize.Text(string(res.Body))
			if body == "" {
				return Retryable("extracted text was empty")
			}
			return Success(Result{
				Kind:         classify.KindGenericPage,
				Body:         body,
				SourceURL:    rawURL,
				StrategyUsed: s.Name(),
				Warnings:     warnings,
			})
		}
		doc, err := s.Extractor.ReadableMarkdown(res.Body, cleanURL)
		if err != nil {
			return Retryable("extracted text was empty")
		}
		body := sanitize.Text(doc.Body)
		if body == "" {
			return Retryable("extracted text was empty")
		}
		return Success(Result{
			Kind:         classify.KindGenericPage,
			Title:        doc.Title,
			Body:         body,
			SourceURL:    rawURL,
			StrategyUsed: s.Name(),
			Warnings:     warnings,
		})

	default:
		return Retryable(fmt.Sprintf("unsupported content type: %s", res.ContentType))
	}
}
