package strategy

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/linkmill/linkmill/internal/classify"
	"github.com/linkmill/linkmill/internal/fetch"
	"github.com/linkmill/linkmill/internal/sanitize"
)

// PdfStrategy downloads a byte stream and extracts the embedded text per
// page, concatenated in page order with page-break markers. The fetch client
// bounds both the download size and the timeout.
type PdfStrategy struct {
	Client *fetch.Client
}

func (s *PdfStrategy) Name() string { return "PdfStrategy" }

func (s *PdfStrategy) Attempt(ctx context.Context, url string) Outcome {
	res, err := s.Client.Get(ctx, sanitize.CleanURL(url))
	if err != nil {
		switch fetch.StatusCode(err) {
		case http.StatusNotFound:
			return Fatal(FailNotFound, fmt.Sprintf("PDF not found: %v", err))
		case http.StatusUnauthorized, http.StatusForbidden:
			return Fatal(FailPermission, fmt.Sprintf("PDF access denied: %v", err))
		default:
			return Retryable(fmt.Sprintf("PDF download failed: %v", err))
		}
	}

	body, warnings, err := pdfText(res.Body)
	if err != nil {
		return Fatal(FailMalformedContent, err.Error())
	}
	return Success(Result{
		Kind:         classify.KindPdf,
		Body:         body,
		SourceURL:    url,
		StrategyUsed: s.Name(),
		Warnings:     warnings,
	})
}

// pdfText extracts per-page text from PDF bytes. Pages that fail to parse
// are skipped with a warning; a stream that is not a well-formed PDF is an
// error.
func pdfText(raw []byte) (string, []string, error) {
	if !bytes.HasPrefix(raw, []byte("%PDF-")) {
		return "", nil, fmt.Errorf("malformed PDF: missing %%PDF header")
	}
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", nil, fmt.Errorf("malformed PDF: %v", err)
	}

	var b strings.Builder
	var warnings []string
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d could not be parsed", i))
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			fmt.Fprintf(&b, "\n\n--- page %d ---\n\n", i)
		}
		b.WriteString(text)
	}
	body := sanitize.Text(b.String())
	if body == "" {
		return "", warnings, fmt.Errorf("PDF contains no extractable text")
	}
	return body, warnings, nil
}
