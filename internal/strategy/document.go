package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/linkmill/linkmill/internal/classify"
	"github.com/linkmill/linkmill/internal/creds"
	"github.com/linkmill/linkmill/internal/fetch"
	"github.com/linkmill/linkmill/internal/sanitize"
)

// DocumentStrategy fetches a structured document from the document host API
// and flattens its body and tabs into ordered Markdown blocks. Section
// nesting survives as heading levels; embedded tables become pipe rows.
type DocumentStrategy struct {
	Client *fetch.Client
	// BaseURL of the documents API, e.g. https://docs.googleapis.com.
	BaseURL string
	Creds   creds.Provider
}

func (s *DocumentStrategy) Name() string { return "DocumentStrategy" }

func (s *DocumentStrategy) Attempt(ctx context.Context, url string) Outcome {
	id := classify.DocumentID(url)
	if id == "" {
		return Fatal(FailMalformedURL, "no document id in URL")
	}

	headers := map[string]string{"Accept": "application/json"}
	if s.Creds != nil {
		token, err := s.Creds.Token(ctx)
		if err != nil {
			return Retryable(fmt.Sprintf("document credentials unavailable: %v", err))
		}
		headers["Authorization"] = "Bearer " + token
	}

	endpoint := fmt.Sprintf("%s/v1/documents/%s?includeTabsContent=true", strings.TrimRight(s.BaseURL, "/"), id)
	res, err := s.Client.GetWithHeaders(ctx, endpoint, headers)
	if err != nil {
		switch fetch.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return Fatal(FailPermission, fmt.Sprintf("document access denied: %v", err))
		case http.StatusNotFound:
			return Fatal(FailNotFound, fmt.Sprintf("document not found: %v", err))
		default:
			return Retryable(fmt.Sprintf("document fetch failed: %v", err))
		}
	}

	var doc apiDocument
	if err := json.Unmarshal(res.Body, &doc); err != nil {
		return Fatal(FailMalformedContent, fmt.Sprintf("document response is not valid JSON: %v", err))
	}

	var b strings.Builder
	var warnings []string
	flattenBody(&b, doc.Body)
	for _, tab := range doc.Tabs {
		flattenTab(&b, tab, 2)
	}
	body := sanitize.Text(b.String())
	if body == "" {
		return Fatal(FailMalformedContent, "document has no content")
	}
	return Success(Result{
		Kind:         classify.KindDocument,
		Title:        strings.TrimSpace(doc.Title),
		Body:         body,
		SourceURL:    url,
		StrategyUsed: s.Name(),
		Warnings:     warnings,
	})
}

// apiDocument mirrors the subset of the documents API response the flattener
// walks: a body of structural elements, plus an optional tree of tabs each
// carrying its own body.
type apiDocument struct {
	Title string  `json:"title"`
	Body  apiBody `json:"body"`
	Tabs  []apiTab `json:"tabs"`
}

type apiTab struct {
	TabProperties struct {
		Title string `json:"title"`
		TabID string `json:"tabId"`
	} `json:"tabProperties"`
	DocumentTab *struct {
		Body apiBody `json:"body"`
	} `json:"documentTab"`
	ChildTabs []apiTab `json:"childTabs"`
}

type apiBody struct {
	Content []apiElement `json:"content"`
}

type apiElement struct {
	Paragraph       *apiParagraph `json:"paragraph"`
	Table           *apiTable     `json:"table"`
	TableOfContents *apiBody      `json:"tableOfContents"`
}

type apiParagraph struct {
	ParagraphStyle struct {
		NamedStyleType string `json:"namedStyleType"`
	} `json:"paragraphStyle"`
	Elements []struct {
		TextRun *struct {
			Content string `json:"content"`
		} `json:"textRun"`
	} `json:"elements"`
}

type apiTable struct {
	TableRows []struct {
		TableCells []struct {
			Content []apiElement `json:"content"`
		} `json:"tableCells"`
	} `json:"tableRows"`
}

func flattenTab(b *strings.Builder, tab apiTab, depth int) {
	title := strings.TrimSpace(tab.TabProperties.Title)
	if title != "" {
		if depth > 6 {
			depth = 6
		}
		fmt.Fprintf(b, "\n%s %s\n\n", strings.Repeat("#", depth), title)
	}
	if tab.DocumentTab != nil {
		flattenBody(b, tab.DocumentTab.Body)
	}
	for _, child := range tab.ChildTabs {
		flattenTab(b, child, depth+1)
	}
}

func flattenBody(b *strings.Builder, body apiBody) {
	for _, el := range body.Content {
		flattenElement(b, el)
	}
}

func flattenElement(b *strings.Builder, el apiElement) {
	switch {
	case el.Paragraph != nil:
		text := paragraphText(el.Paragraph)
		if text == "" {
			return
		}
		if prefix := headingPrefix(el.Paragraph.ParagraphStyle.NamedStyleType); prefix != "" {
			fmt.Fprintf(b, "\n%s %s\n\n", prefix, text)
		} else {
			b.WriteString(text)
			b.WriteString("\n\n")
		}
	case el.Table != nil:
		for _, row := range el.Table.TableRows {
			cells := make([]string, 0, len(row.TableCells))
			for _, cell := range row.TableCells {
				var cb strings.Builder
				for _, inner := range cell.Content {
					flattenElement(&cb, inner)
				}
				cells = append(cells, strings.Join(strings.Fields(cb.String()), " "))
			}
			fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))
		}
		b.WriteString("\n")
	case el.TableOfContents != nil:
		flattenBody(b, *el.TableOfContents)
	}
}

func paragraphText(p *apiParagraph) string {
	var b strings.Builder
	for _, e := range p.Elements {
		if e.TextRun != nil {
			b.WriteString(e.TextRun.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

func headingPrefix(namedStyle string) string {
	switch namedStyle {
	case "TITLE":
		return "#"
	case "HEADING_1":
		return "#"
	case "HEADING_2":
		return "##"
	case "HEADING_3":
		return "###"
	case "HEADING_4":
		return "####"
	case "HEADING_5":
		return "#####"
	case "HEADING_6":
		return "######"
	}
	return ""
}
