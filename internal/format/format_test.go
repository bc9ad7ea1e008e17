package format

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/linkmill/linkmill/internal/classify"
	"github.com/linkmill/linkmill/internal/strategy"
)

func sampleResult() strategy.Result {
	return strategy.Result{
		Kind:         classify.KindGenericPage,
		Title:        "Why Subscriptions Win",
		Body:         "The subscription business compounds slowly.",
		SourceURL:    "https://example.com/essay",
		StrategyUsed: "Impersonation",
		Warnings:     []string{"Impersonation: profile chrome110 blocked with status 403"},
	}
}

func TestRender_Layout(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	out := string(Render(sampleResult(), at))

	for _, want := range []string{
		"# Why Subscriptions Win",
		"- Source: https://example.com/essay",
		"- Extracted: 2025-03-14T09:26:53Z",
		"- Strategy: Impersonation",
		"## Notes",
		"profile chrome110 blocked",
		"The subscription business compounds slowly.",
		"Retrieved by Impersonation from https://example.com/essay",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("artifact missing %q:\n%s", want, out)
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	a := Render(sampleResult(), at)
	b := Render(sampleResult(), at)
	if !bytes.Equal(a, b) {
		t.Fatal("identical inputs produced different artifact bytes")
	}
}

func TestRender_FallsBackToURLTitle(t *testing.T) {
	r := sampleResult()
	r.Title = ""
	r.Warnings = nil
	out := string(Render(r, time.Now()))
	if !strings.HasPrefix(out, "# https://example.com/essay\n") {
		t.Fatalf("want source URL as title, got:\n%s", out)
	}
	if strings.Contains(out, "## Notes") {
		t.Fatal("Notes section rendered with no warnings")
	}
}

func TestRender_TimestampNormalizedToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	at := time.Date(2025, 3, 14, 14, 26, 53, 0, loc)
	out := string(Render(sampleResult(), at))
	if !strings.Contains(out, "2025-03-14T09:26:53Z") {
		t.Fatalf("timestamp not normalized to UTC:\n%s", out)
	}
}
