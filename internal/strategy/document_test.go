package strategy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/linkmill/linkmill/internal/creds"
)

const documentJSON = `{
  "title": "Launch Plan",
  "body": {"content": [
    {"paragraph": {"paragraphStyle": {"namedStyleType": "HEADING_1"},
      "elements": [{"textRun": {"content": "Overview\n"}}]}},
    {"paragraph": {"paragraphStyle": {"namedStyleType": "NORMAL_TEXT"},
      "elements": [{"textRun": {"content": "Ship in Q3.\n"}}]}},
    {"table": {"tableRows": [
      {"tableCells": [
        {"content": [{"paragraph": {"elements": [{"textRun": {"content": "Owner"}}]}}]},
        {"content": [{"paragraph": {"elements": [{"textRun": {"content": "Deadline"}}]}}]}
      ]}
    ]}}
  ]},
  "tabs": [
    {"tabProperties": {"title": "Rollout", "tabId": "t.1"},
     "documentTab": {"body": {"content": [
       {"paragraph": {"paragraphStyle": {"namedStyleType": "NORMAL_TEXT"},
         "elements": [{"textRun": {"content": "Region by region.\n"}}]}}
     ]}},
     "childTabs": [
       {"tabProperties": {"title": "EMEA", "tabId": "t.2"},
        "documentTab": {"body": {"content": [
          {"paragraph": {"elements": [{"textRun": {"content": "Berlin first.\n"}}]}}
        ]}}}
     ]}
  ]
}`

func TestDocumentStrategy_FlattensBodyAndTabs(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(documentJSON))
	}))
	defer srv.Close()

	s := &DocumentStrategy{Client: testClient(), BaseURL: srv.URL, Creds: creds.Static("tok-123")}
	out := s.Attempt(context.Background(), "https://docs.google.com/document/d/abc123/edit")
	if out.Kind != OutcomeSuccess {
		t.Fatalf("expected success, got %v (%s)", out.Kind, out.Reason)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
	if gotPath != "/v1/documents/abc123" {
		t.Fatalf("unexpected API path %q", gotPath)
	}
	body := out.Result.Body
	for _, want := range []string{
		"# Overview",
		"Ship in Q3.",
		"| Owner | Deadline |",
		"## Rollout",
		"Region by region.",
		"### EMEA",
		"Berlin first.",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
	if out.Result.Title != "Launch Plan" {
		t.Fatalf("unexpected title %q", out.Result.Title)
	}
}

func TestDocumentStrategy_PermissionDeniedIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := &DocumentStrategy{Client: testClient(), BaseURL: srv.URL, Creds: creds.Static("tok")}
	out := s.Attempt(context.Background(), "https://docs.google.com/document/d/abc/edit")
	if out.Kind != OutcomeFatal || out.Class != FailPermission {
		t.Fatalf("expected fatal permission, got %v class %s", out.Kind, out.Class)
	}
}

func TestDocumentStrategy_NotFoundIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := &DocumentStrategy{Client: testClient(), BaseURL: srv.URL, Creds: creds.Static("tok")}
	out := s.Attempt(context.Background(), "https://docs.google.com/document/d/abc/edit")
	if out.Kind != OutcomeFatal || out.Class != FailNotFound {
		t.Fatalf("expected fatal not-found, got %v class %s", out.Kind, out.Class)
	}
}

func TestDocumentStrategy_RateLimitIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := &DocumentStrategy{Client: testClient(), BaseURL: srv.URL, Creds: creds.Static("tok")}
	out := s.Attempt(context.Background(), "https://docs.google.com/document/d/abc/edit")
	if out.Kind != OutcomeRetryable {
		t.Fatalf("expected retryable on rate limit, got %v (%s)", out.Kind, out.Reason)
	}
}

func TestDocumentStrategy_NoDocumentIDIsFatal(t *testing.T) {
	s := &DocumentStrategy{Client: testClient(), BaseURL: "http://unused", Creds: creds.Static("tok")}
	out := s.Attempt(context.Background(), "https://docs.google.com/about")
	if out.Kind != OutcomeFatal || out.Class != FailMalformedURL {
		t.Fatalf("expected fatal malformed-url, got %v class %s", out.Kind, out.Class)
	}
}

func TestDocumentStrategy_EmptyDocumentIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title": "Empty", "body": {"content": []}}`))
	}))
	defer srv.Close()

	s := &DocumentStrategy{Client: testClient(), BaseURL: srv.URL, Creds: creds.Static("tok")}
	out := s.Attempt(context.Background(), "https://docs.google.com/document/d/abc/edit")
	if out.Kind != OutcomeFatal || out.Class != FailMalformedContent {
		t.Fatalf("expected fatal malformed-content, got %v class %s", out.Kind, out.Class)
	}
}
