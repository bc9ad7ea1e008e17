package strategy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/linkmill/linkmill/internal/extract"
)

const articleHTML = `<!doctype html>
<html>
  <head><title>Quarterly Report</title></head>
  <body>
    <nav>site navigation</nav>
    <article>
      <h1>Quarterly Report</h1>
      <p>Revenue grew for the third consecutive quarter, driven largely by
      the subscription business and the gradual rollout of usage-based
      pricing across the remaining regions.</p>
      <p>Operating costs stayed flat as hiring slowed and infrastructure
      spending was renegotiated with the primary cloud vendor.</p>
    </article>
  </body>
</html>`

func TestImpersonation_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	s := &ImpersonationStrategy{Client: testClient(), Extractor: extract.New()}
	out := s.Attempt(context.Background(), srv.URL+"/report?utm_source=feed")
	if out.Kind != OutcomeSuccess {
		t.Fatalf("expected success, got %v (%s)", out.Kind, out.Reason)
	}
	if !strings.Contains(out.Result.Body, "subscription business") {
		t.Fatalf("expected article body, got %q", out.Result.Body)
	}
	if out.Result.StrategyUsed != "Impersonation" {
		t.Fatalf("unexpected strategy name %q", out.Result.StrategyUsed)
	}
}

func TestImpersonation_RotatesProfilesOn403(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	s := &ImpersonationStrategy{Client: testClient(), Extractor: extract.New()}
	out := s.Attempt(context.Background(), srv.URL)
	if out.Kind != OutcomeSuccess {
		t.Fatalf("expected success on second profile, got %v (%s)", out.Kind, out.Reason)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 fetches, got %d", calls)
	}
	if len(out.Result.Warnings) == 0 || !strings.Contains(out.Result.Warnings[0], "blocked") {
		t.Fatalf("expected a blocked-profile warning, got %v", out.Result.Warnings)
	}
}

func TestImpersonation_AllProfilesBlockedIsRetryable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := &ImpersonationStrategy{Client: testClient(), Extractor: extract.New()}
	out := s.Attempt(context.Background(), srv.URL)
	if out.Kind != OutcomeRetryable {
		t.Fatalf("expected retryable, got %v (%s)", out.Kind, out.Reason)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected one fetch per default profile, got %d", calls)
	}
}

func TestImpersonation_NotFoundIsFatalNonUniversal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := &ImpersonationStrategy{Client: testClient(), Extractor: extract.New()}
	out := s.Attempt(context.Background(), srv.URL)
	if out.Kind != OutcomeFatal || out.Class != FailNotFound {
		t.Fatalf("expected fatal not-found, got %v class %s", out.Kind, out.Class)
	}
}

func TestImpersonation_UnsupportedContentTypeIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer srv.Close()

	s := &ImpersonationStrategy{Client: testClient(), Extractor: extract.New()}
	out := s.Attempt(context.Background(), srv.URL)
	if out.Kind != OutcomeRetryable || !strings.Contains(out.Reason, "unsupported content type") {
		t.Fatalf("expected retryable unsupported content type, got %v (%s)", out.Kind, out.Reason)
	}
}

func TestImpersonation_PlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("just plain text content"))
	}))
	defer srv.Close()

	s := &ImpersonationStrategy{Client: testClient(), Extractor: extract.New()}
	out := s.Attempt(context.Background(), srv.URL)
	if out.Kind != OutcomeSuccess || out.Result.Body != "just plain text content" {
		t.Fatalf("expected plain text success, got %v %q", out.Kind, out.Result.Body)
	}
}
