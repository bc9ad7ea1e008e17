package strategy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJinaReader_Success(t *testing.T) {
	body := strings.Repeat("readable article prose from the proxy. ", 10)
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	s := &JinaReaderStrategy{Client: testClient(), Base: srv.URL}
	out := s.Attempt(context.Background(), "https://example.com/article")
	if out.Kind != OutcomeSuccess {
		t.Fatalf("expected success, got %v (%s)", out.Kind, out.Reason)
	}
	if !strings.Contains(gotPath, "example.com/article") {
		t.Fatalf("expected target URL appended to proxy path, got %q", gotPath)
	}
	if out.Result.SourceURL != "https://example.com/article" {
		t.Fatalf("source must stay the original URL, got %q", out.Result.SourceURL)
	}
	if len(out.Result.Warnings) == 0 {
		t.Fatalf("expected a reader-proxy provenance warning")
	}
}

func TestJinaReader_ShortBodyIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("too short"))
	}))
	defer srv.Close()

	s := &JinaReaderStrategy{Client: testClient(), Base: srv.URL}
	out := s.Attempt(context.Background(), "https://example.com/article")
	if out.Kind != OutcomeRetryable {
		t.Fatalf("expected retryable, got %v", out.Kind)
	}
}

func TestJinaReader_QuotaIsFatalNonUniversal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := &JinaReaderStrategy{Client: testClient(), Base: srv.URL}
	out := s.Attempt(context.Background(), "https://example.com/article")
	if out.Kind != OutcomeFatal || out.Class != FailQuota {
		t.Fatalf("expected fatal quota, got %v class %s", out.Kind, out.Class)
	}
}
