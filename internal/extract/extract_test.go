package extract

import (
	"strings"
	"testing"
)

func TestFromHTML_PrefersMainOverBody(t *testing.T) {
	html := `<!doctype html>
    <html>
      <head><title>Test Page</title></head>
      <body>
        <nav>Nav should be ignored</nav>
        <main>
          <h1>Main Heading</h1>
          <p>This is the main content paragraph.</p>
        </main>
        <footer>Footer text</footer>
      </body>
    </html>`

	doc := FromHTML([]byte(html))
	if doc.Title != "Test Page" {
		t.Fatalf("expected title 'Test Page', got %q", doc.Title)
	}
	if !strings.Contains(doc.Body, "Main Heading") {
		t.Fatalf("expected to contain main heading")
	}
	if !strings.Contains(doc.Body, "This is the main content paragraph.") {
		t.Fatalf("expected to contain main paragraph")
	}
	if strings.Contains(doc.Body, "Nav should be ignored") {
		t.Fatalf("did not expect nav text in extracted content")
	}
	if strings.Contains(doc.Body, "Footer text") {
		t.Fatalf("did not expect footer text in extracted content")
	}
}

func TestFromHTML_FallbackToBody(t *testing.T) {
	html := `<!doctype html>
    <html>
      <head><title>No Main</title></head>
      <body>
        <h2>Body Heading</h2>
        <p>Body paragraph</p>
      </body>
    </html>`

	doc := FromHTML([]byte(html))
	if doc.Title != "No Main" {
		t.Fatalf("expected title 'No Main', got %q", doc.Title)
	}
	if !strings.Contains(doc.Body, "Body Heading") {
		t.Fatalf("expected to contain body heading")
	}
	if !strings.Contains(doc.Body, "Body paragraph") {
		t.Fatalf("expected to contain body paragraph")
	}
}

func TestReadableMarkdown_ArticlePage(t *testing.T) {
	html := `<!doctype html>
    <html>
      <head><title>Release Notes</title></head>
      <body>
        <nav><a href="/">Home</a><a href="/about">About</a></nav>
        <article>
          <h1>Version 2.0</h1>
          <p>The second major release changes the storage engine and includes
          a long list of migration notes so that the readability pass has a
          realistic amount of prose to hold onto during extraction.</p>
          <p>Upgrading requires a full reindex. Plan downtime accordingly and
          take a backup before starting the migration procedure.</p>
        </article>
        <footer>Copyright and boilerplate</footer>
      </body>
    </html>`

	e := New()
	doc, err := e.ReadableMarkdown([]byte(html), "https://example.com/notes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Body == "" {
		t.Fatalf("expected non-empty body")
	}
	if !strings.Contains(doc.Body, "storage engine") {
		t.Fatalf("expected article prose in body, got: %q", doc.Body)
	}
}

func TestReadableMarkdown_FallsBackToWalker(t *testing.T) {
	// Too little content for readability, but the walker still finds text.
	html := `<html><head><title>Tiny</title></head><body><p>just one line</p></body></html>`
	e := New()
	doc, err := e.ReadableMarkdown([]byte(html), "https://example.com/tiny")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(doc.Body, "just one line") {
		t.Fatalf("expected fallback text, got: %q", doc.Body)
	}
}

func TestReadableMarkdown_EmptyPage(t *testing.T) {
	e := New()
	if _, err := e.ReadableMarkdown([]byte("<html><body></body></html>"), "https://example.com"); err == nil {
		t.Fatalf("expected error for empty page")
	}
}

func TestTitle(t *testing.T) {
	if got := Title([]byte(`<html><head><title> Spaced </title></head><body></body></html>`)); got != "Spaced" {
		t.Fatalf("got %q", got)
	}
	if got := Title([]byte(`<html><body>no head</body></html>`)); got != "" {
		t.Fatalf("expected empty title, got %q", got)
	}
}
