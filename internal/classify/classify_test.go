package classify

import "testing"

func TestClassify_Table(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want SourceKind
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", KindVideo},
		{"youtube short host", "https://youtu.be/dQw4w9WgXcQ", KindVideo},
		{"youtube mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", KindVideo},
		{"google doc", "https://docs.google.com/document/d/1AbC_def-123/edit", KindDocument},
		{"google doc with tab", "https://docs.google.com/document/d/1AbC/edit?tab=t.0", KindDocument},
		{"spreadsheet is not content", "https://docs.google.com/spreadsheets/d/1AbC/edit", KindUnknown},
		{"docs host without id", "https://docs.google.com/about", KindGenericPage},
		{"pdf suffix", "https://example.com/whitepaper.pdf", KindPdf},
		{"pdf suffix uppercase", "https://example.com/report.PDF", KindPdf},
		{"pdf-ish query only", "https://example.com/view?file=x.pdf", KindGenericPage},
		{"plain article", "https://blog.example.com/posts/42", KindGenericPage},
		{"bare host", "https://example.com", KindGenericPage},
		{"whitespace padding", "  https://example.com/a  ", KindGenericPage},
		{"malformed", "http://%zz", KindUnknown},
		{"empty", "", KindUnknown},
		{"no scheme", "example.com/a.pdf", KindUnknown},
		{"ftp scheme", "ftp://example.com/a.pdf", KindUnknown},
		{"mailto", "mailto:someone@example.com", KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.url); got != tc.want {
				t.Fatalf("Classify(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	urls := []string{
		"https://www.youtube.com/watch?v=abcdefghijk",
		"https://docs.google.com/document/d/xyz/edit",
		"https://example.com/file.pdf",
		"https://example.com/article",
		"not a url at all",
	}
	for _, u := range urls {
		first := Classify(u)
		for i := 0; i < 50; i++ {
			if got := Classify(u); got != first {
				t.Fatalf("Classify(%q) changed between calls: %q then %q", u, first, got)
			}
		}
	}
}

func TestDocumentID(t *testing.T) {
	if got := DocumentID("https://docs.google.com/document/d/1AbC_def-123/edit"); got != "1AbC_def-123" {
		t.Fatalf("got %q", got)
	}
	if got := DocumentID("https://docs.google.com/about"); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}
