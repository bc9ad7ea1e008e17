package sink

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FSSink writes one Markdown file per task under Dir, optionally rendering a
// PDF copy next to each one. The markdown write is tmp+rename so a
// half-written file never passes an existence probe.
type FSSink struct {
	Dir string
	// ExportPDF also renders <taskID>.pdf for each artifact.
	ExportPDF bool
}

// Exists reports whether the task's artifact is already on disk.
func (s *FSSink) Exists(_ context.Context, taskID string) (string, bool, error) {
	path := s.artifactPath(taskID)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("probe artifact: %w", err)
	}
	return path, true, nil
}

// Write stores the artifact and returns its path as the handle.
func (s *FSSink) Write(_ context.Context, taskID string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	path := s.artifactPath(taskID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("rename artifact: %w", err)
	}
	if s.ExportPDF {
		pdfPath := strings.TrimSuffix(path, ".md") + ".pdf"
		if err := writeSimplePDF(string(data), pdfPath); err != nil {
			return "", fmt.Errorf("render artifact PDF: %w", err)
		}
	}
	return path, nil
}

// artifactPath derives a filename from the task id. The readable prefix is
// sanitized for the filesystem; the sha256 suffix keeps distinct ids distinct
// even when sanitization collapses them to the same prefix.
func (s *FSSink) artifactPath(taskID string) string {
	sum := sha256.Sum256([]byte(taskID))
	suffix := hex.EncodeToString(sum[:4])
	safe := unsafePathChars.ReplaceAllString(taskID, "-")
	if len(safe) > 64 {
		safe = safe[:64]
	}
	if safe == "" {
		return filepath.Join(s.Dir, suffix+".md")
	}
	return filepath.Join(s.Dir, safe+"-"+suffix+".md")
}
