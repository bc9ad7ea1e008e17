package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CSVSource reads tasks from a CSV file with a header row. The file stands in
// for whatever shared sheet feeds the pipeline; it is re-read on every poll
// so external edits show up on the next cycle.
type CSVSource struct {
	Path string
	// IDColumn names the header column carrying the row identity. Empty
	// means "id"; a missing column falls back to synthetic row-N ids.
	IDColumn string
	// URLColumn names the header column carrying the link. Empty means
	// "url".
	URLColumn string
}

// ListTasks parses the file fresh. Rows with a blank URL cell are skipped.
func (s *CSVSource) ListTasks(ctx context.Context) ([]TaskRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open task source: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse task source: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idCol := s.IDColumn
	if idCol == "" {
		idCol = "id"
	}
	urlCol := s.URLColumn
	if urlCol == "" {
		urlCol = "url"
	}

	header := rows[0]
	idIdx, urlIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case strings.ToLower(idCol):
			idIdx = i
		case strings.ToLower(urlCol):
			urlIdx = i
		}
	}
	if urlIdx < 0 {
		return nil, fmt.Errorf("task source missing required column %q", urlCol)
	}

	var tasks []TaskRef
	for n, row := range rows[1:] {
		if urlIdx >= len(row) {
			continue
		}
		url := strings.TrimSpace(row[urlIdx])
		if url == "" {
			continue
		}
		id := ""
		if idIdx >= 0 && idIdx < len(row) {
			id = strings.TrimSpace(row[idIdx])
		}
		if id == "" {
			// Header is row 1, so the first data row is row 2.
			id = fmt.Sprintf("row-%d", n+2)
		}
		tasks = append(tasks, TaskRef{ID: id, URL: url})
	}
	return tasks, nil
}
