// Package source abstracts the shared tabular list of links the pipeline
// polls. Only id stability is guaranteed across polls; row order is not.
package source

import "context"

// TaskRef is one row of the task list: an opaque row identity plus the URL
// to process.
type TaskRef struct {
	ID  string
	URL string
}

// TaskSource lists the current tasks. It is polled and read-only.
type TaskSource interface {
	ListTasks(ctx context.Context) ([]TaskRef, error)
}
