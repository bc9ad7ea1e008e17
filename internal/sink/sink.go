// Package sink abstracts where finished artifacts land. Writes are durable
// once they return, which is what makes startup reconciliation after a crash
// possible.
package sink

import "context"

// ArtifactSink stores one artifact per task.
type ArtifactSink interface {
	// Exists probes for a previously written artifact and returns its handle
	// when present. Used by reconciliation to detect writes that completed
	// before a crash.
	Exists(ctx context.Context, taskID string) (handle string, ok bool, err error)
	// Write durably stores the artifact bytes and returns its handle.
	Write(ctx context.Context, taskID string, data []byte) (handle string, err error)
}
