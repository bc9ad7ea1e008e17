// Package state persists per-link processing state. Claim is the pipeline's
// single serialization point: no task is ever run by two concurrent attempts,
// and a successful result is never overwritten.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Status is a task's position in its lifecycle. Transitions are monotonic
// except Failed -> Pending on manual retry.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Task is one link's tracked processing state. Tasks are never physically
// deleted; Failed entries remain for audit and retry.
type Task struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Status       Status    `json:"status"`
	AttemptCount int       `json:"attempt_count"`
	LastError    string    `json:"last_error,omitempty"`
	ResultRef    string    `json:"result_ref,omitempty"`
	ClaimedAt    time.Time `json:"claimed_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ErrUnknownTask is returned for operations on ids the store has never seen.
var ErrUnknownTask = fmt.Errorf("unknown task")

// Store is a durable, mutex-guarded task table. Each task persists as
// <sha256(id)>.task.json under Dir, written via tmp+rename, so a restart
// resumes from the last recorded state instead of reprocessing Done tasks.
type Store struct {
	dir        string
	staleAfter time.Duration

	mu    sync.Mutex
	tasks map[string]*Task

	// now is swappable in tests.
	now func() time.Time
}

// Open loads existing task files from dir, creating it if needed.
// staleAfter is the age past which an InProgress claim is considered
// abandoned and eligible for re-claim; zero disables re-claiming.
func Open(dir string, staleAfter time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	s := &Store{dir: dir, staleAfter: staleAfter, tasks: make(map[string]*Task), now: time.Now}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read state dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".task.json") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read task file %s: %w", e.Name(), err)
		}
		var t Task
		if err := json.Unmarshal(b, &t); err != nil {
			return nil, fmt.Errorf("corrupted task file %s: %w", e.Name(), err)
		}
		s.tasks[t.ID] = &t
	}
	return s, nil
}

// Claim moves a task into InProgress and returns true iff this caller won.
// Unknown ids are created as Pending and claimed in the same step. Done and
// Failed tasks are never claimable; a live InProgress claim blocks rivals
// until it goes stale.
func (s *Store) Claim(id, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t, ok := s.tasks[id]
	if !ok {
		t = &Task{ID: id, URL: url, Status: StatusPending}
		s.tasks[id] = t
	}
	switch t.Status {
	case StatusDone, StatusFailed:
		return false
	case StatusInProgress:
		if s.staleAfter <= 0 || now.Sub(t.ClaimedAt) < s.staleAfter {
			return false
		}
		// Stale claim from a dead run; take it over.
	}
	prev := *t
	t.Status = StatusInProgress
	t.ClaimedAt = now
	t.UpdatedAt = now
	if url != "" {
		t.URL = url
	}
	if err := s.persistLocked(t); err != nil {
		// An unrecorded claim must not block other claimants until the
		// staleness window expires.
		*t = prev
		return false
	}
	return true
}

// Complete marks a task Done and records its artifact handle. A task already
// Done keeps its original result.
func (s *Store) Complete(id, resultRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("complete %q: %w", id, ErrUnknownTask)
	}
	if t.Status == StatusDone {
		return nil
	}
	t.Status = StatusDone
	t.ResultRef = resultRef
	t.LastError = ""
	t.UpdatedAt = s.now()
	return s.persistLocked(t)
}

// Fail marks a task Failed with the reason and bumps its attempt count.
func (s *Store) Fail(id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("fail %q: %w", id, ErrUnknownTask)
	}
	if t.Status == StatusDone {
		return fmt.Errorf("fail %q: task already done", id)
	}
	t.Status = StatusFailed
	t.AttemptCount++
	t.LastError = reason
	t.UpdatedAt = s.now()
	return s.persistLocked(t)
}

// Retry re-queues a Failed task (manual retry). Any other status is left
// alone.
func (s *Store) Retry(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("retry %q: %w", id, ErrUnknownTask)
	}
	if t.Status != StatusFailed {
		return fmt.Errorf("retry %q: status is %s, not failed", id, t.Status)
	}
	t.Status = StatusPending
	t.UpdatedAt = s.now()
	return s.persistLocked(t)
}

// Get returns a copy of a task's state.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// Snapshot returns copies of every tracked task, ordered by id.
func (s *Store) Snapshot() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) persistLocked(t *Task) error {
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	path := s.taskPath(t.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write task: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename task: %w", err)
	}
	return nil
}

func (s *Store) taskPath(id string) string {
	h := sha256.Sum256([]byte(id))
	return filepath.Join(s.dir, hex.EncodeToString(h[:])+".task.json")
}
