// Package strategy holds the per-kind extraction strategies and the outcome
// taxonomy the fallback chain decides on. Strategies are stateless: all
// configuration is injected, and failures are returned as data, never as
// panics.
package strategy

import (
	"context"

	"github.com/linkmill/linkmill/internal/classify"
)

// Result is the normalized output of exactly one terminal strategy attempt.
// Body is non-empty on success.
type Result struct {
	Kind         classify.SourceKind
	Title        string
	Body         string
	SourceURL    string
	StrategyUsed string
	Warnings     []string
}

// FailureClass tells the chain whether a fatal failure binds every strategy
// for the kind or just the one that raised it.
type FailureClass string

const (
	FailMalformedURL     FailureClass = "malformed-url"
	FailNotFound         FailureClass = "not-found"
	FailPermission       FailureClass = "permission"
	FailQuota            FailureClass = "quota"
	FailMalformedContent FailureClass = "malformed-content"
	FailUnsupported      FailureClass = "unsupported"
)

// OutcomeKind is the tag of the Outcome variant.
type OutcomeKind int

const (
	// OutcomeSuccess carries a Result; the chain stops here.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeRetryable is a transient failure; the chain records the reason
	// as a warning and advances to the next strategy.
	OutcomeRetryable
	// OutcomeFatal is a permanent failure; the chain aborts unless the
	// policy marks the class as non-universal.
	OutcomeFatal
)

// Outcome is the tagged result of one strategy attempt.
type Outcome struct {
	Kind   OutcomeKind
	Result Result
	Reason string
	Class  FailureClass
}

// Success wraps a Result in a terminal success outcome.
func Success(r Result) Outcome {
	return Outcome{Kind: OutcomeSuccess, Result: r}
}

// Retryable reports a transient failure the chain may recover from.
func Retryable(reason string) Outcome {
	return Outcome{Kind: OutcomeRetryable, Reason: reason}
}

// Fatal reports a permanent failure of the given class.
func Fatal(class FailureClass, reason string) Outcome {
	return Outcome{Kind: OutcomeFatal, Reason: reason, Class: class}
}

// Strategy is a single extraction attempt implementation.
type Strategy interface {
	// Name identifies the strategy in policies, warnings, and artifact
	// provenance notes.
	Name() string
	// Attempt extracts content from the URL. Implementations honor ctx
	// deadlines and must not mutate shared state.
	Attempt(ctx context.Context, url string) Outcome
}
