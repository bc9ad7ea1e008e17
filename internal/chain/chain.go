// Package chain runs the ordered per-kind strategy policies. Ordering is
// significant and policy-defined; tie-break is declaration order, never
// dynamic scoring.
package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/linkmill/linkmill/internal/classify"
	"github.com/linkmill/linkmill/internal/strategy"
)

// Policy binds an ordered list of strategies to one source kind.
type Policy struct {
	Kind  classify.SourceKind
	Steps []strategy.Strategy
	// ContinueOnFatal marks fatal failure classes that are local to the
	// strategy that raised them; the chain advances past those instead of
	// aborting. Anything not listed is treated as universal.
	ContinueOnFatal map[strategy.FailureClass]bool
	// StepTimeout bounds each strategy attempt independently. Zero means no
	// per-step bound beyond the caller's context.
	StepTimeout time.Duration
}

// ExhaustedError reports that every strategy for a kind failed (or none was
// registered). It carries the attempted strategy names and their reasons for
// the task's terminal failure record.
type ExhaustedError struct {
	Kind      classify.SourceKind
	Attempted []string
	Reasons   []string
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempted) == 0 {
		return fmt.Sprintf("no extraction strategy for kind %q", e.Kind)
	}
	return fmt.Sprintf("all strategies failed for kind %q: %s", e.Kind, strings.Join(e.Reasons, "; "))
}

// Chain dispatches URLs to the policy registered for their source kind.
type Chain struct {
	policies map[classify.SourceKind]Policy
}

// New builds a Chain from the given policies. Later policies for the same
// kind replace earlier ones.
func New(policies ...Policy) *Chain {
	m := make(map[classify.SourceKind]Policy, len(policies))
	for _, p := range policies {
		m[p.Kind] = p
	}
	return &Chain{policies: m}
}

// Run tries the strategies for kind in declared order. A Success returns
// immediately with earlier retryable reasons folded into the result's
// warnings. A Retryable advances. A Fatal aborts unless the policy marks its
// class as non-universal. Exhaustion returns *ExhaustedError.
func (c *Chain) Run(ctx context.Context, url string, kind classify.SourceKind) (strategy.Result, error) {
	p, ok := c.policies[kind]
	if !ok || len(p.Steps) == 0 {
		return strategy.Result{}, &ExhaustedError{Kind: kind}
	}

	var warnings []string
	var attempted []string
	var reasons []string

	for _, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return strategy.Result{}, err
		}

		stepCtx := ctx
		cancel := context.CancelFunc(func() {})
		if p.StepTimeout > 0 {
			stepCtx, cancel = context.WithTimeout(ctx, p.StepTimeout)
		}
		out := step.Attempt(stepCtx, url)
		timedOut := errors.Is(stepCtx.Err(), context.DeadlineExceeded)
		cancel()

		// A step that blew its own budget is transient no matter how the
		// strategy reported it.
		if timedOut && out.Kind == strategy.OutcomeFatal {
			out = strategy.Retryable(fmt.Sprintf("%s timed out after %s", step.Name(), p.StepTimeout))
		}

		switch out.Kind {
		case strategy.OutcomeSuccess:
			res := out.Result
			res.Warnings = append(warnings, res.Warnings...)
			log.Debug().Str("url", url).Str("strategy", step.Name()).Msg("extraction succeeded")
			return res, nil

		case strategy.OutcomeRetryable:
			attempted = append(attempted, step.Name())
			reasons = append(reasons, fmt.Sprintf("%s: %s", step.Name(), out.Reason))
			warnings = append(warnings, fmt.Sprintf("%s: %s", step.Name(), out.Reason))
			log.Debug().Str("url", url).Str("strategy", step.Name()).Str("reason", out.Reason).Msg("strategy failed, advancing")

		case strategy.OutcomeFatal:
			attempted = append(attempted, step.Name())
			reasons = append(reasons, fmt.Sprintf("%s: %s", step.Name(), out.Reason))
			if p.ContinueOnFatal[out.Class] {
				warnings = append(warnings, fmt.Sprintf("%s: %s", step.Name(), out.Reason))
				log.Debug().Str("url", url).Str("strategy", step.Name()).Str("class", string(out.Class)).Msg("non-universal fatal, advancing")
				continue
			}
			log.Debug().Str("url", url).Str("strategy", step.Name()).Str("class", string(out.Class)).Msg("universal fatal, aborting chain")
			return strategy.Result{}, &ExhaustedError{Kind: kind, Attempted: attempted, Reasons: reasons}
		}
	}
	return strategy.Result{}, &ExhaustedError{Kind: kind, Attempted: attempted, Reasons: reasons}
}
