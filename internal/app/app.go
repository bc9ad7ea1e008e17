// Package app wires the task source, state store, extraction chain, and
// artifact sink into the polling pipeline.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/linkmill/linkmill/internal/chain"
	"github.com/linkmill/linkmill/internal/classify"
	"github.com/linkmill/linkmill/internal/creds"
	"github.com/linkmill/linkmill/internal/extract"
	"github.com/linkmill/linkmill/internal/fetch"
	"github.com/linkmill/linkmill/internal/format"
	"github.com/linkmill/linkmill/internal/sink"
	"github.com/linkmill/linkmill/internal/source"
	"github.com/linkmill/linkmill/internal/state"
	"github.com/linkmill/linkmill/internal/strategy"
)

// maxBackoff caps the poll retry delay after consecutive cycle errors.
const maxBackoff = 5 * time.Minute

// App owns one pipeline instance. Construct with New; run with Run or
// RunOnce.
type App struct {
	cfg    Config
	store  *state.Store
	source source.TaskSource
	sink   sink.ArtifactSink
	chain  *chain.Chain

	// now is swappable in tests.
	now func() time.Time
}

// New opens the state store and assembles the extraction chain per the
// configuration.
func New(cfg Config) (*App, error) {
	cfg = cfg.withDefaults()

	store, err := state.Open(cfg.StateDir, cfg.StaleAfter)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	client := &fetch.Client{
		HTTPClient:        &http.Client{Timeout: cfg.FetchTimeout},
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       3,
		PerRequestTimeout: cfg.FetchTimeout,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		MaxConcurrent:     cfg.MaxParallel * 2,
	}
	extractor := extract.New()

	ch, err := buildChain(cfg, client, extractor)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:   cfg,
		store: store,
		source: &source.CSVSource{
			Path:      cfg.SourcePath,
			IDColumn:  cfg.IDColumn,
			URLColumn: cfg.URLColumn,
		},
		sink: &sink.FSSink{Dir: cfg.ArtifactDir, ExportPDF: cfg.ExportPDF},
		chain: ch,
		now:   time.Now,
	}, nil
}

// buildChain assembles the per-kind strategy policies.
func buildChain(cfg Config, client *fetch.Client, extractor *extract.Extractor) (*chain.Chain, error) {
	reader := &strategy.JinaReaderStrategy{
		Client:   client,
		Base:     cfg.ReaderBaseURL,
		MinChars: cfg.ReaderMinChars,
	}

	var docCreds creds.Provider
	if cfg.DocsToken != "" {
		docCreds = creds.Static(cfg.DocsToken)
	}

	generic := map[string]strategy.Strategy{
		"Impersonation": &strategy.ImpersonationStrategy{
			Client:       client,
			Extractor:    extractor,
			ProfileDelay: cfg.ProfileDelay,
		},
		"JinaFallback": reader,
		"WaybackFallback": &strategy.WaybackStrategy{
			Client:    client,
			Base:      cfg.WaybackBaseURL,
			Extractor: extractor,
		},
	}
	if cfg.LLMModel != "" {
		aiCfg := openai.DefaultConfig(cfg.LLMAPIKey)
		if cfg.LLMBaseURL != "" {
			aiCfg.BaseURL = cfg.LLMBaseURL
		}
		generic["LLMSalvage"] = &strategy.LLMSalvageStrategy{
			Client: client,
			AI:     openai.NewClientWithConfig(aiCfg),
			Model:  cfg.LLMModel,
		}
	}

	order := cfg.GenericOrder
	if len(order) == 0 {
		order = []string{"Impersonation", "JinaFallback", "WaybackFallback"}
		if cfg.LLMModel != "" {
			order = append(order, "LLMSalvage")
		}
	}
	steps := make([]strategy.Strategy, 0, len(order))
	for _, name := range order {
		s, ok := generic[name]
		if !ok {
			return nil, fmt.Errorf("unknown generic page strategy %q", name)
		}
		steps = append(steps, s)
	}

	return chain.New(
		chain.Policy{
			Kind: classify.KindDocument,
			Steps: []strategy.Strategy{&strategy.DocumentStrategy{
				Client:  client,
				BaseURL: cfg.DocsBaseURL,
				Creds:   docCreds,
			}},
			StepTimeout: cfg.StrategyTimeout,
		},
		chain.Policy{
			Kind: classify.KindVideo,
			Steps: []strategy.Strategy{&strategy.VideoStrategy{
				Client:   client,
				Base:     cfg.TranscriptBaseURL,
				Language: cfg.Language,
				Reader:   reader,
			}},
			StepTimeout: cfg.StrategyTimeout,
		},
		chain.Policy{
			Kind:        classify.KindPdf,
			Steps:       []strategy.Strategy{&strategy.PdfStrategy{Client: client}},
			StepTimeout: cfg.StrategyTimeout,
		},
		chain.Policy{
			Kind:  classify.KindGenericPage,
			Steps: steps,
			// Quota and not-found failures condemn one backend, not the URL.
			ContinueOnFatal: map[strategy.FailureClass]bool{
				strategy.FailQuota:    true,
				strategy.FailNotFound: true,
			},
			StepTimeout: cfg.StrategyTimeout,
		},
	), nil
}

// Run polls the task source until ctx is cancelled. Cycle errors back off
// exponentially up to maxBackoff instead of aborting the loop.
func (a *App) Run(ctx context.Context) error {
	delay := a.cfg.PollInterval
	for {
		if err := a.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Dur("retry_in", delay).Msg("cycle failed")
			delay *= 2
			if delay > maxBackoff {
				delay = maxBackoff
			}
		} else {
			delay = a.cfg.PollInterval
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// RunOnce reconciles state against the sink, then processes one poll of the
// task source.
func (a *App) RunOnce(ctx context.Context) error {
	if err := a.reconcile(ctx); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	return a.cycle(ctx)
}

// reconcile detects artifacts that were written before a crash could record
// Done, and completes those tasks without reprocessing.
func (a *App) reconcile(ctx context.Context) error {
	for _, t := range a.store.Snapshot() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if t.Status == state.StatusDone {
			continue
		}
		handle, ok, err := a.sink.Exists(ctx, t.ID)
		if err != nil {
			// One unreadable probe must not block the remaining tasks; the
			// task is retried on the next cycle.
			log.Warn().Str("task", t.ID).Err(err).Msg("artifact probe failed, skipping")
			continue
		}
		if !ok {
			continue
		}
		log.Info().Str("task", t.ID).Str("artifact", handle).Msg("reconciled orphaned artifact")
		if err := a.store.Complete(t.ID, handle); err != nil {
			return err
		}
	}
	return nil
}

// cycle lists current tasks and processes every one it can claim, with
// bounded parallelism. Done tasks are skipped without side effects.
func (a *App) cycle(ctx context.Context) error {
	refs, err := a.source.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	run := uuid.NewString()
	log.Debug().Str("run", run).Int("tasks", len(refs)).Msg("cycle start")

	sem := make(chan struct{}, a.cfg.MaxParallel)
	var wg sync.WaitGroup
	claimed := 0
	for _, ref := range refs {
		if ctx.Err() != nil {
			break
		}
		if t, ok := a.store.Get(ref.ID); ok && t.Status == state.StatusDone {
			continue
		}
		if !a.store.Claim(ref.ID, ref.URL) {
			continue
		}
		claimed++
		wg.Add(1)
		sem <- struct{}{}
		go func(ref source.TaskRef) {
			defer wg.Done()
			defer func() { <-sem }()
			a.processTask(ctx, ref)
		}(ref)
	}
	wg.Wait()

	log.Info().Str("run", run).Int("claimed", claimed).Msg("cycle done")
	return ctx.Err()
}

// processTask runs one claimed task to a terminal state. Panics are
// contained: a panicking strategy fails its own task and nothing else.
func (a *App) processTask(ctx context.Context, ref source.TaskRef) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("task", ref.ID).Interface("panic", r).Msg("task panicked")
			_ = a.store.Fail(ref.ID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	kind := classify.Classify(ref.URL)
	if kind == classify.KindUnknown {
		_ = a.store.Fail(ref.ID, fmt.Sprintf("unsupported URL: %s", ref.URL))
		return
	}

	res, err := a.chain.Run(ctx, ref.URL, kind)
	if err != nil {
		// Shutdown mid-task is not a task failure. The claim stays
		// InProgress and the stale-reclaim path resumes it on restart.
		if ctx.Err() != nil {
			log.Debug().Str("task", ref.ID).Msg("task interrupted by shutdown, left in progress")
			return
		}
		log.Warn().Str("task", ref.ID).Str("url", ref.URL).Err(err).Msg("extraction failed")
		_ = a.store.Fail(ref.ID, err.Error())
		return
	}

	data := format.Render(res, a.now())
	handle, err := a.sink.Write(ctx, ref.ID, data)
	if err != nil {
		if ctx.Err() != nil {
			log.Debug().Str("task", ref.ID).Msg("task interrupted by shutdown, left in progress")
			return
		}
		log.Error().Str("task", ref.ID).Err(err).Msg("artifact write failed")
		_ = a.store.Fail(ref.ID, fmt.Sprintf("write artifact: %v", err))
		return
	}

	if err := a.store.Complete(ref.ID, handle); err != nil {
		log.Error().Str("task", ref.ID).Err(err).Msg("state update failed")
		return
	}
	log.Info().Str("task", ref.ID).Str("strategy", res.StrategyUsed).Str("artifact", handle).Msg("task done")
}
