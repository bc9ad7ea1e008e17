package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/linkmill/linkmill/internal/app"
)

func main() {
	// Environment from .env when present; real env vars still win.
	_ = godotenv.Load()

	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath      string
		sourcePath      string
		idColumn        string
		urlColumn       string
		artifactDir     string
		exportPDF       bool
		stateDir        string
		staleAfter      time.Duration
		pollInterval    time.Duration
		maxParallel     int
		userAgent       string
		fetchTimeout    time.Duration
		maxBodyBytes    int64
		strategyTimeout time.Duration
		profileDelay    time.Duration
		docsBase        string
		docsToken       string
		transcriptBase  string
		language        string
		readerBase      string
		readerMinChars  int
		waybackBase     string
		genericOrder    string
		llmBase         string
		llmModel        string
		llmKey          string
		once            bool
		verbose         bool
	)

	flag.StringVar(&configPath, "config", os.Getenv("LINKMILL_CONFIG"), "Path to YAML config file (flags win over file values)")
	flag.StringVar(&sourcePath, "source", "", "Path to the CSV task list")
	flag.StringVar(&idColumn, "source.idColumn", "", "CSV column holding the task id (default \"id\")")
	flag.StringVar(&urlColumn, "source.urlColumn", "", "CSV column holding the URL (default \"url\")")
	flag.StringVar(&artifactDir, "artifacts.dir", "", "Directory for extracted Markdown artifacts")
	flag.BoolVar(&exportPDF, "artifacts.pdf", false, "Also render a PDF copy of each artifact")
	flag.StringVar(&stateDir, "state.dir", "", "Directory for task state files")
	flag.DurationVar(&staleAfter, "state.staleAfter", 0, "Age past which an in-progress claim is considered abandoned")
	flag.DurationVar(&pollInterval, "poll.interval", 0, "Delay between polls of the task source")
	flag.IntVar(&maxParallel, "poll.parallel", 0, "Maximum tasks processed concurrently per cycle")
	flag.StringVar(&userAgent, "fetch.ua", "", "Override User-Agent for plain fetches")
	flag.DurationVar(&fetchTimeout, "fetch.timeout", 0, "Per-request fetch timeout")
	flag.Int64Var(&maxBodyBytes, "fetch.maxBodyBytes", 0, "Cap on fetched response body size")
	flag.DurationVar(&strategyTimeout, "fetch.strategyTimeout", 0, "Budget for one strategy attempt")
	flag.DurationVar(&profileDelay, "fetch.profileDelay", 0, "Pause between browser profile rotations")
	flag.StringVar(&docsBase, "docs.base", "", "Base URL of the documents API")
	flag.StringVar(&docsToken, "docs.token", os.Getenv("DOCS_API_TOKEN"), "Bearer token for the documents API")
	flag.StringVar(&transcriptBase, "transcript.base", "", "Base URL of the video transcript endpoint")
	flag.StringVar(&language, "transcript.lang", "", "Transcript language track, e.g. 'en'")
	flag.StringVar(&readerBase, "reader.base", "", "Base URL of the reader proxy")
	flag.IntVar(&readerMinChars, "reader.minChars", 0, "Minimum characters for a reader proxy response to count")
	flag.StringVar(&waybackBase, "wayback.base", "", "Base URL of the archive availability API")
	flag.StringVar(&genericOrder, "generic.order", "", "Comma-separated strategy order for generic pages")
	flag.StringVar(&llmBase, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL for salvage extraction")
	flag.StringVar(&llmModel, "llm.model", os.Getenv("LLM_MODEL"), "Model name; empty disables salvage extraction")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for the OpenAI-compatible server")
	flag.BoolVar(&once, "once", false, "Run a single cycle and exit instead of polling")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		SourcePath:        sourcePath,
		IDColumn:          idColumn,
		URLColumn:         urlColumn,
		ArtifactDir:       artifactDir,
		ExportPDF:         exportPDF,
		StateDir:          stateDir,
		StaleAfter:        staleAfter,
		PollInterval:      pollInterval,
		MaxParallel:       maxParallel,
		UserAgent:         userAgent,
		FetchTimeout:      fetchTimeout,
		MaxBodyBytes:      maxBodyBytes,
		StrategyTimeout:   strategyTimeout,
		ProfileDelay:      profileDelay,
		DocsBaseURL:       docsBase,
		DocsToken:         docsToken,
		TranscriptBaseURL: transcriptBase,
		Language:          language,
		ReaderBaseURL:     readerBase,
		ReaderMinChars:    readerMinChars,
		WaybackBaseURL:    waybackBase,
		LLMBaseURL:        llmBase,
		LLMModel:          llmModel,
		LLMAPIKey:         llmKey,
		Once:              once,
		Verbose:           verbose,
	}
	if strings.TrimSpace(genericOrder) != "" {
		for _, name := range strings.Split(genericOrder, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.GenericOrder = append(cfg.GenericOrder, name)
			}
		}
	}

	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("load config file")
		}
		app.ApplyFileConfig(&cfg, fc)
		if cfg.Verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	}

	if cfg.SourcePath == "" {
		log.Fatal().Msg("missing -source: path to the CSV task list is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	if cfg.Once {
		if err := a.RunOnce(ctx); err != nil {
			log.Fatal().Err(err).Msg("cycle failed")
		}
		return
	}
	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("pipeline stopped")
	}
}
