package app

import "time"

// Config holds runtime configuration for the pipeline.
type Config struct {
	// Task source
	SourcePath string
	IDColumn   string
	URLColumn  string

	// Artifacts
	ArtifactDir string
	ExportPDF   bool

	// State
	StateDir   string
	StaleAfter time.Duration

	// Scheduling
	PollInterval time.Duration
	MaxParallel  int

	// Fetching
	UserAgent       string
	FetchTimeout    time.Duration
	MaxBodyBytes    int64
	StrategyTimeout time.Duration
	ProfileDelay    time.Duration

	// Document API
	DocsBaseURL string
	DocsToken   string

	// Video transcripts
	TranscriptBaseURL string
	Language          string

	// Reader proxy
	ReaderBaseURL  string
	ReaderMinChars int

	// Archive snapshots
	WaybackBaseURL string

	// Generic page strategy order. Empty means the built-in default:
	// Impersonation, JinaFallback, WaybackFallback, then LLMSalvage when a
	// model is configured.
	GenericOrder []string

	// LLM salvage (optional; disabled unless LLMModel is set)
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Behavior
	Once    bool
	Verbose bool
}

// withDefaults fills unset fields with the built-in defaults.
func (c Config) withDefaults() Config {
	if c.StateDir == "" {
		c.StateDir = ".linkmill-state"
	}
	if c.ArtifactDir == "" {
		c.ArtifactDir = "artifacts"
	}
	if c.StaleAfter == 0 {
		c.StaleAfter = 30 * time.Minute
	}
	if c.PollInterval == 0 {
		c.PollInterval = time.Minute
	}
	if c.MaxParallel <= 0 {
		c.MaxParallel = 4
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 30 * time.Second
	}
	if c.StrategyTimeout == 0 {
		c.StrategyTimeout = 2 * time.Minute
	}
	if c.DocsBaseURL == "" {
		c.DocsBaseURL = "https://docs.googleapis.com"
	}
	if c.TranscriptBaseURL == "" {
		c.TranscriptBaseURL = "https://www.youtube.com"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.ReaderBaseURL == "" {
		c.ReaderBaseURL = "https://r.jina.ai"
	}
	if c.WaybackBaseURL == "" {
		c.WaybackBaseURL = "https://archive.org"
	}
	return c
}
