package app

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file YAML configuration schema. Nested sections
// map naturally onto the dotted flag names.
type FileConfig struct {
	Source struct {
		Path      string `yaml:"path"`
		IDColumn  string `yaml:"idColumn"`
		URLColumn string `yaml:"urlColumn"`
	} `yaml:"source"`

	Artifacts struct {
		Dir       string `yaml:"dir"`
		ExportPDF bool   `yaml:"exportPDF"`
	} `yaml:"artifacts"`

	State struct {
		Dir        string        `yaml:"dir"`
		StaleAfter time.Duration `yaml:"staleAfter"`
	} `yaml:"state"`

	Poll struct {
		Interval time.Duration `yaml:"interval"`
		Parallel int           `yaml:"parallel"`
	} `yaml:"poll"`

	Fetch struct {
		UserAgent       string        `yaml:"ua"`
		Timeout         time.Duration `yaml:"timeout"`
		MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
		StrategyTimeout time.Duration `yaml:"strategyTimeout"`
		ProfileDelay    time.Duration `yaml:"profileDelay"`
	} `yaml:"fetch"`

	Docs struct {
		Base  string `yaml:"base"`
		Token string `yaml:"token"`
	} `yaml:"docs"`

	Transcript struct {
		Base     string `yaml:"base"`
		Language string `yaml:"language"`
	} `yaml:"transcript"`

	Reader struct {
		Base     string `yaml:"base"`
		MinChars int    `yaml:"minChars"`
	} `yaml:"reader"`

	Wayback struct {
		Base string `yaml:"base"`
	} `yaml:"wayback"`

	GenericOrder []string `yaml:"genericOrder"`

	LLM struct {
		Base   string `yaml:"base"`
		Model  string `yaml:"model"`
		APIKey string `yaml:"key"`
	} `yaml:"llm"`

	Verbose bool `yaml:"verbose"`
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// ApplyFileConfig overlays file values into cfg for fields the flags left at
// their zero value, so explicit flags always win over the file.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.SourcePath == "" {
		cfg.SourcePath = fc.Source.Path
	}
	if cfg.IDColumn == "" {
		cfg.IDColumn = fc.Source.IDColumn
	}
	if cfg.URLColumn == "" {
		cfg.URLColumn = fc.Source.URLColumn
	}
	if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = fc.Artifacts.Dir
	}
	if !cfg.ExportPDF && fc.Artifacts.ExportPDF {
		cfg.ExportPDF = true
	}
	if cfg.StateDir == "" {
		cfg.StateDir = fc.State.Dir
	}
	if cfg.StaleAfter == 0 {
		cfg.StaleAfter = fc.State.StaleAfter
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = fc.Poll.Interval
	}
	if cfg.MaxParallel == 0 {
		cfg.MaxParallel = fc.Poll.Parallel
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = fc.Fetch.Timeout
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = fc.Fetch.MaxBodyBytes
	}
	if cfg.StrategyTimeout == 0 {
		cfg.StrategyTimeout = fc.Fetch.StrategyTimeout
	}
	if cfg.ProfileDelay == 0 {
		cfg.ProfileDelay = fc.Fetch.ProfileDelay
	}
	if cfg.DocsBaseURL == "" {
		cfg.DocsBaseURL = fc.Docs.Base
	}
	if cfg.DocsToken == "" {
		cfg.DocsToken = fc.Docs.Token
	}
	if cfg.TranscriptBaseURL == "" {
		cfg.TranscriptBaseURL = fc.Transcript.Base
	}
	if cfg.Language == "" {
		cfg.Language = fc.Transcript.Language
	}
	if cfg.ReaderBaseURL == "" {
		cfg.ReaderBaseURL = fc.Reader.Base
	}
	if cfg.ReaderMinChars == 0 {
		cfg.ReaderMinChars = fc.Reader.MinChars
	}
	if cfg.WaybackBaseURL == "" {
		cfg.WaybackBaseURL = fc.Wayback.Base
	}
	if len(cfg.GenericOrder) == 0 {
		cfg.GenericOrder = fc.GenericOrder
	}
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = fc.LLM.Base
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}
