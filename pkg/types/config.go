package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-radar/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ArxivFeedConfig holds settings for the arXiv feed adapter.
type ArxivFeedConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Enabled controls whether the arXiv feed is fetched.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Categories is the arXiv category expression (e.g. "cs.AI+cs.CV+cs.LG").
	Categories string `json:"categories" yaml:"categories" mapstructure:"categories"`

	// MaxPapers caps the number of entries taken from the feed (default 200).
	MaxPapers int `json:"max_papers" yaml:"max_papers" mapstructure:"max_papers"`
}

// JournalSource describes one journal RSS feed.
type JournalSource struct {
	// Key is a short slug used in identity keys (e.g. "nature").
	Key string `json:"key" yaml:"key" mapstructure:"key"`

	// Name is the display name (e.g. "Nature").
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// FeedURL is the RSS or Atom feed URL.
	FeedURL string `json:"feed_url" yaml:"feed_url" mapstructure:"feed_url"`

	// Source overrides the source type; bioRxiv/medRxiv feeds are
	// preprint servers even though they are configured like journals.
	Source SourceType `json:"source,omitempty" yaml:"source,omitempty" mapstructure:"source"`
}

// JournalFeedConfig holds settings for the journal feed adapters.
type JournalFeedConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Enabled controls whether journal feeds are fetched.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Sources lists the journal feeds to poll.
	Sources []JournalSource `json:"sources" yaml:"sources" mapstructure:"sources"`

	// MaxPerJournal caps entries taken from each feed (default 30).
	MaxPerJournal int `json:"max_per_journal" yaml:"max_per_journal" mapstructure:"max_per_journal"`
}

// FeedsConfig groups the feed adapter settings.
type FeedsConfig struct {
	Arxiv    ArxivFeedConfig   `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	Journals JournalFeedConfig `json:"journals" yaml:"journals" mapstructure:"journals"`
}

// Capability selects how an analysis backend receives a paper.
type Capability string

const (
	// CapabilityTextOnly sends title and abstract text only.
	CapabilityTextOnly Capability = "text-only"

	// CapabilityContent sends the full PDF content alongside the prompt.
	CapabilityContent Capability = "content-capable"
)

// LLMConfig holds settings for one Generative AI backend.
type LLMConfig struct {
	// BaseURL is the OpenAI-compatible API root (e.g. "https://api.openai.com/v1").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Model is the model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key; usually loaded from .secrets/.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Capability selects text-only or content-capable operation.
	Capability Capability `json:"capability,omitempty" yaml:"capability,omitempty" mapstructure:"capability"`

	// MaxTokens bounds the response length (0 = provider default).
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" mapstructure:"max_tokens"`

	// Temperature is the sampling temperature.
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
}

// RetryConfig is the retry policy applied to transient backend failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// BaseDelay is the first backoff delay; it doubles each attempt (default 2s).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay" mapstructure:"base_delay"`

	// MaxDelay caps the backoff delay (default 60s).
	MaxDelay time.Duration `json:"max_delay" yaml:"max_delay" mapstructure:"max_delay"`

	// Jitter is the random fraction added to each delay, 0..1 (default 0.2).
	Jitter float64 `json:"jitter" yaml:"jitter" mapstructure:"jitter"`
}

// GatewayConfig bounds one backend's call gateway. Each backend gets an
// independent gateway so a slow analysis backend never starves the filter
// backend.
type GatewayConfig struct {
	// MaxConcurrent is the maximum number of in-flight calls (default 5).
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent" mapstructure:"max_concurrent"`

	// RequestsPerWindow is the rate ceiling per rolling window (0 = unlimited).
	RequestsPerWindow int `json:"requests_per_window" yaml:"requests_per_window" mapstructure:"requests_per_window"`

	// Window is the rolling window for the rate ceiling (default 60s).
	Window time.Duration `json:"window" yaml:"window" mapstructure:"window"`

	// Timeout is the per-call deadline (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Retry is the transient-failure retry policy.
	Retry RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
}

// BackendConfig pairs one LLM backend with its gateway limits.
type BackendConfig struct {
	LLM     LLMConfig     `json:"llm" yaml:"llm" mapstructure:"llm"`
	Gateway GatewayConfig `json:"gateway" yaml:"gateway" mapstructure:"gateway"`
}

// BackendsConfig groups the three pipeline backends.
type BackendsConfig struct {
	// Filter is the lightweight keyword-match backend.
	Filter BackendConfig `json:"filter" yaml:"filter" mapstructure:"filter"`

	// Analysis is the heavyweight deep-analysis backend.
	Analysis BackendConfig `json:"analysis" yaml:"analysis" mapstructure:"analysis"`

	// Narrative is the per-keyword summary backend.
	Narrative BackendConfig `json:"narrative" yaml:"narrative" mapstructure:"narrative"`
}

// HistoryConfig holds settings for the processed-paper history store.
type HistoryConfig struct {
	// Path is the SQLite database file (default "cache/history.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// RetentionDays bounds how long entries are kept; records seen within
	// this window are not reprocessed (default 30).
	RetentionDays int `json:"retention_days" yaml:"retention_days" mapstructure:"retention_days"`
}

// ContentConfig holds settings for the PDF content adapter.
type ContentConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// CacheDir is the PDF cache directory (default "cache/pdfs").
	CacheDir string `json:"cache_dir" yaml:"cache_dir" mapstructure:"cache_dir"`

	// MaxSizeMB rejects PDFs larger than this (default 50).
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb" mapstructure:"max_size_mb"`
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	// Language is the analysis and summary output language (default "English").
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	// ReportsDir is the base directory for reports; JSON reports land in
	// ReportsDir/json (default "reports").
	ReportsDir string `json:"reports_dir" yaml:"reports_dir" mapstructure:"reports_dir"`
}

// ServeConfig holds settings for the report HTTP API.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// Config is the full paper-radar configuration.
type Config struct {
	Keywords []Keyword      `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
	Feeds    FeedsConfig    `json:"feeds" yaml:"feeds" mapstructure:"feeds"`
	Backends BackendsConfig `json:"backends" yaml:"backends" mapstructure:"backends"`
	History  HistoryConfig  `json:"history" yaml:"history" mapstructure:"history"`
	Content  ContentConfig  `json:"content" yaml:"content" mapstructure:"content"`
	Output   OutputConfig   `json:"output" yaml:"output" mapstructure:"output"`
	Serve    ServeConfig    `json:"serve" yaml:"serve" mapstructure:"serve"`
}

// ApplyDefaults fills zero-valued fields with working defaults.
func (c *Config) ApplyDefaults() {
	if c.Feeds.Arxiv.Categories == "" {
		c.Feeds.Arxiv.Categories = "cs.AI+cs.CV+cs.CL+cs.LG"
	}
	if c.Feeds.Arxiv.MaxPapers <= 0 {
		c.Feeds.Arxiv.MaxPapers = 200
	}
	if c.Feeds.Arxiv.Timeout <= 0 {
		c.Feeds.Arxiv.Timeout = 30 * time.Second
	}
	if c.Feeds.Journals.MaxPerJournal <= 0 {
		c.Feeds.Journals.MaxPerJournal = 30
	}
	if c.Feeds.Journals.Timeout <= 0 {
		c.Feeds.Journals.Timeout = 30 * time.Second
	}
	for _, b := range []*BackendConfig{&c.Backends.Filter, &c.Backends.Analysis, &c.Backends.Narrative} {
		if b.Gateway.MaxConcurrent <= 0 {
			b.Gateway.MaxConcurrent = 5
		}
		if b.Gateway.Window <= 0 {
			b.Gateway.Window = time.Minute
		}
		if b.Gateway.Timeout <= 0 {
			b.Gateway.Timeout = 120 * time.Second
		}
		if b.Gateway.Retry.MaxAttempts <= 0 {
			b.Gateway.Retry.MaxAttempts = 3
		}
		if b.Gateway.Retry.BaseDelay <= 0 {
			b.Gateway.Retry.BaseDelay = 2 * time.Second
		}
		if b.Gateway.Retry.MaxDelay <= 0 {
			b.Gateway.Retry.MaxDelay = 60 * time.Second
		}
		if b.Gateway.Retry.Jitter <= 0 {
			b.Gateway.Retry.Jitter = 0.2
		}
		if b.LLM.Temperature == 0 {
			b.LLM.Temperature = 0.1
		}
	}
	if c.Backends.Analysis.LLM.Capability == "" {
		c.Backends.Analysis.LLM.Capability = CapabilityContent
	}
	if c.History.Path == "" {
		c.History.Path = "cache/history.db"
	}
	if c.History.RetentionDays <= 0 {
		c.History.RetentionDays = 30
	}
	if c.Content.CacheDir == "" {
		c.Content.CacheDir = "cache/pdfs"
	}
	if c.Content.MaxSizeMB <= 0 {
		c.Content.MaxSizeMB = 50
	}
	if c.Content.Timeout <= 0 {
		c.Content.Timeout = 120 * time.Second
	}
	if c.Output.Language == "" {
		c.Output.Language = "English"
	}
	if c.Output.ReportsDir == "" {
		c.Output.ReportsDir = "reports"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8080"
	}
}
