// Package config provides configuration management for the scraper pipeline.
// It handles loading, validation, and access to configuration values from
// environment variables, an optional .env file, and an optional YAML file.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/CyborPunk-2077/article-scraper/internal/logger"
)

// Config represents the application configuration.
type Config struct {
	// App holds application-level settings
	App AppConfig `mapstructure:"app"`
	// Logger holds logging settings
	Logger logger.Config `mapstructure:"logger"`
	// Crawler holds crawl scheduler settings
	Crawler CrawlerConfig `mapstructure:"crawler"`
	// Classify holds article classifier thresholds
	Classify ClassifyConfig `mapstructure:"classify"`
	// Images holds image resolver settings
	Images ImagesConfig `mapstructure:"images"`
	// Storage holds blob store settings
	Storage StorageConfig `mapstructure:"storage"`
	// Inference holds AI inference client settings
	Inference InferenceConfig `mapstructure:"inference"`
	// Stages holds convert/summarize stage settings
	Stages StagesConfig `mapstructure:"stages"`
	// Server holds HTTP server settings
	Server ServerConfig `mapstructure:"server"`
	// Schedule holds recurring scrape settings
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// CrawlerConfig holds the crawl scheduler settings.
type CrawlerConfig struct {
	// MaxConcurrency is the maximum number of concurrent fetches per session
	MaxConcurrency int `mapstructure:"max_concurrency"`
	// MaxDepth is the maximum link-discovery depth from the seed
	MaxDepth int `mapstructure:"max_depth"`
	// RequestTimeout is the per-fetch timeout
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// Delay is the delay between requests to the same host
	Delay time.Duration `mapstructure:"delay"`
	// RandomDelay is the random jitter added to Delay
	RandomDelay time.Duration `mapstructure:"random_delay"`
	// MaxRetries is the number of retries for a transiently failed fetch
	MaxRetries int `mapstructure:"max_retries"`
	// RetryBackoff is the sleep between retries of the same URL
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	// MaxBodySize is the maximum response body size in bytes
	MaxBodySize int `mapstructure:"max_body_size"`
	// UserAgent is sent with every fetch
	UserAgent string `mapstructure:"user_agent"`
	// DefaultTargetCount is used when a scrape request carries no target
	DefaultTargetCount int `mapstructure:"default_target_count"`
}

// ClassifyConfig holds the article classifier thresholds.
type ClassifyConfig struct {
	// MinWordCount is the minimum extracted word count for an article
	MinWordCount int `mapstructure:"min_word_count"`
	// MinParagraphs is the minimum paragraph count for an article
	MinParagraphs int `mapstructure:"min_paragraphs"`
	// MinSlugTokens is the minimum hyphen-separated token count for an
	// article-like URL slug
	MinSlugTokens int `mapstructure:"min_slug_tokens"`
}

// ImagesConfig holds the image resolver settings.
type ImagesConfig struct {
	// MinWidth and MinHeight are the minimum accepted pixel dimensions
	MinWidth  int `mapstructure:"min_width"`
	MinHeight int `mapstructure:"min_height"`
	// MaxBytes is the maximum accepted image byte size
	MaxBytes int64 `mapstructure:"max_bytes"`
	// FetchTimeout bounds each candidate download
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	// MaxScan is the number of <img> elements the fallback scan considers
	MaxScan int `mapstructure:"max_scan"`
	// JPEGQuality is the quality of the normalized output image
	JPEGQuality int `mapstructure:"jpeg_quality"`
	// MinAspect and MaxAspect bound the preferred width/height ratio
	MinAspect float64 `mapstructure:"min_aspect"`
	MaxAspect float64 `mapstructure:"max_aspect"`
}

// StorageConfig holds the blob store settings.
type StorageConfig struct {
	// Endpoint is the S3-compatible endpoint, host:port
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
	// RawBucket holds article records, fetched HTML, and images
	RawBucket string `mapstructure:"raw_bucket"`
	// TextBucket holds converted plain-text artifacts
	TextBucket string `mapstructure:"text_bucket"`
	// SummaryBucket holds summary and caption artifacts
	SummaryBucket string `mapstructure:"summary_bucket"`
}

// InferenceConfig holds the AI inference client settings.
type InferenceConfig struct {
	// Endpoint is the base URL of the inference service
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	// Timeout bounds each inference call
	Timeout time.Duration `mapstructure:"timeout"`
	// MinSummaryChars is the minimum text length worth summarizing
	MinSummaryChars int `mapstructure:"min_summary_chars"`
	// MaxSummaryChars caps the text sent to the summarizer
	MaxSummaryChars int `mapstructure:"max_summary_chars"`
}

// StagesConfig holds convert/summarize stage settings.
type StagesConfig struct {
	// ConvertWorkers bounds convert-stage concurrency per session
	ConvertWorkers int `mapstructure:"convert_workers"`
	// SummarizeWorkers bounds summarize-stage concurrency per session
	SummarizeWorkers int `mapstructure:"summarize_workers"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// Address is the listen address, host:port
	Address string `mapstructure:"address"`
	// ReadHeaderTimeout bounds header reads on incoming requests
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ScheduleConfig holds recurring scrape settings.
type ScheduleConfig struct {
	// Jobs is the list of recurring scrapes started by the serve command
	Jobs []ScheduleJob `mapstructure:"jobs"`
}

// ScheduleJob describes one recurring scrape.
type ScheduleJob struct {
	// Name identifies the job in logs
	Name string `mapstructure:"name" json:"name"`
	// URL is the seed URL
	URL string `mapstructure:"url" json:"url"`
	// TargetCount is the article target per run
	TargetCount int `mapstructure:"target_count" json:"target_count"`
	// Cron is the schedule expression
	Cron string `mapstructure:"cron" json:"cron"`
}

// Load unmarshals the current viper state into a validated Config.
// InitializeViper must have been called first.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Schedule jobs arrive from YAML as a list of raw maps; viper's
	// unmarshal does not reach into them reliably, so decode explicitly.
	if raw := viper.Get("schedule.jobs"); raw != nil {
		jobs, err := ConvertValue[[]ScheduleJob](raw)
		if err != nil {
			return nil, fmt.Errorf("decode schedule jobs: %w", err)
		}
		cfg.Schedule.Jobs = jobs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Crawler.Validate(); err != nil {
		return fmt.Errorf("crawler: %w", err)
	}
	if err := c.Classify.Validate(); err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	if err := c.Images.Validate(); err != nil {
		return fmt.Errorf("images: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Stages.Validate(); err != nil {
		return fmt.Errorf("stages: %w", err)
	}
	return nil
}

// Validate validates the crawler configuration.
func (c *CrawlerConfig) Validate() error {
	if c.MaxConcurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.MaxDepth < 1 {
		return ErrInvalidMaxDepth
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRetries < 0 {
		return ErrInvalidRetries
	}
	if c.DefaultTargetCount < 1 {
		return ErrInvalidTargetCount
	}
	return nil
}

// Validate validates the classifier thresholds.
func (c *ClassifyConfig) Validate() error {
	if c.MinWordCount < 1 || c.MinParagraphs < 1 || c.MinSlugTokens < 1 {
		return ErrInvalidThreshold
	}
	return nil
}

// Validate validates the image resolver settings.
func (c *ImagesConfig) Validate() error {
	if c.MinWidth < 1 || c.MinHeight < 1 {
		return ErrInvalidImageBounds
	}
	if c.MaxBytes <= 0 {
		return ErrInvalidImageBounds
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return ErrInvalidJPEGQuality
	}
	if c.MinAspect <= 0 || c.MaxAspect <= c.MinAspect {
		return ErrInvalidAspectRange
	}
	return nil
}

// Validate validates the blob store settings.
func (c *StorageConfig) Validate() error {
	if c.Endpoint == "" {
		return ErrMissingEndpoint
	}
	if c.RawBucket == "" || c.TextBucket == "" || c.SummaryBucket == "" {
		return ErrMissingBucket
	}
	return nil
}

// Validate validates the stage settings.
func (c *StagesConfig) Validate() error {
	if c.ConvertWorkers < 1 || c.SummarizeWorkers < 1 {
		return ErrInvalidWorkerCount
	}
	return nil
}
