package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Crawler defaults.
const (
	DefaultMaxConcurrency = 5
	DefaultMaxDepth       = 2
	DefaultRequestTimeout = "30s"
	DefaultDelay          = "1s"
	DefaultRandomDelay    = "500ms"
	DefaultMaxRetries     = 3
	DefaultRetryBackoff   = "2s"
	DefaultMaxBodySize    = 10 * 1024 * 1024
	DefaultUserAgent      = "article-scraper/1.0"
	DefaultTargetCount    = 10
)

// Classifier defaults.
const (
	DefaultMinWordCount  = 150
	DefaultMinParagraphs = 2
	DefaultMinSlugTokens = 4
)

// Image resolver defaults.
const (
	DefaultImageMinWidth     = 200
	DefaultImageMinHeight    = 200
	DefaultImageMaxBytes     = 5 * 1024 * 1024
	DefaultImageFetchTimeout = "15s"
	DefaultImageMaxScan      = 8
	DefaultJPEGQuality       = 85
	DefaultMinAspect         = 0.5
	DefaultMaxAspect         = 2.2
)

// InitializeViper initializes viper from the environment, an optional .env
// file, and an optional config.yaml. An explicit cfgFile path takes
// precedence over the default search paths. Must be called before Load().
func InitializeViper(cfgFile string) {
	loadEnvFile()
	setupViper(cfgFile)
	setDefaults()
	readConfigFile()
}

// loadEnvFile loads .env file (ignores error if file doesn't exist).
func loadEnvFile() {
	_ = godotenv.Load()
}

// setupViper configures viper for environment variable and config file reading.
// SetConfigName resets any explicit config file, so the two modes branch.
func setupViper(cfgFile string) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}
}

// readConfigFile reads config file (ignores error if file doesn't exist).
func readConfigFile() {
	_ = viper.ReadInConfig()
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("app", map[string]any{
		"name":        "article-scraper",
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":       "info",
		"development": false,
		"encoding":    "console",
	})

	viper.SetDefault("crawler", map[string]any{
		"max_concurrency":      DefaultMaxConcurrency,
		"max_depth":            DefaultMaxDepth,
		"request_timeout":      DefaultRequestTimeout,
		"delay":                DefaultDelay,
		"random_delay":         DefaultRandomDelay,
		"max_retries":          DefaultMaxRetries,
		"retry_backoff":        DefaultRetryBackoff,
		"max_body_size":        DefaultMaxBodySize,
		"user_agent":           DefaultUserAgent,
		"default_target_count": DefaultTargetCount,
	})

	viper.SetDefault("classify", map[string]any{
		"min_word_count":  DefaultMinWordCount,
		"min_paragraphs":  DefaultMinParagraphs,
		"min_slug_tokens": DefaultMinSlugTokens,
	})

	viper.SetDefault("images", map[string]any{
		"min_width":     DefaultImageMinWidth,
		"min_height":    DefaultImageMinHeight,
		"max_bytes":     DefaultImageMaxBytes,
		"fetch_timeout": DefaultImageFetchTimeout,
		"max_scan":      DefaultImageMaxScan,
		"jpeg_quality":  DefaultJPEGQuality,
		"min_aspect":    DefaultMinAspect,
		"max_aspect":    DefaultMaxAspect,
	})

	viper.SetDefault("storage", map[string]any{
		"endpoint":       "127.0.0.1:9000",
		"access_key":     "",
		"secret_key":     "",
		"use_ssl":        false,
		"region":         "us-east-1",
		"raw_bucket":     "articles-raw",
		"text_bucket":    "articles-text",
		"summary_bucket": "articles-summary",
	})

	viper.SetDefault("inference", map[string]any{
		"endpoint":          "http://127.0.0.1:8500",
		"api_key":           "",
		"timeout":           "60s",
		"min_summary_chars": 100,
		"max_summary_chars": 1024,
	})

	viper.SetDefault("stages", map[string]any{
		"convert_workers":   4,
		"summarize_workers": 2,
	})

	viper.SetDefault("server", map[string]any{
		"address":             ":8080",
		"read_header_timeout": "10s",
		"shutdown_timeout":    "30s",
	})
}
