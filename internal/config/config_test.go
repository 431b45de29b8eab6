package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/CyborPunk-2077/article-scraper/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	config.InitializeViper("")
	t.Cleanup(viper.Reset)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "article-scraper", cfg.App.Name)
	require.Equal(t, config.DefaultMaxConcurrency, cfg.Crawler.MaxConcurrency)
	require.Equal(t, 30*time.Second, cfg.Crawler.RequestTimeout)
	require.Equal(t, config.DefaultMinWordCount, cfg.Classify.MinWordCount)
	require.Equal(t, config.DefaultJPEGQuality, cfg.Images.JPEGQuality)
	require.Equal(t, "articles-raw", cfg.Storage.RawBucket)
	require.Equal(t, "articles-text", cfg.Storage.TextBucket)
	require.Equal(t, "articles-summary", cfg.Storage.SummaryBucket)
	require.Equal(t, 100, cfg.Inference.MinSummaryChars)
	require.Equal(t, 1024, cfg.Inference.MaxSummaryChars)
	require.Empty(t, cfg.Schedule.Jobs)
}

func TestLoad_ScheduleJobs(t *testing.T) {
	viper.Reset()
	config.InitializeViper("")
	t.Cleanup(viper.Reset)

	viper.Set("schedule.jobs", []map[string]any{
		{
			"name":         "morning-news",
			"url":          "https://news.example.com",
			"target_count": 25,
			"cron":         "0 6 * * *",
		},
	})

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Len(t, cfg.Schedule.Jobs, 1)
	job := cfg.Schedule.Jobs[0]
	require.Equal(t, "morning-news", job.Name)
	require.Equal(t, "https://news.example.com", job.URL)
	require.Equal(t, 25, job.TargetCount)
	require.Equal(t, "0 6 * * *", job.Cron)
}

func TestCrawlerConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := config.CrawlerConfig{
		MaxConcurrency:     5,
		MaxDepth:           2,
		RequestTimeout:     30 * time.Second,
		MaxRetries:         3,
		DefaultTargetCount: 10,
	}

	tests := []struct {
		name    string
		mutate  func(c *config.CrawlerConfig)
		wantErr error
	}{
		{
			name:    "valid configuration",
			mutate:  func(*config.CrawlerConfig) {},
			wantErr: nil,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *config.CrawlerConfig) { c.MaxConcurrency = 0 },
			wantErr: config.ErrInvalidConcurrency,
		},
		{
			name:    "zero depth",
			mutate:  func(c *config.CrawlerConfig) { c.MaxDepth = 0 },
			wantErr: config.ErrInvalidMaxDepth,
		},
		{
			name:    "missing timeout",
			mutate:  func(c *config.CrawlerConfig) { c.RequestTimeout = 0 },
			wantErr: config.ErrInvalidTimeout,
		},
		{
			name:    "negative retries",
			mutate:  func(c *config.CrawlerConfig) { c.MaxRetries = -1 },
			wantErr: config.ErrInvalidRetries,
		},
		{
			name:    "zero target count",
			mutate:  func(c *config.CrawlerConfig) { c.DefaultTargetCount = 0 },
			wantErr: config.ErrInvalidTargetCount,
		},
	}

	for i := range tests {
		test := &tests[i]
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			test.mutate(&cfg)
			err := cfg.Validate()
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestImagesConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := config.ImagesConfig{
		MinWidth:    200,
		MinHeight:   200,
		MaxBytes:    5 * 1024 * 1024,
		JPEGQuality: 85,
		MinAspect:   0.5,
		MaxAspect:   2.2,
	}

	tests := []struct {
		name    string
		mutate  func(c *config.ImagesConfig)
		wantErr error
	}{
		{
			name:    "valid configuration",
			mutate:  func(*config.ImagesConfig) {},
			wantErr: nil,
		},
		{
			name:    "zero min width",
			mutate:  func(c *config.ImagesConfig) { c.MinWidth = 0 },
			wantErr: config.ErrInvalidImageBounds,
		},
		{
			name:    "zero max bytes",
			mutate:  func(c *config.ImagesConfig) { c.MaxBytes = 0 },
			wantErr: config.ErrInvalidImageBounds,
		},
		{
			name:    "quality above range",
			mutate:  func(c *config.ImagesConfig) { c.JPEGQuality = 101 },
			wantErr: config.ErrInvalidJPEGQuality,
		},
		{
			name:    "inverted aspect range",
			mutate:  func(c *config.ImagesConfig) { c.MaxAspect = 0.1 },
			wantErr: config.ErrInvalidAspectRange,
		},
	}

	for i := range tests {
		test := &tests[i]
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			test.mutate(&cfg)
			err := cfg.Validate()
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestStorageConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := config.StorageConfig{
		Endpoint:      "127.0.0.1:9000",
		RawBucket:     "articles-raw",
		TextBucket:    "articles-text",
		SummaryBucket: "articles-summary",
	}

	tests := []struct {
		name    string
		mutate  func(c *config.StorageConfig)
		wantErr error
	}{
		{
			name:    "valid configuration",
			mutate:  func(*config.StorageConfig) {},
			wantErr: nil,
		},
		{
			name:    "missing endpoint",
			mutate:  func(c *config.StorageConfig) { c.Endpoint = "" },
			wantErr: config.ErrMissingEndpoint,
		},
		{
			name:    "missing raw bucket",
			mutate:  func(c *config.StorageConfig) { c.RawBucket = "" },
			wantErr: config.ErrMissingBucket,
		},
		{
			name:    "missing summary bucket",
			mutate:  func(c *config.StorageConfig) { c.SummaryBucket = "" },
			wantErr: config.ErrMissingBucket,
		},
	}

	for i := range tests {
		test := &tests[i]
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			test.mutate(&cfg)
			err := cfg.Validate()
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConvertValue(t *testing.T) {
	t.Parallel()

	src := []map[string]any{
		{"name": "a", "url": "https://a.example.com", "target_count": "5", "cron": "@hourly"},
	}

	jobs, err := config.ConvertValue[[]config.ScheduleJob](src)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, "a", jobs[0].Name)
	// WeaklyTypedInput coerces the string count.
	require.Equal(t, 5, jobs[0].TargetCount)
}
