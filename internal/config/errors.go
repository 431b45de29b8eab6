package config

import "errors"

// Validation errors returned by the config package.
var (
	ErrInvalidConcurrency = errors.New("max_concurrency must be positive")
	ErrInvalidMaxDepth    = errors.New("max_depth must be positive")
	ErrInvalidTimeout     = errors.New("request_timeout must be positive")
	ErrInvalidRetries     = errors.New("max_retries must be non-negative")
	ErrInvalidTargetCount = errors.New("default_target_count must be positive")
	ErrInvalidThreshold   = errors.New("classifier thresholds must be positive")
	ErrInvalidImageBounds = errors.New("image size bounds must be positive")
	ErrInvalidJPEGQuality = errors.New("jpeg_quality must be between 1 and 100")
	ErrInvalidAspectRange = errors.New("aspect range must be positive with min below max")
	ErrMissingEndpoint    = errors.New("storage endpoint is required")
	ErrMissingBucket      = errors.New("all three bucket names are required")
	ErrInvalidWorkerCount = errors.New("stage worker counts must be positive")
)
