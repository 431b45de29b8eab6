package domain

import "errors"

// Error taxonomy shared by the pipeline stages. Per-article errors
// (fetch, extraction, image) are recorded and never abort a session;
// only an invalid seed or an unavailable blob store is session-fatal.
var (
	// ErrFetchFailed is returned when a page fetch exhausts its retries.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrExtractionFailed is returned when no extraction strategy yields usable text.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrImageUnresolved is returned when no image candidate passes validation.
	ErrImageUnresolved = errors.New("image unresolved")

	// ErrSessionNotReady is returned when a stage is invoked before its
	// prerequisite stage produced artifacts.
	ErrSessionNotReady = errors.New("session not ready")

	// ErrSessionNotFound is returned when the session id is unknown.
	ErrSessionNotFound = errors.New("session not found")

	// ErrStageInProgress is returned when a convert or summarize run is
	// requested while the previous run is still in flight.
	ErrStageInProgress = errors.New("stage already in progress")

	// ErrInvalidSeed is returned when the starting URL is malformed.
	ErrInvalidSeed = errors.New("invalid seed URL")
)
