// Package logs provides in-memory activity buffers for the pipeline stages.
// The control surface reads recent entries from these buffers when reporting
// session status; nothing here is persisted.
package logs

import "time"

// Stage identifies which pipeline stage an entry belongs to.
type Stage string

const (
	StageScrape    Stage = "scrape"
	StageConvert   Stage = "convert"
	StageSummarize Stage = "summarize"
)

// Per-stage buffer capacities.
const (
	scrapeBufferSize    = 500
	convertBufferSize   = 200
	summarizeBufferSize = 300
)

// Entry represents a single captured activity line.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Stage     Stage     `json:"stage"`
	Level     string    `json:"level"` // debug, info, warn, error
	Message   string    `json:"message"`
}
