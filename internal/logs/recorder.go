package logs

import (
	"time"

	"github.com/CyborPunk-2077/article-scraper/internal/logger"
)

// Recorder fans stage activity out to the application logger and the
// stage's ring buffer. Safe for concurrent use.
type Recorder struct {
	logger  logger.Interface
	buffers map[Stage]*circularBuffer
}

// NewRecorder creates a recorder with one buffer per pipeline stage.
func NewRecorder(log logger.Interface) *Recorder {
	return &Recorder{
		logger: log,
		buffers: map[Stage]*circularBuffer{
			StageScrape:    newBuffer(scrapeBufferSize),
			StageConvert:   newBuffer(convertBufferSize),
			StageSummarize: newBuffer(summarizeBufferSize),
		},
	}
}

// Info records an info-level line for the stage.
func (r *Recorder) Info(stage Stage, msg string, fields ...any) {
	r.write(stage, "info", msg)
	r.logger.Info(msg, append(fields, "stage", string(stage))...)
}

// Warn records a warn-level line for the stage.
func (r *Recorder) Warn(stage Stage, msg string, fields ...any) {
	r.write(stage, "warn", msg)
	r.logger.Warn(msg, append(fields, "stage", string(stage))...)
}

// Error records an error-level line for the stage.
func (r *Recorder) Error(stage Stage, msg string, fields ...any) {
	r.write(stage, "error", msg)
	r.logger.Error(msg, append(fields, "stage", string(stage))...)
}

// Recent returns up to n newest entries for the stage.
func (r *Recorder) Recent(stage Stage, n int) []Entry {
	buf, ok := r.buffers[stage]
	if !ok {
		return nil
	}
	return buf.Recent(n)
}

func (r *Recorder) write(stage Stage, level, msg string) {
	buf, ok := r.buffers[stage]
	if !ok {
		return
	}
	buf.Write(Entry{
		Timestamp: time.Now(),
		Stage:     stage,
		Level:     level,
		Message:   msg,
	})
}
