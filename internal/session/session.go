// Package session holds the in-memory arena of scrape sessions. Every
// mutation of a session's status or counters goes through the session's
// own serialized update path; readers get value-copy snapshots.
package session

import (
	"sync"
	"time"
)

// Session statuses. Stop requests pass through stopping before the
// scheduler confirms the terminal stopped status.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusStopping  = "stopping"
	StatusCompleted = "completed"
	StatusStopped   = "stopped"
	StatusFailed    = "failed"
)

// Stage states for the convert and summarize stages.
const (
	StageIdle      = "idle"
	StageRunning   = "running"
	StageCompleted = "completed"
	StageFailed    = "failed"
)

// Counters are the per-session progress counts.
type Counters struct {
	// Discovered pages handed to the classifier
	Discovered int `json:"discovered"`
	// Accepted article records persisted
	Accepted int `json:"accepted"`
	// Rejected pages (url shape, thin content, duplicates)
	Rejected int `json:"rejected"`
	// Failed fetches after retries, plus extraction failures
	Failed int `json:"failed"`
	// ImagesResolved articles with a validated image
	ImagesResolved int `json:"images_resolved"`
}

// StageState tracks one post-scrape stage run.
type StageState struct {
	State      string    `json:"state"`
	Processed  int       `json:"processed"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Snapshot is a value copy of a session's observable state.
type Snapshot struct {
	ID         string     `json:"id"`
	SeedURL    string     `json:"seed_url"`
	Status     string     `json:"status"`
	Target     int        `json:"target"`
	Counters   Counters   `json:"counters"`
	Progress   float64    `json:"progress"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  time.Time  `json:"started_at,omitempty"`
	FinishedAt time.Time  `json:"finished_at,omitempty"`
	Convert    StageState `json:"convert"`
	Summarize  StageState `json:"summarize"`
}

// Session is one scrape session's mutable state.
type Session struct {
	mu sync.RWMutex

	id         string
	seedURL    string
	target     int
	status     string
	counters   Counters
	failure    string
	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time
	convert    StageState
	summarize  StageState

	stopOnce sync.Once
	stopCh   chan struct{}
}

func newSession(id, seedURL string, target int, now time.Time) *Session {
	return &Session{
		id:        id,
		seedURL:   seedURL,
		target:    target,
		status:    StatusPending,
		createdAt: now,
		convert:   StageState{State: StageIdle},
		summarize: StageState{State: StageIdle},
		stopCh:    make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SeedURL returns the starting URL.
func (s *Session) SeedURL() string { return s.seedURL }

// Target returns the article target count.
func (s *Session) Target() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target
}

// Status returns the current status.
func (s *Session) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// StopRequested returns the channel closed when a stop is requested.
func (s *Session) StopRequested() <-chan struct{} {
	return s.stopCh
}

// Stopping reports whether a stop has been requested.
func (s *Session) Stopping() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// MarkRunning transitions pending -> running.
func (s *Session) MarkRunning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusPending {
		return
	}
	s.status = StatusRunning
	s.startedAt = time.Now()
}

// RequestStop closes the stop channel and moves a live session to
// stopping. Duplicate calls are no-ops.
func (s *Session) RequestStop() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusPending || s.status == StatusRunning {
		s.status = StatusStopping
	}
}

// MarkCompleted moves the session to its terminal status: stopped when a
// stop was requested, completed otherwise. The scheduler calls it exactly
// once, after all in-flight work has drained.
func (s *Session) MarkCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal() {
		return
	}
	if s.Stopping() {
		s.status = StatusStopped
	} else {
		s.status = StatusCompleted
	}
	s.finishedAt = time.Now()
}

// MarkFailed moves the session to failed with the reason.
func (s *Session) MarkFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal() {
		return
	}
	s.status = StatusFailed
	if err != nil {
		s.failure = err.Error()
	}
	s.finishedAt = time.Now()
}

func (s *Session) terminal() bool {
	switch s.status {
	case StatusCompleted, StatusStopped, StatusFailed:
		return true
	default:
		return false
	}
}

// IncDiscovered increments the discovered counter.
func (s *Session) IncDiscovered() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Discovered++
}

// IncAccepted increments the accepted counter and returns the new value so
// the scheduler can check the target atomically with the increment.
func (s *Session) IncAccepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Accepted++
	return s.counters.Accepted
}

// IncRejected increments the rejected counter.
func (s *Session) IncRejected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Rejected++
}

// IncFailed increments the failed counter.
func (s *Session) IncFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Failed++
}

// IncImagesResolved increments the resolved-images counter.
func (s *Session) IncImagesResolved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.ImagesResolved++
}

// Accepted returns the accepted counter.
func (s *Session) Accepted() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters.Accepted
}

// Snapshot returns a value copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	progress := 0.0
	if s.target > 0 {
		progress = float64(s.counters.Accepted) / float64(s.target)
		if progress > 1 {
			progress = 1
		}
	}

	return Snapshot{
		ID:         s.id,
		SeedURL:    s.seedURL,
		Status:     s.status,
		Target:     s.target,
		Counters:   s.counters,
		Progress:   progress,
		Error:      s.failure,
		CreatedAt:  s.createdAt,
		StartedAt:  s.startedAt,
		FinishedAt: s.finishedAt,
		Convert:    s.convert,
		Summarize:  s.summarize,
	}
}
