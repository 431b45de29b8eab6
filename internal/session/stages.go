package session

import "time"

// BeginConvert moves the convert stage to running, reporting false when a
// run is already in flight.
func (s *Session) BeginConvert() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.convert.State == StageRunning {
		return false
	}
	s.convert = StageState{State: StageRunning, StartedAt: time.Now()}
	return true
}

// FinishConvert records the convert stage outcome.
func (s *Session) FinishConvert(processed, failed int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convert.Processed = processed
	s.convert.Failed = failed
	s.convert.FinishedAt = time.Now()
	if err != nil {
		s.convert.State = StageFailed
		return
	}
	s.convert.State = StageCompleted
}

// ConvertState returns a copy of the convert stage state.
func (s *Session) ConvertState() StageState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.convert
}

// BeginSummarize moves the summarize stage to running, reporting false
// when a run is already in flight.
func (s *Session) BeginSummarize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summarize.State == StageRunning {
		return false
	}
	s.summarize = StageState{State: StageRunning, StartedAt: time.Now()}
	return true
}

// FinishSummarize records the summarize stage outcome.
func (s *Session) FinishSummarize(processed, failed int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summarize.Processed = processed
	s.summarize.Failed = failed
	s.summarize.FinishedAt = time.Now()
	if err != nil {
		s.summarize.State = StageFailed
		return
	}
	s.summarize.State = StageCompleted
}

// SummarizeState returns a copy of the summarize stage state.
func (s *Session) SummarizeState() StageState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summarize
}
