package crawl

import "sync"

// SignalCoordinator owns the abort channel for one scheduler run. The
// channel is closed at most once; every queued request checks it before
// fetching.
type SignalCoordinator struct {
	abortChan chan struct{}
	abortOnce sync.Once
}

// NewSignalCoordinator creates a coordinator with an open abort channel.
func NewSignalCoordinator() *SignalCoordinator {
	return &SignalCoordinator{
		abortChan: make(chan struct{}),
	}
}

// AbortChannel returns the abort signal channel.
func (sc *SignalCoordinator) AbortChannel() <-chan struct{} {
	return sc.abortChan
}

// SignalAbort signals all goroutines to abort.
// Safe to call multiple times - only the first call has effect.
func (sc *SignalCoordinator) SignalAbort() {
	sc.abortOnce.Do(func() {
		close(sc.abortChan)
	})
}

// Aborted reports whether the abort signal has fired.
func (sc *SignalCoordinator) Aborted() bool {
	select {
	case <-sc.abortChan:
		return true
	default:
		return false
	}
}
