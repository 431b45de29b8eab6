package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CyborPunk-2077/article-scraper/internal/logger"
)

// State represents the current state of the pool.
type State int32

const (
	// StateStopped means the pool is not accepting tasks.
	StateStopped State = iota

	// StateRunning means the pool is accepting and executing tasks.
	StateRunning

	// StateDraining means the pool is waiting for in-flight tasks to finish.
	StateDraining
)

// String returns the string representation of a pool state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	default:
		return "unknown"
	}
}

// Task is one unit of stage work. A non-nil return counts the task as
// failed; the pool never aborts other tasks because one failed.
type Task func(ctx context.Context) error

// Pool bounds concurrent task execution with a semaphore.
type Pool struct {
	cfg    Config
	log    logger.Interface
	state  atomic.Int32
	sem    chan struct{}
	wg     sync.WaitGroup
	stopCh chan struct{}

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// Stats is a snapshot of pool counters.
type Stats struct {
	State     State
	Size      int
	Submitted int64
	Completed int64
	Failed    int64
}

// NewPool creates a stopped pool.
func NewPool(cfg Config, log logger.Interface) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pool config: %w", err)
	}

	p := &Pool{
		cfg:    cfg,
		log:    log,
		sem:    make(chan struct{}, cfg.Size),
		stopCh: make(chan struct{}),
	}
	p.state.Store(int32(StateStopped))
	return p, nil
}

// Start moves the pool to running.
func (p *Pool) Start() error {
	if !p.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) {
		return errors.New("pool is already running")
	}
	p.log.Debug("task pool started", "size", p.cfg.Size)
	return nil
}

// Submit schedules one task, blocking while all slots are busy. It returns
// an error when the pool is not running or the context ends before a slot
// frees up; the task's own error only shows up in the counters.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if p.State() != StateRunning {
		return errors.New("pool is not running")
	}
	if task == nil {
		return errors.New("task cannot be nil")
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopCh:
		return errors.New("pool is draining")
	}

	p.submitted.Add(1)
	p.wg.Add(1)

	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()

		if err := task(ctx); err != nil {
			p.failed.Add(1)
			return
		}
		p.completed.Add(1)
	}()

	return nil
}

// Drain stops intake and waits for in-flight tasks, bounded by the drain
// timeout and the context.
func (p *Pool) Drain(ctx context.Context) error {
	if !p.state.CompareAndSwap(int32(StateRunning), int32(StateDraining)) {
		return errors.New("pool is not running")
	}

	close(p.stopCh)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	case <-time.After(p.cfg.DrainTimeout):
		err = errors.New("drain timeout exceeded")
	}

	p.state.Store(int32(StateStopped))
	if err != nil {
		p.log.Warn("task pool drained with pending work", "error", err)
		return err
	}
	return nil
}

// State returns the current pool state.
func (p *Pool) State() State {
	return State(p.state.Load())
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		State:     p.State(),
		Size:      p.cfg.Size,
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
}
