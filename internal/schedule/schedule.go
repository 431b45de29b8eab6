// Package schedule runs recurring scrapes defined in configuration.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/CyborPunk-2077/article-scraper/internal/config"
	"github.com/CyborPunk-2077/article-scraper/internal/logger"
)

// Starter launches scrape sessions for due jobs.
type Starter interface {
	StartScrape(ctx context.Context, seedURL string, targetCount int) (string, error)
}

// Runner registers the configured jobs with a cron scheduler and starts a
// scrape session on every tick. Sessions started this way are ordinary
// sessions; overlapping runs of the same job are allowed.
type Runner struct {
	jobs    []config.ScheduleJob
	starter Starter
	log     logger.Interface

	cron    *cron.Cron
	parser  cron.Parser
	entries map[string]cron.EntryID
}

// NewRunner creates a runner for the configured jobs. Expressions use the
// standard 5-field format (minute hour day month weekday) plus descriptors
// like @hourly and @every.
func NewRunner(jobs []config.ScheduleJob, starter Starter, log logger.Interface) *Runner {
	parser := cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
	return &Runner{
		jobs:    jobs,
		starter: starter,
		log:     log.WithComponent("schedule"),
		cron:    cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		parser:  parser,
		entries: make(map[string]cron.EntryID),
	}
}

// Start registers every job and starts the scheduler. A job that fails to
// register stops the whole runner; a half-scheduled config is worse than a
// loud startup failure.
func (r *Runner) Start() error {
	for _, job := range r.jobs {
		if err := r.add(job); err != nil {
			return fmt.Errorf("schedule job %q: %w", job.Name, err)
		}
	}

	r.cron.Start()
	r.log.Info("Schedule started", "jobs", len(r.entries))
	return nil
}

// Stop stops the scheduler and waits for any tick in flight to return.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.log.Info("Schedule stopped")
}

// Jobs returns the number of registered jobs.
func (r *Runner) Jobs() int {
	return len(r.entries)
}

func (r *Runner) add(job config.ScheduleJob) error {
	if job.URL == "" {
		return errors.New("job has no url")
	}

	schedule, err := r.parser.Parse(job.Cron)
	if err != nil {
		return fmt.Errorf("parse cron expression %q: %w", job.Cron, err)
	}

	entryID, err := r.cron.AddFunc(job.Cron, func() { r.runJob(job) })
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	r.entries[job.Name] = entryID

	r.log.Info("Job scheduled",
		"job", job.Name,
		"url", job.URL,
		"cron", job.Cron,
		"next_run", schedule.Next(time.Now()).Format("2006-01-02 15:04:05"),
	)
	return nil
}

func (r *Runner) runJob(job config.ScheduleJob) {
	id, err := r.starter.StartScrape(context.Background(), job.URL, job.TargetCount)
	if err != nil {
		r.log.Error("Scheduled scrape failed to start",
			"job", job.Name,
			"url", job.URL,
			"error", err,
		)
		return
	}
	r.log.Info("Scheduled scrape started",
		"job", job.Name,
		"session_id", id,
		"url", job.URL,
	)
}
