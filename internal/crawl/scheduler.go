// Package crawl drives one scrape session: it walks the seed's site with a
// bounded colly collector, classifies every fetched page, extracts and
// persists accepted articles, and resolves their images. A scheduler is
// one-shot; the pipeline creates a fresh one per session.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/CyborPunk-2077/article-scraper/internal/classify"
	"github.com/CyborPunk-2077/article-scraper/internal/config"
	"github.com/CyborPunk-2077/article-scraper/internal/domain"
	"github.com/CyborPunk-2077/article-scraper/internal/extract"
	"github.com/CyborPunk-2077/article-scraper/internal/frontier"
	"github.com/CyborPunk-2077/article-scraper/internal/images"
	"github.com/CyborPunk-2077/article-scraper/internal/logger"
	"github.com/CyborPunk-2077/article-scraper/internal/logs"
	"github.com/CyborPunk-2077/article-scraper/internal/session"
	"github.com/CyborPunk-2077/article-scraper/internal/storage"
	colly "github.com/gocolly/colly/v2"
)

// collectorDrainTimeout bounds the wait for in-flight fetches after the run
// context is cancelled.
const collectorDrainTimeout = 10 * time.Second

// Deps bundles the collaborators shared across scheduler runs. They are all
// safe for concurrent use; per-session state lives in the scheduler itself.
type Deps struct {
	Store     storage.BlobStore
	Extractor *extract.Extractor
	Resolver  *images.Resolver
	Recorder  *logs.Recorder
	Logger    logger.Interface
}

// Scheduler runs the crawl for one session.
type Scheduler struct {
	cfg  config.CrawlerConfig
	sess *session.Session
	deps Deps
	log  logger.Interface

	collector  *colly.Collector
	signals    *SignalCoordinator
	classifier *classify.Classifier

	// visited dedups enqueued URLs, accepted dedups persisted articles;
	// both keyed by normalized URL and owned by this session alone.
	visited  *frontier.Set
	accepted *frontier.Set

	// host of the seed; discovered links on other hosts are dropped
	host string
}

// NewScheduler creates a scheduler for the session. The seed URL must have
// been validated already; an unresolvable host still fails here.
func NewScheduler(cfg *config.Config, sess *session.Session, deps Deps) (*Scheduler, error) {
	host, err := frontier.Host(sess.SeedURL())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSeed, err)
	}

	accepted := frontier.NewSet()

	return &Scheduler{
		cfg:        cfg.Crawler,
		sess:       sess,
		deps:       deps,
		log:        deps.Logger.WithComponent("crawl"),
		signals:    NewSignalCoordinator(),
		classifier: classify.New(cfg.Classify, accepted),
		visited:    frontier.NewSet(),
		accepted:   accepted,
		host:       host,
	}, nil
}

// ValidateSeed parses and checks a starting URL. Errors wrap ErrInvalidSeed.
func ValidateSeed(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty url", domain.ErrInvalidSeed)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSeed, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidSeed, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing host", domain.ErrInvalidSeed)
	}

	return parsed, nil
}

// Run crawls until the target is reached, the frontier drains, or a stop is
// observed, then moves the session to its terminal status. It blocks for the
// duration of the crawl.
func (s *Scheduler) Run(ctx context.Context) {
	s.sess.MarkRunning()
	s.deps.Recorder.Info(logs.StageScrape, "Session started",
		"session_id", s.sess.ID(),
		"seed", s.sess.SeedURL(),
		"target", s.sess.Target(),
	)

	collector, err := s.buildCollector(ctx)
	if err != nil {
		s.deps.Recorder.Error(logs.StageScrape, "Collector setup failed",
			"session_id", s.sess.ID(),
			"error", err.Error(),
		)
		s.sess.MarkFailed(err)
		return
	}
	s.collector = collector
	s.setupCallbacks(ctx)

	// Seed counts as visited so pages linking back to it are not re-enqueued.
	if normalized, normErr := frontier.Normalize(s.sess.SeedURL()); normErr == nil {
		s.visited.Add(normalized)
	}

	// Relay stop requests and context cancellation to the abort channel.
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-s.sess.StopRequested():
			s.deps.Recorder.Info(logs.StageScrape, "Stop requested",
				"session_id", s.sess.ID(),
			)
			s.signals.SignalAbort()
		case <-ctx.Done():
			s.signals.SignalAbort()
		case <-watchDone:
		}
	}()
	defer close(watchDone)

	if visitErr := s.collector.Visit(s.sess.SeedURL()); visitErr != nil {
		s.deps.Recorder.Error(logs.StageScrape, "Seed visit failed",
			"session_id", s.sess.ID(),
			"seed", s.sess.SeedURL(),
			"error", visitErr.Error(),
		)
		s.sess.MarkFailed(fmt.Errorf("visit seed: %w", visitErr))
		return
	}

	waitDone := make(chan struct{})
	go func() {
		s.collector.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-ctx.Done():
		s.signals.SignalAbort()
		select {
		case <-waitDone:
		case <-time.After(collectorDrainTimeout):
			s.log.Warn("Collector did not drain after cancellation",
				"session_id", s.sess.ID(),
			)
		}
	}

	s.finish()
}

// finish moves the session to its terminal status and records the summary.
// A session already failed by the accept path keeps that status.
func (s *Scheduler) finish() {
	s.sess.MarkCompleted()

	snap := s.sess.Snapshot()
	s.deps.Recorder.Info(logs.StageScrape, "Session finished",
		"session_id", snap.ID,
		"status", snap.Status,
		"discovered", snap.Counters.Discovered,
		"accepted", snap.Counters.Accepted,
		"rejected", snap.Counters.Rejected,
		"failed", snap.Counters.Failed,
		"images_resolved", snap.Counters.ImagesResolved,
	)
}

// fail marks the session failed and aborts the crawl. Reserved for
// session-fatal conditions; per-URL failures only touch counters.
func (s *Scheduler) fail(err error) {
	s.deps.Recorder.Error(logs.StageScrape, "Session failed",
		"session_id", s.sess.ID(),
		"error", err.Error(),
	)
	s.sess.MarkFailed(err)
	s.signals.SignalAbort()
}
