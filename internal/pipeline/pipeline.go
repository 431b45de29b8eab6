// Package pipeline coordinates the externally visible operations of the
// scraper: starting and stopping scrape sessions, reporting their status,
// and running the convert and summarize stages over a session's stored
// artifacts. Stage runs are restartable; artifacts are keyed per article
// and a re-run overwrites the same keys.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CyborPunk-2077/article-scraper/internal/config"
	"github.com/CyborPunk-2077/article-scraper/internal/crawl"
	"github.com/CyborPunk-2077/article-scraper/internal/domain"
	"github.com/CyborPunk-2077/article-scraper/internal/extract"
	"github.com/CyborPunk-2077/article-scraper/internal/images"
	"github.com/CyborPunk-2077/article-scraper/internal/inference"
	"github.com/CyborPunk-2077/article-scraper/internal/logger"
	"github.com/CyborPunk-2077/article-scraper/internal/logs"
	"github.com/CyborPunk-2077/article-scraper/internal/session"
	"github.com/CyborPunk-2077/article-scraper/internal/storage"
	"github.com/CyborPunk-2077/article-scraper/internal/worker"
)

// stageDrainTimeout bounds the wait for in-flight stage tasks once intake
// stops.
const stageDrainTimeout = 10 * time.Minute

// Deps bundles the already-initialized collaborators the pipeline hands to
// its stages.
type Deps struct {
	Arena     *session.Arena
	Store     storage.BlobStore
	Extractor *extract.Extractor
	Resolver  *images.Resolver
	Inference inference.Service
	Recorder  *logs.Recorder
	Logger    logger.Interface
}

// Pipeline exposes the session operations consumed by the control surface
// and the CLI.
type Pipeline struct {
	cfg      *config.Config
	deps     Deps
	arena    *session.Arena
	recorder *logs.Recorder
	log      logger.Interface
}

// New creates a pipeline around the given collaborators.
func New(cfg *config.Config, deps Deps) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		deps:     deps,
		arena:    deps.Arena,
		recorder: deps.Recorder,
		log:      deps.Logger.WithComponent("pipeline"),
	}
}

// StartScrape registers a session for the seed and launches its scrape in
// the background, returning the session id immediately. An invalid seed
// still registers the session so the failure is observable, and the error
// is returned to the caller as well.
func (p *Pipeline) StartScrape(ctx context.Context, seedURL string, targetCount int) (string, error) {
	if targetCount <= 0 {
		targetCount = p.cfg.Crawler.DefaultTargetCount
	}
	sess := p.arena.Create(seedURL, targetCount)

	if _, err := crawl.ValidateSeed(seedURL); err != nil {
		p.failSetup(sess, err)
		return sess.ID(), err
	}

	sched, err := crawl.NewScheduler(p.cfg, sess, crawl.Deps{
		Store:     p.deps.Store,
		Extractor: p.deps.Extractor,
		Resolver:  p.deps.Resolver,
		Recorder:  p.recorder,
		Logger:    p.deps.Logger,
	})
	if err != nil {
		p.failSetup(sess, err)
		return sess.ID(), err
	}

	// The scrape outlives the request that started it.
	go sched.Run(context.Background())

	p.log.Info("Scrape started",
		"session_id", sess.ID(),
		"seed", seedURL,
		"target", targetCount,
	)
	return sess.ID(), nil
}

// Stop requests cancellation of a scrape. It returns immediately; the
// session reaches its terminal status once in-flight fetches drain.
// Duplicate stops are no-ops.
func (p *Pipeline) Stop(ctx context.Context, sessionID string) error {
	sess, err := p.arena.Get(sessionID)
	if err != nil {
		return err
	}
	sess.RequestStop()
	p.log.Info("Stop requested", "session_id", sessionID)
	return nil
}

// Status returns a snapshot of the session's observable state.
func (p *Pipeline) Status(ctx context.Context, sessionID string) (session.Snapshot, error) {
	sess, err := p.arena.Get(sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Sessions returns snapshots of every registered session, newest first.
func (p *Pipeline) Sessions(ctx context.Context) []session.Snapshot {
	return p.arena.Snapshots()
}

// failSetup marks a session failed before its scheduler ever ran.
func (p *Pipeline) failSetup(sess *session.Session, err error) {
	sess.MarkFailed(err)
	p.recorder.Error(logs.StageScrape, "Session failed",
		"session_id", sess.ID(),
		"error", err.Error(),
	)
}

// stageInputs resolves the session and lists the artifact keys a stage
// consumes. A session missing from the arena is adopted when artifacts for
// it exist; no artifacts at all means the id is unknown.
func (p *Pipeline) stageInputs(ctx context.Context, sessionID string, role storage.Role, artifact string) (*session.Session, []string, error) {
	keys, err := p.deps.Store.List(ctx, role, sessionID+"/")
	if err != nil {
		return nil, nil, fmt.Errorf("list %s artifacts: %w", role, err)
	}
	keys = filterArtifact(keys, artifact)

	sess, err := p.arena.Get(sessionID)
	if err != nil {
		if len(keys) == 0 {
			return nil, nil, err
		}
		sess = p.arena.Adopt(sessionID)
	}
	if len(keys) == 0 {
		return nil, nil, fmt.Errorf("session %q has no %s artifacts: %w", sessionID, role, domain.ErrSessionNotReady)
	}
	return sess, keys, nil
}

// runStage pushes one task per key through a bounded pool and reports the
// outcome counts. Individual task failures only count; a pool or context
// failure surfaces as the stage error.
func (p *Pipeline) runStage(ctx context.Context, size int, keys []string, task func(ctx context.Context, key string) error) (processed, failed int, err error) {
	pool, err := worker.NewPool(worker.Config{Size: size, DrainTimeout: stageDrainTimeout}, p.log)
	if err != nil {
		return 0, 0, fmt.Errorf("stage pool: %w", err)
	}
	if err := pool.Start(); err != nil {
		return 0, 0, fmt.Errorf("stage pool: %w", err)
	}

	var submitErr error
	for _, key := range keys {
		if submitErr = pool.Submit(ctx, func(taskCtx context.Context) error {
			return task(taskCtx, key)
		}); submitErr != nil {
			break
		}
	}
	drainErr := pool.Drain(ctx)

	stats := pool.Stats()
	processed = int(stats.Completed)
	failed = int(stats.Failed)
	if submitErr != nil {
		return processed, failed, fmt.Errorf("submit stage task: %w", submitErr)
	}
	if drainErr != nil {
		return processed, failed, fmt.Errorf("drain stage pool: %w", drainErr)
	}
	return processed, failed, nil
}

// filterArtifact keeps the keys naming the given artifact file.
func filterArtifact(keys []string, artifact string) []string {
	var out []string
	for _, key := range keys {
		if strings.HasSuffix(key, "/"+artifact) {
			out = append(out, key)
		}
	}
	return out
}

// articleIDFromKey pulls the article id out of a
// {sessionID}/{articleID}/{artifact} key.
func articleIDFromKey(key string) (string, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return "", fmt.Errorf("unexpected artifact key %q", key)
	}
	return parts[1], nil
}
