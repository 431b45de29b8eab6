package common

import (
	"context"
	"fmt"

	"github.com/CyborPunk-2077/article-scraper/internal/extract"
	"github.com/CyborPunk-2077/article-scraper/internal/images"
	"github.com/CyborPunk-2077/article-scraper/internal/inference"
	"github.com/CyborPunk-2077/article-scraper/internal/logs"
	"github.com/CyborPunk-2077/article-scraper/internal/pipeline"
	"github.com/CyborPunk-2077/article-scraper/internal/session"
	"github.com/CyborPunk-2077/article-scraper/internal/storage"
)

// App bundles the wired pipeline and the collaborators commands talk to
// directly.
type App struct {
	Deps     *CommandDeps
	Pipeline *pipeline.Pipeline
	Store    storage.BlobStore
	Recorder *logs.Recorder
	Arena    *session.Arena
}

// BuildApp wires the blob store, extractors, inference client, and pipeline
// from configuration. Missing buckets are created so a fresh deployment
// works without manual provisioning.
func BuildApp(ctx context.Context, deps *CommandDeps) (*App, error) {
	store, err := storage.NewMinio(deps.Config.Storage, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("create blob store: %w", err)
	}
	if err := store.EnsureBuckets(ctx); err != nil {
		return nil, fmt.Errorf("ensure buckets: %w", err)
	}

	arena := session.NewArena()
	recorder := logs.NewRecorder(deps.Logger)

	p := pipeline.New(deps.Config, pipeline.Deps{
		Arena:     arena,
		Store:     store,
		Extractor: extract.New(deps.Config.Classify.MinWordCount, deps.Logger),
		Resolver:  images.New(deps.Config.Images, deps.Logger),
		Inference: inference.NewClient(deps.Config.Inference),
		Recorder:  recorder,
		Logger:    deps.Logger,
	})

	return &App{
		Deps:     deps,
		Pipeline: p,
		Store:    store,
		Recorder: recorder,
		Arena:    arena,
	}, nil
}
