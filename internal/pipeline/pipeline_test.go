package pipeline_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CyborPunk-2077/article-scraper/internal/config"
	"github.com/CyborPunk-2077/article-scraper/internal/domain"
	"github.com/CyborPunk-2077/article-scraper/internal/extract"
	"github.com/CyborPunk-2077/article-scraper/internal/images"
	"github.com/CyborPunk-2077/article-scraper/internal/inference"
	"github.com/CyborPunk-2077/article-scraper/internal/logger"
	"github.com/CyborPunk-2077/article-scraper/internal/logs"
	"github.com/CyborPunk-2077/article-scraper/internal/pipeline"
	"github.com/CyborPunk-2077/article-scraper/internal/session"
	"github.com/CyborPunk-2077/article-scraper/internal/storage"
	"github.com/CyborPunk-2077/article-scraper/testutils"
)

const testMinWords = 150

func testConfig() *config.Config {
	return &config.Config{
		Crawler: config.CrawlerConfig{
			MaxConcurrency:     2,
			MaxDepth:           2,
			RequestTimeout:     5 * time.Second,
			MaxRetries:         1,
			RetryBackoff:       10 * time.Millisecond,
			MaxBodySize:        10 * 1024 * 1024,
			UserAgent:          "article-scraper-test/1.0",
			DefaultTargetCount: 3,
		},
		Classify: config.ClassifyConfig{
			MinWordCount:  testMinWords,
			MinParagraphs: 2,
			MinSlugTokens: 4,
		},
		Images: config.ImagesConfig{
			MinWidth:     200,
			MinHeight:    200,
			MaxBytes:     5 * 1024 * 1024,
			FetchTimeout: 5 * time.Second,
			MaxScan:      8,
			JPEGQuality:  85,
			MinAspect:    0.5,
			MaxAspect:    2.2,
		},
		Inference: config.InferenceConfig{
			Timeout:         5 * time.Second,
			MinSummaryChars: 40,
			MaxSummaryChars: 200,
		},
		Stages: config.StagesConfig{
			ConvertWorkers:   2,
			SummarizeWorkers: 2,
		},
	}
}

func newPipeline(t *testing.T, store storage.BlobStore, inf inference.Service) (*pipeline.Pipeline, *session.Arena) {
	t.Helper()

	log := logger.NewNoOp()
	cfg := testConfig()
	arena := session.NewArena()
	p := pipeline.New(cfg, pipeline.Deps{
		Arena:     arena,
		Store:     store,
		Extractor: extract.New(testMinWords, log),
		Resolver:  images.New(cfg.Images, log),
		Inference: inf,
		Recorder:  logs.NewRecorder(log),
		Logger:    log,
	})
	return p, arena
}

func makeArticle(id, sessionID, title, author, body string) domain.Article {
	now := time.Now().UTC()
	return domain.Article{
		ID:            id,
		SessionID:     sessionID,
		URL:           "https://news.example.com/2026/03/12/" + id,
		NormalizedURL: "https://news.example.com/2026/03/12/" + id,
		Title:         title,
		Author:        author,
		Body:          body,
		WordCount:     len(strings.Fields(body)),
		ExtractedBy:   "readability",
		Status:        domain.ArticleStatusComplete,
		HTTPStatus:    http.StatusOK,
		FetchedAt:     now,
		CreatedAt:     now,
	}
}

func seedArticle(t *testing.T, store storage.BlobStore, article domain.Article) {
	t.Helper()

	data, err := json.Marshal(article)
	require.NoError(t, err)
	key := storage.Key(article.SessionID, article.ID, storage.ArtifactArticle)
	require.NoError(t, store.Put(context.Background(), storage.RoleRaw, key, data, storage.ContentTypeJSON))
}

func seedText(t *testing.T, store storage.BlobStore, sessionID, articleID, text string) {
	t.Helper()

	key := storage.Key(sessionID, articleID, storage.ArtifactText)
	require.NoError(t, store.Put(context.Background(), storage.RoleText, key, []byte(text), storage.ContentTypeText))
}

func TestStartScrape_InvalidSeedFailsSession(t *testing.T) {
	p, _ := newPipeline(t, testutils.NewMemStore(), &testutils.MockInference{})
	ctx := context.Background()

	id, err := p.StartScrape(ctx, "not-a-url", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidSeed)
	require.NotEmpty(t, id, "failed sessions must still be registered")

	snap, err := p.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, session.StatusFailed, snap.Status)
	assert.Contains(t, snap.Error, "invalid seed URL")
	assert.Equal(t, 3, snap.Target, "default target count applies when none is given")
}

func TestStartScrape_RunsToCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><p>short category blurb with very few words</p></body></html>`)
	}))
	defer srv.Close()

	p, _ := newPipeline(t, testutils.NewMemStore(), &testutils.MockInference{})
	ctx := context.Background()

	id, err := p.StartScrape(ctx, srv.URL, 2)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, statusErr := p.Status(ctx, id)
		return statusErr == nil && snap.Status == session.StatusCompleted
	}, 5*time.Second, 20*time.Millisecond)

	snap, err := p.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Target)
	assert.Equal(t, 1, snap.Counters.Discovered)
	assert.Equal(t, 0, snap.Counters.Accepted)
	assert.Equal(t, 1, snap.Counters.Rejected)
}

func TestStop_UnknownSession(t *testing.T) {
	p, _ := newPipeline(t, testutils.NewMemStore(), &testutils.MockInference{})

	err := p.Stop(context.Background(), "session_0")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStatus_UnknownSession(t *testing.T) {
	p, _ := newPipeline(t, testutils.NewMemStore(), &testutils.MockInference{})

	_, err := p.Status(context.Background(), "session_0")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessions_NewestFirst(t *testing.T) {
	p, _ := newPipeline(t, testutils.NewMemStore(), &testutils.MockInference{})
	ctx := context.Background()

	first, err := p.StartScrape(ctx, "not-a-url", 0)
	require.ErrorIs(t, err, domain.ErrInvalidSeed)
	second, err := p.StartScrape(ctx, "also-not-a-url", 0)
	require.ErrorIs(t, err, domain.ErrInvalidSeed)
	require.NotEqual(t, first, second)

	snapshots := p.Sessions(ctx)
	require.Len(t, snapshots, 2)
	assert.Equal(t, second, snapshots[0].ID)
	assert.Equal(t, first, snapshots[1].ID)
}
