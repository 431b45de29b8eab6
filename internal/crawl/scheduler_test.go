package crawl_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CyborPunk-2077/article-scraper/internal/config"
	"github.com/CyborPunk-2077/article-scraper/internal/crawl"
	"github.com/CyborPunk-2077/article-scraper/internal/domain"
	"github.com/CyborPunk-2077/article-scraper/internal/extract"
	"github.com/CyborPunk-2077/article-scraper/internal/images"
	"github.com/CyborPunk-2077/article-scraper/internal/logger"
	"github.com/CyborPunk-2077/article-scraper/internal/logs"
	"github.com/CyborPunk-2077/article-scraper/internal/session"
	"github.com/CyborPunk-2077/article-scraper/internal/storage"
	"github.com/CyborPunk-2077/article-scraper/testutils"
)

const testMinWords = 150

func testConfig(maxConcurrency int) *config.Config {
	return &config.Config{
		Crawler: config.CrawlerConfig{
			MaxConcurrency: maxConcurrency,
			MaxDepth:       2,
			RequestTimeout: 5 * time.Second,
			Delay:          0,
			RandomDelay:    0,
			MaxRetries:     2,
			RetryBackoff:   10 * time.Millisecond,
			MaxBodySize:    10 * 1024 * 1024,
			UserAgent:      "article-scraper-test/1.0",
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
	}
}

func testDeps(store storage.BlobStore) crawl.Deps {
	log := logger.NewNoOp()
	return crawl.Deps{
		Store:     store,
		Extractor: extract.New(testMinWords, log),
		Resolver:  images.New(testConfig(1).Images, log),
		Recorder:  logs.NewRecorder(log),
		Logger:    log,
	}
}

func makePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 90, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// articleHTML renders a page that passes the classifier and extractor: a
// dated headline, a byline, and enough paragraphs to clear the word minimum.
func articleHTML(title, imagePath string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>" + title + "</title>")
	if imagePath != "" {
		b.WriteString(`<meta property="og:image" content="` + imagePath + `"/>`)
	}
	b.WriteString(`<meta property="article:published_time" content="2026-03-12T09:30:00Z"/>`)
	b.WriteString("</head><body><article><h1>" + title + "</h1>")
	b.WriteString(`<p class="byline">By Dana Wells</p>`)
	for p := 0; p < 6; p++ {
		b.WriteString("<p>")
		for w := 0; w < 60; w++ {
			fmt.Fprintf(&b, "reported detail %d-%d follows the earlier account and expands it further. ", p, w)
		}
		b.WriteString("</p>")
	}
	b.WriteString("</article></body></html>")
	return b.String()
}

func categoryHTML(links ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><nav>")
	for _, l := range links {
		b.WriteString(`<a href="` + l + `">headline teaser</a> `)
	}
	b.WriteString("</nav><p>short category blurb with very few words</p></body></html>")
	return b.String()
}

// newSite serves a fake news site: the handler map routes paths to HTML,
// and /img/* to generated PNGs.
func newSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()

	photo := makePNG(t, 640, 480)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/img/") {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(photo)
			return
		}
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runSession(t *testing.T, cfg *config.Config, store storage.BlobStore, seedURL string, target int) *session.Session {
	t.Helper()

	arena := session.NewArena()
	sess := arena.Create(seedURL, target)

	sched, err := crawl.NewScheduler(cfg, sess, testDeps(store))
	require.NoError(t, err)
	sched.Run(context.Background())
	return sess
}

func TestValidateSeed(t *testing.T) {
	t.Parallel()

	_, err := crawl.ValidateSeed("https://example.com/news")
	require.NoError(t, err)

	for _, raw := range []string{"", "   ", "ftp://example.com", "example.com/path", "https://"} {
		_, err := crawl.ValidateSeed(raw)
		require.ErrorIs(t, err, domain.ErrInvalidSeed, "seed %q", raw)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	first := "/2026/03/12/first-breaking-story"
	second := "/2026/03/13/second-major-report"
	pages := map[string]string{
		"/":     categoryHTML(first, second, "/news"),
		"/news": categoryHTML(first, second),
		first:   articleHTML("First Breaking Story", "/img/one.png"),
		second:  articleHTML("Second Major Report", "/img/two.png"),
	}
	srv := newSite(t, pages)
	store := testutils.NewMemStore()

	sess := runSession(t, testConfig(2), store, srv.URL+"/", 3)

	snap := sess.Snapshot()
	assert.Equal(t, session.StatusCompleted, snap.Status)
	assert.Equal(t, 2, snap.Counters.Accepted, "both articles accepted")
	assert.GreaterOrEqual(t, snap.Counters.Rejected, 2, "root and category rejected")
	assert.Equal(t, 2, snap.Counters.ImagesResolved)
	assert.Equal(t, 0, snap.Counters.Failed)

	// Accepted counter matches the persisted records.
	keys, err := store.List(context.Background(), storage.RoleRaw, snap.ID+"/")
	require.NoError(t, err)

	var records []domain.Article
	normalized := map[string]bool{}
	for _, key := range keys {
		if !strings.HasSuffix(key, storage.ArtifactArticle) {
			continue
		}
		data, getErr := store.Get(context.Background(), storage.RoleRaw, key)
		require.NoError(t, getErr)

		var article domain.Article
		require.NoError(t, json.Unmarshal(data, &article))
		records = append(records, article)
		normalized[article.NormalizedURL] = true
	}
	require.Len(t, records, snap.Counters.Accepted)
	assert.Len(t, normalized, len(records), "no two records share a normalized URL")

	for _, article := range records {
		assert.Equal(t, snap.ID, article.SessionID)
		assert.NotEmpty(t, article.Body)
		assert.GreaterOrEqual(t, article.WordCount, testMinWords)
		assert.Equal(t, domain.ArticleStatusComplete, article.Status)
		require.NotNil(t, article.Image)

		held, existsErr := store.Exists(context.Background(), storage.RoleRaw, article.Image.Key)
		require.NoError(t, existsErr)
		assert.True(t, held, "normalized image stored")

		held, existsErr = store.Exists(context.Background(), storage.RoleRaw,
			storage.Key(snap.ID, article.ID, storage.ArtifactPage))
		require.NoError(t, existsErr)
		assert.True(t, held, "page html stored")
	}
}

func TestRun_TargetReachedStopsEnqueuedFetches(t *testing.T) {
	t.Parallel()

	pages := map[string]string{"/": categoryHTML(
		"/2026/03/10/story-one-of-many", "/2026/03/11/story-two-of-many",
		"/2026/03/12/story-three-of-many", "/2026/03/13/story-four-of-many",
	)}
	for path := range map[string]bool{
		"/2026/03/10/story-one-of-many": true, "/2026/03/11/story-two-of-many": true,
		"/2026/03/12/story-three-of-many": true, "/2026/03/13/story-four-of-many": true,
	} {
		pages[path] = articleHTML("Story "+path, "")
	}
	srv := newSite(t, pages)
	store := testutils.NewMemStore()

	// Single fetch slot makes the abort point deterministic: once the
	// second accept lands, no queued request may start.
	sess := runSession(t, testConfig(1), store, srv.URL+"/", 2)

	snap := sess.Snapshot()
	assert.Equal(t, session.StatusCompleted, snap.Status)
	assert.Equal(t, 2, snap.Counters.Accepted)
}

func TestRun_NoAcceptWorthyPagesCompletes(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]string{
		"/":     categoryHTML("/news", "/sports"),
		"/news": categoryHTML("/"),
		// /sports 404s: a permanent per-URL failure, not a session failure.
	})
	store := testutils.NewMemStore()

	sess := runSession(t, testConfig(2), store, srv.URL+"/", 5)

	snap := sess.Snapshot()
	assert.Equal(t, session.StatusCompleted, snap.Status, "zero accepts is still completed")
	assert.Equal(t, 0, snap.Counters.Accepted)
	assert.GreaterOrEqual(t, snap.Counters.Rejected, 2)
	assert.Equal(t, 1, snap.Counters.Failed, "the 404 recorded as per-URL failure")
	assert.Equal(t, 0, store.Len(storage.RoleRaw))
}

func TestRun_StopEndsSessionAsStopped(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var once atomic.Bool

	// The root page blocks until the test releases it, guaranteeing the
	// stop request lands while a fetch is in flight.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if once.CompareAndSwap(false, true) {
			<-release
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(categoryHTML("/2026/03/12/late-arriving-story-here")))
	}))
	t.Cleanup(srv.Close)

	store := testutils.NewMemStore()
	arena := session.NewArena()
	sess := arena.Create(srv.URL+"/", 5)

	sched, err := crawl.NewScheduler(testConfig(1), sess, testDeps(store))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		sched.Run(context.Background())
		close(done)
	}()

	// Wait for the in-flight fetch, then stop and let it finish.
	require.Eventually(t, once.Load, 5*time.Second, 10*time.Millisecond)
	sess.RequestStop()
	close(release)

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("scheduler did not finish after stop")
	}

	snap := sess.Snapshot()
	assert.Equal(t, session.StatusStopped, snap.Status)
	// The in-flight page still produced a recorded outcome.
	assert.Equal(t, 1, snap.Counters.Discovered+snap.Counters.Failed)
}

func TestRun_ServerErrorsRetryThenFail(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	store := testutils.NewMemStore()
	sess := runSession(t, testConfig(1), store, srv.URL+"/", 1)

	snap := sess.Snapshot()
	assert.Equal(t, session.StatusCompleted, snap.Status)
	assert.Equal(t, 0, snap.Counters.Accepted)
	assert.Equal(t, 1, snap.Counters.Failed)
	// Initial attempt plus MaxRetries re-fetches.
	assert.Equal(t, int32(3), hits.Load())
}

func TestRun_StoreFailureFailsSession(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]string{
		"/": categoryHTML("/2026/03/12/fine-story-goes-here"),
		"/2026/03/12/fine-story-goes-here": articleHTML("Fine Story", ""),
	})

	store := testutils.NewMemStore()
	store.FailPuts(fmt.Errorf("bucket offline"))

	sess := runSession(t, testConfig(1), store, srv.URL+"/", 2)

	snap := sess.Snapshot()
	assert.Equal(t, session.StatusFailed, snap.Status)
	assert.Contains(t, snap.Error, "bucket offline")
}

func TestRun_StaysOnSeedHost(t *testing.T) {
	t.Parallel()

	var otherHits atomic.Int32
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		otherHits.Add(1)
		_, _ = w.Write([]byte(articleHTML("Offsite Story", "")))
	}))
	t.Cleanup(other.Close)

	srv := newSite(t, map[string]string{
		"/": categoryHTML(other.URL+"/2026/03/12/offsite-story-del-dia", "/news"),
	})
	store := testutils.NewMemStore()

	sess := runSession(t, testConfig(2), store, srv.URL+"/", 3)

	snap := sess.Snapshot()
	assert.Equal(t, session.StatusCompleted, snap.Status)
	assert.Equal(t, int32(0), otherHits.Load(), "offsite link never fetched")
}
