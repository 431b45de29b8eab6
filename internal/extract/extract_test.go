package extract

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CyborPunk-2077/article-scraper/internal/domain"
	"github.com/CyborPunk-2077/article-scraper/internal/logger"
)

// fakeStrategy returns a canned result or error.
type fakeStrategy struct {
	name string
	res  *Result
	err  error
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Extract(*url.URL, string) (*Result, error) {
	return f.res, f.err
}

func testExtractor(minWords int, strategies ...Strategy) *Extractor {
	return &Extractor{
		strategies: strategies,
		minWords:   minWords,
		log:        logger.NewNoOp(),
	}
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(parts, " ")
}

func TestExtractor_FirstSufficientBodyWins(t *testing.T) {
	t.Parallel()

	e := testExtractor(50,
		&fakeStrategy{name: "thin", res: &Result{Body: words(10)}},
		&fakeStrategy{name: "enough", res: &Result{Title: "T", Author: "A", PublishedRaw: "2026-02-14", Body: words(60), LeadImage: "https://example.com/i.jpg"}},
		&fakeStrategy{name: "richest", res: &Result{Body: words(100)}},
	)

	res, err := e.Extract(mustURL(t, "https://example.com/a"), "<html></html>")
	require.NoError(t, err)
	require.Equal(t, "enough", res.Strategy)
	require.Equal(t, 60, res.WordCount)
	require.Equal(t, words(60), res.Body)
}

func TestExtractor_MetadataMergesAcrossStrategies(t *testing.T) {
	t.Parallel()

	e := testExtractor(50,
		&fakeStrategy{name: "first", res: &Result{Author: "Dana Writer", Body: words(5)}},
		&fakeStrategy{name: "second", res: &Result{Title: "Headline", Author: "Ignored Author", Body: words(80)}},
		&fakeStrategy{name: "third", res: &Result{PublishedRaw: "2026-02-14T10:30:00Z", LeadImage: "https://example.com/lead.jpg", Body: words(3)}},
	)

	res, err := e.Extract(mustURL(t, "https://example.com/a"), "<html></html>")
	require.NoError(t, err)

	// Body from the first strategy meeting the threshold, metadata from the
	// earliest strategy that had each field.
	require.Equal(t, "second", res.Strategy)
	require.Equal(t, "Headline", res.Title)
	require.Equal(t, "Dana Writer", res.Author)
	require.Equal(t, "https://example.com/lead.jpg", res.LeadImage)
	require.Equal(t, "2026-02-14T10:30:00Z", res.PublishedRaw)
	require.Equal(t, time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC), res.PublishedAt.UTC())
}

func TestExtractor_UnparseableDateStaysRaw(t *testing.T) {
	t.Parallel()

	e := testExtractor(10,
		&fakeStrategy{name: "only", res: &Result{Body: words(20), PublishedRaw: "yesterday afternoon"}},
	)

	res, err := e.Extract(mustURL(t, "https://example.com/a"), "<html></html>")
	require.NoError(t, err)
	require.True(t, res.PublishedAt.IsZero())
	require.Equal(t, "yesterday afternoon", res.PublishedRaw)
}

func TestExtractor_AllStrategiesFail(t *testing.T) {
	t.Parallel()

	e := testExtractor(50,
		&fakeStrategy{name: "broken", err: errors.New("no parse")},
		&fakeStrategy{name: "thin", res: &Result{Body: words(5)}},
	)

	_, err := e.Extract(mustURL(t, "https://example.com/a"), "<html></html>")
	require.ErrorIs(t, err, domain.ErrExtractionFailed)
}

// ---- real strategies ----

const articleParagraph = "The city council voted on Tuesday evening to approve the revised budget " +
	"after a long public comment session that stretched past midnight local time."

func richArticleHTML() string {
	var b strings.Builder
	b.WriteString(`<html><head>
		<title>Council Approves Budget</title>
		<meta property="og:title" content="Council Approves Budget"/>
		<meta name="author" content="Dana Writer"/>
		<meta property="article:published_time" content="2026-02-14T08:00:00Z"/>
		<meta property="og:image" content="https://example.com/lead.jpg"/>
	</head><body><article><h1>Council Approves Budget</h1>`)
	for i := 0; i < 10; i++ {
		b.WriteString("<p>")
		b.WriteString(articleParagraph)
		b.WriteString("</p>")
	}
	b.WriteString("</article></body></html>")
	return b.String()
}

func TestExtractor_EndToEnd(t *testing.T) {
	t.Parallel()

	e := New(50, logger.NewNoOp())
	res, err := e.Extract(mustURL(t, "https://example.com/2026/02/14/council-budget"), richArticleHTML())
	require.NoError(t, err)

	require.Equal(t, "Council Approves Budget", res.Title)
	require.Equal(t, "Dana Writer", res.Author)
	require.Equal(t, time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC), res.PublishedAt.UTC())
	require.Equal(t, "https://example.com/lead.jpg", res.LeadImage)
	require.NotEmpty(t, res.Strategy)
	require.GreaterOrEqual(t, res.WordCount, 50)
	require.Contains(t, res.Body, "city council voted")
}

func TestSelectorStrategy(t *testing.T) {
	t.Parallel()

	s := &selectorStrategy{}
	res, err := s.Extract(mustURL(t, "https://example.com/a"), richArticleHTML())
	require.NoError(t, err)

	require.Equal(t, "Council Approves Budget", res.Title)
	require.Equal(t, "Dana Writer", res.Author)
	require.Equal(t, "2026-02-14T08:00:00Z", res.PublishedRaw)
	require.Equal(t, "https://example.com/lead.jpg", res.LeadImage)
	require.Contains(t, res.Body, "city council voted")
}

func TestSelectorStrategy_JSONLD(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<script type="application/ld+json">
		{"@context":"https://schema.org","@type":"NewsArticle",
		 "headline":"Ferry Service Restored",
		 "author":{"@type":"Person","name":"Sam Reporter"},
		 "datePublished":"2026-03-01T12:00:00Z",
		 "image":["https://example.com/ferry.jpg"]}
		</script>
	</head><body><article>
		<p>` + articleParagraph + `</p>
		<p>` + articleParagraph + `</p>
	</article></body></html>`

	s := &selectorStrategy{}
	res, err := s.Extract(mustURL(t, "https://example.com/a"), html)
	require.NoError(t, err)

	require.Equal(t, "Ferry Service Restored", res.Title)
	require.Equal(t, "Sam Reporter", res.Author)
	require.Equal(t, "2026-03-01T12:00:00Z", res.PublishedRaw)
	require.Equal(t, "https://example.com/ferry.jpg", res.LeadImage)
}

func TestDOMScanStrategy_SkipsChrome(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>Scan Title</title></head><body>
		<nav><p>Home About Contact navigation paragraph text here</p></nav>
		<div><p>` + articleParagraph + `</p></div>
		<footer><p>Footer boilerplate paragraph that should never appear</p></footer>
	</body></html>`

	s := &domScanStrategy{}
	res, err := s.Extract(mustURL(t, "https://example.com/a"), html)
	require.NoError(t, err)

	require.Equal(t, "Scan Title", res.Title)
	require.Contains(t, res.Body, "city council voted")
	require.NotContains(t, res.Body, "navigation paragraph")
	require.NotContains(t, res.Body, "Footer boilerplate")
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", "2026-02-14T08:00:00Z", time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC)},
		{"date only", "2026-02-14", time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)},
		{"long form", "February 14, 2026", time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)},
		{"garbage", "last tuesday", time.Time{}},
		{"empty", "", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseDate(tt.in)
			require.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}
