// Package classify decides whether a fetched page is a genuine article or a
// navigation/category page. The decision combines URL-shape heuristics with
// content statistics computed over the parsed document; thresholds come from
// configuration and the session's accepted set provides duplicate detection.
package classify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/CyborPunk-2077/article-scraper/internal/config"
	"github.com/CyborPunk-2077/article-scraper/internal/frontier"
	"github.com/PuerkitoBio/goquery"
)

// Reason codes attached to every decision.
const (
	// ReasonURLPattern rejects category/index/asset URL shapes.
	ReasonURLPattern = "url-pattern"
	// ReasonThinContent rejects pages below the word or paragraph minimums.
	ReasonThinContent = "thin-content"
	// ReasonDuplicate rejects URLs already accepted in the session.
	ReasonDuplicate = "duplicate"
	// ReasonDateURL accepts on a date-patterned URL path.
	ReasonDateURL = "date-url"
	// ReasonSlugURL accepts on a long hyphenated slug.
	ReasonSlugURL = "slug-url"
	// ReasonContentOK accepts on content statistics alone.
	ReasonContentOK = "content-ok"
)

// nonArticleSegments are URL path segments that indicate non-article pages.
var nonArticleSegments = map[string]bool{
	"login":    true,
	"signin":   true,
	"signup":   true,
	"register": true,
	"search":   true,
	"contact":  true,
	"about":    true,
	"privacy":  true,
	"terms":    true,
	"tag":      true,
	"tags":     true,
	"category": true,
	"author":   true,
	"page":     true,
	"feed":     true,
	"rss":      true,
	"sitemap":  true,
	"admin":    true,
	"wp-admin": true,
	"account":  true,
	"cart":     true,
	"checkout": true,
}

// nonArticleExtensions are file extensions that indicate non-article resources.
var nonArticleExtensions = map[string]bool{
	".pdf":  true,
	".xml":  true,
	".json": true,
	".css":  true,
	".js":   true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
	".ico":  true,
	".woff": true,
	".zip":  true,
	".mp3":  true,
	".mp4":  true,
}

// datePathPattern matches date-based URL paths like /2026/02/14/headline or
// /2026/02/headline.
var datePathPattern = regexp.MustCompile(`/\d{4}/\d{2}(/\d{2})?/[^/]+`)

// dashDatePattern matches inline-date slugs like /2026-02-14-headline.
var dashDatePattern = regexp.MustCompile(`/\d{4}-\d{2}-\d{2}-[^/]+`)

// urlShape is the outcome of the URL heuristics alone.
type urlShape int

const (
	shapeReject urlShape = iota
	shapeNeutral
	shapeDate
	shapeSlug
)

// Lookup is the read-only membership view of the session's accepted set.
// The insert happens in the scheduler once the record is persisted.
type Lookup interface {
	Contains(key string) bool
}

// Decision is the classification outcome for one page.
type Decision struct {
	// Accept reports whether the page should become an article
	Accept bool
	// Reason is the code explaining the decision
	Reason string
	// Stats are the content statistics the decision was based on
	Stats Stats
}

// Classifier applies the ordered decision policy. It is safe for
// concurrent use; the dedup lookup carries its own synchronization.
type Classifier struct {
	cfg      config.ClassifyConfig
	accepted Lookup
}

// New creates a classifier bound to one session's accepted set.
func New(cfg config.ClassifyConfig, accepted Lookup) *Classifier {
	return &Classifier{cfg: cfg, accepted: accepted}
}

// Classify applies the policy in order, short-circuiting on the first
// match: URL-shape reject, thin-content reject, duplicate reject, accept.
// A date or slug shaped URL only decides the accept reason; thin content
// rejects it regardless.
func (c *Classifier) Classify(pageURL string, doc *goquery.Document) Decision {
	stats := CollectStats(doc)

	shape := c.classifyURL(pageURL)
	if shape == shapeReject {
		return Decision{Reason: ReasonURLPattern, Stats: stats}
	}

	if stats.Words < c.cfg.MinWordCount || stats.Paragraphs < c.cfg.MinParagraphs {
		return Decision{Reason: ReasonThinContent, Stats: stats}
	}

	if normalized, err := frontier.Normalize(pageURL); err == nil && c.accepted.Contains(normalized) {
		return Decision{Reason: ReasonDuplicate, Stats: stats}
	}

	reason := ReasonContentOK
	switch shape {
	case shapeDate:
		reason = ReasonDateURL
	case shapeSlug:
		reason = ReasonSlugURL
	}

	return Decision{Accept: true, Reason: reason, Stats: stats}
}

// classifyURL applies the URL heuristics: known non-article segments and
// extensions reject outright, as do root and bare section pages; date
// patterns and long slugs mark the shape as article-leaning.
func (c *Classifier) classifyURL(pageURL string) urlShape {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return shapeReject
	}

	path := strings.TrimRight(parsed.Path, "/")
	if path == "" {
		return shapeReject
	}

	lowerPath := strings.ToLower(path)
	if isNonArticlePath(lowerPath) {
		return shapeReject
	}

	if datePathPattern.MatchString(lowerPath) || dashDatePattern.MatchString(lowerPath) {
		return shapeDate
	}

	segments := strings.Split(strings.TrimLeft(path, "/"), "/")
	if c.hasLongSlug(segments) {
		return shapeSlug
	}

	// A single segment that is neither a date nor a slug is a section page.
	if len(segments) == 1 {
		return shapeReject
	}

	return shapeNeutral
}

// isNonArticlePath checks if the path contains non-article segments or file
// extensions.
func isNonArticlePath(lowerPath string) bool {
	segments := strings.Split(strings.TrimLeft(lowerPath, "/"), "/")
	for _, seg := range segments {
		if nonArticleSegments[seg] {
			return true
		}
	}

	for ext := range nonArticleExtensions {
		if strings.HasSuffix(lowerPath, ext) {
			return true
		}
	}

	return false
}

// hasLongSlug checks if any segment is a hyphenated slug with enough tokens.
func (c *Classifier) hasLongSlug(segments []string) bool {
	for _, seg := range segments {
		if len(strings.Split(seg, "-")) >= c.cfg.MinSlugTokens {
			return true
		}
	}

	return false
}
