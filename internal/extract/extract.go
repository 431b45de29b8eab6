// Package extract turns an accepted page into article text and metadata.
// A fixed cascade of strategies is tried in priority order; the first one
// whose body text meets the word-count threshold wins, while title, author
// and date merge across strategies preferring the earliest non-empty value.
package extract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/CyborPunk-2077/article-scraper/internal/domain"
	"github.com/CyborPunk-2077/article-scraper/internal/logger"
)

// Strategy names, recorded on the article so the origin of the text is
// visible downstream.
const (
	StrategyReadability = "readability"
	StrategySelectors   = "selectors"
	StrategyDOMScan     = "dom-scan"
)

// Result is the output of one strategy, and of the cascade as a whole.
type Result struct {
	// Title of the article
	Title string
	// Author or byline, may be empty
	Author string
	// PublishedAt is zero when no strategy yielded a parseable date
	PublishedAt time.Time
	// PublishedRaw is the date string as found on the page
	PublishedRaw string
	// Body is the extracted plain text
	Body string
	// WordCount of Body, filled by the cascade
	WordCount int
	// Strategy that produced Body, filled by the cascade
	Strategy string
	// LeadImage is an image URL hinted by the strategy, may be empty
	LeadImage string
}

// Strategy extracts article content from one page. Implementations return
// an error only when they cannot process the page at all; a processed page
// with too little text is a valid Result that the cascade will pass over.
type Strategy interface {
	Name() string
	Extract(pageURL *url.URL, html string) (*Result, error)
}

// Extractor runs the strategy cascade.
type Extractor struct {
	strategies []Strategy
	minWords   int
	log        logger.Interface
}

// New creates an extractor with the standard cascade: readability, then
// selector parsing, then a generic DOM scan.
func New(minWords int, log logger.Interface) *Extractor {
	return &Extractor{
		strategies: []Strategy{
			&readabilityStrategy{},
			&selectorStrategy{},
			&domScanStrategy{},
		},
		minWords: minWords,
		log:      log.WithComponent("extract"),
	}
}

// Extract runs the cascade over the page. The returned result carries the
// first body meeting the word threshold and the first non-empty metadata
// values in cascade order. When no strategy yields enough text the error
// wraps ErrExtractionFailed; the caller records it per-article.
func (e *Extractor) Extract(pageURL *url.URL, html string) (*Result, error) {
	merged := &Result{}

	for _, s := range e.strategies {
		res, err := s.Extract(pageURL, html)
		if err != nil {
			e.log.Debug("strategy failed", "strategy", s.Name(), "url", pageURL.String(), "error", err)
			continue
		}

		mergeMetadata(merged, res)

		if merged.Strategy == "" {
			words := len(strings.Fields(res.Body))
			if words >= e.minWords {
				merged.Body = res.Body
				merged.WordCount = words
				merged.Strategy = s.Name()
			}
		}

		if merged.Strategy != "" && metadataComplete(merged) {
			break
		}
	}

	if merged.PublishedAt.IsZero() && merged.PublishedRaw != "" {
		merged.PublishedAt = parseDate(merged.PublishedRaw)
	}

	if merged.Strategy == "" {
		return nil, fmt.Errorf("extract %s: %w", pageURL.String(), domain.ErrExtractionFailed)
	}

	return merged, nil
}

// mergeMetadata fills empty metadata fields of dst from src, so earlier
// strategies keep priority.
func mergeMetadata(dst, src *Result) {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Author == "" {
		dst.Author = src.Author
	}
	if dst.PublishedAt.IsZero() && dst.PublishedRaw == "" {
		dst.PublishedAt = src.PublishedAt
		dst.PublishedRaw = src.PublishedRaw
	}
	if dst.LeadImage == "" {
		dst.LeadImage = src.LeadImage
	}
}

func metadataComplete(r *Result) bool {
	return r.Title != "" && r.Author != "" &&
		(!r.PublishedAt.IsZero() || r.PublishedRaw != "") &&
		r.LeadImage != ""
}
