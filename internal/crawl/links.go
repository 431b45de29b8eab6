package crawl

import (
	"strings"

	colly "github.com/gocolly/colly/v2"

	"github.com/CyborPunk-2077/article-scraper/internal/frontier"
)

// skipPrefixes are link targets that never lead to a fetchable page.
var skipPrefixes = []string{"#", "javascript:", "mailto:", "tel:"}

// handleLink enqueues one discovered link: same host as the seed only,
// deduplicated session-wide by normalized URL before the visit.
func (s *Scheduler) handleLink(e *colly.HTMLElement) {
	link := e.Attr("href")
	if link == "" || shouldSkipLink(link) {
		return
	}

	absLink := e.Request.AbsoluteURL(link)
	if absLink == "" {
		s.log.Debug("Failed to make absolute URL", "url", link)
		return
	}

	host, err := frontier.Host(absLink)
	if err != nil || host != s.host {
		return
	}

	normalized, err := frontier.Normalize(absLink)
	if err != nil {
		s.log.Debug("Skipping unparseable link", "url", absLink)
		return
	}
	if !s.visited.Add(normalized) {
		return
	}

	if visitErr := e.Request.Visit(absLink); visitErr != nil && !isExpectedCrawlError(visitErr) {
		s.log.Debug("Failed to enqueue link",
			"url", absLink,
			"error", visitErr.Error(),
		)
	}
}

// shouldSkipLink determines if a link should be skipped based on its scheme
// or prefix.
func shouldSkipLink(link string) bool {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(link, prefix) {
			return true
		}
	}
	return false
}
