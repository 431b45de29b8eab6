package extract

import (
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// readabilityStrategy runs the readability clean-text pass over the full
// document. It is first in the cascade because it produces the cleanest
// body on well-formed article pages.
type readabilityStrategy struct{}

func (s *readabilityStrategy) Name() string { return StrategyReadability }

func (s *readabilityStrategy) Extract(pageURL *url.URL, html string) (*Result, error) {
	html = strings.TrimSpace(html)
	if html == "" {
		return nil, fmt.Errorf("readability: empty document")
	}

	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}

	res := &Result{
		Title:     strings.TrimSpace(article.Title),
		Author:    strings.TrimSpace(article.Byline),
		Body:      strings.TrimSpace(article.TextContent),
		LeadImage: strings.TrimSpace(article.Image),
	}
	if article.PublishedTime != nil {
		res.PublishedAt = *article.PublishedTime
		res.PublishedRaw = article.PublishedTime.Format(timeRawLayout)
	}

	return res, nil
}

// timeRawLayout renders readability's already-parsed time back to a raw
// string so the record keeps both forms like every other strategy.
const timeRawLayout = "2006-01-02T15:04:05Z07:00"
