package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// chromeSelectors are removed from the body before the generic scan.
var chromeSelectors = "header, footer, nav, aside, form, script, style, " +
	".header, .footer, .navigation, .sidebar, .menu, .comments"

// domScanStrategy is the last-resort pass: strip the page chrome and
// harvest every substantial paragraph left in the body. It may include
// noise the earlier strategies would have excluded, which is why it runs
// last.
type domScanStrategy struct{}

func (s *domScanStrategy) Name() string { return StrategyDOMScan }

func (s *domScanStrategy) Extract(_ *url.URL, html string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("dom-scan: %w", err)
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		return nil, fmt.Errorf("dom-scan: no body element")
	}
	body.Find(chromeSelectors).Remove()

	res := &Result{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Body:  joinParagraphs(body, minParagraphLength),
	}
	res.PublishedRaw = strings.TrimSpace(body.Find("time").First().AttrOr("datetime", ""))

	return res, nil
}
