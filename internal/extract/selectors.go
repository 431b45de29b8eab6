package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// minParagraphLength is the minimum length for a paragraph to be included
	minParagraphLength = 20
	// minContainerBodyLength is the minimum joined length for a container hit
	minContainerBodyLength = 50
)

// containerSelectors are common article content containers, tried in order.
var containerSelectors = []string{
	"article",
	"main",
	"[role='article']",
	".article-content",
	".article-body",
	".post-content",
	".entry-content",
	".story-body",
	".story-content",
	".article-text",
	"#article-content",
	"#main-content",
	".main-content",
	".content",
}

// excludeSelectors are stripped from a container before harvesting text.
var excludeSelectors = []string{
	"script",
	"style",
	"nav",
	"header",
	"footer",
	"aside",
	"form",
	".sidebar",
	".menu",
	".share",
	".social",
	".related",
	".comments",
}

// selectorStrategy parses og/meta tags, JSON-LD and common article
// containers with goquery. Second in the cascade: noisier than
// readability but recovers pages readability refuses.
type selectorStrategy struct{}

func (s *selectorStrategy) Name() string { return StrategySelectors }

func (s *selectorStrategy) Extract(_ *url.URL, html string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("selectors: %w", err)
	}

	res := &Result{
		Title:     extractTitle(doc),
		Author:    extractAuthor(doc),
		Body:      extractContainerBody(doc),
		LeadImage: extractMetaImage(doc),
	}
	res.PublishedRaw = extractDateRaw(doc)

	if ld := scanJSONLD(doc); ld != nil {
		if res.Title == "" {
			res.Title = ld.Headline
		}
		if res.Author == "" {
			res.Author = ld.Author
		}
		if res.PublishedRaw == "" {
			res.PublishedRaw = ld.DatePublished
		}
		if res.LeadImage == "" {
			res.LeadImage = ld.Image
		}
	}

	return res, nil
}

// metaContent extracts a meta tag value by property attribute.
func metaContent(doc *goquery.Document, property string) string {
	sel := fmt.Sprintf("meta[property='%s']", property)
	return strings.TrimSpace(doc.Find(sel).First().AttrOr("content", ""))
}

// metaNameContent extracts a meta tag value by name attribute.
func metaNameContent(doc *goquery.Document, name string) string {
	sel := fmt.Sprintf("meta[name='%s']", name)
	return strings.TrimSpace(doc.Find(sel).First().AttrOr("content", ""))
}

func extractTitle(doc *goquery.Document) string {
	if t := metaContent(doc, "og:title"); t != "" {
		return t
	}
	if t := metaNameContent(doc, "twitter:title"); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractAuthor(doc *goquery.Document) string {
	if a := metaNameContent(doc, "author"); a != "" {
		return a
	}
	if a := metaContent(doc, "article:author"); a != "" {
		return a
	}
	for _, sel := range []string{"[rel='author']", ".byline", ".author"} {
		if a := strings.TrimSpace(doc.Find(sel).First().Text()); a != "" {
			return a
		}
	}
	return ""
}

// extractDateRaw collects the published date as found, without parsing.
func extractDateRaw(doc *goquery.Document) string {
	if d := metaContent(doc, "article:published_time"); d != "" {
		return d
	}
	for _, name := range []string{"date", "publishdate", "pubdate"} {
		if d := metaNameContent(doc, name); d != "" {
			return d
		}
	}
	if d := strings.TrimSpace(doc.Find("time").First().AttrOr("datetime", "")); d != "" {
		return d
	}
	itemprop := doc.Find("[itemprop='datePublished']").First()
	if d := strings.TrimSpace(itemprop.AttrOr("content", itemprop.AttrOr("datetime", ""))); d != "" {
		return d
	}
	return ""
}

func extractMetaImage(doc *goquery.Document) string {
	if img := metaContent(doc, "og:image"); img != "" {
		return img
	}
	if img := metaNameContent(doc, "twitter:image"); img != "" {
		return img
	}
	return ""
}

// extractContainerBody finds the first common article container with enough
// paragraph text, stripping chrome elements first.
func extractContainerBody(doc *goquery.Document) string {
	for _, sel := range containerSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}

		for _, exclude := range excludeSelectors {
			container.Find(exclude).Remove()
		}

		body := joinParagraphs(container, minParagraphLength)
		if len(body) > minContainerBodyLength {
			return body
		}
	}
	return ""
}

// joinParagraphs harvests <p> text above the length floor from the
// selection, joined with blank lines.
func joinParagraphs(sel *goquery.Selection, minLen int) string {
	var parts []string
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if len(text) > minLen {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}
