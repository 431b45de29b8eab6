package classify

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Stats are content statistics over a parsed page.
type Stats struct {
	// Words is the word count across non-empty paragraphs
	Words int
	// Paragraphs is the count of non-empty <p> elements
	Paragraphs int
	// LinkDensity is anchor text length over body text length, 0..1
	LinkDensity float64
}

// CollectStats computes word count, paragraph count and link density from
// the parsed document. Listing pages score high on link density and low on
// paragraph words; article pages invert that.
func CollectStats(doc *goquery.Document) Stats {
	var stats Stats
	if doc == nil {
		return stats
	}

	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		stats.Paragraphs++
		parts = append(parts, text)
	})
	stats.Words = len(strings.Fields(strings.Join(parts, " ")))

	body := doc.Find("body")
	bodyLen := len(strings.TrimSpace(body.Text()))
	if bodyLen == 0 {
		return stats
	}

	linkLen := 0
	body.Find("a").Each(func(_ int, s *goquery.Selection) {
		linkLen += len(strings.TrimSpace(s.Text()))
	})
	stats.LinkDensity = float64(linkLen) / float64(bodyLen)

	return stats
}
