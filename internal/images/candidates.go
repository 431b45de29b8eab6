package images

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// metaSelectors are page-metadata image sources, in preference order.
var metaSelectors = []struct {
	selector string
	attr     string
}{
	{"meta[property='og:image:secure_url']", "content"},
	{"meta[property='og:image']", "content"},
	{"meta[name='twitter:image']", "content"},
	{"meta[name='twitter:image:src']", "content"},
	{"link[rel='image_src']", "href"},
}

// contentRegions locate the main content for the DOM scan, tried in order
// with the whole body as the fallback.
var contentRegions = []string{"article", "main", "[role='article']"}

// skipNameParts mark icon and asset filenames the DOM scan ignores.
var skipNameParts = []string{
	"logo", "icon", "sprite", "avatar", "pixel", "spacer", "blank", "1x1",
	".svg", ".gif",
}

// metaCandidates collects image URLs from og/twitter/link metadata.
func metaCandidates(doc *goquery.Document, pageURL *url.URL) []Candidate {
	if doc == nil {
		return nil
	}

	var out []Candidate
	seen := make(map[string]struct{})
	for _, m := range metaSelectors {
		raw := strings.TrimSpace(doc.Find(m.selector).First().AttrOr(m.attr, ""))
		resolved, ok := absolutize(raw, pageURL)
		if !ok {
			continue
		}
		if _, dup := seen[resolved]; dup {
			continue
		}
		seen[resolved] = struct{}{}
		out = append(out, Candidate{URL: resolved, Strategy: StrategyMeta})
	}
	return out
}

// readabilityCandidates wraps the extractor's lead-image hint.
func readabilityCandidates(leadImage string, pageURL *url.URL) []Candidate {
	resolved, ok := absolutize(leadImage, pageURL)
	if !ok {
		return nil
	}
	return []Candidate{{URL: resolved, Strategy: StrategyReadability}}
}

// domScanCandidates walks the first MaxScan content images, skipping data:
// URIs and asset filenames.
func (r *Resolver) domScanCandidates(doc *goquery.Document, pageURL *url.URL) []Candidate {
	if doc == nil || r.cfg.MaxScan <= 0 {
		return nil
	}

	region := doc.Find("body")
	for _, sel := range contentRegions {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			region = found
			break
		}
	}

	var out []Candidate
	seen := make(map[string]struct{})
	region.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
			return true
		}
		if skipImageName(src) {
			return true
		}

		resolved, ok := absolutize(src, pageURL)
		if !ok {
			return true
		}
		if _, dup := seen[resolved]; dup {
			return true
		}
		seen[resolved] = struct{}{}

		out = append(out, Candidate{URL: resolved, Strategy: StrategyDOMScan})
		return len(out) < r.cfg.MaxScan
	})
	return out
}

// skipImageName reports whether the URL names an icon or asset file.
func skipImageName(src string) bool {
	lower := strings.ToLower(src)
	for _, part := range skipNameParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// absolutize resolves the raw reference against the page URL and keeps only
// http(s) results.
func absolutize(raw string, pageURL *url.URL) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	resolved := ref
	if pageURL != nil {
		resolved = pageURL.ResolveReference(ref)
	}
	if scheme := strings.ToLower(resolved.Scheme); scheme != "http" && scheme != "https" {
		return "", false
	}
	resolved.Fragment = ""
	return resolved.String(), true
}
