package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// jsonldArticle is the subset of JSON-LD article data the cascade uses.
type jsonldArticle struct {
	Headline      string
	Author        string
	DatePublished string
	Image         string
}

// jsonldTypes are the @type values treated as article data.
var jsonldTypes = map[string]bool{
	"NewsArticle":          true,
	"Article":              true,
	"BlogPosting":          true,
	"ReportageNewsArticle": true,
}

// scanJSONLD walks every ld+json script on the page and returns the first
// article-typed object, following one level of @graph nesting.
func scanJSONLD(doc *goquery.Document) *jsonldArticle {
	var found *jsonldArticle
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return true
		}

		var data any
		if err := json.Unmarshal([]byte(text), &data); err != nil {
			return true
		}

		if article := findArticleObject(data); article != nil {
			found = article
			return false
		}
		return true
	})
	return found
}

// findArticleObject normalizes the decoded JSON-LD into candidate objects
// and returns the first with an article @type.
func findArticleObject(data any) *jsonldArticle {
	for _, item := range normalizeItems(data) {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		if graph, ok := obj["@graph"].([]any); ok {
			if article := findArticleObject(graph); article != nil {
				return article
			}
		}

		typeVal, _ := obj["@type"].(string)
		if !jsonldTypes[typeVal] {
			continue
		}

		return &jsonldArticle{
			Headline:      stringField(obj, "headline"),
			Author:        authorField(obj),
			DatePublished: stringField(obj, "datePublished"),
			Image:         imageField(obj),
		}
	}
	return nil
}

func normalizeItems(data any) []any {
	switch v := data.(type) {
	case []any:
		return v
	case map[string]any:
		return []any{v}
	default:
		return nil
	}
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

// authorField handles both the string form and the Person object form.
func authorField(obj map[string]any) string {
	switch author := obj["author"].(type) {
	case string:
		return strings.TrimSpace(author)
	case map[string]any:
		return stringField(author, "name")
	case []any:
		if len(author) > 0 {
			if person, ok := author[0].(map[string]any); ok {
				return stringField(person, "name")
			}
		}
	}
	return ""
}

// imageField handles the string, object and list forms of the image field.
func imageField(obj map[string]any) string {
	switch img := obj["image"].(type) {
	case string:
		return strings.TrimSpace(img)
	case map[string]any:
		return stringField(img, "url")
	case []any:
		if len(img) > 0 {
			if s, ok := img[0].(string); ok {
				return strings.TrimSpace(s)
			}
			if o, ok := img[0].(map[string]any); ok {
				return stringField(o, "url")
			}
		}
	}
	return ""
}
