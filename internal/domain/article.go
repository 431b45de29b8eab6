// Package domain provides domain models used across the application.
package domain

import (
	"time"
)

// Article statuses. The status only ever moves forward from
// image_pending to one of the two terminal values.
const (
	ArticleStatusImagePending = "image_pending"
	ArticleStatusComplete     = "complete"
	ArticleStatusImageFailed  = "image_failed"
)

// Article is the persisted record for one accepted page.
type Article struct {
	// Identifier derived from the normalized URL
	ID string `json:"id"`
	// Session that produced this article
	SessionID string `json:"session_id"`
	// Final fetched URL
	URL string `json:"url"`
	// Normalized form used for deduplication
	NormalizedURL string `json:"normalized_url"`
	// Extracted title
	Title string `json:"title"`
	// Extracted author or byline
	Author string `json:"author,omitempty"`
	// Parsed publish date, zero when no strategy yielded a parseable date
	PublishedAt time.Time `json:"published_at,omitempty"`
	// Raw date string as found on the page
	PublishedRaw string `json:"published_raw,omitempty"`
	// Extracted body text
	Body string `json:"body"`
	// Word count of the extracted body
	WordCount int `json:"word_count"`
	// Extraction strategy that produced the body
	ExtractedBy string `json:"extracted_by"`
	// Resolved representative image, absent when none validated
	Image *ImageRef `json:"image,omitempty"`
	// image_pending, complete or image_failed
	Status string `json:"status"`
	// HTTP status of the fetch that produced the page
	HTTPStatus int `json:"http_status"`
	// When the page was fetched
	FetchedAt time.Time `json:"fetched_at"`
	// When the record was written
	CreatedAt time.Time `json:"created_at"`
}

// ImageRef describes the winning image candidate for an article.
type ImageRef struct {
	// URL the image was fetched from
	SourceURL string `json:"source_url"`
	// Discovery strategy that produced the candidate
	Strategy string `json:"strategy"`
	// Measured pixel dimensions
	Width  int `json:"width"`
	Height int `json:"height"`
	// Byte size of the fetched image
	ByteSize int `json:"byte_size"`
	// Quality score the candidate won with
	Score float64 `json:"score"`
	// Blob key of the normalized JPEG
	Key string `json:"key,omitempty"`
}
