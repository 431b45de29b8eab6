package domain

import "time"

// Summary kinds.
const (
	SummaryKindText  = "text"
	SummaryKindImage = "image"
)

// Summary is the persisted record for one inference result: a text summary
// of a converted article or a caption of its stored image.
type Summary struct {
	// ArticleID of the summarized article
	ArticleID string `json:"article_id"`
	// SessionID that owns the article
	SessionID string `json:"session_id"`
	// Kind is text or image
	Kind string `json:"summary_type"`
	// Summary is the model output
	Summary string `json:"summary"`
	// CreatedAt is when the record was written
	CreatedAt time.Time `json:"created_at"`
}
