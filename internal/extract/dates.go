package extract

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing a published date. Unparseable
// dates are kept as raw strings on the article instead.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	time.RFC822Z,
	time.RFC850,
	time.UnixDate,
	time.RubyDate,
	"Mon, 02 Jan 2006 15:04:05 MST",
	"02 Jan 2006 15:04:05 MST",
	"January 2, 2006",
	"Jan 2, 2006",
	"02/01/2006",
}

// parseDate attempts each known layout and returns the zero time when none
// matches.
func parseDate(dateStr string) time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t
		}
	}

	return time.Time{}
}
