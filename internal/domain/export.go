package domain

import "time"

// ExportRow is a single row in the full-data export.
// It is a flat, denormalized view: one row per post, with the category
// repeated inline. Uncategorized posts have empty category fields.
//
// Tags is a slice of tag slugs for the post, ordered alphabetically.
// Callers that need a joined string (e.g. CSV) should join with "|".
type ExportRow struct {
	PostID        string
	PostTitle     string
	PostSlug      string
	Status        string
	CreatedAt     time.Time
	CategoryTitle string
	CategorySlug  string

	Tags []string
}
