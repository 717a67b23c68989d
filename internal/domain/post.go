// Package domain contains the core data types for the fanblog backend.
// Its only external dependency is google/uuid; it is imported by every other
// internal package (naming, repo, service, handler).
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostStatus controls whether a post is publicly visible.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

// ParsePostStatus validates s. An empty string defaults to draft.
func ParsePostStatus(s string) (PostStatus, error) {
	switch PostStatus(s) {
	case "":
		return StatusDraft, nil
	case StatusDraft, StatusPublished:
		return PostStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown post status %q", ErrValidation, s)
}

// Post is a blog post. A post belongs to at most one category and carries
// any number of tags.
type Post struct {
	ID         uuid.UUID
	Title      string
	Slug       string
	Body       string
	Status     PostStatus
	CategoryID *uuid.UUID // nil when uncategorized
	Tags       []Taxonomy // populated by service reads, not by the posts table
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PostInput is what a caller supplies to create a post. Category is a
// category slug; Tags are tag titles, resolved or created by the service.
type PostInput struct {
	Title    string
	Body     string
	Status   string
	Category string
	Tags     []string
}
