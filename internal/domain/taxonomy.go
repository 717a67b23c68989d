package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TitleSlugMaxLen bounds both taxonomy titles (in characters) and slugs.
const TitleSlugMaxLen = 250

// TaxonomyType selects the namespace a taxonomy lives in. Categories and tags
// share a shape but titles and slugs are only unique within one type.
type TaxonomyType string

const (
	TypeCategory TaxonomyType = "category"
	TypeTag      TaxonomyType = "tag"
)

// ParseTaxonomyType converts the stored/wire form ("category", "tag") into a
// TaxonomyType.
func ParseTaxonomyType(s string) (TaxonomyType, error) {
	switch TaxonomyType(s) {
	case TypeCategory, TypeTag:
		return TaxonomyType(s), nil
	}
	return "", fmt.Errorf("%w: unknown taxonomy type %q", ErrValidation, s)
}

// String returns the display name used in user-facing messages.
func (t TaxonomyType) String() string {
	switch t {
	case TypeCategory:
		return "Category"
	case TypeTag:
		return "Tag"
	}
	return string(t)
}

// Taxonomy is a named classification entry (a category or a tag) attached to
// posts. Slug is always derived from Title, never supplied by callers.
// PostCount is read-only and only populated by list queries.
type Taxonomy struct {
	ID          uuid.UUID
	Type        TaxonomyType
	Title       string
	Slug        string
	Description string
	PostCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Availability is the result of checking a proposed title without writing
// anything. When Available is false, Message is the user-facing reason and
// Slug is empty.
type Availability struct {
	Available bool
	Title     string
	Slug      string
	Message   string
}
