package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, unknown post status).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned by repo functions when a write violates a unique
// constraint. Services translate it into a domain-specific error; for
// taxonomies that is a DuplicateTitle TitleError.
var ErrConflict = errors.New("conflict")

// Title failure kinds. A *TitleError matches exactly one of these through
// errors.Is, in addition to ErrValidation.
var (
	ErrEmptyTitle     = errors.New("empty title")
	ErrTitleTooLong   = errors.New("title too long")
	ErrDuplicateTitle = errors.New("duplicate title")
)

// ErrSlugCollisionUnresolved is returned when no free numeric suffix was found
// within the attempt bound. It is an internal failure, not a user message, so
// it deliberately does not match ErrValidation.
var ErrSlugCollisionUnresolved = errors.New("slug collision unresolved")

// TitleError is the single failure type produced when a taxonomy title is
// rejected. Message is user-facing and is surfaced verbatim next to the
// title input.
type TitleError struct {
	Kind    error // one of ErrEmptyTitle, ErrTitleTooLong, ErrDuplicateTitle
	Type    TaxonomyType
	Title   string
	Message string
}

// NewEmptyTitleError builds the EmptyTitle failure for the given type.
func NewEmptyTitleError(typ TaxonomyType, title string) *TitleError {
	return &TitleError{
		Kind:    ErrEmptyTitle,
		Type:    typ,
		Title:   title,
		Message: fmt.Sprintf("%s title is required.", typ),
	}
}

// NewTitleTooLongError builds the TitleTooLong failure for the given type.
func NewTitleTooLongError(typ TaxonomyType, title string, max int) *TitleError {
	return &TitleError{
		Kind:    ErrTitleTooLong,
		Type:    typ,
		Title:   title,
		Message: fmt.Sprintf("%s title must be between 1 and %d characters.", typ, max),
	}
}

// NewDuplicateTitleError builds the DuplicateTitle failure. The title keeps
// the casing the caller supplied.
func NewDuplicateTitleError(typ TaxonomyType, title string) *TitleError {
	return &TitleError{
		Kind:    ErrDuplicateTitle,
		Type:    typ,
		Title:   title,
		Message: fmt.Sprintf("%s '%s' is not available, please choose a different one.", typ, title),
	}
}

func (e *TitleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrValidation, e.Message)
}

// Unwrap exposes both the kind sentinel and ErrValidation to errors.Is.
func (e *TitleError) Unwrap() []error {
	return []error{e.Kind, ErrValidation}
}
