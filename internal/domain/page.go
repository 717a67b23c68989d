package domain

// List paging bounds shared by every paged endpoint.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional query values.
// Missing or non-positive values fall back to page 1 and DefaultPageLimit;
// limits above MaxPageLimit are clamped.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
