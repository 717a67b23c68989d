package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Wire types for the JSON API. Field names and shapes follow spec/openapi.yaml.

// ErrorDetail is the body of every non-2xx JSON response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail under "error".
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// Pagination describes the page a list response holds.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// TaxonomyInput is the request body for creating or renaming a category or tag.
// Slugs are always derived server-side and cannot be supplied.
type TaxonomyInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Taxonomy is a category or tag as returned by the API.
type Taxonomy struct {
	Id          openapi_types.UUID `json:"id"`
	Type        string             `json:"type"`
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	Description string             `json:"description,omitempty"`
	PostCount   *int               `json:"post_count,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// TaxonomyList is a page of categories or tags.
type TaxonomyList struct {
	Data       []Taxonomy `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Availability is returned by GET /{kind}/availability.
type Availability struct {
	Available bool   `json:"available"`
	Title     string `json:"title"`
	Slug      string `json:"slug,omitempty"`
	Message   string `json:"message,omitempty"`
}

// PostInput is the request body for POST /posts.
type PostInput struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Status   string   `json:"status,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Post is a blog post as returned by the API.
type Post struct {
	Id         openapi_types.UUID  `json:"id"`
	Title      string              `json:"title"`
	Slug       string              `json:"slug"`
	Body       string              `json:"body"`
	Status     string              `json:"status"`
	CategoryId *openapi_types.UUID `json:"category_id,omitempty"`
	Tags       []Taxonomy          `json:"tags"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// PostList is a page of posts.
type PostList struct {
	Data       []Post     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ExportRow is one post in the JSON export.
type ExportRow struct {
	PostId        openapi_types.UUID `json:"post_id"`
	PostTitle     string             `json:"post_title"`
	PostSlug      string             `json:"post_slug"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	CategoryTitle *string            `json:"category_title,omitempty"`
	CategorySlug  *string            `json:"category_slug,omitempty"`
	Tags          []string           `json:"tags"`
}
