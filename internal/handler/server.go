// Package handler implements the HTTP handlers for the fanblog API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, taxonomy.go, post.go, export.go) but all share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/fanblog/internal/domain"
)

// TaxonomyServicer defines the business operations the category and tag
// handlers depend on. Defining the interface here (in the consumer package)
// follows the Go convention: "accept interfaces, return concrete types". It
// lets handler tests inject a mock without touching the database or service
// layer.
type TaxonomyServicer interface {
	Create(ctx context.Context, typ domain.TaxonomyType, title, description string) (domain.Taxonomy, error)
	Update(ctx context.Context, typ domain.TaxonomyType, id uuid.UUID, title, description string) (domain.Taxonomy, error)
	Availability(ctx context.Context, typ domain.TaxonomyType, title string, excludeID uuid.UUID) (domain.Availability, error)
	GetBySlug(ctx context.Context, typ domain.TaxonomyType, slug string) (domain.Taxonomy, error)
	List(ctx context.Context, typ domain.TaxonomyType, p domain.PaginationParams) ([]domain.Taxonomy, int64, error)
	Delete(ctx context.Context, typ domain.TaxonomyType, id uuid.UUID) error
}

// PostServicer defines the business operations the post handlers depend on.
type PostServicer interface {
	Create(ctx context.Context, in domain.PostInput) (domain.Post, error)
	GetBySlug(ctx context.Context, slug string) (domain.Post, error)
	ListByTaxonomy(ctx context.Context, typ domain.TaxonomyType, slug string, p domain.PaginationParams) ([]domain.Post, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExportServicer defines the operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Server holds the services behind every endpoint.
// Wire it in main.go via HandlerFromMux(server, router).
type Server struct {
	taxonomies TaxonomyServicer
	posts      PostServicer
	export     ExportServicer
	logger     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger uses slog.Default().
func NewServer(taxonomies TaxonomyServicer, posts PostServicer, export ExportServicer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{taxonomies: taxonomies, posts: posts, export: export, logger: logger}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// taxonomyRoutes maps the URL collection name to the taxonomy type it serves.
var taxonomyRoutes = []struct {
	path string
	typ  domain.TaxonomyType
}{
	{"/categories", domain.TypeCategory},
	{"/tags", domain.TypeTag},
}

// Handler returns an http.Handler serving every endpoint of s on a new chi router.
func Handler(s *Server) http.Handler {
	return HandlerFromMux(s, chi.NewRouter())
}

// HandlerFromMux registers every endpoint of s on r and returns r.
func HandlerFromMux(s *Server, r chi.Router) http.Handler {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPISpec)

	for _, tr := range taxonomyRoutes {
		r.Route(tr.path, func(r chi.Router) {
			r.Get("/", s.ListTaxonomies(tr.typ))
			r.Post("/", s.CreateTaxonomy(tr.typ))
			r.Get("/availability", s.CheckTaxonomyTitle(tr.typ))
			r.Get("/{slug}", s.GetTaxonomy(tr.typ))
			r.Get("/{slug}/posts", s.ListTaxonomyPosts(tr.typ))
			r.Put("/{id}", s.UpdateTaxonomy(tr.typ))
			r.Delete("/{id}", s.DeleteTaxonomy(tr.typ))
		})
	}

	r.Route("/posts", func(r chi.Router) {
		r.Post("/", s.CreatePost)
		r.Get("/{slug}", s.GetPost)
		r.Delete("/{id}", s.DeletePost)
	})

	r.Get("/export", s.GetExport)
	return r
}
