package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/fanblog/internal/domain"
)

// notFoundMessage returns e.g. "category not found".
func notFoundMessage(typ domain.TaxonomyType) string {
	return string(typ) + " not found"
}

// ListTaxonomies handles GET /categories and GET /tags.
// Results are ordered by title and carry the number of published posts.
func (s *Server) ListTaxonomies(typ domain.TaxonomyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, ok := pagination(w, r)
		if !ok {
			return
		}

		list, total, err := s.taxonomies.List(r.Context(), typ, params)
		if err != nil {
			s.writeError(w, r, err, notFoundMessage(typ))
			return
		}

		data := make([]Taxonomy, len(list))
		for i, t := range list {
			data[i] = taxonomyToResponse(t, true)
		}
		writeJSON(w, http.StatusOK, TaxonomyList{
			Data:       data,
			Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
		})
	}
}

// CreateTaxonomy handles POST /categories and POST /tags.
// A rejected title answers 422 (empty, too long) or 409 (taken) with the
// user-facing message in error.message.
func (s *Server) CreateTaxonomy(typ domain.TaxonomyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in TaxonomyInput
		if !decodeBody(w, r, &in) {
			return
		}

		created, err := s.taxonomies.Create(r.Context(), typ, in.Title, in.Description)
		if err != nil {
			s.writeError(w, r, err, notFoundMessage(typ))
			return
		}
		w.Header().Set("Location", r.URL.Path+"/"+created.Slug)
		writeJSON(w, http.StatusCreated, taxonomyToResponse(created, false))
	}
}

// CheckTaxonomyTitle handles GET /{kind}/availability?title=&exclude=.
// It always answers 200 for a well-formed request; a title that cannot be
// used comes back with available=false and the reason in message.
func (s *Server) CheckTaxonomyTitle(typ domain.TaxonomyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title, ok := queryString(w, r, "title")
		if !ok {
			return
		}
		var exclude *openapi_types.UUID
		if err := runtime.BindQueryParameter("form", true, false, "exclude", r.URL.Query(), &exclude); err != nil {
			writeJSON(w, http.StatusBadRequest, requestBody("invalid exclude: must be a UUID"))
			return
		}
		excludeID := uuid.Nil
		if exclude != nil {
			excludeID = *exclude
		}

		result, err := s.taxonomies.Availability(r.Context(), typ, title, excludeID)
		if err != nil {
			s.writeError(w, r, err, notFoundMessage(typ))
			return
		}
		writeJSON(w, http.StatusOK, Availability{
			Available: result.Available,
			Title:     result.Title,
			Slug:      result.Slug,
			Message:   result.Message,
		})
	}
}

// GetTaxonomy handles GET /{kind}/{slug}.
func (s *Server) GetTaxonomy(typ domain.TaxonomyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, ok := pathString(w, r, "slug")
		if !ok {
			return
		}

		t, err := s.taxonomies.GetBySlug(r.Context(), typ, slug)
		if err != nil {
			s.writeError(w, r, err, notFoundMessage(typ))
			return
		}
		writeJSON(w, http.StatusOK, taxonomyToResponse(t, false))
	}
}

// UpdateTaxonomy handles PUT /{kind}/{id}. The slug changes only when the
// title does.
func (s *Server) UpdateTaxonomy(typ domain.TaxonomyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		var in TaxonomyInput
		if !decodeBody(w, r, &in) {
			return
		}

		updated, err := s.taxonomies.Update(r.Context(), typ, id, in.Title, in.Description)
		if err != nil {
			s.writeError(w, r, err, notFoundMessage(typ))
			return
		}
		writeJSON(w, http.StatusOK, taxonomyToResponse(updated, false))
	}
}

// DeleteTaxonomy handles DELETE /{kind}/{id}.
func (s *Server) DeleteTaxonomy(typ domain.TaxonomyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		if err := s.taxonomies.Delete(r.Context(), typ, id); err != nil {
			s.writeError(w, r, err, notFoundMessage(typ))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListTaxonomyPosts handles GET /{kind}/{slug}/posts: the published posts
// filed under one category or tag, newest first.
func (s *Server) ListTaxonomyPosts(typ domain.TaxonomyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, ok := pathString(w, r, "slug")
		if !ok {
			return
		}
		params, ok := pagination(w, r)
		if !ok {
			return
		}

		posts, total, err := s.posts.ListByTaxonomy(r.Context(), typ, slug, params)
		if err != nil {
			s.writeError(w, r, err, notFoundMessage(typ))
			return
		}

		data := make([]Post, len(posts))
		for i, p := range posts {
			data[i] = postToResponse(p)
		}
		writeJSON(w, http.StatusOK, PostList{
			Data:       data,
			Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
		})
	}
}

// taxonomyToResponse maps a domain.Taxonomy to its wire form. PostCount is
// only meaningful on list reads, so withCount controls whether it is sent.
func taxonomyToResponse(t domain.Taxonomy, withCount bool) Taxonomy {
	resp := Taxonomy{
		Id:          t.ID,
		Type:        string(t.Type),
		Title:       t.Title,
		Slug:        t.Slug,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if withCount {
		n := t.PostCount
		resp.PostCount = &n
	}
	return resp
}
