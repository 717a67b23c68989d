package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/fanblog/internal/domain"
)

// CreatePost handles POST /posts.
// category is a category slug; tags are tag titles, created when missing.
func (s *Server) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in PostInput
	if !decodeBody(w, r, &in) {
		return
	}

	post, err := s.posts.Create(r.Context(), domain.PostInput{
		Title:    in.Title,
		Body:     in.Body,
		Status:   in.Status,
		Category: in.Category,
		Tags:     in.Tags,
	})
	if err != nil {
		s.writeError(w, r, err, "post not found")
		return
	}
	w.Header().Set("Location", "/posts/"+post.Slug)
	writeJSON(w, http.StatusCreated, postToResponse(post))
}

// GetPost handles GET /posts/{slug}.
func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	slug, ok := pathString(w, r, "slug")
	if !ok {
		return
	}

	post, err := s.posts.GetBySlug(r.Context(), slug)
	if err != nil {
		s.writeError(w, r, err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, postToResponse(post))
}

// DeletePost handles DELETE /posts/{id}.
func (s *Server) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := s.posts.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "post not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// postToResponse maps a domain.Post to its wire form. Tags is always an array.
func postToResponse(p domain.Post) Post {
	resp := Post{
		Id:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Body:      p.Body,
		Status:    string(p.Status),
		Tags:      make([]Taxonomy, len(p.Tags)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.CategoryID != nil {
		id := openapi_types.UUID(*p.CategoryID)
		resp.CategoryId = &id
	}
	for i, t := range p.Tags {
		resp.Tags[i] = taxonomyToResponse(t, false)
	}
	return resp
}
