package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/fanblog/internal/domain"
	"github.com/pkordes/fanblog/internal/naming"
	"github.com/pkordes/fanblog/internal/repo"
)

// tagResolver turns tag titles into persisted tags within the caller's
// transaction. *TaxonomyService satisfies it.
type tagResolver interface {
	WithTagLock(fn func() error) error
	ResolveTagsIn(ctx context.Context, r repo.TaxonomyRepo, titles []string) ([]domain.Taxonomy, error)
}

// PostService implements business logic for Post operations.
// It holds the taxonomy repo because posts are filed under a category and
// carry tags, and a tagResolver so unknown tags are created on the fly.
// Writes that span posts and tags go through tx.
type PostService struct {
	posts      repo.PostRepo
	taxonomies repo.TaxonomyRepo
	tags       tagResolver
	tx         repo.Transactor
	namer      *naming.Namer
	logger     *slog.Logger

	mu sync.Mutex // serializes post slug derivation
}

// NewPostService constructs a PostService backed by the provided repos.
func NewPostService(posts repo.PostRepo, taxonomies repo.TaxonomyRepo, tags tagResolver, tx repo.Transactor, namer *naming.Namer, logger *slog.Logger) *PostService {
	if namer == nil {
		namer = naming.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{posts: posts, taxonomies: taxonomies, tags: tags, tx: tx, namer: namer, logger: logger}
}

// Create validates in, resolves its category and tags, derives a unique slug
// from the title and persists the post. New tags, the post row and its tag
// links are written in one transaction, so a failure stores none of them.
// Returns domain.ErrValidation for bad input or an unknown category slug.
func (s *PostService) Create(ctx context.Context, in domain.PostInput) (domain.Post, error) {
	post := domain.Post{Title: strings.TrimSpace(in.Title), Body: in.Body}
	if post.Title == "" {
		return domain.Post{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	status, err := domain.ParsePostStatus(in.Status)
	if err != nil {
		return domain.Post{}, err
	}
	post.Status = status

	if slug := strings.TrimSpace(in.Category); slug != "" {
		cat, err := s.taxonomies.GetBySlug(ctx, domain.TypeCategory, slug)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Post{}, fmt.Errorf("%w: category %q does not exist", domain.ErrValidation, slug)
		}
		if err != nil {
			return domain.Post{}, fmt.Errorf("service.PostService.Create: %w", err)
		}
		post.CategoryID = &cat.ID
	}

	// New tags, the post and its tag links commit together. Both locks are
	// held until commit so no other writer in this process reads a snapshot
	// that misses them.
	var created domain.Post
	err = s.tags.WithTagLock(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		return s.tx.InTx(ctx, func(r repo.Repos) error {
			tags, err := s.tags.ResolveTagsIn(ctx, r.Taxonomies, in.Tags)
			if err != nil {
				return err
			}
			p, err := s.insert(ctx, r.Posts, post)
			if err != nil {
				return err
			}
			for _, tag := range tags {
				if err := r.Taxonomies.AddToPost(ctx, p.ID, tag.ID); err != nil {
					return err
				}
			}
			p.Tags = tags
			created = p
			return nil
		})
	})
	if err != nil {
		return domain.Post{}, wrapUnlessTitleError("service.PostService.Create", err)
	}
	return created, nil
}

// insert derives the post slug and writes the row through r.
// The caller must hold s.mu.
func (s *PostService) insert(ctx context.Context, r repo.PostRepo, post domain.Post) (domain.Post, error) {
	slugs, err := r.Slugs(ctx)
	if err != nil {
		return domain.Post{}, err
	}
	if post.Slug, err = s.namer.DeriveSlug(post.Title, slugs); err != nil {
		return domain.Post{}, err
	}

	created, err := r.Create(ctx, post)
	if err != nil {
		return domain.Post{}, err
	}
	s.logger.DebugContext(ctx, "post created", slog.String("id", created.ID.String()), slog.String("slug", created.Slug))
	return created, nil
}

// GetBySlug returns a post with its tags.
// Returns domain.ErrNotFound if no post has that slug.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (domain.Post, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.GetBySlug: %w", err)
	}
	post.Tags, err = s.taxonomies.ListByPost(ctx, post.ID)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.GetBySlug: %w", err)
	}
	return post, nil
}

// ListByTaxonomy returns one page of published posts in the category or tag
// identified by typ and slug, and the total count.
// Returns domain.ErrNotFound if the taxonomy does not exist.
func (s *PostService) ListByTaxonomy(ctx context.Context, typ domain.TaxonomyType, slug string, p domain.PaginationParams) ([]domain.Post, int64, error) {
	tax, err := s.taxonomies.GetBySlug(ctx, typ, slug)
	if err != nil {
		return nil, 0, fmt.Errorf("service.PostService.ListByTaxonomy: %w", err)
	}
	posts, total, err := s.posts.ListByTaxonomyPaged(ctx, typ, tax.ID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.PostService.ListByTaxonomy: %w", err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return posts, total, nil
}

// Delete removes a post by ID.
// Returns domain.ErrNotFound if the post does not exist.
func (s *PostService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.PostService.Delete: %w", err)
	}
	return nil
}
