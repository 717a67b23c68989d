package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/fanblog/internal/domain"
	"github.com/pkordes/fanblog/internal/repo"
)

// ExportService assembles a full flat export of all posts with their
// category and tags.
type ExportService struct {
	posts      repo.PostRepo
	taxonomies repo.TaxonomyRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(posts repo.PostRepo, taxonomies repo.TaxonomyRepo) *ExportService {
	return &ExportService{posts: posts, taxonomies: taxonomies}
}

// Export returns one ExportRow per post, newest first. Drafts are included.
// Always returns a non-nil slice.
//
// Posts and categories are loaded concurrently, so the repos must be backed
// by a pool rather than a single transaction.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	var (
		posts []domain.Post
		cats  []domain.Taxonomy
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		posts, err = s.posts.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		cats, err = s.taxonomies.List(gctx, domain.TypeCategory)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	catByID := make(map[uuid.UUID]domain.Taxonomy, len(cats))
	for _, c := range cats {
		catByID[c.ID] = c
	}

	rows := make([]domain.ExportRow, 0, len(posts))
	for _, p := range posts {
		tags, err := s.taxonomies.ListByPost(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: tags for post %s: %w", p.ID, err)
		}
		tagSlugs := make([]string, 0, len(tags))
		for _, t := range tags {
			tagSlugs = append(tagSlugs, t.Slug)
		}

		row := domain.ExportRow{
			PostID:    p.ID.String(),
			PostTitle: p.Title,
			PostSlug:  p.Slug,
			Status:    string(p.Status),
			CreatedAt: p.CreatedAt,
			Tags:      tagSlugs,
		}
		if p.CategoryID != nil {
			if c, ok := catByID[*p.CategoryID]; ok {
				row.CategoryTitle = c.Title
				row.CategorySlug = c.Slug
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
