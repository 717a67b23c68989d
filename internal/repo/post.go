// Package repo contains all database access logic for the fanblog backend.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/fanblog/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// uniqueViolation is the SQLSTATE Postgres reports for a unique index clash.
const uniqueViolation = "23505"

// mapWriteErr turns a unique index violation into domain.ErrConflict so the
// service layer never has to know about SQLSTATE codes.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	}
	return err
}

// PostRepo defines the persistence operations for Posts.
type PostRepo interface {
	// Create inserts a new post and returns the persisted record. A slug clash
	// returns domain.ErrConflict.
	Create(ctx context.Context, post domain.Post) (domain.Post, error)

	// GetBySlug retrieves a single post by slug.
	// Returns domain.ErrNotFound if no post has that slug.
	GetBySlug(ctx context.Context, slug string) (domain.Post, error)

	// List returns every post, newest first. Used by the export.
	List(ctx context.Context) ([]domain.Post, error)

	// ListByTaxonomyPaged returns one page of published posts filed under the
	// given category or tag, newest first, and the total count.
	ListByTaxonomyPaged(ctx context.Context, typ domain.TaxonomyType, taxonomyID uuid.UUID, p domain.PaginationParams) ([]domain.Post, int64, error)

	// Slugs returns every post slug.
	Slugs(ctx context.Context) ([]string, error)

	// Delete removes a post by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgPostRepo is the Postgres implementation of PostRepo.
type pgPostRepo struct {
	db db
}

// NewPostRepo constructs a PostRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostRepo(db db) PostRepo {
	return &pgPostRepo{db: db}
}

const postColumns = `id, title, slug, body, status, category_id, created_at, updated_at`

// Create inserts a new post row and returns the full persisted record.
func (r *pgPostRepo) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	const q = `
		INSERT INTO posts (title, slug, body, status, category_id)
		VALUES (@title, @slug, @body, @status, @category_id)
		RETURNING ` + postColumns

	args := pgx.NamedArgs{
		"title":       post.Title,
		"slug":        post.Slug,
		"body":        post.Body,
		"status":      string(post.Status),
		"category_id": post.CategoryID, // nil becomes NULL
	}

	result, err := scanPost(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.Create: %w", mapWriteErr(err))
	}
	return result, nil
}

// GetBySlug retrieves a post by its unique slug.
func (r *pgPostRepo) GetBySlug(ctx context.Context, slug string) (domain.Post, error) {
	const q = `SELECT ` + postColumns + ` FROM posts WHERE slug = @slug`

	result, err := scanPost(r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug}))
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.GetBySlug: %w", err)
	}
	return result, nil
}

// List returns every post ordered by created_at descending.
func (r *pgPostRepo) List(ctx context.Context) ([]domain.Post, error) {
	const q = `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, slug`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.PostRepo.List: %w", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.PostRepo.List: %w", err)
	}
	return posts, nil
}

// ListByTaxonomyPaged returns published posts in a category (via
// posts.category_id) or a tag (via post_tags).
func (r *pgPostRepo) ListByTaxonomyPaged(ctx context.Context, typ domain.TaxonomyType, taxonomyID uuid.UUID, p domain.PaginationParams) ([]domain.Post, int64, error) {
	const filter = `
		WHERE p.status = 'published'
		  AND CASE WHEN @type = 'category'
		           THEN p.category_id = @taxonomy_id
		           ELSE EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id = @taxonomy_id)
		      END`

	args := pgx.NamedArgs{
		"type":        string(typ),
		"taxonomy_id": taxonomyID,
		"limit":       p.Limit,
		"offset":      p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM posts p`+filter, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.PostRepo.ListByTaxonomyPaged: count: %w", err)
	}

	q := `
		SELECT p.id, p.title, p.slug, p.body, p.status, p.category_id, p.created_at, p.updated_at
		FROM posts p` + filter + `
		ORDER BY p.created_at DESC, p.slug
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PostRepo.ListByTaxonomyPaged: %w", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PostRepo.ListByTaxonomyPaged: %w", err)
	}
	return posts, total, nil
}

// Slugs returns every post slug.
func (r *pgPostRepo) Slugs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT slug FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("repo.PostRepo.Slugs: %w", err)
	}
	slugs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("repo.PostRepo.Slugs: %w", err)
	}
	return slugs, nil
}

// Delete removes a post by primary key. post_tags rows cascade.
func (r *pgPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PostRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PostRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// collectPosts drains rows into a non-nil slice and closes them.
func collectPosts(rows pgx.Rows) ([]domain.Post, error) {
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return posts, nil
}

// scanPost maps a single database row into a domain.Post.
// It handles the UUID and nullable category_id conversions.
func scanPost(s scanner) (domain.Post, error) {
	var (
		p          domain.Post
		id         pgtype.UUID
		categoryID pgtype.UUID
		status     string
	)

	err := s.Scan(&id, &p.Title, &p.Slug, &p.Body, &status, &categoryID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.Status = domain.PostStatus(status)
	if categoryID.Valid {
		cid := uuid.UUID(categoryID.Bytes)
		p.CategoryID = &cid
	}
	return p, nil
}
