package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/fanblog/internal/domain"
)

// TaxonomyRepo defines the persistence operations for categories and tags
// (both live in the taxonomies table, keyed by type) and the post_tags join table.
//
// Uniqueness of (type, slug) and (type, lower(title)) is enforced by the
// schema. A write that loses a race reports domain.ErrConflict.
type TaxonomyRepo interface {
	// Create inserts a taxonomy and returns the persisted record.
	Create(ctx context.Context, t domain.Taxonomy) (domain.Taxonomy, error)

	// GetByID retrieves a taxonomy of the given type by primary key.
	// Returns domain.ErrNotFound if no such row exists.
	GetByID(ctx context.Context, typ domain.TaxonomyType, id uuid.UUID) (domain.Taxonomy, error)

	// GetBySlug retrieves a taxonomy of the given type by slug.
	// Returns domain.ErrNotFound if no such row exists.
	GetBySlug(ctx context.Context, typ domain.TaxonomyType, slug string) (domain.Taxonomy, error)

	// List returns every taxonomy of the given type ordered by title.
	// PostCount is not populated.
	List(ctx context.Context, typ domain.TaxonomyType) ([]domain.Taxonomy, error)

	// ListPaged returns one page of taxonomies of the given type ordered by
	// title, with PostCount set to the number of published posts, and the
	// total count.
	ListPaged(ctx context.Context, typ domain.TaxonomyType, p domain.PaginationParams) ([]domain.Taxonomy, int64, error)

	// Titles returns the titles of every taxonomy of the given type, leaving
	// out excludeID. Pass uuid.Nil to exclude nothing.
	Titles(ctx context.Context, typ domain.TaxonomyType, excludeID uuid.UUID) ([]string, error)

	// Slugs returns the slugs of every taxonomy of the given type, leaving
	// out excludeID. Pass uuid.Nil to exclude nothing.
	Slugs(ctx context.Context, typ domain.TaxonomyType, excludeID uuid.UUID) ([]string, error)

	// Update overwrites title, slug and description of an existing taxonomy.
	// Returns domain.ErrNotFound if no row matches ID and type.
	Update(ctx context.Context, t domain.Taxonomy) (domain.Taxonomy, error)

	// Delete removes a taxonomy. Posts in a deleted category keep existing
	// with no category; tag links are removed.
	// Returns domain.ErrNotFound if no row matches.
	Delete(ctx context.Context, typ domain.TaxonomyType, id uuid.UUID) error

	// AddToPost links a tag to a post. Linking twice is not an error.
	AddToPost(ctx context.Context, postID, tagID uuid.UUID) error

	// ListByPost returns all tags linked to a post, ordered by slug.
	ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Taxonomy, error)
}

// pgTaxonomyRepo is the Postgres implementation of TaxonomyRepo.
type pgTaxonomyRepo struct {
	db db
}

// NewTaxonomyRepo constructs a TaxonomyRepo backed by the provided db connection.
func NewTaxonomyRepo(db db) TaxonomyRepo {
	return &pgTaxonomyRepo{db: db}
}

const taxonomyColumns = `id, type, title, slug, description, created_at, updated_at`

// Create inserts a taxonomy row. A unique index violation becomes ErrConflict.
func (r *pgTaxonomyRepo) Create(ctx context.Context, t domain.Taxonomy) (domain.Taxonomy, error) {
	const q = `
		INSERT INTO taxonomies (type, title, slug, description)
		VALUES (@type, @title, @slug, @description)
		RETURNING ` + taxonomyColumns

	args := pgx.NamedArgs{
		"type":        string(t.Type),
		"title":       t.Title,
		"slug":        t.Slug,
		"description": t.Description,
	}

	result, err := scanTaxonomy(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Taxonomy{}, fmt.Errorf("repo.TaxonomyRepo.Create: %w", mapWriteErr(err))
	}
	return result, nil
}

// GetByID retrieves a taxonomy by type and primary key.
func (r *pgTaxonomyRepo) GetByID(ctx context.Context, typ domain.TaxonomyType, id uuid.UUID) (domain.Taxonomy, error) {
	const q = `SELECT ` + taxonomyColumns + ` FROM taxonomies WHERE type = @type AND id = @id`

	result, err := scanTaxonomy(r.db.QueryRow(ctx, q, pgx.NamedArgs{"type": string(typ), "id": id}))
	if err != nil {
		return domain.Taxonomy{}, fmt.Errorf("repo.TaxonomyRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetBySlug retrieves a taxonomy by type and slug.
func (r *pgTaxonomyRepo) GetBySlug(ctx context.Context, typ domain.TaxonomyType, slug string) (domain.Taxonomy, error) {
	const q = `SELECT ` + taxonomyColumns + ` FROM taxonomies WHERE type = @type AND slug = @slug`

	result, err := scanTaxonomy(r.db.QueryRow(ctx, q, pgx.NamedArgs{"type": string(typ), "slug": slug}))
	if err != nil {
		return domain.Taxonomy{}, fmt.Errorf("repo.TaxonomyRepo.GetBySlug: %w", err)
	}
	return result, nil
}

// List returns every taxonomy of one type ordered by lower(title).
func (r *pgTaxonomyRepo) List(ctx context.Context, typ domain.TaxonomyType) ([]domain.Taxonomy, error) {
	const q = `
		SELECT ` + taxonomyColumns + `
		FROM taxonomies
		WHERE type = @type
		ORDER BY lower(title), id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"type": string(typ)})
	if err != nil {
		return nil, fmt.Errorf("repo.TaxonomyRepo.List: %w", err)
	}
	defer rows.Close()

	list := []domain.Taxonomy{}
	for rows.Next() {
		t, err := scanTaxonomy(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TaxonomyRepo.List: scan: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TaxonomyRepo.List: rows: %w", err)
	}
	return list, nil
}

// ListPaged returns one page of taxonomies with their published post counts.
// Categories are counted through posts.category_id, tags through post_tags.
func (r *pgTaxonomyRepo) ListPaged(ctx context.Context, typ domain.TaxonomyType, p domain.PaginationParams) ([]domain.Taxonomy, int64, error) {
	const countQ = `SELECT count(*) FROM taxonomies WHERE type = @type`
	const q = `
		SELECT t.id, t.type, t.title, t.slug, t.description, t.created_at, t.updated_at,
		       (SELECT count(*)
		        FROM posts p
		        WHERE p.status = 'published'
		          AND CASE WHEN t.type = 'category'
		                   THEN p.category_id = t.id
		                   ELSE EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id = t.id)
		              END) AS post_count
		FROM taxonomies t
		WHERE t.type = @type
		ORDER BY lower(t.title), t.id
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{
		"type":   string(typ),
		"limit":  p.Limit,
		"offset": p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TaxonomyRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TaxonomyRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	list := []domain.Taxonomy{}
	for rows.Next() {
		var count int64
		t, err := scanTaxonomy(rows, &count)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TaxonomyRepo.ListPaged: scan: %w", err)
		}
		t.PostCount = int(count)
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TaxonomyRepo.ListPaged: rows: %w", err)
	}
	return list, total, nil
}

// Titles returns the snapshot of existing titles used for duplicate checks.
func (r *pgTaxonomyRepo) Titles(ctx context.Context, typ domain.TaxonomyType, excludeID uuid.UUID) ([]string, error) {
	const q = `SELECT title FROM taxonomies WHERE type = @type AND id <> @exclude_id`

	values, err := r.column(ctx, q, typ, excludeID)
	if err != nil {
		return nil, fmt.Errorf("repo.TaxonomyRepo.Titles: %w", err)
	}
	return values, nil
}

// Slugs returns the snapshot of existing slugs used for suffix derivation.
func (r *pgTaxonomyRepo) Slugs(ctx context.Context, typ domain.TaxonomyType, excludeID uuid.UUID) ([]string, error) {
	const q = `SELECT slug FROM taxonomies WHERE type = @type AND id <> @exclude_id`

	values, err := r.column(ctx, q, typ, excludeID)
	if err != nil {
		return nil, fmt.Errorf("repo.TaxonomyRepo.Slugs: %w", err)
	}
	return values, nil
}

// column runs a single-text-column query scoped by type and excluded ID.
// uuid.Nil never matches a generated key, so it excludes nothing.
func (r *pgTaxonomyRepo) column(ctx context.Context, q string, typ domain.TaxonomyType, excludeID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"type": string(typ), "exclude_id": excludeID})
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Update overwrites the mutable columns and bumps updated_at.
func (r *pgTaxonomyRepo) Update(ctx context.Context, t domain.Taxonomy) (domain.Taxonomy, error) {
	const q = `
		UPDATE taxonomies
		SET title = @title, slug = @slug, description = @description, updated_at = now()
		WHERE id = @id AND type = @type
		RETURNING ` + taxonomyColumns

	args := pgx.NamedArgs{
		"id":          t.ID,
		"type":        string(t.Type),
		"title":       t.Title,
		"slug":        t.Slug,
		"description": t.Description,
	}

	result, err := scanTaxonomy(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Taxonomy{}, fmt.Errorf("repo.TaxonomyRepo.Update: %w", mapWriteErr(err))
	}
	return result, nil
}

// Delete removes a taxonomy row. FK actions handle posts and post_tags.
func (r *pgTaxonomyRepo) Delete(ctx context.Context, typ domain.TaxonomyType, id uuid.UUID) error {
	const q = `DELETE FROM taxonomies WHERE id = @id AND type = @type`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "type": string(typ)})
	if err != nil {
		return fmt.Errorf("repo.TaxonomyRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TaxonomyRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// AddToPost links a tag to a post. Idempotent via ON CONFLICT DO NOTHING.
func (r *pgTaxonomyRepo) AddToPost(ctx context.Context, postID, tagID uuid.UUID) error {
	const q = `
		INSERT INTO post_tags (post_id, tag_id)
		VALUES (@post_id, @tag_id)
		ON CONFLICT (post_id, tag_id) DO NOTHING`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"post_id": postID, "tag_id": tagID})
	if err != nil {
		return fmt.Errorf("repo.TaxonomyRepo.AddToPost: %w", err)
	}
	return nil
}

// ListByPost returns all tags linked to a post, ordered by slug.
func (r *pgTaxonomyRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Taxonomy, error) {
	const q = `
		SELECT t.id, t.type, t.title, t.slug, t.description, t.created_at, t.updated_at
		FROM taxonomies t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = @post_id
		ORDER BY t.slug`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"post_id": postID})
	if err != nil {
		return nil, fmt.Errorf("repo.TaxonomyRepo.ListByPost: %w", err)
	}
	defer rows.Close()

	tags := []domain.Taxonomy{}
	for rows.Next() {
		t, err := scanTaxonomy(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TaxonomyRepo.ListByPost: scan: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TaxonomyRepo.ListByPost: rows: %w", err)
	}
	return tags, nil
}

// scanTaxonomy maps a taxonomy row into a domain.Taxonomy. Any extra
// destinations are scanned after the standard columns.
func scanTaxonomy(s scanner, extra ...any) (domain.Taxonomy, error) {
	var (
		t   domain.Taxonomy
		id  pgtype.UUID
		typ string
	)

	dest := append([]any{&id, &typ, &t.Title, &t.Slug, &t.Description, &t.CreatedAt, &t.UpdatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Taxonomy{}, domain.ErrNotFound
		}
		return domain.Taxonomy{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.Type = domain.TaxonomyType(typ)
	return t, nil
}
