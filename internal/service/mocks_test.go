package service_test

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/fanblog/internal/domain"
	"github.com/pkordes/fanblog/internal/repo"
)

// ---- mock TaxonomyRepo -----------------------------------------------------

// mockTaxonomyRepo is a hand-written test double for repo.TaxonomyRepo.
// Snapshot funcs left nil return empty snapshots.
type mockTaxonomyRepo struct {
	create     func(ctx context.Context, t domain.Taxonomy) (domain.Taxonomy, error)
	getByID    func(ctx context.Context, typ domain.TaxonomyType, id uuid.UUID) (domain.Taxonomy, error)
	getBySlug  func(ctx context.Context, typ domain.TaxonomyType, slug string) (domain.Taxonomy, error)
	list       func(ctx context.Context, typ domain.TaxonomyType) ([]domain.Taxonomy, error)
	listPaged  func(ctx context.Context, typ domain.TaxonomyType, p domain.PaginationParams) ([]domain.Taxonomy, int64, error)
	titles     func(ctx context.Context, typ domain.TaxonomyType, excludeID uuid.UUID) ([]string, error)
	slugs      func(ctx context.Context, typ domain.TaxonomyType, excludeID uuid.UUID) ([]string, error)
	update     func(ctx context.Context, t domain.Taxonomy) (domain.Taxonomy, error)
	delete     func(ctx context.Context, typ domain.TaxonomyType, id uuid.UUID) error
	addToPost  func(ctx context.Context, postID, tagID uuid.UUID) error
	listByPost func(ctx context.Context, postID uuid.UUID) ([]domain.Taxonomy, error)
}

func (m *mockTaxonomyRepo) Create(ctx context.Context, t domain.Taxonomy) (domain.Taxonomy, error) {
	return m.create(ctx, t)
}
func (m *mockTaxonomyRepo) GetByID(ctx context.Context, typ domain.TaxonomyType, id uuid.UUID) (domain.Taxonomy, error) {
	return m.getByID(ctx, typ, id)
}
func (m *mockTaxonomyRepo) GetBySlug(ctx context.Context, typ domain.TaxonomyType, slug string) (domain.Taxonomy, error) {
	return m.getBySlug(ctx, typ, slug)
}
func (m *mockTaxonomyRepo) List(ctx context.Context, typ domain.TaxonomyType) ([]domain.Taxonomy, error) {
	return m.list(ctx, typ)
}
func (m *mockTaxonomyRepo) ListPaged(ctx context.Context, typ domain.TaxonomyType, p domain.PaginationParams) ([]domain.Taxonomy, int64, error) {
	return m.listPaged(ctx, typ, p)
}
func (m *mockTaxonomyRepo) Titles(ctx context.Context, typ domain.TaxonomyType, excludeID uuid.UUID) ([]string, error) {
	if m.titles == nil {
		return nil, nil
	}
	return m.titles(ctx, typ, excludeID)
}
func (m *mockTaxonomyRepo) Slugs(ctx context.Context, typ domain.TaxonomyType, excludeID uuid.UUID) ([]string, error) {
	if m.slugs == nil {
		return nil, nil
	}
	return m.slugs(ctx, typ, excludeID)
}
func (m *mockTaxonomyRepo) Update(ctx context.Context, t domain.Taxonomy) (domain.Taxonomy, error) {
	return m.update(ctx, t)
}
func (m *mockTaxonomyRepo) Delete(ctx context.Context, typ domain.TaxonomyType, id uuid.UUID) error {
	return m.delete(ctx, typ, id)
}
func (m *mockTaxonomyRepo) AddToPost(ctx context.Context, postID, tagID uuid.UUID) error {
	return m.addToPost(ctx, postID, tagID)
}
func (m *mockTaxonomyRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Taxonomy, error) {
	return m.listByPost(ctx, postID)
}

// compile-time check: mockTaxonomyRepo must satisfy repo.TaxonomyRepo.
var _ repo.TaxonomyRepo = (*mockTaxonomyRepo)(nil)

// ---- mock PostRepo ---------------------------------------------------------

type mockPostRepo struct {
	create              func(ctx context.Context, post domain.Post) (domain.Post, error)
	getBySlug           func(ctx context.Context, slug string) (domain.Post, error)
	list                func(ctx context.Context) ([]domain.Post, error)
	listByTaxonomyPaged func(ctx context.Context, typ domain.TaxonomyType, id uuid.UUID, p domain.PaginationParams) ([]domain.Post, int64, error)
	slugs               func(ctx context.Context) ([]string, error)
	delete              func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPostRepo) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	return m.create(ctx, post)
}
func (m *mockPostRepo) GetBySlug(ctx context.Context, slug string) (domain.Post, error) {
	return m.getBySlug(ctx, slug)
}
func (m *mockPostRepo) List(ctx context.Context) ([]domain.Post, error) {
	return m.list(ctx)
}
func (m *mockPostRepo) ListByTaxonomyPaged(ctx context.Context, typ domain.TaxonomyType, id uuid.UUID, p domain.PaginationParams) ([]domain.Post, int64, error) {
	return m.listByTaxonomyPaged(ctx, typ, id, p)
}
func (m *mockPostRepo) Slugs(ctx context.Context) ([]string, error) {
	if m.slugs == nil {
		return nil, nil
	}
	return m.slugs(ctx)
}
func (m *mockPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.PostRepo = (*mockPostRepo)(nil)

// ---- in-memory TaxonomyRepo ------------------------------------------------

// memTaxonomyRepo keeps taxonomies in a slice and enforces the same unique
// keys as the schema (type+slug, type+lower(title)). Used where a test needs
// state across calls, e.g. concurrent creates.
type memTaxonomyRepo struct {
	mockTaxonomyRepo

	mu   sync.Mutex
	rows []domain.Taxonomy
}

func newMemTaxonomyRepo(seed ...domain.Taxonomy) *memTaxonomyRepo {
	m := &memTaxonomyRepo{}
	for _, t := range seed {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		m.rows = append(m.rows, t)
	}
	return m
}

func (m *memTaxonomyRepo) Create(_ context.Context, t domain.Taxonomy) (domain.Taxonomy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Type == t.Type && (r.Slug == t.Slug || strings.EqualFold(r.Title, t.Title)) {
			return domain.Taxonomy{}, domain.ErrConflict
		}
	}
	t.ID = uuid.New()
	m.rows = append(m.rows, t)
	return t, nil
}

func (m *memTaxonomyRepo) List(_ context.Context, typ domain.TaxonomyType) ([]domain.Taxonomy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Taxonomy
	for _, r := range m.rows {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memTaxonomyRepo) Titles(_ context.Context, typ domain.TaxonomyType, excludeID uuid.UUID) ([]string, error) {
	return m.column(typ, excludeID, func(t domain.Taxonomy) string { return t.Title }), nil
}

func (m *memTaxonomyRepo) Slugs(_ context.Context, typ domain.TaxonomyType, excludeID uuid.UUID) ([]string, error) {
	return m.column(typ, excludeID, func(t domain.Taxonomy) string { return t.Slug }), nil
}

func (m *memTaxonomyRepo) column(typ domain.TaxonomyType, excludeID uuid.UUID, get func(domain.Taxonomy) string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, r := range m.rows {
		if r.Type == typ && r.ID != excludeID {
			out = append(out, get(r))
		}
	}
	return out
}

func (m *memTaxonomyRepo) count(typ domain.TaxonomyType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.Type == typ {
			n++
		}
	}
	return n
}

var _ repo.TaxonomyRepo = (*memTaxonomyRepo)(nil)

func (m *memTaxonomyRepo) snapshot() []domain.Taxonomy {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Taxonomy(nil), m.rows...)
}

func (m *memTaxonomyRepo) restore(rows []domain.Taxonomy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = rows
}

// ---- fake Transactor -------------------------------------------------------

// fakeTx hands fn the same repos every time. When mem is set, a failing fn
// restores mem to its state before InTx, as a rollback would.
type fakeTx struct {
	repos     repo.Repos
	mem       *memTaxonomyRepo
	committed int
}

func (f *fakeTx) InTx(_ context.Context, fn func(repo.Repos) error) error {
	var saved []domain.Taxonomy
	if f.mem != nil {
		saved = f.mem.snapshot()
	}
	if err := fn(f.repos); err != nil {
		if f.mem != nil {
			f.mem.restore(saved)
		}
		return err
	}
	f.committed++
	return nil
}

var _ repo.Transactor = (*fakeTx)(nil)
