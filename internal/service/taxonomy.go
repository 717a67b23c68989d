// Package service contains the business logic for the fanblog API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
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

// TaxonomyService implements business logic for categories and tags.
//
// Every write reads the current titles and slugs of one type, runs them
// through the Namer and then writes. That sequence holds a per-type lock so
// two requests in this process cannot both pass the duplicate check. Other
// processes are stopped by the unique indexes; a write that loses that race
// is reported as a DuplicateTitle failure.
type TaxonomyService struct {
	repo   repo.TaxonomyRepo
	namer  *naming.Namer
	logger *slog.Logger
	locks  map[domain.TaxonomyType]*sync.Mutex
}

// NewTaxonomyService constructs a TaxonomyService. A nil namer uses
// language-neutral comparison; a nil logger uses slog.Default().
func NewTaxonomyService(r repo.TaxonomyRepo, namer *naming.Namer, logger *slog.Logger) *TaxonomyService {
	if namer == nil {
		namer = naming.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaxonomyService{
		repo:   r,
		namer:  namer,
		logger: logger,
		locks: map[domain.TaxonomyType]*sync.Mutex{
			domain.TypeCategory: {},
			domain.TypeTag:      {},
		},
	}
}

// lock acquires the write lock for typ and returns its release func.
func (s *TaxonomyService) lock(typ domain.TaxonomyType) (func(), error) {
	mu, ok := s.locks[typ]
	if !ok {
		return nil, fmt.Errorf("%w: unknown taxonomy type %q", domain.ErrValidation, string(typ))
	}
	mu.Lock()
	return mu.Unlock, nil
}

// reservedSlugs are path segments the HTTP API routes statically under
// /categories and /tags, so no taxonomy may take them as a slug.
var reservedSlugs = []string{"availability"}

// slugs returns the taken slugs of typ, minus excludeID, plus reservedSlugs.
func (s *TaxonomyService) slugs(ctx context.Context, r repo.TaxonomyRepo, typ domain.TaxonomyType, excludeID uuid.UUID) ([]string, error) {
	taken, err := r.Slugs(ctx, typ, excludeID)
	if err != nil {
		return nil, err
	}
	return append(taken, reservedSlugs...), nil
}

// Create validates title, derives its slug and persists a new taxonomy.
// Title failures are returned as *domain.TitleError.
func (s *TaxonomyService) Create(ctx context.Context, typ domain.TaxonomyType, title, description string) (domain.Taxonomy, error) {
	unlock, err := s.lock(typ)
	if err != nil {
		return domain.Taxonomy{}, err
	}
	defer unlock()

	titles, err := s.repo.Titles(ctx, typ, uuid.Nil)
	if err != nil {
		return domain.Taxonomy{}, fmt.Errorf("service.TaxonomyService.Create: %w", err)
	}
	slugs, err := s.slugs(ctx, s.repo, typ, uuid.Nil)
	if err != nil {
		return domain.Taxonomy{}, fmt.Errorf("service.TaxonomyService.Create: %w", err)
	}

	in := domain.Taxonomy{Type: typ, Title: strings.TrimSpace(title), Description: strings.TrimSpace(description)}
	result, err := s.createLocked(ctx, in, titles, slugs)
	if err != nil {
		return domain.Taxonomy{}, wrapUnlessTitleError("service.TaxonomyService.Create", err)
	}
	return result, nil
}

// createLocked runs the naming checks against the given snapshots and writes.
// The caller must hold the lock for in.Type.
func (s *TaxonomyService) createLocked(ctx context.Context, in domain.Taxonomy, titles, slugs []string) (domain.Taxonomy, error) {
	named, err := s.name(in, titles, slugs)
	if err != nil {
		return domain.Taxonomy{}, err
	}
	return s.insert(ctx, s.repo, named)
}

// name validates in.Title against titles and fills in its slug. Nothing is
// written.
func (s *TaxonomyService) name(in domain.Taxonomy, titles, slugs []string) (domain.Taxonomy, error) {
	title, err := s.namer.Validate(in.Title, titles, in.Type)
	if err != nil {
		return domain.Taxonomy{}, err
	}
	slug, err := s.namer.DeriveSlug(title, slugs)
	if err != nil {
		return domain.Taxonomy{}, err
	}
	in.Title, in.Slug = title, slug
	return in, nil
}

// insert writes an already named taxonomy through r. A unique index
// violation means another writer got there first and is reported as
// DuplicateTitle.
func (s *TaxonomyService) insert(ctx context.Context, r repo.TaxonomyRepo, in domain.Taxonomy) (domain.Taxonomy, error) {
	created, err := r.Create(ctx, in)
	if errors.Is(err, domain.ErrConflict) {
		s.logger.WarnContext(ctx, "taxonomy create lost uniqueness race",
			slog.String("type", string(in.Type)),
			slog.String("title", in.Title),
			slog.String("slug", in.Slug),
		)
		return domain.Taxonomy{}, domain.NewDuplicateTitleError(in.Type, in.Title)
	}
	if err != nil {
		return domain.Taxonomy{}, err
	}

	s.logger.DebugContext(ctx, "taxonomy created",
		slog.String("type", string(created.Type)),
		slog.String("id", created.ID.String()),
		slog.String("slug", created.Slug),
	)
	return created, nil
}

// Update renames a taxonomy and replaces its description. The slug is
// re-derived only when the title actually changes; the entry's own title and
// slug never count as taken.
func (s *TaxonomyService) Update(ctx context.Context, typ domain.TaxonomyType, id uuid.UUID, title, description string) (domain.Taxonomy, error) {
	unlock, err := s.lock(typ)
	if err != nil {
		return domain.Taxonomy{}, err
	}
	defer unlock()

	current, err := s.repo.GetByID(ctx, typ, id)
	if err != nil {
		return domain.Taxonomy{}, fmt.Errorf("service.TaxonomyService.Update: %w", err)
	}

	titles, err := s.repo.Titles(ctx, typ, id)
	if err != nil {
		return domain.Taxonomy{}, fmt.Errorf("service.TaxonomyService.Update: %w", err)
	}
	newTitle, err := s.namer.Validate(strings.TrimSpace(title), titles, typ)
	if err != nil {
		return domain.Taxonomy{}, err
	}

	next := current
	next.Description = strings.TrimSpace(description)
	if newTitle != current.Title {
		slugs, err := s.slugs(ctx, s.repo, typ, id)
		if err != nil {
			return domain.Taxonomy{}, fmt.Errorf("service.TaxonomyService.Update: %w", err)
		}
		if next.Slug, err = s.namer.DeriveSlug(newTitle, slugs); err != nil {
			return domain.Taxonomy{}, fmt.Errorf("service.TaxonomyService.Update: %w", err)
		}
		next.Title = newTitle
	}

	result, err := s.repo.Update(ctx, next)
	if errors.Is(err, domain.ErrConflict) {
		s.logger.WarnContext(ctx, "taxonomy rename lost uniqueness race",
			slog.String("type", string(typ)),
			slog.String("id", id.String()),
			slog.String("title", newTitle),
		)
		return domain.Taxonomy{}, domain.NewDuplicateTitleError(typ, newTitle)
	}
	if err != nil {
		return domain.Taxonomy{}, fmt.Errorf("service.TaxonomyService.Update: %w", err)
	}
	return result, nil
}

// Availability reports whether title could be used for a new taxonomy (or,
// with a non-nil excludeID, as the new title of that entry) and which slug it
// would get. Nothing is written.
func (s *TaxonomyService) Availability(ctx context.Context, typ domain.TaxonomyType, title string, excludeID uuid.UUID) (domain.Availability, error) {
	if _, ok := s.locks[typ]; !ok {
		return domain.Availability{}, fmt.Errorf("%w: unknown taxonomy type %q", domain.ErrValidation, string(typ))
	}

	title = strings.TrimSpace(title)
	titles, err := s.repo.Titles(ctx, typ, excludeID)
	if err != nil {
		return domain.Availability{}, fmt.Errorf("service.TaxonomyService.Availability: %w", err)
	}

	if _, err := s.namer.Validate(title, titles, typ); err != nil {
		var titleErr *domain.TitleError
		if errors.As(err, &titleErr) {
			return domain.Availability{Title: title, Message: titleErr.Message}, nil
		}
		return domain.Availability{}, fmt.Errorf("service.TaxonomyService.Availability: %w", err)
	}

	slugs, err := s.slugs(ctx, s.repo, typ, excludeID)
	if err != nil {
		return domain.Availability{}, fmt.Errorf("service.TaxonomyService.Availability: %w", err)
	}
	slug, err := s.namer.DeriveSlug(title, slugs)
	if err != nil {
		return domain.Availability{}, fmt.Errorf("service.TaxonomyService.Availability: %w", err)
	}
	return domain.Availability{Available: true, Title: title, Slug: slug}, nil
}

// GetBySlug returns a single taxonomy by type and slug.
// Returns domain.ErrNotFound if it does not exist.
func (s *TaxonomyService) GetBySlug(ctx context.Context, typ domain.TaxonomyType, slug string) (domain.Taxonomy, error) {
	result, err := s.repo.GetBySlug(ctx, typ, slug)
	if err != nil {
		return domain.Taxonomy{}, fmt.Errorf("service.TaxonomyService.GetBySlug: %w", err)
	}
	return result, nil
}

// List returns one page of taxonomies with published post counts and the
// total count. Always returns a non-nil slice.
func (s *TaxonomyService) List(ctx context.Context, typ domain.TaxonomyType, p domain.PaginationParams) ([]domain.Taxonomy, int64, error) {
	list, total, err := s.repo.ListPaged(ctx, typ, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TaxonomyService.List: %w", err)
	}
	if list == nil {
		list = []domain.Taxonomy{}
	}
	return list, total, nil
}

// Delete removes a taxonomy by ID.
// Returns domain.ErrNotFound if it does not exist.
func (s *TaxonomyService) Delete(ctx context.Context, typ domain.TaxonomyType, id uuid.UUID) error {
	unlock, err := s.lock(typ)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.repo.Delete(ctx, typ, id); err != nil {
		return fmt.Errorf("service.TaxonomyService.Delete: %w", err)
	}
	s.logger.InfoContext(ctx, "taxonomy deleted", slog.String("type", string(typ)), slog.String("id", id.String()))
	return nil
}

// ResolveTags maps tag titles to tags, reusing an existing tag whose title
// matches ignoring case and creating the rest through the same checks as
// Create. Repeated titles resolve to one tag; the result keeps input order.
//
// Every new title is validated and named before the first write, so a bad
// title leaves the store untouched. Callers that write more than tags should
// use ResolveTagsIn inside a transaction instead.
func (s *TaxonomyService) ResolveTags(ctx context.Context, titles []string) ([]domain.Taxonomy, error) {
	var tags []domain.Taxonomy
	err := s.WithTagLock(func() error {
		var err error
		tags, err = s.ResolveTagsIn(ctx, s.repo, titles)
		return err
	})
	if err != nil {
		return nil, wrapUnlessTitleError("service.TaxonomyService.ResolveTags", err)
	}
	return tags, nil
}

// WithTagLock runs fn while holding the tag write lock, so snapshots read
// inside fn stay current until fn returns.
func (s *TaxonomyService) WithTagLock(fn func() error) error {
	unlock, err := s.lock(domain.TypeTag)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// ResolveTagsIn is ResolveTags against r, typically a repo bound to the
// caller's transaction. The caller must hold the tag lock (see WithTagLock).
func (s *TaxonomyService) ResolveTagsIn(ctx context.Context, r repo.TaxonomyRepo, titles []string) ([]domain.Taxonomy, error) {
	if len(titles) == 0 {
		return []domain.Taxonomy{}, nil
	}

	known, err := r.List(ctx, domain.TypeTag)
	if err != nil {
		return nil, err
	}
	existing := len(known)
	knownTitles := make([]string, len(known))
	for i, t := range known {
		knownTitles[i] = t.Title
	}
	knownSlugs, err := s.slugs(ctx, r, domain.TypeTag, uuid.Nil)
	if err != nil {
		return nil, err
	}

	// Plan: match or name every title. known grows with the planned tags so
	// later titles see earlier ones.
	seen := make(map[int]bool, len(titles))
	order := make([]int, 0, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)

		i := s.namer.IndexOf(title, knownTitles)
		if i < 0 {
			planned, err := s.name(domain.Taxonomy{Type: domain.TypeTag, Title: title}, knownTitles, knownSlugs)
			if err != nil {
				return nil, err
			}
			known = append(known, planned)
			knownTitles = append(knownTitles, planned.Title)
			knownSlugs = append(knownSlugs, planned.Slug)
			i = len(known) - 1
		}
		if !seen[i] {
			seen[i] = true
			order = append(order, i)
		}
	}

	// Write the planned tags.
	for i := existing; i < len(known); i++ {
		if known[i], err = s.insert(ctx, r, known[i]); err != nil {
			return nil, err
		}
	}

	tags := make([]domain.Taxonomy, len(order))
	for n, i := range order {
		tags[n] = known[i]
	}
	return tags, nil
}

// wrapUnlessTitleError adds the operation prefix to infrastructure errors.
// Title failures are returned as-is so their message reaches the user intact.
func wrapUnlessTitleError(op string, err error) error {
	var titleErr *domain.TitleError
	if errors.As(err, &titleErr) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
