package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxBeginner is satisfied by *pgxpool.Pool and by pgx.Tx, where Begin opens
// a savepoint. Tests pass their rolled-back transaction here.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repos is the set of repos bound to one transaction.
type Repos struct {
	Taxonomies TaxonomyRepo
	Posts      PostRepo
}

// Transactor runs a unit of work that must commit or fail as a whole.
type Transactor interface {
	// InTx calls fn with repos bound to a new transaction. The transaction
	// commits when fn returns nil and rolls back otherwise; fn's error is
	// returned unchanged.
	InTx(ctx context.Context, fn func(Repos) error) error
}

type pgTransactor struct {
	db TxBeginner
}

// NewTransactor returns a Transactor that begins transactions on db.
func NewTransactor(db TxBeginner) Transactor {
	return &pgTransactor{db: db}
}

func (t *pgTransactor) InTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.Transactor.InTx: begin: %w", err)
	}

	if err := fn(Repos{Taxonomies: NewTaxonomyRepo(tx), Posts: NewPostRepo(tx)}); err != nil {
		// The caller's ctx may already be cancelled; rollback must still run.
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.Transactor.InTx: commit: %w", mapWriteErr(err))
	}
	return nil
}
