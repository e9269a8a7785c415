// Package sqlite is the persistence layer: articles, user preferences,
// users, and the token store backing the identity surface.
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
)

// Ensure Repo implements the domain surfaces
var (
	_ newsdesk.ArticleRepo     = (*Repo)(nil)
	_ newsdesk.PreferenceRepo  = (*Repo)(nil)
	_ newsdesk.UserRepo        = (*Repo)(nil)
	_ newsdesk.IdentityService = (*Repo)(nil)
)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}

// WithArticleTx runs fn inside a single transaction, the unit of work for
// one provider's ingested batch. An error from fn rolls the whole batch
// back; nothing from a failing provider is partially applied.
func (r Repo) WithArticleTx(ctx context.Context, fn func(w newsdesk.ArticleWriter) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %s", err)
	}

	if err := fn(articleTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back (%s) after: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %s", err)
	}

	return nil
}

// articleTx scopes article writes to one open transaction.
type articleTx struct {
	tx *sqlx.Tx
}

var _ newsdesk.ArticleWriter = articleTx{}
