package secret

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const selectSecretQuery = `SELECT value FROM token_secrets WHERE name = $1`

// Querier is the subset of pgx used by Postgres. *pgxpool.Pool and *pgx.Conn satisfy it.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres provides a secret stored in the token_secrets table.
type Postgres struct {
	db   Querier
	name string
	opts options
	snap snapshot
}

// NewPostgres loads the named row once. A missing row fails with
// ErrSecretUnavailable.
func NewPostgres(ctx context.Context, db Querier, name string, opts ...Option) (*Postgres, error) {
	if db == nil {
		return nil, ErrInvalidConfig
	}
	if name == "" {
		return nil, ErrEmptyKey
	}

	p := &Postgres{
		db:   db,
		name: name,
		opts: applyOptions(opts),
	}
	if err := p.Refresh(ctx); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Postgres) ProvideSecret() string {
	return p.snap.load()
}

// Refresh reads the row again. On failure the previous secret is kept.
func (p *Postgres) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout)
	defer cancel()

	var value string
	err := p.db.QueryRow(ctx, selectSecretQuery, p.name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return errors.Join(ErrSecretUnavailable, fmt.Errorf("secret %q not found", p.name))
	}
	if err != nil {
		return errors.Join(ErrSecretUnavailable, err)
	}

	value, err = p.opts.normalize(value)
	if err != nil {
		return errors.Join(ErrSecretUnavailable, err)
	}

	p.snap.store(value)
	return nil
}
