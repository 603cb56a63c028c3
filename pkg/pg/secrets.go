package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const upsertSecretQuery = `
INSERT INTO token_secrets (name, value)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// StoreSecret inserts or replaces the named secret in token_secrets.
func StoreSecret(ctx context.Context, db Execer, name, value string) error {
	if name == "" || value == "" {
		return errors.Join(ErrFailedToStoreSecret, errors.New("name and value are required"))
	}
	if _, err := db.Exec(ctx, upsertSecretQuery, name, value); err != nil {
		return errors.Join(ErrFailedToStoreSecret, err)
	}
	return nil
}
