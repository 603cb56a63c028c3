// Package pg connects to PostgreSQL with pgx/v5 and manages the
// token_secrets table.
//
//   - Connect opens a *pgxpool.Pool from Config, retrying with linear back-off.
//   - Migrate applies goose migrations; the token_secrets schema is bundled
//     and used unless PG_MIGRATIONS_PATH points elsewhere.
//   - StoreSecret upserts a named secret, the write side of
//     secret.NewPostgres.
//   - Healthcheck adapts the pool into a readiness check.
//
// Usage:
//
//	pool, err := pg.Connect(ctx, cfg.PG)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
//		return err
//	}
package pg
