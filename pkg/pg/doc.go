// Package pg opens a pgx/v5 connection pool with retries and applies goose
// migrations embedded in the binary.
//
//	pool, err := pg.Connect(ctx, cfg.Postgres)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, migrations.FS, cfg.Postgres, log); err != nil {
//	    return err
//	}
//
// Healthcheck returns a probe for readiness endpoints. IsNotFoundError and
// IsDuplicateKeyError classify driver errors without importing pgx in callers.
package pg
