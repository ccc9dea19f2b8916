// Package pg wires the PostgreSQL layer: a pgxpool connection with retry
// on startup, goose migrations applied from an embedded filesystem, a
// health check closure for readiness endpoints, and error classification
// helpers for unique and foreign key violations.
//
// Typical startup:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, role.Migrations, "migrations", log); err != nil {
//	    return err
//	}
//
// Configuration comes from environment variables; see the tags on Config.
package pg
