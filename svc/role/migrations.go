package role

import (
	"embed"
)

// Migrations holds the roles schema as embedded goose migrations.
// Apply them with pg.Migrate:
//
//	if err := pg.Migrate(ctx, pool, role.Migrations, "migrations", log); err != nil {
//	    // schema not applied
//	}
//
//go:embed migrations/*.sql
var Migrations embed.FS
