package role

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/schoolkit/pkg/pg"
	rolepkg "github.com/dmitrymomot/schoolkit/pkg/role"
)

// DB is the subset of pgxpool.Pool the store needs; accepting the
// interface keeps the store usable inside transactions as well.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// postgresStore persists roles in PostgreSQL. Partial unique indexes on
// (tenant_id, lower(name)) and lower(name) for globals are the
// authoritative uniqueness guard: concurrent duplicate creates fail with
// rolepkg.ErrRoleAlreadyExists regardless of application-level checks.
type postgresStore struct {
	db DB
}

// NewPostgresStore builds a rolepkg.Store over a pgx pool or transaction.
// The roles schema is applied via the migrations embedded in this package
// (see Migrations).
func NewPostgresStore(db DB) rolepkg.Store {
	return &postgresStore{db: db}
}

const roleColumns = `id, tenant_id, name, description, is_system_role, is_global, permissions, parent_role_id, created_at, updated_at`

func (s *postgresStore) Create(ctx context.Context, r rolepkg.Role) error {
	if err := r.Validate(); err != nil {
		return err
	}

	perms, err := json.Marshal(r.Permissions)
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO roles (`+roleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.ID, r.TenantID, r.Name, r.Description, r.IsSystemRole, r.IsGlobal,
		perms, r.ParentRoleID, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return errors.Join(rolepkg.ErrRoleAlreadyExists, fmt.Errorf("name %q", r.Name))
		}
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

func (s *postgresStore) FindByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (rolepkg.Role, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+roleColumns+`
		FROM roles
		WHERE id = $1 AND (is_global OR tenant_id = $2)`,
		id, tenantID,
	)
	return scanRole(row)
}

func (s *postgresStore) FindByName(ctx context.Context, name string, tenantID uuid.UUID) (rolepkg.Role, error) {
	// Tenant-owned roles shadow global roles of the same name.
	row := s.db.QueryRow(ctx, `
		SELECT `+roleColumns+`
		FROM roles
		WHERE lower(name) = lower($1) AND (is_global OR tenant_id = $2)
		ORDER BY is_global ASC
		LIMIT 1`,
		name, tenantID,
	)
	return scanRole(row)
}

func (s *postgresStore) FindAll(ctx context.Context, tenantID uuid.UUID) ([]rolepkg.Role, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+roleColumns+`
		FROM roles
		WHERE is_global OR tenant_id = $1
		ORDER BY is_global DESC, lower(name)`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()
	return scanRoles(rows)
}

func (s *postgresStore) FindGlobalRoles(ctx context.Context) ([]rolepkg.Role, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+roleColumns+`
		FROM roles
		WHERE is_global
		ORDER BY lower(name)`,
	)
	if err != nil {
		return nil, fmt.Errorf("query global roles: %w", err)
	}
	defer rows.Close()
	return scanRoles(rows)
}

func (s *postgresStore) Update(ctx context.Context, r rolepkg.Role) error {
	if err := r.Validate(); err != nil {
		return err
	}

	perms, err := json.Marshal(r.Permissions)
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE roles
		SET name = $2, description = $3, permissions = $4, parent_role_id = $5, updated_at = $6
		WHERE id = $1`,
		r.ID, r.Name, r.Description, perms, r.ParentRoleID, r.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return errors.Join(rolepkg.ErrRoleAlreadyExists, fmt.Errorf("name %q", r.Name))
		}
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return rolepkg.ErrRoleNotFound
	}
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM roles
		WHERE id = $1 AND tenant_id = $2 AND NOT is_global`,
		id, tenantID,
	)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return rolepkg.ErrRoleNotFound
	}
	return nil
}

func (s *postgresStore) Exists(ctx context.Context, name string, tenantID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM roles
			WHERE lower(name) = lower($1) AND (is_global OR tenant_id = $2)
		)`,
		name, tenantID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check role exists: %w", err)
	}
	return exists, nil
}

func scanRole(row pgx.Row) (rolepkg.Role, error) {
	var (
		r     rolepkg.Role
		perms []byte
	)
	err := row.Scan(
		&r.ID, &r.TenantID, &r.Name, &r.Description, &r.IsSystemRole, &r.IsGlobal,
		&perms, &r.ParentRoleID, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return rolepkg.Role{}, rolepkg.ErrRoleNotFound
		}
		return rolepkg.Role{}, fmt.Errorf("scan role: %w", err)
	}

	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &r.Permissions); err != nil {
			return rolepkg.Role{}, fmt.Errorf("unmarshal permissions: %w", err)
		}
	}
	return r, nil
}

func scanRoles(rows pgx.Rows) ([]rolepkg.Role, error) {
	var out []rolepkg.Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return out, nil
}
