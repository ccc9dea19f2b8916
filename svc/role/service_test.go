package role_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/schoolkit/pkg/permission"
	"github.com/dmitrymomot/schoolkit/pkg/role"
	rolesvc "github.com/dmitrymomot/schoolkit/svc/role"
)

func readStudents() []permission.Permission {
	return []permission.Permission{{
		Resource: "students",
		Actions:  []permission.Action{permission.ActionRead},
		Scope:    permission.ScopeAll,
	}}
}

func TestServiceCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("creates custom role", func(t *testing.T) {
		t.Parallel()

		svc := rolesvc.NewService(role.NewMemoryStore())

		r, err := svc.Create(ctx, tenantID, rolesvc.CreateParams{
			Name:        "Librarian",
			Description: "Library desk",
			Permissions: readStudents(),
		})
		require.NoError(t, err)
		assert.Equal(t, "Librarian", r.Name)
		require.NotNil(t, r.TenantID)
		assert.Equal(t, tenantID, *r.TenantID)
		assert.False(t, r.IsGlobal)
		assert.False(t, r.IsSystemRole)

		got, err := svc.Get(ctx, r.ID, tenantID)
		require.NoError(t, err)
		assert.Equal(t, r.ID, got.ID)
	})

	t.Run("rejects global flag", func(t *testing.T) {
		t.Parallel()

		svc := rolesvc.NewService(role.NewMemoryStore())

		_, err := svc.Create(ctx, tenantID, rolesvc.CreateParams{
			Name:     "Platform Ops",
			IsGlobal: true,
		})
		require.ErrorIs(t, err, role.ErrGlobalRoleTenantScoped)
	})

	t.Run("rejects duplicate name case-insensitively", func(t *testing.T) {
		t.Parallel()

		svc := rolesvc.NewService(role.NewMemoryStore())

		_, err := svc.Create(ctx, tenantID, rolesvc.CreateParams{Name: "Librarian", Permissions: readStudents()})
		require.NoError(t, err)

		_, err = svc.Create(ctx, tenantID, rolesvc.CreateParams{Name: "LIBRARIAN", Permissions: readStudents()})
		require.ErrorIs(t, err, role.ErrRoleAlreadyExists)
	})

	t.Run("rejects name shadowing a global role", func(t *testing.T) {
		t.Parallel()

		store := role.NewMemoryStore()
		global, err := role.NewGlobal("Teacher", "seeded", readStudents())
		require.NoError(t, err)
		require.NoError(t, store.Create(ctx, global))

		svc := rolesvc.NewService(store)
		_, err = svc.Create(ctx, tenantID, rolesvc.CreateParams{Name: "teacher", Permissions: readStudents()})
		require.ErrorIs(t, err, role.ErrRoleAlreadyExists)
	})

	t.Run("same name allowed across tenants", func(t *testing.T) {
		t.Parallel()

		svc := rolesvc.NewService(role.NewMemoryStore())

		_, err := svc.Create(ctx, tenantID, rolesvc.CreateParams{Name: "Librarian", Permissions: readStudents()})
		require.NoError(t, err)

		_, err = svc.Create(ctx, uuid.New(), rolesvc.CreateParams{Name: "Librarian", Permissions: readStudents()})
		require.NoError(t, err)
	})
}

func TestServiceUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tenantID := uuid.New()

	newSvc := func(t *testing.T) (*rolesvc.Service, role.Role) {
		t.Helper()
		svc := rolesvc.NewService(role.NewMemoryStore())
		r, err := svc.Create(ctx, tenantID, rolesvc.CreateParams{
			Name:        "Librarian",
			Description: "Library desk",
			Permissions: readStudents(),
		})
		require.NoError(t, err)
		return svc, r
	}

	t.Run("applies only present fields", func(t *testing.T) {
		t.Parallel()

		svc, r := newSvc(t)
		name := "Head Librarian"

		updated, err := svc.Update(ctx, r.ID, tenantID, rolesvc.UpdateParams{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Head Librarian", updated.Name)
		assert.Equal(t, "Library desk", updated.Description)
		assert.Equal(t, r.Permissions, updated.Permissions)
	})

	t.Run("replaces permissions wholesale", func(t *testing.T) {
		t.Parallel()

		svc, r := newSvc(t)
		perms := []permission.Permission{{
			Resource: "students.documents",
			Actions:  []permission.Action{permission.ActionRead, permission.ActionExport},
			Scope:    permission.ScopeDepartment,
		}}

		updated, err := svc.Update(ctx, r.ID, tenantID, rolesvc.UpdateParams{Permissions: &perms})
		require.NoError(t, err)
		require.Len(t, updated.Permissions, 1)
		assert.Equal(t, "students.documents", updated.Permissions[0].Resource)
	})

	t.Run("rename into taken name conflicts", func(t *testing.T) {
		t.Parallel()

		svc, r := newSvc(t)
		_, err := svc.Create(ctx, tenantID, rolesvc.CreateParams{Name: "Archivist", Permissions: readStudents()})
		require.NoError(t, err)

		name := "archivist"
		_, err = svc.Update(ctx, r.ID, tenantID, rolesvc.UpdateParams{Name: &name})
		require.ErrorIs(t, err, role.ErrRoleAlreadyExists)
	})

	t.Run("rename to same name is a no-op check", func(t *testing.T) {
		t.Parallel()

		svc, r := newSvc(t)
		name := r.Name
		updated, err := svc.Update(ctx, r.ID, tenantID, rolesvc.UpdateParams{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, r.Name, updated.Name)
	})

	t.Run("global role is immutable", func(t *testing.T) {
		t.Parallel()

		store := role.NewMemoryStore()
		global, err := role.NewGlobal("Teacher", "seeded", readStudents())
		require.NoError(t, err)
		require.NoError(t, store.Create(ctx, global))

		svc := rolesvc.NewService(store)
		desc := "patched"
		_, err = svc.Update(ctx, global.ID, tenantID, rolesvc.UpdateParams{Description: &desc})
		require.ErrorIs(t, err, role.ErrImmutableRole)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		svc, _ := newSvc(t)
		desc := "patched"
		_, err := svc.Update(ctx, uuid.New(), tenantID, rolesvc.UpdateParams{Description: &desc})
		require.ErrorIs(t, err, role.ErrRoleNotFound)
	})
}

func TestServiceDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("deletes unassigned role", func(t *testing.T) {
		t.Parallel()

		svc := rolesvc.NewService(role.NewMemoryStore(),
			rolesvc.WithAssignmentChecker(rolesvc.AssignmentCheckerFunc(
				func(context.Context, uuid.UUID, uuid.UUID) (bool, error) { return false, nil },
			)),
		)
		r, err := svc.Create(ctx, tenantID, rolesvc.CreateParams{Name: "Librarian", Permissions: readStudents()})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, r.ID, tenantID))

		_, err = svc.Get(ctx, r.ID, tenantID)
		require.ErrorIs(t, err, role.ErrRoleNotFound)
	})

	t.Run("blocks while assigned", func(t *testing.T) {
		t.Parallel()

		svc := rolesvc.NewService(role.NewMemoryStore(),
			rolesvc.WithAssignmentChecker(rolesvc.AssignmentCheckerFunc(
				func(context.Context, uuid.UUID, uuid.UUID) (bool, error) { return true, nil },
			)),
		)
		r, err := svc.Create(ctx, tenantID, rolesvc.CreateParams{Name: "Librarian", Permissions: readStudents()})
		require.NoError(t, err)

		err = svc.Delete(ctx, r.ID, tenantID)
		require.ErrorIs(t, err, role.ErrRoleInUse)

		_, err = svc.Get(ctx, r.ID, tenantID)
		require.NoError(t, err)
	})

	t.Run("global role is immutable", func(t *testing.T) {
		t.Parallel()

		store := role.NewMemoryStore()
		global, err := role.NewGlobal("Teacher", "seeded", readStudents())
		require.NoError(t, err)
		require.NoError(t, store.Create(ctx, global))

		svc := rolesvc.NewService(store)
		require.ErrorIs(t, svc.Delete(ctx, global.ID, tenantID), role.ErrImmutableRole)
	})

	t.Run("invalidates resolver cache", func(t *testing.T) {
		t.Parallel()

		cache := newFakeCache()
		svc := rolesvc.NewService(role.NewMemoryStore(), rolesvc.WithResolverCache(cache))

		r, err := svc.Create(ctx, tenantID, rolesvc.CreateParams{Name: "Librarian", Permissions: readStudents()})
		require.NoError(t, err)

		key := rolesvc.ResolverCacheKey(tenantID, r.Name)
		cache.Set(ctx, key, r, 0)

		require.NoError(t, svc.Delete(ctx, r.ID, tenantID))
		_, ok := cache.Get(ctx, key)
		assert.False(t, ok)
	})
}

func TestServiceList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tenantID := uuid.New()

	store := role.NewMemoryStore()
	global, err := role.NewGlobal("Teacher", "seeded", readStudents())
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, global))

	svc := rolesvc.NewService(store)
	_, err = svc.Create(ctx, tenantID, rolesvc.CreateParams{Name: "Librarian", Permissions: readStudents()})
	require.NoError(t, err)
	_, err = svc.Create(ctx, uuid.New(), rolesvc.CreateParams{Name: "Other Tenant Role", Permissions: readStudents()})
	require.NoError(t, err)

	roles, err := svc.List(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, roles, 2)

	names := []string{roles[0].Name, roles[1].Name}
	assert.Contains(t, names, "Teacher")
	assert.Contains(t, names, "Librarian")
}
