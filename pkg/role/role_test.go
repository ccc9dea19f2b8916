package role_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/schoolkit/pkg/permission"
	"github.com/dmitrymomot/schoolkit/pkg/role"
)

func studentReadUpdate() permission.Permission {
	return permission.Permission{
		Resource: "students",
		Actions:  []permission.Action{permission.ActionRead, permission.ActionUpdate},
		Scope:    permission.ScopeOwn,
	}
}

func TestNew(t *testing.T) {
	tenantID := uuid.New()

	t.Run("valid custom role", func(t *testing.T) {
		r, err := role.New(tenantID, "Form Teacher", "Class-level teaching role", []permission.Permission{studentReadUpdate()})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, r.ID)
		require.NotNil(t, r.TenantID)
		assert.Equal(t, tenantID, *r.TenantID)
		assert.False(t, r.IsGlobal)
		assert.False(t, r.IsSystemRole)
		assert.False(t, r.CreatedAt.IsZero())
	})

	t.Run("nil tenant rejected", func(t *testing.T) {
		_, err := role.New(uuid.Nil, "Form Teacher", "", nil)
		assert.ErrorIs(t, err, role.ErrInvalidRole)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := role.New(tenantID, "  ", "", nil)
		assert.ErrorIs(t, err, role.ErrInvalidRole)
	})

	t.Run("overlong name rejected", func(t *testing.T) {
		_, err := role.New(tenantID, strings.Repeat("x", 101), "", nil)
		assert.ErrorIs(t, err, role.ErrInvalidRole)
	})

	t.Run("invalid permission rejected", func(t *testing.T) {
		bad := permission.Permission{Resource: "students", Actions: []permission.Action{"fly"}, Scope: permission.ScopeOwn}
		_, err := role.New(tenantID, "Form Teacher", "", []permission.Permission{bad})
		assert.ErrorIs(t, err, role.ErrInvalidRole)
	})

	t.Run("system role option", func(t *testing.T) {
		r, err := role.New(tenantID, "Registrar", "", nil, role.AsSystemRole())
		require.NoError(t, err)
		assert.True(t, r.IsSystemRole)
	})
}

func TestNewGlobal(t *testing.T) {
	r, err := role.NewGlobal("Teacher", "Seeded teaching role", []permission.Permission{studentReadUpdate()})
	require.NoError(t, err)

	assert.True(t, r.IsGlobal)
	assert.True(t, r.IsSystemRole)
	assert.Nil(t, r.TenantID)
}

func TestRole_Validate_TenantGlobalSplit(t *testing.T) {
	tenantID := uuid.New()

	global, err := role.NewGlobal("Teacher", "", nil)
	require.NoError(t, err)
	global.TenantID = &tenantID
	assert.ErrorIs(t, global.Validate(), role.ErrInvalidRole)

	tenantRole, err := role.New(tenantID, "Form Teacher", "", nil)
	require.NoError(t, err)
	tenantRole.TenantID = nil
	assert.ErrorIs(t, tenantRole.Validate(), role.ErrInvalidRole)
}

func TestRole_HasPermission(t *testing.T) {
	tenantID := uuid.New()
	r, err := role.New(tenantID, "Form Teacher", "", []permission.Permission{studentReadUpdate()})
	require.NoError(t, err)

	assert.True(t, r.HasPermission("students", permission.ActionUpdate))
	assert.False(t, r.HasPermission("students", permission.ActionDelete))
	assert.False(t, r.HasPermission("staff", permission.ActionRead))
}

func TestRole_HasPermission_Wildcard(t *testing.T) {
	tenantID := uuid.New()
	r, err := role.New(tenantID, "School Admin", "", []permission.Permission{permission.Wildcard("*")})
	require.NoError(t, err)

	for _, action := range permission.AllActions() {
		assert.True(t, r.HasPermission("anything.at.all", action))
	}
}

func TestRole_AddPermission_Idempotent(t *testing.T) {
	tenantID := uuid.New()
	r, err := role.New(tenantID, "Form Teacher", "", []permission.Permission{studentReadUpdate()})
	require.NoError(t, err)

	before := r.UpdatedAt

	// Same (resource, scope) pair even with a different action set.
	dup := permission.Permission{
		Resource: "students",
		Actions:  []permission.Action{permission.ActionDelete},
		Scope:    permission.ScopeOwn,
	}
	assert.False(t, r.AddPermission(dup))
	assert.Len(t, r.Permissions, 1)
	assert.Equal(t, before, r.UpdatedAt)

	// Different scope is a distinct entry.
	wider := permission.Permission{
		Resource: "students",
		Actions:  []permission.Action{permission.ActionRead},
		Scope:    permission.ScopeDepartment,
	}
	assert.True(t, r.AddPermission(wider))
	assert.Len(t, r.Permissions, 2)

	// Adding the same pair a second time changes nothing.
	assert.False(t, r.AddPermission(wider))
	assert.Len(t, r.Permissions, 2)
}

func TestRole_RemovePermission(t *testing.T) {
	tenantID := uuid.New()
	perms := []permission.Permission{
		studentReadUpdate(),
		{Resource: "students", Actions: []permission.Action{permission.ActionRead}, Scope: permission.ScopeDepartment},
		{Resource: "staff", Actions: []permission.Action{permission.ActionRead}, Scope: permission.ScopeAll},
	}
	r, err := role.New(tenantID, "Form Teacher", "", perms)
	require.NoError(t, err)

	assert.True(t, r.RemovePermission("students"), "drops every entry for the resource")
	assert.Len(t, r.Permissions, 1)
	assert.Equal(t, "staff", r.Permissions[0].Resource)

	assert.False(t, r.RemovePermission("students"))
}

func TestRole_ValidateModifiable(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name    string
		role    func() role.Role
		wantErr bool
	}{
		{
			name: "custom role modifiable",
			role: func() role.Role {
				r, err := role.New(tenantID, "Form Teacher", "", nil)
				require.NoError(t, err)
				return r
			},
		},
		{
			name: "system role immutable",
			role: func() role.Role {
				r, err := role.New(tenantID, "Registrar", "", nil, role.AsSystemRole())
				require.NoError(t, err)
				return r
			},
			wantErr: true,
		},
		{
			name: "global role immutable",
			role: func() role.Role {
				r, err := role.NewGlobal("Teacher", "", nil)
				require.NoError(t, err)
				return r
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.role()
			err := r.ValidateModifiable()
			if tt.wantErr {
				assert.ErrorIs(t, err, role.ErrImmutableRole)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRole_HasWildcardGrant(t *testing.T) {
	tenantID := uuid.New()

	bare, err := role.New(tenantID, "Viewer", "", []permission.Permission{
		{Resource: "reports", Actions: []permission.Action{permission.ActionRead}, Scope: permission.ScopeAll},
	})
	require.NoError(t, err)
	assert.False(t, bare.HasWildcardGrant())

	managed, err := role.New(tenantID, "Dept Head", "", []permission.Permission{
		{Resource: "academics", Actions: []permission.Action{permission.ActionManage}, Scope: permission.ScopeDepartment},
	})
	require.NoError(t, err)
	assert.True(t, managed.HasWildcardGrant())

	wildcarded, err := role.New(tenantID, "Admin", "", []permission.Permission{permission.Wildcard("*")})
	require.NoError(t, err)
	assert.True(t, wildcarded.HasWildcardGrant())
}

func TestRole_Clone(t *testing.T) {
	tenantID := uuid.New()
	r, err := role.New(tenantID, "Form Teacher", "", []permission.Permission{studentReadUpdate()})
	require.NoError(t, err)

	clone := r.Clone()
	clone.Permissions[0].Actions[0] = permission.ActionDelete
	*clone.TenantID = uuid.New()

	assert.Equal(t, permission.ActionRead, r.Permissions[0].Actions[0])
	assert.Equal(t, tenantID, *r.TenantID)
}
