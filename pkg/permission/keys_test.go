package permission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/schoolkit/pkg/permission"
)

func TestDeriveKeys(t *testing.T) {
	tests := []struct {
		name  string
		perms []permission.Permission
		want  []string
	}{
		{
			name:  "empty input",
			perms: nil,
			want:  []string{},
		},
		{
			name: "plain actions",
			perms: []permission.Permission{
				{
					Resource: "students",
					Actions:  []permission.Action{permission.ActionRead, permission.ActionUpdate},
					Scope:    permission.ScopeOwn,
				},
			},
			want: []string{"students.read", "students.update"},
		},
		{
			name: "manage emits action and star",
			perms: []permission.Permission{
				{
					Resource: "staff",
					Actions:  []permission.Action{permission.ActionManage},
					Scope:    permission.ScopeAll,
				},
			},
			want: []string{"staff.manage", "staff.*"},
		},
		{
			name: "wildcard resource collapses to star",
			perms: []permission.Permission{
				permission.Wildcard("*"),
			},
			want: []string{"*"},
		},
		{
			name: "colon resource is normalized",
			perms: []permission.Permission{
				{
					Resource: "Legacy:Reports",
					Actions:  []permission.Action{permission.ActionExport},
					Scope:    permission.ScopeAll,
				},
			},
			want: []string{"legacy.reports.export"},
		},
		{
			name: "no actions emits bare resource",
			perms: []permission.Permission{
				{Resource: "dashboard", Scope: permission.ScopeOwn},
			},
			want: []string{"dashboard"},
		},
		{
			name: "duplicates removed, first-seen order kept",
			perms: []permission.Permission{
				{
					Resource: "students",
					Actions:  []permission.Action{permission.ActionRead},
					Scope:    permission.ScopeOwn,
				},
				{
					Resource: "students",
					Actions:  []permission.Action{permission.ActionRead, permission.ActionUpdate},
					Scope:    permission.ScopeDepartment,
				},
			},
			want: []string{"students.read", "students.update"},
		},
		{
			name: "empty resource skipped",
			perms: []permission.Permission{
				{Resource: "", Actions: []permission.Action{permission.ActionRead}},
				{Resource: "students", Actions: []permission.Action{permission.ActionRead}, Scope: permission.ScopeOwn},
			},
			want: []string{"students.read"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, permission.DeriveKeys(tt.perms))
		})
	}
}
