package catalog

import (
	"sync"

	"github.com/dmitrymomot/schoolkit/pkg/permission"
)

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the process-wide default school-management catalog.
// The catalog is built once and shared read-only; rebuilding it is cheap
// but never required.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New(defaultTree())
		if err != nil {
			// The default tree is a compile-time constant; failing to build
			// it is a programming error, not a runtime condition.
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// crud is shorthand for the four basic actions plus manage.
func crud(extra ...permission.Action) []permission.Action {
	actions := []permission.Action{
		permission.ActionCreate,
		permission.ActionRead,
		permission.ActionUpdate,
		permission.ActionDelete,
	}
	actions = append(actions, extra...)
	return append(actions, permission.ActionManage)
}

func readOnly() []permission.Action {
	return []permission.Action{permission.ActionRead, permission.ActionExport}
}

// defaultTree declares every permission a school-management deployment can
// grant. Sibling order is meaningful: UIs render pickers in this order.
func defaultTree() []Node {
	return []Node{
		{
			ID: "academics", Resource: "academics", DisplayName: "Academics",
			Description: "Curriculum, assessment and scheduling",
			Actions:     crud(), Scope: permission.ScopeAll, Icon: "graduation-cap", Order: 1,
			Children: []Node{
				{ID: "academics.classes", Resource: "academics.classes", DisplayName: "Classes & Sections",
					Actions: crud(), Scope: permission.ScopeAll, Order: 1},
				{ID: "academics.subjects", Resource: "academics.subjects", DisplayName: "Subjects",
					Actions: crud(), Scope: permission.ScopeAll, Order: 2},
				{ID: "academics.exams", Resource: "academics.exams", DisplayName: "Examinations",
					Actions: crud(permission.ActionApprove), Scope: permission.ScopeDepartment, Order: 3},
				{ID: "academics.grades", Resource: "academics.grades", DisplayName: "Grades",
					Actions: crud(permission.ActionApprove, permission.ActionExport), Scope: permission.ScopeDepartment, Order: 4},
				{ID: "academics.timetable", Resource: "academics.timetable", DisplayName: "Timetable",
					Actions: crud(), Scope: permission.ScopeDepartment, Order: 5},
			},
		},
		{
			ID: "students", Resource: "students", DisplayName: "Students",
			Description: "Student records and enrollment",
			Actions:     crud(permission.ActionExport, permission.ActionImport), Scope: permission.ScopeAll, Icon: "users", Order: 2,
			Children: []Node{
				{ID: "students.admissions", Resource: "students.admissions", DisplayName: "Admissions",
					Actions: crud(permission.ActionApprove), Scope: permission.ScopeAll, Order: 1},
				{ID: "students.attendance", Resource: "students.attendance", DisplayName: "Attendance",
					Actions: crud(permission.ActionExport), Scope: permission.ScopeDepartment, Order: 2},
				{ID: "students.documents", Resource: "students.documents", DisplayName: "Documents",
					Actions: crud(), Scope: permission.ScopeOwn, Order: 3},
			},
		},
		{
			ID: "staff", Resource: "staff", DisplayName: "Staff",
			Description: "Teaching and non-teaching staff",
			Actions:     crud(permission.ActionExport, permission.ActionImport), Scope: permission.ScopeAll, Icon: "id-badge", Order: 3,
			Children: []Node{
				{ID: "staff.attendance", Resource: "staff.attendance", DisplayName: "Staff Attendance",
					Actions: crud(), Scope: permission.ScopeDepartment, Order: 1},
				{ID: "staff.leaves", Resource: "staff.leaves", DisplayName: "Leave Requests",
					Actions: crud(permission.ActionApprove), Scope: permission.ScopeDepartment, Order: 2},
			},
		},
		{
			ID: "finance", Resource: "finance", DisplayName: "Finance",
			Description: "Fees, invoicing and payroll",
			Actions:     crud(permission.ActionApprove, permission.ActionExport), Scope: permission.ScopeAll, Icon: "banknote", Order: 4,
			Children: []Node{
				{ID: "finance.fees", Resource: "finance.fees", DisplayName: "Fee Structures",
					Actions: crud(permission.ActionApprove), Scope: permission.ScopeAll, Order: 1},
				{ID: "finance.invoices", Resource: "finance.invoices", DisplayName: "Invoices",
					Actions: crud(permission.ActionExport), Scope: permission.ScopeAll, Order: 2},
				{ID: "finance.payroll", Resource: "finance.payroll", DisplayName: "Payroll",
					Actions: crud(permission.ActionApprove, permission.ActionExport), Scope: permission.ScopeAll, Order: 3},
			},
		},
		{
			ID: "communication", Resource: "communication", DisplayName: "Communication",
			Description: "Announcements and messaging",
			Actions:     crud(), Scope: permission.ScopeAll, Icon: "megaphone", Order: 5,
			Children: []Node{
				{ID: "communication.announcements", Resource: "communication.announcements", DisplayName: "Announcements",
					Actions: crud(permission.ActionApprove), Scope: permission.ScopeAll, Order: 1},
				{ID: "communication.messages", Resource: "communication.messages", DisplayName: "Messages",
					Actions: crud(), Scope: permission.ScopeOwn, Order: 2},
			},
		},
		{
			ID: "reports", Resource: "reports", DisplayName: "Reports",
			Description: "Analytics and exports",
			Actions:     readOnly(), Scope: permission.ScopeDepartment, Icon: "chart-bar", Order: 6,
		},
		{
			ID: "settings", Resource: "settings", DisplayName: "Settings",
			Description: "School configuration",
			Actions:     crud(), Scope: permission.ScopeAll, Icon: "cog", Order: 7,
			Children: []Node{
				{ID: "settings.school", Resource: "settings.school", DisplayName: "School Profile",
					Actions: []permission.Action{permission.ActionRead, permission.ActionUpdate, permission.ActionManage},
					Scope:   permission.ScopeAll, Order: 1},
				{ID: "settings.users", Resource: "settings.users", DisplayName: "Users",
					Actions: crud(permission.ActionImport), Scope: permission.ScopeAll, Order: 2},
				{ID: "settings.roles", Resource: "settings.roles", DisplayName: "Roles & Permissions",
					Actions: crud(), Scope: permission.ScopeAll, Order: 3},
			},
		},
		{
			ID: "host", Resource: "host", DisplayName: "Host Administration",
			Description: "Cross-tenant platform administration",
			Actions:     crud(), Scope: permission.ScopeAll, Icon: "server", Order: 8,
			Children: []Node{
				{ID: "host.tenants", Resource: "host.tenants", DisplayName: "Tenants",
					Actions: crud(permission.ActionApprove), Scope: permission.ScopeAll, Order: 1},
				{ID: "host.billing", Resource: "host.billing", DisplayName: "Billing",
					Actions: crud(permission.ActionExport), Scope: permission.ScopeAll, Order: 2},
				{ID: "host.settings", Resource: "host.settings", DisplayName: "Platform Settings",
					Actions: []permission.Action{permission.ActionRead, permission.ActionUpdate, permission.ActionManage},
					Scope:   permission.ScopeAll, Order: 3},
			},
		},
	}
}
