package role

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/schoolkit/pkg/catalog"
	"github.com/dmitrymomot/schoolkit/pkg/permission"
	"github.com/dmitrymomot/schoolkit/pkg/role"
)

// archetype describes one seeded global role.
type archetype struct {
	name        string
	description string
	permissions func(c *catalog.Catalog) []permission.Permission
}

// wildcardAll grants everything; used by the administrative archetypes.
func wildcardAll(*catalog.Catalog) []permission.Permission {
	return []permission.Permission{permission.Wildcard("*")}
}

// branchPerms collects the default permissions of whole catalog branches.
func branchPerms(ids ...string) func(c *catalog.Catalog) []permission.Permission {
	return func(c *catalog.Catalog) []permission.Permission {
		var perms []permission.Permission
		for _, id := range ids {
			for _, descID := range c.DescendantIDs(id) {
				if node, ok := c.FindByID(descID); ok {
					perms = append(perms, node.Permission())
				}
			}
		}
		return perms
	}
}

// scoped builds a single narrowed permission.
func scoped(resource string, scope permission.Scope, actions ...permission.Action) permission.Permission {
	return permission.Permission{Resource: resource, Actions: actions, Scope: scope}
}

// defaultArchetypes declares the seeded global role set. Order matters only
// for readability; every role is independent.
func defaultArchetypes() []archetype {
	return []archetype{
		{
			name:        "Super Admin",
			description: "Unrestricted platform access",
			permissions: wildcardAll,
		},
		{
			name:        "Host Admin",
			description: "Cross-tenant platform administration",
			permissions: wildcardAll,
		},
		{
			name:        "Tenant Admin",
			description: "Full administration of a single school",
			permissions: wildcardAll,
		},
		{
			name:        "Principal",
			description: "School head with full academic and staff oversight",
			permissions: branchPerms("academics", "students", "staff", "communication", "reports", "settings"),
		},
		{
			name:        "Vice Principal",
			description: "Academic and student affairs oversight",
			permissions: branchPerms("academics", "students", "communication", "reports"),
		},
		{
			name:        "Teacher",
			description: "Classroom teaching and assessment",
			permissions: func(*catalog.Catalog) []permission.Permission {
				return []permission.Permission{
					scoped("academics.classes", permission.ScopeDepartment, permission.ActionRead),
					scoped("academics.subjects", permission.ScopeDepartment, permission.ActionRead),
					scoped("academics.exams", permission.ScopeDepartment, permission.ActionCreate, permission.ActionRead, permission.ActionUpdate),
					scoped("academics.grades", permission.ScopeDepartment, permission.ActionCreate, permission.ActionRead, permission.ActionUpdate),
					scoped("academics.timetable", permission.ScopeOwn, permission.ActionRead),
					scoped("students", permission.ScopeDepartment, permission.ActionRead),
					scoped("students.attendance", permission.ScopeDepartment, permission.ActionCreate, permission.ActionRead, permission.ActionUpdate),
					scoped("communication.messages", permission.ScopeOwn, permission.ActionCreate, permission.ActionRead),
				}
			},
		},
		{
			name:        "Accountant",
			description: "Fees, invoicing and payroll",
			permissions: func(c *catalog.Catalog) []permission.Permission {
				perms := branchPerms("finance")(c)
				return append(perms,
					scoped("students", permission.ScopeAll, permission.ActionRead),
					scoped("reports", permission.ScopeDepartment, permission.ActionRead, permission.ActionExport),
				)
			},
		},
		{
			name:        "Librarian",
			description: "Textbook and learning material circulation",
			permissions: func(*catalog.Catalog) []permission.Permission {
				return []permission.Permission{
					scoped("academics.classes", permission.ScopeAll, permission.ActionRead),
					scoped("academics.subjects", permission.ScopeAll, permission.ActionRead),
					scoped("students", permission.ScopeAll, permission.ActionRead),
					scoped("students.documents", permission.ScopeAll, permission.ActionCreate, permission.ActionRead, permission.ActionUpdate),
					scoped("communication.messages", permission.ScopeOwn, permission.ActionCreate, permission.ActionRead),
				}
			},
		},
		{
			name:        "Receptionist",
			description: "Front-desk admissions and communication",
			permissions: func(*catalog.Catalog) []permission.Permission {
				return []permission.Permission{
					scoped("students.admissions", permission.ScopeAll, permission.ActionCreate, permission.ActionRead, permission.ActionUpdate),
					scoped("students", permission.ScopeAll, permission.ActionRead),
					scoped("communication.announcements", permission.ScopeAll, permission.ActionRead),
					scoped("communication.messages", permission.ScopeOwn, permission.ActionCreate, permission.ActionRead),
				}
			},
		},
		{
			name:        "Student",
			description: "Self-service access to own records",
			permissions: func(*catalog.Catalog) []permission.Permission {
				return []permission.Permission{
					scoped("academics.grades", permission.ScopeOwn, permission.ActionRead),
					scoped("academics.timetable", permission.ScopeOwn, permission.ActionRead),
					scoped("students.attendance", permission.ScopeOwn, permission.ActionRead),
					scoped("students.documents", permission.ScopeOwn, permission.ActionRead),
					scoped("communication.messages", permission.ScopeOwn, permission.ActionCreate, permission.ActionRead),
				}
			},
		},
		{
			name:        "Parent",
			description: "Read access to a child's records and school communication",
			permissions: func(*catalog.Catalog) []permission.Permission {
				return []permission.Permission{
					scoped("academics.grades", permission.ScopeOwn, permission.ActionRead),
					scoped("students.attendance", permission.ScopeOwn, permission.ActionRead),
					scoped("finance.invoices", permission.ScopeOwn, permission.ActionRead),
					scoped("communication.announcements", permission.ScopeOwn, permission.ActionRead),
					scoped("communication.messages", permission.ScopeOwn, permission.ActionCreate, permission.ActionRead),
				}
			},
		},
	}
}

// InitializeGlobalRoles bootstraps the global role set. It is idempotent
// and safe to run from several processes at once: on an empty system it
// creates one role per archetype, treating store-level conflicts as
// "another process got there first"; on an already-seeded system it
// self-heals administrative roles that lost their broad grant (seeded by
// an older version) by appending a "*" wildcard, without ever duplicating
// a role.
func (s *Service) InitializeGlobalRoles(ctx context.Context) error {
	globals, err := s.store.FindGlobalRoles(ctx)
	if err != nil {
		return fmt.Errorf("list global roles: %w", err)
	}

	if len(globals) == 0 {
		return s.seedArchetypes(ctx)
	}
	return s.healAdministrativeRoles(ctx, globals)
}

// InitializeSystemRoles seeds the role set for a tenant. System roles are
// modeled as global in the current design, so this delegates to
// InitializeGlobalRoles; the tenant id is accepted for interface stability.
func (s *Service) InitializeSystemRoles(ctx context.Context, _ uuid.UUID) error {
	return s.InitializeGlobalRoles(ctx)
}

func (s *Service) seedArchetypes(ctx context.Context) error {
	for _, a := range defaultArchetypes() {
		r, err := role.NewGlobal(a.name, a.description, a.permissions(s.cat))
		if err != nil {
			return fmt.Errorf("build archetype %q: %w", a.name, err)
		}

		switch err := s.store.Create(ctx, r); {
		case err == nil:
			s.log.InfoContext(ctx, "global role seeded", slog.String("name", a.name))
		case errors.Is(err, role.ErrRoleAlreadyExists):
			// Another process seeded this role concurrently.
			s.log.DebugContext(ctx, "global role already initialized", slog.String("name", a.name))
		default:
			return fmt.Errorf("seed role %q: %w", a.name, err)
		}
	}
	return nil
}

// healAdministrativeRoles patches admin-named global roles that lack any
// wildcard-or-manage grant. Roles created by the current seed never match;
// the pass exists for data written by an older seed version.
func (s *Service) healAdministrativeRoles(ctx context.Context, globals []role.Role) error {
	for _, r := range globals {
		if !isAdministrativeName(r.Name) || r.HasWildcardGrant() {
			continue
		}

		r.AddPermission(permission.Wildcard("*"))
		if err := s.store.Update(ctx, r); err != nil {
			return fmt.Errorf("heal role %q: %w", r.Name, err)
		}
		s.invalidate(ctx, uuid.Nil, r.Name)
		s.log.InfoContext(ctx, "administrative role healed", slog.String("name", r.Name))
	}
	return nil
}

// isAdministrativeName marks roles whose name flags them as administrative.
func isAdministrativeName(name string) bool {
	return strings.Contains(strings.ToLower(name), "admin")
}
