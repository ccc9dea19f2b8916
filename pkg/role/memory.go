package role

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// memoryStore is a thread-safe in-memory Store for tests and development.
// It enforces the same uniqueness invariant a database store enforces with
// unique indexes, so seeding races behave identically against it.
type memoryStore struct {
	mu    sync.RWMutex
	roles map[uuid.UUID]Role
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{roles: make(map[uuid.UUID]Role)}
}

func (s *memoryStore) Create(ctx context.Context, r Role) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.roles[r.ID]; exists {
		return errors.Join(ErrRoleAlreadyExists, fmt.Errorf("id %s", r.ID))
	}
	if s.nameTakenLocked(r, uuid.Nil) {
		return errors.Join(ErrRoleAlreadyExists, fmt.Errorf("name %q", r.Name))
	}

	s.roles[r.ID] = r.Clone()
	return nil
}

func (s *memoryStore) FindByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.roles[id]
	if !ok || !r.BelongsTo(tenantID) {
		return Role{}, ErrRoleNotFound
	}
	return r.Clone(), nil
}

func (s *memoryStore) FindByName(ctx context.Context, name string, tenantID uuid.UUID) (Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Tenant-owned roles shadow global roles of the same name.
	var global *Role
	for id := range s.roles {
		r := s.roles[id]
		if !strings.EqualFold(r.Name, name) {
			continue
		}
		if r.IsGlobal {
			global = &r
			continue
		}
		if r.TenantID != nil && *r.TenantID == tenantID {
			return r.Clone(), nil
		}
	}
	if global != nil {
		return global.Clone(), nil
	}
	return Role{}, ErrRoleNotFound
}

func (s *memoryStore) FindAll(ctx context.Context, tenantID uuid.UUID) ([]Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Role, 0, len(s.roles))
	for id := range s.roles {
		r := s.roles[id]
		if r.BelongsTo(tenantID) {
			out = append(out, r.Clone())
		}
	}
	sortRoles(out)
	return out, nil
}

func (s *memoryStore) FindGlobalRoles(ctx context.Context) ([]Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Role, 0, len(s.roles))
	for id := range s.roles {
		r := s.roles[id]
		if r.IsGlobal {
			out = append(out, r.Clone())
		}
	}
	sortRoles(out)
	return out, nil
}

func (s *memoryStore) Update(ctx context.Context, r Role) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[r.ID]; !ok {
		return ErrRoleNotFound
	}
	if s.nameTakenLocked(r, r.ID) {
		return errors.Join(ErrRoleAlreadyExists, fmt.Errorf("name %q", r.Name))
	}

	s.roles[r.ID] = r.Clone()
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.roles[id]
	if !ok || r.IsGlobal || r.TenantID == nil || *r.TenantID != tenantID {
		return ErrRoleNotFound
	}
	delete(s.roles, id)
	return nil
}

func (s *memoryStore) Exists(ctx context.Context, name string, tenantID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id := range s.roles {
		r := s.roles[id]
		if strings.EqualFold(r.Name, name) && r.BelongsTo(tenantID) {
			return true, nil
		}
	}
	return false, nil
}

// nameTakenLocked mirrors the database's partial unique indexes: global
// role names are unique among global roles, tenant role names unique
// within their tenant. Comparison is case-insensitive.
func (s *memoryStore) nameTakenLocked(r Role, excludeID uuid.UUID) bool {
	for id := range s.roles {
		other := s.roles[id]
		if other.ID == excludeID || !strings.EqualFold(other.Name, r.Name) {
			continue
		}
		if r.IsGlobal && other.IsGlobal {
			return true
		}
		if !r.IsGlobal && !other.IsGlobal &&
			r.TenantID != nil && other.TenantID != nil && *r.TenantID == *other.TenantID {
			return true
		}
	}
	return false
}

func sortRoles(roles []Role) {
	sort.Slice(roles, func(i, j int) bool {
		if roles[i].IsGlobal != roles[j].IsGlobal {
			return roles[i].IsGlobal
		}
		return strings.ToLower(roles[i].Name) < strings.ToLower(roles[j].Name)
	})
}
