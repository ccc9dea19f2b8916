package guard

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/schoolkit/pkg/permission"
	"github.com/dmitrymomot/schoolkit/pkg/role"
)

const (
	// DefaultSuperAdminRole is the role name that bypasses evaluation.
	DefaultSuperAdminRole = "Super Admin"

	// DefaultHostMarker is the substring a role name must contain
	// (case-insensitively) to satisfy "Host."-prefixed keys.
	DefaultHostMarker = "host"

	// hostKeyPrefix marks keys reserved for host-level capabilities.
	hostKeyPrefix = "Host."
)

// Principal describes the authenticated caller as resolved by an upstream
// authentication layer. TenantID is nil for host-level principals.
type Principal struct {
	UserID        uuid.UUID  `json:"user_id"`
	TenantID      *uuid.UUID `json:"tenant_id,omitempty"`
	RoleName      string     `json:"role_name"`
	Impersonation bool       `json:"impersonation,omitempty"`
}

// Decision is the outcome of an evaluation, consumed by request-handling
// middleware to short-circuit or continue.
type Decision struct {
	Allowed     bool     `json:"allowed"`
	MissingKeys []string `json:"missing_keys,omitempty"`
}

// RoleResolver loads the principal's full role, permissions included.
// Implementations must return role.ErrRoleNotFound when no role matches;
// any other error is treated as an infrastructure failure and propagated.
type RoleResolver interface {
	Resolve(ctx context.Context, p Principal) (role.Role, error)
}

// RoleResolverFunc adapts a function to the RoleResolver interface.
type RoleResolverFunc func(ctx context.Context, p Principal) (role.Role, error)

// Resolve calls the function.
func (f RoleResolverFunc) Resolve(ctx context.Context, p Principal) (role.Role, error) {
	return f(ctx, p)
}

// StoreResolver resolves the principal's role by name through a role.Store,
// searching the tenant ∪ global partition.
func StoreResolver(store role.Store) RoleResolver {
	return RoleResolverFunc(func(ctx context.Context, p Principal) (role.Role, error) {
		tenantID := uuid.Nil
		if p.TenantID != nil {
			tenantID = *p.TenantID
		}
		return store.FindByName(ctx, p.RoleName, tenantID)
	})
}

// Guard evaluates required permission keys against a principal's role.
// A Guard is immutable after construction and safe for concurrent use.
type Guard struct {
	resolver       RoleResolver
	superAdminRole string
	hostMarker     string
	log            *slog.Logger
}

// Option configures Guard construction.
type Option func(*Guard)

// WithSuperAdminRole overrides the role name that bypasses evaluation.
func WithSuperAdminRole(name string) Option {
	return func(g *Guard) {
		if name != "" {
			g.superAdminRole = name
		}
	}
}

// WithHostMarker overrides the substring that marks host-capable role names.
func WithHostMarker(marker string) Option {
	return func(g *Guard) {
		if marker != "" {
			g.hostMarker = strings.ToLower(marker)
		}
	}
}

// WithLogger attaches a logger for denied evaluations.
func WithLogger(log *slog.Logger) Option {
	return func(g *Guard) {
		if log != nil {
			g.log = log
		}
	}
}

// New builds a Guard over the given role resolver.
func New(resolver RoleResolver, opts ...Option) *Guard {
	g := &Guard{
		resolver:       resolver,
		superAdminRole: DefaultSuperAdminRole,
		hostMarker:     DefaultHostMarker,
		log:            slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize decides whether the principal may perform an operation guarded
// by requiredKeys (AND semantics). It returns an allowing Decision with a
// nil error, or a denying Decision together with ErrUnauthorized (no
// principal) or a *ForbiddenError naming the unmet keys. Store failures
// propagate unchanged.
func (g *Guard) Authorize(ctx context.Context, p *Principal, requiredKeys []string) (Decision, error) {
	// Operations that declare no keys are open to any caller.
	if len(requiredKeys) == 0 {
		return Decision{Allowed: true}, nil
	}

	if p == nil {
		return Decision{MissingKeys: requiredKeys}, ErrUnauthorized
	}

	// Super-admin bypass: no lookup, no key matching.
	if p.RoleName == g.superAdminRole {
		return Decision{Allowed: true}, nil
	}

	r, err := g.resolver.Resolve(ctx, *p)
	if err != nil {
		if errors.Is(err, role.ErrRoleNotFound) {
			return g.deny(ctx, p, requiredKeys)
		}
		return Decision{}, err
	}

	if len(r.Permissions) == 0 {
		return g.deny(ctx, p, requiredKeys)
	}

	var missing []string
	for _, key := range requiredKeys {
		if !matchKey(&r, g.hostMarker, key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return g.deny(ctx, p, missing)
	}

	return Decision{Allowed: true}, nil
}

// EffectiveKeys returns the deduplicated UI-facing key list for the
// principal's role plus any permissions granted directly to the user.
// The output drives client affordances; Authorize remains the sole
// enforcement point.
func (g *Guard) EffectiveKeys(ctx context.Context, p *Principal, direct []permission.Permission) ([]string, error) {
	if p == nil {
		return nil, ErrUnauthorized
	}

	r, err := g.resolver.Resolve(ctx, *p)
	if err != nil && !errors.Is(err, role.ErrRoleNotFound) {
		return nil, err
	}

	perms := make([]permission.Permission, 0, len(r.Permissions)+len(direct))
	perms = append(perms, r.Permissions...)
	perms = append(perms, direct...)
	return permission.DeriveKeys(perms), nil
}

func (g *Guard) deny(ctx context.Context, p *Principal, missing []string) (Decision, error) {
	g.log.DebugContext(ctx, "authorization denied",
		slog.String("user_id", p.UserID.String()),
		slog.String("role", p.RoleName),
		slog.Any("missing_keys", missing),
	)
	return Decision{MissingKeys: missing}, &ForbiddenError{MissingKeys: missing}
}

// matchKey evaluates a single required key against the role's permissions.
func matchKey(r *role.Role, hostMarker, key string) bool {
	// Host-prefixed keys gate on the role name before any wildcard or
	// resource match: a "*" grant on a non-host role never satisfies them.
	if strings.HasPrefix(key, hostKeyPrefix) {
		if !strings.Contains(strings.ToLower(r.Name), hostMarker) {
			return false
		}
	}

	resource, action, hasAction := strings.Cut(key, ":")
	if !hasAction {
		// Bare key: wildcard, or resource/catalog-id match. Catalog node
		// ids equal their resources here, so one comparison covers both.
		for _, p := range r.Permissions {
			if p.Resource == permission.WildcardResource || p.Resource == key {
				return true
			}
		}
		return false
	}

	for _, p := range r.Permissions {
		if p.Resource == permission.WildcardResource {
			return true
		}
		if p.Resource == resource && p.Allows(permission.Action(action)) {
			return true
		}
	}
	return false
}
