// Package guard evaluates request-time authorization decisions for the
// school-management RBAC core.
//
// A Guard combines a principal (resolved by an upstream authentication
// layer) with the permission keys a protected operation declares and
// returns allow/deny. Evaluation is one role lookup followed by pure
// in-memory comparison: no locks, no retries, and no intrinsic timeouts.
// Cancellation is the calling transport's responsibility via ctx.
//
// Required keys use AND semantics and come in two forms:
//
//	"students"         bare resource (or catalog id, which coincides
//	                   with the resource in this catalog)
//	"students:update"  resource plus action
//
// A "*" wildcard permission satisfies either form, and the manage action
// implies every other action. Keys with the "Host." prefix are special:
// they are denied outright unless the role's name contains "host"
// (case-insensitive), and this gate runs before any wildcard match, so a
// broad "*" grant on a tenant-scoped role never unlocks host
// capabilities.
//
// The super-admin role name bypasses evaluation entirely.
//
//	g := guard.New(guard.StoreResolver(store))
//	decision, err := g.Authorize(ctx, principal, []string{"students:update"})
//	if err != nil {
//	    // guard.ErrUnauthorized, *guard.ForbiddenError, or a store failure
//	}
package guard
