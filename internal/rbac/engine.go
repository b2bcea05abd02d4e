package rbac

// Engine answers access-control queries against an immutable catalog.
// Every query is a total function: absent or unknown roles degrade to
// false rather than erroring, because denial-by-default is safer than
// failure-by-exception in an access-control surface. The engine holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	catalog *Catalog
}

func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// HasPermission reports whether role holds permission. The admin role
// satisfies every check regardless of the grant table (admin bypass),
// evaluated before the catalog is consulted.
func (e *Engine) HasPermission(role Role, permission Permission) bool {
	role = Canonical(string(role))
	if role == RoleAdmin {
		return true
	}
	return e.catalog.has(role, permission)
}

// HasAnyPermission reports whether role holds at least one of the given
// permissions. An empty list means "no requirement" and returns true,
// mirroring unrestricted-route semantics.
func (e *Engine) HasAnyPermission(role Role, permissions []Permission) bool {
	if len(permissions) == 0 {
		return true
	}
	for _, p := range permissions {
		if e.HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether role holds every given permission.
// An empty list is vacuously true.
func (e *Engine) HasAllPermissions(role Role, permissions []Permission) bool {
	for _, p := range permissions {
		if !e.HasPermission(role, p) {
			return false
		}
	}
	return true
}

// CanAccessRoute reports whether role may use a route guarded by the
// given permissions: unrestricted when the list is empty, otherwise any
// one permission suffices.
func (e *Engine) CanAccessRoute(role Role, required []Permission) bool {
	return e.HasAnyPermission(role, required)
}
