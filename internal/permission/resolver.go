package permission

// Decision reasons
const (
	ReasonSuperuser       = "superuser"
	ReasonGranted         = "granted"
	ReasonUnknownResource = "unknown_resource"
	ReasonNoTenant        = "no_tenant"
	ReasonTenantDenied    = "tenant_denied"
	ReasonRoleDenied      = "role_denied"
)

// Principal is the authenticated caller as seen by the permission gate
type Principal struct {
	UserID      uint
	TenantID    *uint
	IsSuperuser bool
}

// Decision is the outcome of one permission check. Denials carry a
// human-readable message distinguishing tenant-level from role-level failure.
type Decision struct {
	Allowed bool
	Reason  string
	Message string
}

// Store answers the three lookups a permission check needs
type Store interface {
	// FindAPIID resolves path+method to a catalog api id; found=false when absent
	FindAPIID(path, method string) (id uint, found bool, err error)
	// TenantGrantEnabled reports whether the tenant holds an enabled grant for the api
	TenantGrantEnabled(tenantID, apiID uint) (bool, error)
	// RoleHasAPI reports whether any of the user's roles is associated with the api
	RoleHasAPI(userID, apiID uint) (bool, error)
}

// Resolver decides whether a principal may invoke an operation. It is a pure
// decision function over the store: no retries, no caching, short-circuit
// evaluation in the order superuser → tenant grant → role grant.
type Resolver struct {
	store Store
}

// NewResolver creates a Resolver over the given store
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Check evaluates the principal against the target resource and method.
// Tenant and role checks are independent: both must hold for a non-superuser.
// A resource with no grant rows at all denies exactly like a disabled one.
func (r *Resolver) Check(p Principal, path, method string) (Decision, error) {
	if p.IsSuperuser {
		return Decision{Allowed: true, Reason: ReasonSuperuser}, nil
	}

	apiID, found, err := r.store.FindAPIID(path, method)
	if err != nil {
		return Decision{}, err
	}
	if !found {
		return Decision{
			Reason:  ReasonUnknownResource,
			Message: "resource is not registered",
		}, nil
	}

	if p.TenantID == nil {
		return Decision{
			Reason:  ReasonNoTenant,
			Message: "tenant lacks access",
		}, nil
	}

	enabled, err := r.store.TenantGrantEnabled(*p.TenantID, apiID)
	if err != nil {
		return Decision{}, err
	}
	if !enabled {
		return Decision{
			Reason:  ReasonTenantDenied,
			Message: "tenant lacks access",
		}, nil
	}

	granted, err := r.store.RoleHasAPI(p.UserID, apiID)
	if err != nil {
		return Decision{}, err
	}
	if !granted {
		return Decision{
			Reason:  ReasonRoleDenied,
			Message: "role lacks access",
		}, nil
	}

	return Decision{Allowed: true, Reason: ReasonGranted}, nil
}
