package domain

// Role identifies one of the four independent identity classes served by the
// gateway. Each role owns a disjoint storage namespace and a disjoint set of
// portal routes; sessions never cross roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleClient   Role = "client"
	RoleAdmin    Role = "admin"
)

// Roles lists every role in a fixed order, for iteration.
var Roles = []Role{RoleCustomer, RoleVendor, RoleClient, RoleAdmin}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleClient, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Descriptor bundles everything that differs between the four role portals:
// the storage namespace, the guarded path prefix, and the redirect targets.
// One guard/verifier/dispatcher stack is instantiated per descriptor instead
// of duplicating the stack per role.
type Descriptor struct {
	Role          Role
	Namespace     string // session key namespace, unique per role
	BasePath      string // guarded portal prefix
	LoginPath     string // redirect target when unauthenticated
	DashboardPath string // default landing after login
	RequireTenant bool   // portal is meaningless without a resolved tenant
}

// descriptors is the closed route table for the four portals.
var descriptors = map[Role]Descriptor{
	RoleCustomer: {
		Role:          RoleCustomer,
		Namespace:     "customer",
		BasePath:      "/marketplace",
		LoginPath:     "/marketplace/login",
		DashboardPath: "/marketplace/home",
		RequireTenant: true,
	},
	RoleVendor: {
		Role:          RoleVendor,
		Namespace:     "vendor",
		BasePath:      "/vendor-portal",
		LoginPath:     "/vendor/login",
		DashboardPath: "/vendor-portal/dashboard",
	},
	RoleClient: {
		Role:          RoleClient,
		Namespace:     "client",
		BasePath:      "/client",
		LoginPath:     "/client/login",
		DashboardPath: "/client/dashboard",
	},
	RoleAdmin: {
		Role:          RoleAdmin,
		Namespace:     "admin",
		BasePath:      "/admin",
		LoginPath:     "/admin/login",
		DashboardPath: "/admin/dashboard",
	},
}

// DescriptorFor returns the route descriptor for a role. It panics on an
// unknown role: descriptors are wired at startup from the closed Role set,
// so a miss is a programming error, not an input error.
func DescriptorFor(role Role) Descriptor {
	d, ok := descriptors[role]
	if !ok {
		panic("domain: no descriptor for role " + string(role))
	}
	return d
}
