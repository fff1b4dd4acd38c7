// Package rbac defines the closed set of application roles and the
// static capability table evaluated on every privileged operation.
package rbac

// Role is a closed enumeration of actor roles. Unknown role strings
// resolve to zero capabilities.
type Role string

const (
	// RoleAdmin may do everything, including editing factory prices.
	RoleAdmin Role = "ADMIN"
	// RoleCoordinator supervises operations: sees factory prices and
	// approves extra work, but cannot edit factory prices.
	RoleCoordinator Role = "COORDINATOR"
	// RoleClerk performs day-to-day timesheet data entry.
	RoleClerk Role = "CLERK"
	// RoleViewer has read-only access to supplier-priced data.
	RoleViewer Role = "VIEWER"
)

// Capabilities enumerates the privileged actions a role may perform.
type Capabilities struct {
	CanViewFactoryPrice bool
	CanEditFactoryPrice bool
	CanApproveExtraWork bool
}

var capabilityTable = map[Role]Capabilities{
	RoleAdmin: {
		CanViewFactoryPrice: true,
		CanEditFactoryPrice: true,
		CanApproveExtraWork: true,
	},
	RoleCoordinator: {
		CanViewFactoryPrice: true,
		CanApproveExtraWork: true,
	},
	RoleClerk:  {},
	RoleViewer: {},
}

// CapabilitiesFor resolves the capability set for a role.
func CapabilitiesFor(role Role) Capabilities {
	return capabilityTable[role]
}

// Valid reports whether the role is part of the closed enumeration.
func (r Role) Valid() bool {
	_, ok := capabilityTable[r]
	return ok
}

// CanViewFactoryPrice reports whether the role sees factory prices.
func (r Role) CanViewFactoryPrice() bool {
	return capabilityTable[r].CanViewFactoryPrice
}

// CanEditFactoryPrice reports whether the role may set factory prices.
func (r Role) CanEditFactoryPrice() bool {
	return capabilityTable[r].CanEditFactoryPrice
}

// CanApproveExtraWork reports whether the role may approve extra work
// and edit approved records.
func (r Role) CanApproveExtraWork() bool {
	return capabilityTable[r].CanApproveExtraWork
}
