package model

// Role is the closed set of roles the engine accepts. Unknown role strings
// fail at the authorization boundary instead of propagating.
type Role string

const (
	RoleGeneralManager     Role = "GENERAL_MANAGER"
	RoleFinanceOfficer     Role = "FINANCE_OFFICER"
	RoleProcurementOfficer Role = "PROCUREMENT_OFFICER"
	RoleStorekeeper        Role = "STOREKEEPER"
	RoleDepartmentHead     Role = "DEPARTMENT_HEAD"
	RoleAuditor            Role = "AUDITOR"
)

// RoleSpec declares the static capabilities of a role.
type RoleSpec struct {
	Global     bool // sees every location, no location restriction allowed
	ReadOnly   bool // may never mutate
	DeptScoped bool // must carry a department id
}

var roleSpecs = map[Role]RoleSpec{
	RoleGeneralManager:     {Global: true},
	RoleFinanceOfficer:     {},
	RoleProcurementOfficer: {},
	RoleStorekeeper:        {},
	RoleDepartmentHead:     {DeptScoped: true},
	RoleAuditor:            {Global: true, ReadOnly: true},
}

// LookupRole returns the capability spec for a role, or ok=false for roles
// outside the closed set.
func LookupRole(role Role) (RoleSpec, bool) {
	spec, ok := roleSpecs[role]
	return spec, ok
}

// Actor is the per-call identity every service entry point receives.
// The engine validates it but never mutates or stores it.
type Actor struct {
	ID           string `json:"id"`
	Role         Role   `json:"role"`
	Global       bool   `json:"global"`
	LocationID   string `json:"location_id"`
	DepartmentID string `json:"department_id"`
}
