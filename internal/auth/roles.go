package auth

import (
	"github.com/biocode-hms/equipment-management/internal"
)

// Role is immutable business metadata set at user creation/update, never
// inferred from behavior.
//
// Privilege is mostly ordered (super_admin > manager > department_head >
// support > department_incharge) but several checks are role-set membership
// rather than threshold, so every capability is an explicit set below.
type Role string

const (
	RoleSuperAdmin         Role = "super_admin"
	RoleManager            Role = "manager"            // handles multiple departments
	RoleDepartmentHead     Role = "department_head"    // single department
	RoleSupport            Role = "support"            // biomed tech, maintenance, IT, housekeeping
	RoleDepartmentIncharge Role = "department_incharge" // department secretary
)

var allRoles = []Role{
	RoleSuperAdmin,
	RoleManager,
	RoleDepartmentHead,
	RoleSupport,
	RoleDepartmentIncharge,
}

func (r Role) Valid() bool {
	for _, role := range allRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Capability is a named permission gating one action.
type Capability string

const (
	CapabilityCreateEquipment       Capability = "create_equipment"
	CapabilityUpdateEquipmentStatus Capability = "update_equipment_status"
	CapabilityDeleteEquipment       Capability = "delete_equipment"
	CapabilityViewEquipment         Capability = "view_equipment"

	CapabilityCreateTicket   Capability = "create_ticket"
	CapabilityResolveTicket  Capability = "resolve_ticket"
	CapabilityCloseTicket    Capability = "close_ticket"
	CapabilityAssignTicket   Capability = "assign_ticket"
	CapabilityViewAllTickets Capability = "view_all_tickets"

	CapabilityManageUsers       Capability = "manage_users"
	CapabilityManageDepartments Capability = "manage_departments"
	CapabilityViewDepartments   Capability = "view_departments"
	CapabilityManageSuppliers   Capability = "manage_suppliers"

	CapabilityManageMaintenance Capability = "manage_maintenance"
	CapabilityExportReports     Capability = "export_reports"
	CapabilityViewAnalytics     Capability = "view_analytics"
)

func roleSet(roles ...Role) map[Role]struct{} {
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// everyoneExcept keeps the non-linear exceptions explicit: some checks are
// "not department_incharge" rather than "at least support".
func everyoneExcept(excluded ...Role) map[Role]struct{} {
	set := roleSet(allRoles...)
	for _, r := range excluded {
		delete(set, r)
	}
	return set
}

var capabilityTable = map[Capability]map[Role]struct{}{
	CapabilityCreateEquipment:       roleSet(RoleSuperAdmin, RoleManager, RoleDepartmentHead),
	CapabilityUpdateEquipmentStatus: roleSet(RoleSuperAdmin, RoleManager, RoleDepartmentHead),
	CapabilityDeleteEquipment:       roleSet(RoleSuperAdmin),
	CapabilityViewEquipment:         everyoneExcept(RoleDepartmentIncharge),

	// department_incharge may create tickets for itself; it is the one thing
	// the role can do without elevated access.
	CapabilityCreateTicket:   roleSet(allRoles...),
	CapabilityResolveTicket:  everyoneExcept(RoleDepartmentIncharge),
	CapabilityCloseTicket:    roleSet(RoleSuperAdmin, RoleManager),
	CapabilityAssignTicket:   roleSet(RoleSuperAdmin, RoleManager),
	CapabilityViewAllTickets: roleSet(RoleSuperAdmin, RoleManager),

	CapabilityManageUsers:       roleSet(RoleSuperAdmin),
	CapabilityManageDepartments: roleSet(RoleSuperAdmin),
	CapabilityViewDepartments:   everyoneExcept(RoleDepartmentIncharge),
	CapabilityManageSuppliers:   roleSet(RoleSuperAdmin, RoleManager, RoleDepartmentHead),

	CapabilityManageMaintenance: roleSet(RoleSuperAdmin, RoleManager),
	CapabilityExportReports:     roleSet(RoleSuperAdmin, RoleManager),
	CapabilityViewAnalytics:     everyoneExcept(RoleDepartmentIncharge),
}

// HasCapability is the single capability evaluation; no other role check
// exists in the codebase.
func HasCapability(role Role, capability Capability) bool {
	grants, ok := capabilityTable[capability]
	if !ok {
		return false
	}
	_, granted := grants[role]
	return granted
}

// RequireCapability returns a Forbidden error naming the missing capability.
// Callers check permissions first and mutate second, so a denial always
// leaves the entity untouched.
func RequireCapability(user *User, capability Capability) error {
	if user == nil {
		return internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	if !HasCapability(user.Role, capability) {
		return internal.NewMissingCapabilityError(string(capability))
	}
	return nil
}
