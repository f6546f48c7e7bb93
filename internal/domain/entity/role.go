// Package entity contains the core business objects of the project.
package entity

import (
	"slices"
	"strings"

	domainerrors "brokerage/internal/domain/errors"
)

// Role represents the single role a user holds in the brokerage.
type Role string

const (
	// RoleBroker runs the office and has every capability.
	RoleBroker Role = "BROKER"
	// RoleSecretary handles administrative and listing management work.
	RoleSecretary Role = "SECRETARIA"
	// RoleAdvisor captures and shows properties.
	RoleAdvisor Role = "ASESOR"
)

// Permission is an operation tag checked against a role's capability set.
type Permission string

const (
	PermissionManageEmployees  Permission = "employees:manage"
	PermissionManageProperties Permission = "properties:manage"
	PermissionCaptureProperty  Permission = "properties:capture"
	PermissionReadProperties   Permission = "properties:read"
	PermissionManageClients    Permission = "clients:manage"
	PermissionViewReports      Permission = "reports:view"
	PermissionDeactivateUsers  Permission = "users:deactivate"
)

//nolint:gochecknoglobals
var roleCapabilities = map[Role][]Permission{
	RoleBroker: {
		PermissionManageEmployees,
		PermissionManageProperties,
		PermissionCaptureProperty,
		PermissionReadProperties,
		PermissionManageClients,
		PermissionViewReports,
		PermissionDeactivateUsers,
	},
	RoleSecretary: {
		PermissionManageProperties,
		PermissionCaptureProperty,
		PermissionReadProperties,
		PermissionManageClients,
		PermissionViewReports,
	},
	RoleAdvisor: {
		PermissionCaptureProperty,
		PermissionReadProperties,
	},
}

//nolint:gochecknoglobals
var roleLevels = map[Role]int{
	RoleBroker:    3,
	RoleSecretary: 2,
	RoleAdvisor:   1,
}

// ParseRole accepts a role name case-insensitively.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.IsValid() {
		return "", domainerrors.NewInvalidValueError("Rol", raw, "Debe ser BROKER, SECRETARIA o ASESOR")
	}

	return role, nil
}

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	_, ok := roleCapabilities[r]

	return ok
}

// Capabilities returns a copy of the role's permission set.
func (r Role) Capabilities() []Permission {
	return slices.Clone(roleCapabilities[r])
}

// Can reports whether the role's capability set contains p.
func (r Role) Can(p Permission) bool {
	return slices.Contains(roleCapabilities[r], p)
}

// Level orders roles for management checks; higher manages lower.
func (r Role) Level() int {
	return roleLevels[r]
}

// CanManage reports whether r sits strictly above other.
func (r Role) CanManage(other Role) bool {
	return r.Level() > other.Level()
}

// Authorize returns UnauthorizedOperation when the role lacks p.
func (r Role) Authorize(p Permission) error {
	if r.Can(p) {
		return nil
	}

	return domainerrors.NewUnauthorizedOperationError(string(p), r.String())
}
