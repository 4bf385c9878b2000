package enums

import (
	"fmt"
	"strings"
)

// EmployeeRole is the back-office permission tier of a staff member.
type EmployeeRole string

const (
	EmployeeRoleClerk   EmployeeRole = "BALCONISTA"
	EmployeeRoleManager EmployeeRole = "GERENTE"
	EmployeeRoleAdmin   EmployeeRole = "ADMINISTRADOR"
)

var validEmployeeRoles = []EmployeeRole{
	EmployeeRoleClerk,
	EmployeeRoleManager,
	EmployeeRoleAdmin,
}

// String implements fmt.Stringer.
func (r EmployeeRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known EmployeeRole.
func (r EmployeeRole) IsValid() bool {
	for _, candidate := range validEmployeeRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// Label returns the display name used in the back office.
func (r EmployeeRole) Label() string {
	switch r {
	case EmployeeRoleClerk:
		return "Balconista"
	case EmployeeRoleManager:
		return "Gerente"
	case EmployeeRoleAdmin:
		return "Administrador"
	default:
		return string(r)
	}
}

// ParseEmployeeRole converts raw input into an EmployeeRole. Blank input maps
// to the clerk role.
func ParseEmployeeRole(value string) (EmployeeRole, error) {
	normalized := EmployeeRole(strings.ToUpper(strings.TrimSpace(value)))
	if normalized == "" {
		return EmployeeRoleClerk, nil
	}
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid employee role %q", value)
}
