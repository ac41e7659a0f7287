package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of principals the front-end knows how to serve.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleMerchant Role = "merchant"
	RoleClerk    Role = "clerk"
)

// Roles lists every valid role in dashboard order.
var Roles = []Role{RoleAdmin, RoleMerchant, RoleClerk}

// ParseRole accepts any casing ("Merchant" is what some backends emit) and
// rejects everything outside the three known roles.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleMerchant:
		return RoleMerchant, nil
	case RoleClerk:
		return RoleClerk, nil
	default:
		return "", &FieldError{Field: "role", Message: fmt.Sprintf("unknown role %q", s)}
	}
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMerchant, RoleClerk:
		return true
	}
	return false
}

// DashboardRoot is the landing path of the role's own dashboard shell.
func (r Role) DashboardRoot() string {
	return "/dashboard/" + string(r)
}

func (r Role) String() string {
	return string(r)
}
