package domain

import dErrors "cargotrace/pkg/domain-errors"

// Role is the stakeholder role carried in auth tokens and assignments.
type Role string

const (
	RoleSupplier    Role = "SUPPLIER"
	RoleTransporter Role = "TRANSPORTER"
	RoleWarehouse   Role = "WAREHOUSE"
	RoleRetailer    Role = "RETAILER"
	RoleAdmin       Role = "ADMIN"
)

// ParseRole validates a role string from a trust boundary (token claim,
// request body).
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSupplier, RoleTransporter, RoleWarehouse, RoleRetailer, RoleAdmin:
		return Role(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
}

// IsStageRole reports whether the role advances containers through a
// lifecycle stage. Suppliers create shipments and admins audit; neither
// submits stage-advancing scans.
func (r Role) IsStageRole() bool {
	switch r {
	case RoleTransporter, RoleWarehouse, RoleRetailer:
		return true
	}
	return false
}
