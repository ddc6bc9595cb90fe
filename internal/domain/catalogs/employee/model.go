// Package employee provides the Employee catalog (sales representatives,
// managers).
package employee

import (
	"context"
	"time"

	"showroom/internal/core/apperror"
	"showroom/internal/core/entity"
)

// Role classifies the employee's function.
type Role string

const (
	RoleSalesPerson Role = "sales_person"
	RoleManager     Role = "manager"
	RoleMechanic    Role = "mechanic"
	RoleOther       Role = "other"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSalesPerson, RoleManager, RoleMechanic, RoleOther:
		return true
	}
	return false
}

// Employee represents a showroom employee.
type Employee struct {
	entity.Catalog

	Role  Role    `db:"role" json:"role"`
	Phone *string `db:"phone" json:"phone,omitempty"`
	Email *string `db:"email" json:"email,omitempty"`

	HireDate *time.Time `db:"hire_date" json:"hireDate,omitempty"`
}

// NewEmployee creates a new Employee with required fields.
func NewEmployee(code, name string, role Role) *Employee {
	return &Employee{
		Catalog: entity.NewCatalog(code, name),
		Role:    role,
	}
}

// IsSalesPerson reports whether the employee can hold allotments.
func (e *Employee) IsSalesPerson() bool {
	return e.Role == RoleSalesPerson || e.Role == RoleManager
}

// Validate implements entity.Validatable interface.
func (e *Employee) Validate(ctx context.Context) error {
	if err := e.Catalog.Validate(ctx); err != nil {
		return err
	}
	if !e.Role.Valid() {
		return apperror.NewValidation("unknown role").
			WithDetail("field", "role").
			WithDetail("value", string(e.Role))
	}
	return nil
}
