package dto

import (
	"time"

	"showroom/internal/domain/catalogs/employee"
)

// EmployeeResponse for API responses.
type EmployeeResponse struct {
	CatalogResponse
	Role     string     `json:"role"`
	Phone    *string    `json:"phone,omitempty"`
	Email    *string    `json:"email,omitempty"`
	HireDate *time.Time `json:"hireDate,omitempty"`
}

// FromEmployee creates EmployeeResponse from an Employee entity.
func FromEmployee(e *employee.Employee) EmployeeResponse {
	return EmployeeResponse{
		CatalogResponse: FromCatalog(e.Catalog),
		Role:            string(e.Role),
		Phone:           e.Phone,
		Email:           e.Email,
		HireDate:        e.HireDate,
	}
}

// CreateEmployeeRequest for creating employees.
type CreateEmployeeRequest struct {
	Code     string     `json:"code"`
	Name     string     `json:"name" binding:"required"`
	Role     string     `json:"role" binding:"required"`
	Phone    *string    `json:"phone"`
	Email    *string    `json:"email"`
	HireDate *time.Time `json:"hireDate"`
}

// ToEntity converts the request into a new Employee.
func (r CreateEmployeeRequest) ToEntity() *employee.Employee {
	e := employee.NewEmployee(r.Code, r.Name, employee.Role(r.Role))
	e.Phone = r.Phone
	e.Email = r.Email
	e.HireDate = r.HireDate
	return e
}

// UpdateEmployeeRequest for updating employees.
type UpdateEmployeeRequest struct {
	Name     *string    `json:"name"`
	Role     *string    `json:"role"`
	Phone    *string    `json:"phone"`
	Email    *string    `json:"email"`
	HireDate *time.Time `json:"hireDate"`
	Version  int        `json:"version" binding:"required,min=1"`
}

// ApplyTo applies the update onto an existing Employee.
func (r UpdateEmployeeRequest) ApplyTo(e *employee.Employee) {
	if r.Name != nil {
		e.Name = *r.Name
	}
	if r.Role != nil {
		e.Role = employee.Role(*r.Role)
	}
	if r.Phone != nil {
		e.Phone = r.Phone
	}
	if r.Email != nil {
		e.Email = r.Email
	}
	if r.HireDate != nil {
		e.HireDate = r.HireDate
	}
	e.Version = r.Version
}
