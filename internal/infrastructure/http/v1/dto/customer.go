package dto

import (
	"showroom/internal/domain/catalogs/customer"
)

// CustomerResponse for API responses.
type CustomerResponse struct {
	CatalogResponse
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	Address       *string `json:"address,omitempty"`
	City          *string `json:"city,omitempty"`
	LicenseNumber *string `json:"licenseNumber,omitempty"`
	Comment       *string `json:"comment,omitempty"`
}

// FromCustomer creates CustomerResponse from a Customer entity.
func FromCustomer(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		CatalogResponse: FromCatalog(c.Catalog),
		Phone:           c.Phone,
		Email:           c.Email,
		Address:         c.Address,
		City:            c.City,
		LicenseNumber:   c.LicenseNumber,
		Comment:         c.Comment,
	}
}

// CreateCustomerRequest for creating customers.
type CreateCustomerRequest struct {
	Code          string  `json:"code"`
	Name          string  `json:"name" binding:"required"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	LicenseNumber *string `json:"licenseNumber"`
	Comment       *string `json:"comment"`
}

// ToEntity converts the request into a new Customer.
func (r CreateCustomerRequest) ToEntity() *customer.Customer {
	c := customer.NewCustomer(r.Code, r.Name)
	c.Phone = r.Phone
	c.Email = r.Email
	c.Address = r.Address
	c.City = r.City
	c.LicenseNumber = r.LicenseNumber
	c.Comment = r.Comment
	return c
}

// UpdateCustomerRequest for updating customers.
type UpdateCustomerRequest struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	LicenseNumber *string `json:"licenseNumber"`
	Comment       *string `json:"comment"`
	Version       int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies the update onto an existing Customer.
func (r UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Phone != nil {
		c.Phone = r.Phone
	}
	if r.Email != nil {
		c.Email = r.Email
	}
	if r.Address != nil {
		c.Address = r.Address
	}
	if r.City != nil {
		c.City = r.City
	}
	if r.LicenseNumber != nil {
		c.LicenseNumber = r.LicenseNumber
	}
	if r.Comment != nil {
		c.Comment = r.Comment
	}
	c.Version = r.Version
}
