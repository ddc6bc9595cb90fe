package employee

import (
	"context"

	"showroom/internal/domain"
)

// Repository defines the interface for Employee persistence.
type Repository interface {
	domain.CatalogRepository[*Employee]

	// ListByRole retrieves employees with the given role.
	ListByRole(ctx context.Context, role Role, filter domain.ListFilter) (domain.ListResult[*Employee], error)
}
