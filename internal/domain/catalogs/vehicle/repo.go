package vehicle

import (
	"context"

	"showroom/internal/domain"
)

// Repository defines the interface for Vehicle persistence.
type Repository interface {
	domain.CatalogRepository[*Vehicle]

	// FindByVIN retrieves a vehicle by VIN (unique).
	FindByVIN(ctx context.Context, vin string) (*Vehicle, error)

	// ListByStatus retrieves vehicles in the given inventory state.
	ListByStatus(ctx context.Context, status Status, filter domain.ListFilter) (domain.ListResult[*Vehicle], error)
}
