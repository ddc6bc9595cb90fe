package customer

import (
	"context"

	"showroom/internal/domain"
)

// Repository defines the interface for Customer persistence.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// FindByEmail retrieves a customer by email (unique).
	FindByEmail(ctx context.Context, email string) (*Customer, error)
}
