package allotment

import (
	"context"
	"time"

	"showroom/internal/core/id"
	"showroom/internal/domain"
)

// Store defines persistence operations for allotments.
type Store interface {
	// Create inserts a new allotment. The insert is conditional: it fails
	// with CONFLICT if an active, non-expired allotment already exists for
	// the same vehicle.
	Create(ctx context.Context, a *Allotment) error

	GetByID(ctx context.Context, allotmentID id.ID) (*Allotment, error)
	GetByNumber(ctx context.Context, number string) (*Allotment, error)

	// Update writes the allotment guarded by its version
	// (optimistic locking); a stale write fails with
	// CONCURRENT_MODIFICATION.
	Update(ctx context.Context, a *Allotment) error

	Delete(ctx context.Context, allotmentID id.ID) error

	// FindActiveByVehicle returns the active, non-expired allotment holding
	// the vehicle, or NOT_FOUND.
	FindActiveByVehicle(ctx context.Context, vehicleID id.ID, now time.Time) (*Allotment, error)

	// ListExpired returns active allotments whose validity window passed.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*Allotment, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Allotment], error)
}

// ListFilter for filtering allotments.
type ListFilter struct {
	domain.ListFilter

	VehicleID  *id.ID
	CustomerID *id.ID
	Status     *Status
	DateFrom   *time.Time
	DateTo     *time.Time
}
