package waitinglist

import (
	"context"
	"time"

	"showroom/internal/core/id"
	"showroom/internal/domain"
)

// Store defines persistence operations for waiting-list entries.
type Store interface {
	Create(ctx context.Context, e *Entry) error

	GetByID(ctx context.Context, entryID id.ID) (*Entry, error)
	GetByNumber(ctx context.Context, number string) (*Entry, error)

	// Update writes the entry guarded by its version (optimistic locking);
	// a stale write fails with CONCURRENT_MODIFICATION.
	Update(ctx context.Context, e *Entry) error

	Delete(ctx context.Context, entryID id.ID) error

	// MaxPosition returns the highest position among active entries of the
	// priority tier, or 0 if the tier is empty.
	MaxPosition(ctx context.Context, priority domain.Priority) (int, error)

	// ListActiveCandidates returns active entries whose stored criteria
	// could apply to the offered vehicle (brand/model/type wildcard or
	// exact match). The fine-grained eligibility check runs in memory.
	ListActiveCandidates(ctx context.Context, offer VehicleOffer) ([]*Entry, error)

	// ListStale returns open entries whose next contact date passed more
	// than the grace window ago.
	ListStale(ctx context.Context, olderThan time.Time, limit int) ([]*Entry, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Entry], error)
}

// ListFilter for filtering waiting-list entries.
type ListFilter struct {
	domain.ListFilter

	CustomerID *id.ID
	Status     *Status
	Priority   *domain.Priority
	Brand      *string
	ModelName  *string
}
