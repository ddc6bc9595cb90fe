// Package reservation orchestrates the cross-entity effects between
// allotments and the waiting list: offering a freed vehicle to the best
// waiting customer, converting a held allotment into a sales order, and
// releasing claims.
package reservation

import (
	"context"
	"time"

	"showroom/internal/core/apperror"
	"showroom/internal/core/clock"
	"showroom/internal/core/id"
	"showroom/internal/domain/allotment"
	"showroom/internal/domain/waitinglist"
	"showroom/pkg/logger"
)

// Policy configures coordinator behavior that is deliberately not
// hardwired.
type Policy struct {
	// NotifyBeforeAllotment records a customer notification before the
	// hard allocation is created (acknowledge-first flow).
	NotifyBeforeAllotment bool

	// ConflictRetries is how many times OfferVehicle restarts from
	// scratch after a write conflict before surfacing it.
	ConflictRetries int

	// DefaultValidity is the validity window of allotments created from
	// waiting-list matches.
	DefaultValidity time.Duration
}

// DefaultPolicy returns the standard coordinator policy.
func DefaultPolicy() Policy {
	return Policy{
		NotifyBeforeAllotment: false,
		ConflictRetries:       1,
		DefaultValidity:       7 * 24 * time.Hour,
	}
}

// Coordinator ties the allotment and waiting-list services together.
// It is the sole writer that couples the two entities.
type Coordinator struct {
	allotments  *allotment.Service
	waitingList *waitinglist.Service
	clock       clock.Clock
	policy      Policy
}

// NewCoordinator creates a reservation coordinator.
func NewCoordinator(
	allotments *allotment.Service,
	waitingList *waitinglist.Service,
	clk clock.Clock,
	policy Policy,
) *Coordinator {
	if clk == nil {
		clk = clock.System()
	}
	if policy.ConflictRetries < 0 {
		policy.ConflictRetries = 0
	}
	if policy.DefaultValidity <= 0 {
		policy.DefaultValidity = DefaultPolicy().DefaultValidity
	}
	return &Coordinator{
		allotments:  allotments,
		waitingList: waitingList,
		clock:       clk,
		policy:      policy,
	}
}

// OfferParams carries the inputs for offering an available vehicle.
type OfferParams struct {
	Offer waitinglist.VehicleOffer

	// SalesPersonID handles the created allotment when the matched entry
	// has no assigned sales person.
	SalesPersonID id.ID

	CreatedBy string
}

// OfferResult reports what OfferVehicle did. Both fields nil means the
// offer was a no-op: the vehicle is already claimed, or nobody on the
// waiting list is eligible.
type OfferResult struct {
	Allotment *allotment.Allotment `json:"allotment,omitempty"`
	Notified  *waitinglist.Entry   `json:"notified,omitempty"`
}

// OfferVehicle matches a newly available vehicle against the waiting list
// and creates a priority allotment for the best-eligible entry.
//
// The vehicle-level mutual exclusion is checked up front and enforced
// again by the store at write time; on a write conflict the whole
// sequence restarts from scratch, up to Policy.ConflictRetries times.
func (c *Coordinator) OfferVehicle(ctx context.Context, p OfferParams) (OfferResult, error) {
	var result OfferResult
	var err error

	for attempt := 0; ; attempt++ {
		result, err = c.offerVehicleOnce(ctx, p)
		if err == nil || !apperror.IsConflict(err) || attempt >= c.policy.ConflictRetries {
			return result, err
		}
		logger.Warn(ctx, "offer conflicted, retrying",
			"vehicle_id", p.Offer.VehicleID, "attempt", attempt+1)
	}
}

func (c *Coordinator) offerVehicleOnce(ctx context.Context, p OfferParams) (OfferResult, error) {
	// 1. The vehicle may already be claimed.
	existing, err := c.allotments.FindActiveByVehicle(ctx, p.Offer.VehicleID)
	if err != nil && !apperror.IsNotFound(err) {
		return OfferResult{}, err
	}
	if existing != nil {
		logger.Debug(ctx, "vehicle already claimed",
			"vehicle_id", p.Offer.VehicleID, "allotment_id", existing.ID)
		return OfferResult{}, nil
	}

	// 2. Best eligible waiting-list entry.
	entry, err := c.waitingList.BestMatch(ctx, p.Offer)
	if err != nil {
		return OfferResult{}, err
	}
	if entry == nil {
		logger.Debug(ctx, "no eligible waiting-list entry",
			"vehicle_id", p.Offer.VehicleID)
		return OfferResult{}, nil
	}

	result := OfferResult{}

	// 3. Acknowledge-first policy: record the notification before the
	// hard allocation.
	if c.policy.NotifyBeforeAllotment {
		notified, err := c.waitingList.Notify(ctx, entry.ID)
		if err != nil {
			return OfferResult{}, err
		}
		result.Notified = notified
	}

	salesPerson := p.SalesPersonID
	if entry.AssignedTo != nil {
		salesPerson = *entry.AssignedTo
	}

	// 4. Allotment write first. The store's conditional insert enforces
	// mutual exclusion if another offer won the race since step 1.
	a, err := c.allotments.Create(ctx, allotment.NewParams{
		VehicleID:     p.Offer.VehicleID,
		CustomerID:    entry.CustomerID,
		SalesPersonID: salesPerson,
		ValidUntil:    c.clock.Now().Add(c.policy.DefaultValidity),
		Type:          allotment.TypePriority,
		Priority:      entry.Priority,
		CreatedBy:     p.CreatedBy,
	})
	if err != nil {
		return OfferResult{}, err
	}
	result.Allotment = a

	// 5. Waiting-list write second. If it fails, compensate by cancelling
	// the allotment so no dangling claim is left without a matched
	// customer.
	converted, err := c.waitingList.ConvertToAllotment(ctx, entry.ID, a.ID)
	if err != nil {
		c.compensate(ctx, a.ID, entry.ID)
		return OfferResult{}, err
	}
	if result.Notified != nil {
		result.Notified = converted
	}

	logger.Info(ctx, "vehicle offered",
		"vehicle_id", p.Offer.VehicleID,
		"allotment_id", a.ID,
		"entry_id", entry.ID)
	return result, nil
}

func (c *Coordinator) compensate(ctx context.Context, allotmentID, entryID id.ID) {
	_, err := c.allotments.Cancel(ctx, allotmentID,
		"waiting-list conversion failed", "system")
	if err != nil {
		// The expiry sweep bounds how long the dangling claim survives.
		logger.Error(ctx, "compensation failed, allotment left dangling",
			"allotment_id", allotmentID, "entry_id", entryID, "error", err)
	}
}

// ConvertAllotmentToOrder finalizes a held allotment into a sales order.
func (c *Coordinator) ConvertAllotmentToOrder(ctx context.Context, allotmentID id.ID, orderID string) (*allotment.Allotment, error) {
	return c.allotments.ConvertToOrder(ctx, allotmentID, orderID)
}

// CancelAllotment releases the claim on a vehicle. Re-offering the freed
// vehicle is left to an external trigger to avoid unbounded recursion
// inside the coordinator.
func (c *Coordinator) CancelAllotment(ctx context.Context, allotmentID id.ID, reason, cancelledBy string) (*allotment.Allotment, error) {
	return c.allotments.Cancel(ctx, allotmentID, reason, cancelledBy)
}
