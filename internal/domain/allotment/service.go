package allotment

import (
	"context"
	"fmt"
	"time"

	"showroom/internal/core/clock"
	"showroom/internal/core/id"
	"showroom/internal/core/numerator"
	"showroom/internal/core/tx"
	"showroom/internal/domain"
	"showroom/internal/domain/audit"
	"showroom/pkg/logger"
)

// NumberPrefix for generated allotment numbers (ALT-2026-00042).
const NumberPrefix = "ALT"

// Service provides business operations for allotments.
type Service struct {
	store     Store
	numerator numerator.Generator
	txManager tx.Manager
	clock     clock.Clock
	audit     audit.Recorder
}

// NewService creates a new allotment service.
func NewService(
	store Store,
	gen numerator.Generator,
	txManager tx.Manager,
	clk clock.Clock,
	recorder audit.Recorder,
) *Service {
	if clk == nil {
		clk = clock.System()
	}
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Service{
		store:     store,
		numerator: gen,
		txManager: txManager,
		clock:     clk,
		audit:     recorder,
	}
}

// Create creates a new active allotment for a vehicle.
// Fails with CONFLICT if the vehicle is already claimed.
func (s *Service) Create(ctx context.Context, p NewParams) (*Allotment, error) {
	now := s.clock.Now()

	if p.CreatedBy == "" {
		audit.EnrichCreatedBy(ctx, &p.CreatedBy, &p.CreatedBy)
	}

	a, err := New(p, now)
	if err != nil {
		return nil, err
	}

	if a.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, numerator.DefaultOptions(), now)
		if err != nil {
			return nil, fmt.Errorf("generate number: %w", err)
		}
		a.Number = number
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, a); err != nil {
			return fmt.Errorf("create allotment: %w", err)
		}
		return s.audit.Record(ctx, "Allotment", a.ID, audit.ActionCreate, map[string]any{
			"number":    a.Number,
			"vehicleId": a.VehicleID,
			"status":    a.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "allotment created",
		"id", a.ID, "number", a.Number, "vehicle_id", a.VehicleID)
	return a, nil
}

// GetByID retrieves an allotment. Expiry is applied lazily on read: an
// active allotment past its validity window is returned as Expired and
// the status change is persisted best-effort.
func (s *Service) GetByID(ctx context.Context, allotmentID id.ID) (*Allotment, error) {
	a, err := s.store.GetByID(ctx, allotmentID)
	if err != nil {
		return nil, err
	}
	s.expireLazily(ctx, a)
	return a, nil
}

// GetByNumber retrieves an allotment by its human-readable number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Allotment, error) {
	a, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	s.expireLazily(ctx, a)
	return a, nil
}

func (s *Service) expireLazily(ctx context.Context, a *Allotment) {
	changed, err := a.Expire(s.clock.Now())
	if err != nil || !changed {
		return
	}
	if err := s.store.Update(ctx, a); err != nil {
		// The sweep will pick it up; the caller still sees Expired.
		logger.Warn(ctx, "lazy expire failed", "id", a.ID, "error", err)
	}
}

// FindActiveByVehicle returns the active, non-expired allotment holding
// the vehicle, or NOT_FOUND.
func (s *Service) FindActiveByVehicle(ctx context.Context, vehicleID id.ID) (*Allotment, error) {
	return s.store.FindActiveByVehicle(ctx, vehicleID, s.clock.Now())
}

// MarkReservationPaid records the reservation payment on an active allotment.
func (s *Service) MarkReservationPaid(ctx context.Context, allotmentID id.ID, method, reference string) (*Allotment, error) {
	return s.mutate(ctx, allotmentID, audit.ActionUpdate, func(a *Allotment) error {
		return a.MarkReservationPaid(method, reference)
	})
}

// ConvertToOrder finalizes the allotment into a sales order.
func (s *Service) ConvertToOrder(ctx context.Context, allotmentID id.ID, orderID string) (*Allotment, error) {
	a, err := s.mutate(ctx, allotmentID, audit.ActionConvert, func(a *Allotment) error {
		return a.ConvertToOrder(orderID, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "allotment converted to order",
		"id", a.ID, "number", a.Number, "order_id", orderID)
	return a, nil
}

// Cancel releases the claim on the vehicle.
func (s *Service) Cancel(ctx context.Context, allotmentID id.ID, reason, cancelledBy string) (*Allotment, error) {
	if cancelledBy == "" {
		audit.EnrichUpdatedBy(ctx, &cancelledBy)
	}
	a, err := s.mutate(ctx, allotmentID, audit.ActionCancel, func(a *Allotment) error {
		return a.Cancel(reason, cancelledBy, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "allotment cancelled",
		"id", a.ID, "number", a.Number, "reason", reason)
	return a, nil
}

// Extend moves the validity window further into the future.
func (s *Service) Extend(ctx context.Context, allotmentID id.ID, newValidUntil time.Time) (*Allotment, error) {
	return s.mutate(ctx, allotmentID, audit.ActionUpdate, func(a *Allotment) error {
		return a.Extend(newValidUntil)
	})
}

// mutate loads, transitions and saves an allotment in one transaction.
func (s *Service) mutate(ctx context.Context, allotmentID id.ID, action audit.Action, fn func(*Allotment) error) (*Allotment, error) {
	var a *Allotment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.store.GetByID(ctx, allotmentID)
		if err != nil {
			return err
		}
		before := a.Status

		if err := fn(a); err != nil {
			return err
		}
		audit.EnrichUpdatedBy(ctx, &a.UpdatedBy)

		if err := s.store.Update(ctx, a); err != nil {
			return fmt.Errorf("update allotment: %w", err)
		}
		return s.audit.Record(ctx, "Allotment", a.ID, action, map[string]any{
			"status": map[string]any{"old": before, "new": a.Status},
		})
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ExpireOverdue expires active allotments past their validity window.
// Idempotent and safe to run from any scheduler at any interval.
// Returns the number of allotments expired.
func (s *Service) ExpireOverdue(ctx context.Context, batchSize int) (int, error) {
	now := s.clock.Now()
	if batchSize <= 0 {
		batchSize = 100
	}

	overdue, err := s.store.ListExpired(ctx, now, batchSize)
	if err != nil {
		return 0, fmt.Errorf("list expired allotments: %w", err)
	}

	expired := 0
	for _, a := range overdue {
		changed, err := a.Expire(now)
		if err != nil || !changed {
			continue
		}
		err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := s.store.Update(ctx, a); err != nil {
				return err
			}
			return s.audit.Record(ctx, "Allotment", a.ID, audit.ActionExpire, map[string]any{
				"validUntil": a.ValidUntil,
			})
		})
		if err != nil {
			// A concurrent transition won the race; skip and continue.
			logger.Warn(ctx, "expire allotment failed", "id", a.ID, "error", err)
			continue
		}
		expired++
	}

	if expired > 0 {
		logger.Info(ctx, "allotments expired", "count", expired)
	}
	return expired, nil
}

// List retrieves allotments with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Allotment], error) {
	return s.store.List(ctx, filter)
}

// Delete soft-deletes an allotment.
func (s *Service) Delete(ctx context.Context, allotmentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, allotmentID); err != nil {
			return err
		}
		return s.audit.Record(ctx, "Allotment", allotmentID, audit.ActionDelete, nil)
	})
}
