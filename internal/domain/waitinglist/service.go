package waitinglist

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

// NumberPrefix for generated waiting-list numbers (WL-2026-00007).
const NumberPrefix = "WL"

// Service provides business operations for the waiting list.
type Service struct {
	store     Store
	numerator numerator.Generator
	txManager tx.Manager
	clock     clock.Clock
	audit     audit.Recorder
}

// NewService creates a new waiting-list service.
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

// Enroll adds a customer to the waiting list. The position is assigned as
// the tier maximum plus one, inside the same transaction as the insert so
// two concurrent enrollments into the same tier cannot share a position
// (the second insert hits the tier/position uniqueness guard and fails
// with CONFLICT; callers may retry).
func (s *Service) Enroll(ctx context.Context, p NewParams) (*Entry, error) {
	now := s.clock.Now()

	if p.CreatedBy == "" {
		audit.EnrichCreatedBy(ctx, &p.CreatedBy, &p.CreatedBy)
	}

	e, err := New(p, now)
	if err != nil {
		return nil, err
	}

	if e.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: numerator.StrategyCached}, now)
		if err != nil {
			return nil, fmt.Errorf("generate number: %w", err)
		}
		e.Number = number
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		maxPos, err := s.store.MaxPosition(ctx, e.Priority)
		if err != nil {
			return fmt.Errorf("max position: %w", err)
		}
		e.Position = maxPos + 1

		if err := s.store.Create(ctx, e); err != nil {
			return fmt.Errorf("create waiting-list entry: %w", err)
		}
		return s.audit.Record(ctx, "WaitingList", e.ID, audit.ActionCreate, map[string]any{
			"number":   e.Number,
			"priority": e.Priority,
			"position": e.Position,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "waiting-list entry enrolled",
		"id", e.ID, "number", e.Number, "priority", e.Priority.String(), "position", e.Position)
	return e, nil
}

// GetByID retrieves a waiting-list entry.
func (s *Service) GetByID(ctx context.Context, entryID id.ID) (*Entry, error) {
	return s.store.GetByID(ctx, entryID)
}

// GetByNumber retrieves a waiting-list entry by its number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Entry, error) {
	return s.store.GetByNumber(ctx, number)
}

// BestMatch returns the active entry served first for the offer, or nil
// when no entry is eligible.
func (s *Service) BestMatch(ctx context.Context, offer VehicleOffer) (*Entry, error) {
	candidates, err := s.store.ListActiveCandidates(ctx, offer)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return FindBestMatch(candidates, offer), nil
}

// Notify marks the entry as contacted about a candidate vehicle.
// Dispatching the actual communication is the notification collaborator's
// job; this only records that it happened.
func (s *Service) Notify(ctx context.Context, entryID id.ID) (*Entry, error) {
	return s.mutate(ctx, entryID, audit.ActionNotify, func(e *Entry) error {
		return e.Notify(s.clock.Now())
	})
}

// ConvertToAllotment records that an allotment now holds this entry's claim.
func (s *Service) ConvertToAllotment(ctx context.Context, entryID, allotmentID id.ID) (*Entry, error) {
	e, err := s.mutate(ctx, entryID, audit.ActionConvert, func(e *Entry) error {
		return e.ConvertToAllotment(allotmentID, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "waiting-list entry converted",
		"id", e.ID, "number", e.Number, "allotment_id", allotmentID)
	return e, nil
}

// Cancel withdraws the entry from the waiting list.
func (s *Service) Cancel(ctx context.Context, entryID id.ID, reason, cancelledBy string) (*Entry, error) {
	if cancelledBy == "" {
		audit.EnrichUpdatedBy(ctx, &cancelledBy)
	}
	return s.mutate(ctx, entryID, audit.ActionCancel, func(e *Entry) error {
		return e.Cancel(reason, cancelledBy)
	})
}

// Reprioritize moves the entry to a new priority tier, appended at the
// tier's tail. Other entries keep their positions; the old tier keeps a
// gap.
func (s *Service) Reprioritize(ctx context.Context, entryID id.ID, newPriority domain.Priority) (*Entry, error) {
	var e *Entry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		e, err = s.store.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		if e.Priority == newPriority {
			return nil
		}
		oldPriority := e.Priority

		maxPos, err := s.store.MaxPosition(ctx, newPriority)
		if err != nil {
			return fmt.Errorf("max position: %w", err)
		}
		if err := e.MoveToTier(newPriority, maxPos+1); err != nil {
			return err
		}
		audit.EnrichUpdatedBy(ctx, &e.UpdatedBy)

		if err := s.store.Update(ctx, e); err != nil {
			return fmt.Errorf("update waiting-list entry: %w", err)
		}
		return s.audit.Record(ctx, "WaitingList", e.ID, audit.ActionUpdate, map[string]any{
			"priority": map[string]any{"old": oldPriority, "new": newPriority},
			"position": e.Position,
		})
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// RecordContact stamps a completed customer contact.
func (s *Service) RecordContact(ctx context.Context, entryID id.ID, method string) (*Entry, error) {
	return s.mutate(ctx, entryID, audit.ActionUpdate, func(e *Entry) error {
		return e.RecordContact(method, s.clock.Now())
	})
}

// mutate loads, transitions and saves an entry in one transaction.
func (s *Service) mutate(ctx context.Context, entryID id.ID, action audit.Action, fn func(*Entry) error) (*Entry, error) {
	var e *Entry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		e, err = s.store.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		before := e.Status

		if err := fn(e); err != nil {
			return err
		}
		audit.EnrichUpdatedBy(ctx, &e.UpdatedBy)

		if err := s.store.Update(ctx, e); err != nil {
			return fmt.Errorf("update waiting-list entry: %w", err)
		}
		return s.audit.Record(ctx, "WaitingList", e.ID, action, map[string]any{
			"status": map[string]any{"old": before, "new": e.Status},
		})
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ExpireStale expires open entries whose scheduled contact lapsed more
// than the grace window ago. Returns the number of entries expired.
func (s *Service) ExpireStale(ctx context.Context, grace time.Duration, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	cutoff := s.clock.Now().Add(-grace)

	stale, err := s.store.ListStale(ctx, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("list stale entries: %w", err)
	}

	expired := 0
	for _, e := range stale {
		changed, err := e.Expire()
		if err != nil || !changed {
			continue
		}
		err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := s.store.Update(ctx, e); err != nil {
				return err
			}
			return s.audit.Record(ctx, "WaitingList", e.ID, audit.ActionExpire, nil)
		})
		if err != nil {
			logger.Warn(ctx, "expire waiting-list entry failed", "id", e.ID, "error", err)
			continue
		}
		expired++
	}

	if expired > 0 {
		logger.Info(ctx, "waiting-list entries expired", "count", expired)
	}
	return expired, nil
}

// List retrieves waiting-list entries with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Entry], error) {
	return s.store.List(ctx, filter)
}

// Delete soft-deletes a waiting-list entry.
func (s *Service) Delete(ctx context.Context, entryID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, entryID); err != nil {
			return err
		}
		return s.audit.Record(ctx, "WaitingList", entryID, audit.ActionDelete, nil)
	})
}
