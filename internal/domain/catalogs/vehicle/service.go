package vehicle

import (
	"context"
	"fmt"
	"time"

	"showroom/internal/core/apperror"
	"showroom/internal/core/id"
	"showroom/internal/core/numerator"
	"showroom/internal/core/tx"
	"showroom/internal/domain"
)

// Service provides business logic for the Vehicle catalog.
type Service struct {
	*domain.CatalogService[*Vehicle]
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new Vehicle service.
func NewService(repo Repository, gen numerator.Generator, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Vehicle]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "vehicle",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      gen,
		txManager:      txManager,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.checkVINUnique)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, v *Vehicle) error {
	if v.Code == "" {
		cfg := numerator.DefaultConfig("VEH")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		v.Code = code
	}
	return s.checkVINUnique(ctx, v)
}

func (s *Service) checkVINUnique(ctx context.Context, v *Vehicle) error {
	if v.VIN == "" {
		return nil
	}
	existing, err := s.repo.FindByVIN(ctx, v.VIN)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != v.ID {
		return apperror.NewDuplicate("vehicle", "vin", v.VIN)
	}
	return nil
}

// FindByVIN retrieves a vehicle by VIN.
func (s *Service) FindByVIN(ctx context.Context, vin string) (*Vehicle, error) {
	return s.repo.FindByVIN(ctx, vin)
}

// ListAvailable retrieves vehicles currently available for sale.
func (s *Service) ListAvailable(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Vehicle], error) {
	return s.repo.ListByStatus(ctx, StatusAvailable, filter)
}

// SetStatus changes the vehicle's inventory state and returns the updated
// vehicle. The caller decides whether the change warrants offering the
// vehicle to the waiting list.
func (s *Service) SetStatus(ctx context.Context, vehicleID id.ID, status Status) (*Vehicle, error) {
	if !status.Valid() {
		return nil, apperror.NewValidation("unknown status").
			WithDetail("field", "status").
			WithDetail("value", string(status))
	}

	var v *Vehicle
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		v, err = s.repo.GetByID(ctx, vehicleID)
		if err != nil {
			return err
		}
		if v.Status == status {
			return nil
		}
		v.Status = status
		return s.repo.Update(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}
