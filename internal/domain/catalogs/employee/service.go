package employee

import (
	"context"
	"fmt"
	"time"

	"showroom/internal/core/numerator"
	"showroom/internal/core/tx"
	"showroom/internal/domain"
)

// Service provides business logic for the Employee catalog.
type Service struct {
	*domain.CatalogService[*Employee]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Employee service.
func NewService(repo Repository, gen numerator.Generator, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Employee]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "employee",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      gen,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, e *Employee) error {
	if e.Code == "" {
		cfg := numerator.DefaultConfig("EMP")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		e.Code = code
	}
	return nil
}

// ListSalesPersons retrieves employees who can hold allotments.
func (s *Service) ListSalesPersons(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Employee], error) {
	return s.repo.ListByRole(ctx, RoleSalesPerson, filter)
}
