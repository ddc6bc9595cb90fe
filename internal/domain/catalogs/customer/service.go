package customer

import (
	"context"
	"fmt"
	"time"

	"showroom/internal/core/apperror"
	"showroom/internal/core/numerator"
	"showroom/internal/core/tx"
	"showroom/internal/domain"
)

// Service provides business logic for the Customer catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Customer]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Customer service.
func NewService(repo Repository, gen numerator.Generator, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "customer",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      gen,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, c *Customer) error {
	if c.Code == "" {
		cfg := numerator.DefaultConfig("CUST")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.Code = code
	}

	return s.checkEmailUnique(ctx, c)
}

func (s *Service) prepareForUpdate(ctx context.Context, c *Customer) error {
	return s.checkEmailUnique(ctx, c)
}

func (s *Service) checkEmailUnique(ctx context.Context, c *Customer) error {
	if c.Email == nil || *c.Email == "" {
		return nil
	}
	existing, err := s.repo.FindByEmail(ctx, *c.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != c.ID {
		return apperror.NewDuplicate("customer", "email", *c.Email)
	}
	return nil
}

// FindByEmail retrieves a customer by email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Customer, error) {
	return s.repo.FindByEmail(ctx, email)
}
