package unit

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/numerator"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain"
)

// Service provides business logic for the Unit catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Unit] // Embedded for delegation
	repo                          Repository
	numerator                     numerator.Generator
}

// NewService creates a new Unit service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	numGen numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Unit]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "unit",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numGen,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate generates a code when none is provided and keeps the
// symbol unique within the company.
func (s *Service) prepareForCreate(ctx context.Context, u *Unit) error {
	if u.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("UN"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		u.Code = code
	}

	return s.checkSymbolUnique(ctx, u)
}

func (s *Service) prepareForUpdate(ctx context.Context, u *Unit) error {
	return s.checkSymbolUnique(ctx, u)
}

func (s *Service) checkSymbolUnique(ctx context.Context, u *Unit) error {
	existing, err := s.repo.FindBySymbol(ctx, u.Symbol)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != u.ID {
		return apperror.NewConflict("unit with this symbol already exists").
			WithDetail("symbol", u.Symbol)
	}
	return nil
}

// FindBySymbol retrieves a unit by symbol.
func (s *Service) FindBySymbol(ctx context.Context, symbol string) (*Unit, error) {
	return s.repo.FindBySymbol(ctx, symbol)
}
