package product

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/numerator"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain"
)

// Service provides business logic for Product catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Product] // Embedded for delegation
	repo                             Repository
	numerator                        numerator.Generator
}

// NewService creates a new Product service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	numGen numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numGen,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

// prepareForCreate generates a code when none is provided.
func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if p.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PRD"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	return nil
}
