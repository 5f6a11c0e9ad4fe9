package unit

import (
	"context"

	"stockledger/internal/domain"
)

// Repository defines the interface for Unit persistence.
type Repository interface {
	domain.CatalogRepository[*Unit]

	// FindBySymbol retrieves a unit by symbol (unique within company).
	FindBySymbol(ctx context.Context, symbol string) (*Unit, error)
}
