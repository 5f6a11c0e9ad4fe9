package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/infrastructure/storage/postgres"
)

const warehouseTable = "cat_warehouses"

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct {
	*BaseCatalogRepo[*warehouse.Warehouse]
}

// NewWarehouseRepo creates a new warehouse repository.
func NewWarehouseRepo(txManager *postgres.TxManager) *WarehouseRepo {
	return &WarehouseRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*warehouse.Warehouse](
			txManager,
			warehouseTable,
			postgres.ExtractDBColumns[warehouse.Warehouse](),
			func() *warehouse.Warehouse { return &warehouse.Warehouse{} },
		),
	}
}

// ClearDefault clears the default flag on the current company's warehouses.
func (r *WarehouseRepo) ClearDefault(ctx context.Context) error {
	q := r.Builder().
		Update(warehouseTable).
		Set("is_default", false).
		Where(squirrel.Eq{"is_default": true}).
		Where(companyScope(ctx))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	querier := r.TxManager().GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("clear default: %w", err)
	}

	return nil
}

// Compile-time interface check.
var _ warehouse.Repository = (*WarehouseRepo)(nil)
