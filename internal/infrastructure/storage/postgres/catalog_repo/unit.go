package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/catalogs/unit"
	"stockledger/internal/infrastructure/storage/postgres"
)

const unitTable = "cat_units"

var unitCols = postgres.ExtractDBColumns[unit.Unit]()

// UnitRepo implements unit.Repository.
type UnitRepo struct {
	*BaseCatalogRepo[*unit.Unit]
}

// NewUnitRepo creates a new unit repository.
func NewUnitRepo(txManager *postgres.TxManager) *UnitRepo {
	return &UnitRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*unit.Unit](
			txManager,
			unitTable,
			unitCols,
			func() *unit.Unit { return &unit.Unit{} },
		),
	}
}

// Compile-time interface check.
var _ unit.Repository = (*UnitRepo)(nil)

// FindBySymbol retrieves a unit by symbol within the current company.
func (r *UnitRepo) FindBySymbol(ctx context.Context, symbol string) (*unit.Unit, error) {
	q := r.Builder().
		Select(unitCols...).
		From(unitTable).
		Where(companyScope(ctx)).
		Where(squirrel.Eq{"symbol": symbol}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u unit.Unit
	querier := r.TxManager().GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("unit", symbol)
		}
		return nil, fmt.Errorf("find by symbol: %w", err)
	}

	return &u, nil
}
