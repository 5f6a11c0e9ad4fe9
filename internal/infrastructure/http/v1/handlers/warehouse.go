package handlers

import (
	"context"

	"stockledger/internal/core/appctx"
	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// WarehouseHTTPHandler is the catalog handler specialized for warehouses.
type WarehouseHTTPHandler = CatalogHandler[
	*warehouse.Warehouse,
	dto.CreateWarehouseRequest,
	dto.UpdateWarehouseRequest,
]

// NewWarehouseHandler wires the generic catalog handler to the warehouse service.
func NewWarehouseHandler(base *BaseHandler, service *warehouse.Service) *WarehouseHTTPHandler {
	config := CatalogHandlerConfig[
		*warehouse.Warehouse,
		dto.CreateWarehouseRequest,
		dto.UpdateWarehouseRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "warehouse",

		MapCreateDTO: func(ctx context.Context, req dto.CreateWarehouseRequest) *warehouse.Warehouse {
			return req.ToEntity(appctx.GetCompanyID(ctx))
		},

		MapUpdateDTO: func(req dto.UpdateWarehouseRequest, existing *warehouse.Warehouse) *warehouse.Warehouse {
			req.ApplyTo(existing)
			return existing
		},
	}

	return NewCatalogHandler(base, config)
}
