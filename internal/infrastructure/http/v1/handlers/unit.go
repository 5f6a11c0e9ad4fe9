package handlers

import (
	"context"

	"stockledger/internal/core/appctx"
	"stockledger/internal/domain/catalogs/unit"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// UnitHTTPHandler is the catalog handler specialized for measurement units.
type UnitHTTPHandler = CatalogHandler[
	*unit.Unit,
	dto.CreateUnitRequest,
	dto.UpdateUnitRequest,
]

// NewUnitHandler wires the generic catalog handler to the unit service.
func NewUnitHandler(base *BaseHandler, service *unit.Service) *UnitHTTPHandler {
	config := CatalogHandlerConfig[
		*unit.Unit,
		dto.CreateUnitRequest,
		dto.UpdateUnitRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "unit",

		MapCreateDTO: func(ctx context.Context, req dto.CreateUnitRequest) *unit.Unit {
			return req.ToEntity(appctx.GetCompanyID(ctx))
		},

		MapUpdateDTO: func(req dto.UpdateUnitRequest, existing *unit.Unit) *unit.Unit {
			req.ApplyTo(existing)
			return existing
		},
	}

	return NewCatalogHandler(base, config)
}
