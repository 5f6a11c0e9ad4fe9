package handlers

import (
	"context"

	"stockledger/internal/core/appctx"
	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// ProductHTTPHandler is the catalog handler specialized for products.
type ProductHTTPHandler = CatalogHandler[
	*product.Product,
	dto.CreateProductRequest,
	dto.UpdateProductRequest,
]

// NewProductHandler wires the generic catalog handler to the product service.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHTTPHandler {
	config := CatalogHandlerConfig[
		*product.Product,
		dto.CreateProductRequest,
		dto.UpdateProductRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "product",

		MapCreateDTO: func(ctx context.Context, req dto.CreateProductRequest) *product.Product {
			return req.ToEntity(appctx.GetCompanyID(ctx))
		},

		MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) *product.Product {
			req.ApplyTo(existing)
			return existing
		},
	}

	return NewCatalogHandler(base, config)
}
