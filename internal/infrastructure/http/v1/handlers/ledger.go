package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles posting operations and ledger queries.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		service:     service,
	}
}

// --- Posting operations ---

// StockIn handles POST /ledger/stock-in
func (h *LedgerHandler) StockIn(c *gin.Context) {
	var req ledger.StockInRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.PostStockIn(c.Request.Context(), &req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// StockOut handles POST /ledger/stock-out
func (h *LedgerHandler) StockOut(c *gin.Context) {
	var req ledger.StockOutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.PostStockOut(c.Request.Context(), &req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// Transfer handles POST /ledger/transfer
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req ledger.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.PostTransfer(c.Request.Context(), &req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// OpeningBalance handles POST /ledger/opening-balance
func (h *LedgerHandler) OpeningBalance(c *gin.Context) {
	var req ledger.OpeningBalanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.PostOpeningBalance(c.Request.Context(), &req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// Adjustment handles POST /ledger/adjustment
func (h *LedgerHandler) Adjustment(c *gin.Context) {
	var req ledger.AdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.PostAdjustment(c.Request.Context(), &req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// --- Document queries ---

// GetDocument handles GET /ledger/documents/:id
func (h *LedgerHandler) GetDocument(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetDocumentByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// ListDocuments handles GET /ledger/documents
func (h *LedgerHandler) ListDocuments(c *gin.Context) {
	filter := ledger.DocumentFilter{
		NumberSearch: c.Query("number"),
		Limit:        h.ParseIntQuery(c, "limit", 50),
		Offset:       h.ParseIntQuery(c, "offset", 0),
	}

	for _, t := range c.QueryArray("type") {
		docType := ledger.DocumentType(t)
		if !docType.IsValid() {
			h.Error(c, apperror.NewValidation("unknown document type").WithDetail("type", t))
			return
		}
		filter.Types = append(filter.Types, docType)
	}

	if ids := h.ParseIDQueryList(c, "warehouseId"); len(ids) > 0 {
		filter.WarehouseID = &ids[0]
	}
	if ids := h.ParseIDQueryList(c, "productId"); len(ids) > 0 {
		filter.ProductID = &ids[0]
	}

	var ok bool
	if filter.FromDate, ok = h.parseTimeQuery(c, "fromDate"); !ok {
		return
	}
	if filter.ToDate, ok = h.parseTimeQuery(c, "toDate"); !ok {
		return
	}

	result, err := h.service.ListDocuments(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// --- Stock queries ---

// GetStock handles GET /ledger/stock/:productId/:warehouseId
func (h *LedgerHandler) GetStock(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "productId")
	if !ok {
		return
	}
	warehouseID, ok := h.ParseIDParam(c, "warehouseId")
	if !ok {
		return
	}

	item, err := h.service.GetStock(c.Request.Context(), productID, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, item)
}

// ListStock handles GET /ledger/stock
func (h *LedgerHandler) ListStock(c *gin.Context) {
	filter := ledger.StockFilter{
		ProductIDs:   h.ParseIDQueryList(c, "productId"),
		WarehouseIDs: h.ParseIDQueryList(c, "warehouseId"),
		ExcludeZero:  c.Query("excludeZero") == "true",
		BelowMin:     c.Query("belowMin") == "true",
		Limit:        h.ParseIntQuery(c, "limit", 100),
		Offset:       h.ParseIntQuery(c, "offset", 0),
	}

	items, err := h.service.ListStock(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items, "count": len(items)})
}

// parseTimeQuery parses an optional RFC3339 query parameter.
func (h *LedgerHandler) parseTimeQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+key+" format, expected RFC3339"))
		return nil, false
	}
	return &parsed, true
}
