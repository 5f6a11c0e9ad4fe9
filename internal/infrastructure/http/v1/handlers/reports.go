package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/reports"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetStockBalance handles GET /reports/stock-balance
func (h *ReportsHandler) GetStockBalance(c *gin.Context) {
	filter := reports.StockBalanceFilter{
		WarehouseIDs: h.ParseIDQueryList(c, "warehouseId"),
		ProductIDs:   h.ParseIDQueryList(c, "productId"),
		ExcludeZero:  c.DefaultQuery("excludeZero", "true") == "true",
		Limit:        h.ParseIntQuery(c, "limit", 0),
		Offset:       h.ParseIntQuery(c, "offset", 0),
	}

	if raw := c.Query("asOfDate"); raw != "" {
		asOf, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid asOfDate format, expected RFC3339"))
			return
		}
		filter.AsOfDate = &asOf
	}

	report, err := h.service.GetStockBalance(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// GetStockTurnover handles GET /reports/stock-turnover
func (h *ReportsHandler) GetStockTurnover(c *gin.Context) {
	fromDate, err := time.Parse(time.RFC3339, c.Query("fromDate"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid fromDate format, expected RFC3339"))
		return
	}
	toDate, err := time.Parse(time.RFC3339, c.Query("toDate"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid toDate format, expected RFC3339"))
		return
	}

	filter := reports.StockTurnoverFilter{
		FromDate:     fromDate,
		ToDate:       toDate,
		WarehouseIDs: h.ParseIDQueryList(c, "warehouseId"),
		ProductIDs:   h.ParseIDQueryList(c, "productId"),
		Limit:        h.ParseIntQuery(c, "limit", 0),
		Offset:       h.ParseIntQuery(c, "offset", 0),
	}

	report, err := h.service.GetStockTurnover(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// GetDocumentJournal handles GET /reports/document-journal
func (h *ReportsHandler) GetDocumentJournal(c *gin.Context) {
	filter := reports.DocumentJournalFilter{
		DocumentTypes:  c.QueryArray("type"),
		NumberContains: c.Query("number"),
		WarehouseIDs:   h.ParseIDQueryList(c, "warehouseId"),
		SortBy:         c.Query("sortBy"),
		SortOrder:      c.Query("sortOrder"),
		Limit:          h.ParseIntQuery(c, "limit", 0),
		Offset:         h.ParseIntQuery(c, "offset", 0),
	}

	if raw := c.Query("fromDate"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid fromDate format, expected RFC3339"))
			return
		}
		filter.FromDate = &parsed
	}
	if raw := c.Query("toDate"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid toDate format, expected RFC3339"))
			return
		}
		filter.ToDate = &parsed
	}

	journal, err := h.service.GetDocumentJournal(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, journal)
}
