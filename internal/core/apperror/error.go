// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation      = "VALIDATION_ERROR"
	CodeEmptyRequest    = "EMPTY_REQUEST"
	CodeInvalidQuantity = "INVALID_QUANTITY"
	CodeInvalidCost     = "INVALID_COST"

	// Business rule violations (422)
	CodeBusinessRule               = "BUSINESS_RULE_VIOLATION"
	CodeProductInactive            = "PRODUCT_INACTIVE"
	CodeWarehouseInactive          = "WAREHOUSE_INACTIVE"
	CodeWarehouseScopeMismatch     = "WAREHOUSE_SCOPE_MISMATCH"
	CodeInsufficientStock          = "INSUFFICIENT_STOCK"
	CodeSameWarehouseTransfer      = "SAME_WAREHOUSE_TRANSFER"
	CodeAdjustNonexistentStock     = "CANNOT_ADJUST_NONEXISTENT_STOCK"
	CodeConcurrentModification     = "CONCURRENT_MODIFICATION"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound          = "NOT_FOUND"
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeWarehouseNotFound = "WAREHOUSE_NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewEmptyRequest is returned when a posting request carries no lines.
func NewEmptyRequest() *AppError {
	return &AppError{
		Code:       CodeEmptyRequest,
		Message:    "request contains no lines",
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidQuantity is returned for a non-positive quantity where a positive
// one is required. Request validation adds the line number via WithDetail.
func NewInvalidQuantity(qty decimal.Decimal) *AppError {
	return &AppError{
		Code:       CodeInvalidQuantity,
		Message:    "quantity must be positive",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"quantity": qty.String()},
	}
}

// NewInvalidCost is returned for a negative unit cost.
func NewInvalidCost(cost decimal.Decimal) *AppError {
	return &AppError{
		Code:       CodeInvalidCost,
		Message:    "unit cost cannot be negative",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"unit_cost": cost.String()},
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewProductNotFound is returned when a posting line references an unknown product.
func NewProductNotFound(productID string) *AppError {
	return &AppError{
		Code:       CodeProductNotFound,
		Message:    "Product not found",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"product_id": productID},
	}
}

// NewWarehouseNotFound is returned when a posting line references an unknown warehouse.
func NewWarehouseNotFound(warehouseID string) *AppError {
	return &AppError{
		Code:       CodeWarehouseNotFound,
		Message:    "Warehouse not found",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"warehouse_id": warehouseID},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewProductInactive is returned when a referenced product is marked inactive.
func NewProductInactive(productID string) *AppError {
	return NewBusinessRule(CodeProductInactive, "Product is inactive").
		WithDetail("product_id", productID)
}

// NewWarehouseInactive is returned when a referenced warehouse is marked inactive.
func NewWarehouseInactive(warehouseID string) *AppError {
	return NewBusinessRule(CodeWarehouseInactive, "Warehouse is inactive").
		WithDetail("warehouse_id", warehouseID)
}

// NewWarehouseScopeMismatch is returned when a warehouse belongs to a different
// company or branch than the request.
func NewWarehouseScopeMismatch(warehouseID string) *AppError {
	return NewBusinessRule(CodeWarehouseScopeMismatch, "Warehouse is outside the request scope").
		WithDetail("warehouse_id", warehouseID)
}

// NewInsufficientStock creates a stock shortage error carrying the requested
// and available quantities for a precise client message.
func NewInsufficientStock(productID, warehouseID string, requested, available decimal.Decimal) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "Insufficient stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"product_id":   productID,
			"warehouse_id": warehouseID,
			"requested":    requested.String(),
			"available":    available.String(),
		},
	}
}

// NewSameWarehouseTransfer rejects a transfer whose source equals its destination.
func NewSameWarehouseTransfer(warehouseID string) *AppError {
	return NewBusinessRule(CodeSameWarehouseTransfer, "Transfer source and destination warehouses must differ").
		WithDetail("warehouse_id", warehouseID)
}

// NewAdjustNonexistentStock rejects a negative adjustment against a pair that
// was never stocked.
func NewAdjustNonexistentStock(productID, warehouseID string) *AppError {
	return NewBusinessRule(CodeAdjustNonexistentStock, "Cannot write off stock that was never recorded").
		WithDetail("product_id", productID).
		WithDetail("warehouse_id", warehouseID)
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsCode checks if error carries the given code.
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsInsufficientStock checks if error is CodeInsufficientStock
func IsInsufficientStock(err error) bool {
	return IsCode(err, CodeInsufficientStock)
}

// IsConcurrentModification checks if error is CodeConcurrentModification
func IsConcurrentModification(err error) bool {
	return IsCode(err, CodeConcurrentModification)
}
