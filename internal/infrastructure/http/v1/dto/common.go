// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
}

// IDResponse returns the ID of a created resource.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SetDeletionMarkRequest toggles the soft-delete flag.
type SetDeletionMarkRequest struct {
	Marked bool `json:"marked"`
}
