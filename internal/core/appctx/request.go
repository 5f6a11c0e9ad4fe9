// Package appctx provides request-scoped values extraction.
package appctx

import (
	"context"

	"stockledger/internal/core/id"
)

// RequestScope carries the authenticated caller and the tenant boundary
// every operation runs under. CompanyID is mandatory for all ledger
// operations; BranchID narrows warehouse visibility when set.
type RequestScope struct {
	UserID    string
	CompanyID id.ID
	BranchID  id.ID
	Email     string
	Roles     []string
	IsAdmin   bool
	SessionID string
}

type scopeKey struct{}

// WithScope adds RequestScope to context.
func WithScope(ctx context.Context, scope *RequestScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns RequestScope from context.
func GetScope(ctx context.Context) *RequestScope {
	if v, ok := ctx.Value(scopeKey{}).(*RequestScope); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if s := GetScope(ctx); s != nil {
		return s.UserID
	}
	return ""
}

// GetCompanyID returns company ID from context or the zero ID.
func GetCompanyID(ctx context.Context) id.ID {
	if s := GetScope(ctx); s != nil {
		return s.CompanyID
	}
	return id.Nil()
}

// GetBranchID returns branch ID from context or the zero ID.
func GetBranchID(ctx context.Context) id.ID {
	if s := GetScope(ctx); s != nil {
		return s.BranchID
	}
	return id.Nil()
}

// HasRole checks if the caller has a specific role.
func HasRole(ctx context.Context, role string) bool {
	s := GetScope(ctx)
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}
