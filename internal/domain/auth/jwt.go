// Package auth provides token issuing and verification.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"stockledger/internal/core/appctx"
	"stockledger/internal/core/id"
	"stockledger/pkg/config"
)

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string   `json:"uid"`
	CompanyID string   `json:"cid"`
	BranchID  string   `json:"bid,omitempty"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	IsAdmin   bool     `json:"adm,omitempty"`
}

// JWTService issues and validates access tokens.
type JWTService struct {
	cfg config.JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	if cfg.Expiration <= 0 {
		cfg.Expiration = time.Hour
	}
	return &JWTService{cfg: cfg}
}

// GenerateAccessToken signs a token for the given scope.
func (s *JWTService) GenerateAccessToken(scope *appctx.RequestScope) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.Expiration)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   scope.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    scope.UserID,
		CompanyID: scope.CompanyID.String(),
		Email:     scope.Email,
		Roles:     scope.Roles,
		IsAdmin:   scope.IsAdmin,
	}
	if !id.IsNil(scope.BranchID) {
		claims.BranchID = scope.BranchID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a token and returns the request scope it carries.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.RequestScope, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	companyID, err := id.Parse(claims.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company claim: %w", err)
	}

	scope := &appctx.RequestScope{
		UserID:    claims.UserID,
		CompanyID: companyID,
		Email:     claims.Email,
		Roles:     claims.Roles,
		IsAdmin:   claims.IsAdmin,
	}

	if claims.BranchID != "" {
		branchID, err := id.Parse(claims.BranchID)
		if err != nil {
			return nil, fmt.Errorf("invalid branch claim: %w", err)
		}
		scope.BranchID = branchID
	}

	return scope, nil
}
