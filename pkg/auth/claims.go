package auth

import (
	"context"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Roles recognized by the credit risk service.
const (
	RoleAnalyst    = "risk_analyst"
	RoleModelAdmin = "model_admin"
	RoleAuditor    = "auditor"
	RoleAPIClient  = "api_client"
)

// Claims are the JWT claims carried by callers of the scoring API.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// HasAnyRole reports whether the claims include at least one of roles.
func (c *Claims) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(c.Roles, r) {
			return true
		}
	}
	return false
}

type claimsKey struct{}

// ContextWithClaims attaches claims to ctx.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims attached by the auth middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok
}

// Subject returns the caller's subject, or "anonymous" when ctx carries no claims.
func Subject(ctx context.Context) string {
	if c, ok := ClaimsFromContext(ctx); ok && c.Subject != "" {
		return c.Subject
	}
	return "anonymous"
}
