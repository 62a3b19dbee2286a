package userctx

import (
	"context"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// Create a new context with claims of the authenticated user
func New(ctx context.Context, c models.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// Extract claims of the authenticated user from the context
func FromContext(ctx context.Context) (models.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(models.Claims)
	return c, ok
}
