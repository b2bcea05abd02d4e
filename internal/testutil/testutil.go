package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wildhaven/parkops-backend/internal/auth"
)

// ContextWithUser injects the authenticated caller the way the OpenAPI
// authentication middleware would, so handlers can be tested without a
// real token.
func ContextWithUser(ctx context.Context, user *TestUser) context.Context {
	ctx = context.WithValue(ctx, auth.UserIDKey, user.ID)
	ctx = context.WithValue(ctx, auth.UserClaimsKey, &auth.AuthenticatedUser{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	})
	return ctx
}

// TimeNow returns a consistent time for testing
func TimeNow() time.Time {
	return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
}

// NewUUID returns a deterministic UUID for testing
func NewUUID() uuid.UUID {
	return uuid.MustParse("12345678-1234-5678-9012-123456789012")
}
