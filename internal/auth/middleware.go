package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/google/uuid"
	"github.com/wildhaven/parkops-backend/internal/rbac"
	"github.com/wildhaven/parkops-backend/internal/store"
)

type contextKey string

const (
	UserIDKey     contextKey = "user_id"
	UserClaimsKey contextKey = "user_claims"
)

// AuthenticatedUser is the caller's identity after token validation.
// The role is canonical, so handlers can feed it straight into the
// permission engine.
type AuthenticatedUser struct {
	ID    uuid.UUID
	Email string
	Role  rbac.Role
}

// Authenticator plugs into the OpenAPI request validator as its
// AuthenticationFunc.
type Authenticator struct {
	jwtService *JWTService
	queries    *store.Store
}

func NewAuthenticator(jwtService *JWTService, queries *store.Store) *Authenticator {
	return &Authenticator{
		jwtService: jwtService,
		queries:    queries,
	}
}

func (a *Authenticator) Authenticate(ctx context.Context, input *openapi3filter.AuthenticationInput) error {
	if input.SecuritySchemeName != "BearerAuth" {
		return fmt.Errorf("authentication service missing")
	}

	authHeader := input.RequestValidationInput.Request.Header.Get("Authorization")
	if authHeader == "" {
		return fmt.Errorf("authorization header missing")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return fmt.Errorf("invalid authorization header format")
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	claims, err := a.jwtService.ValidateToken(ctx, token)
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	user, err := a.queries.GetUser(ctx, claims.UserID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	authenticatedUser := &AuthenticatedUser{
		ID:    user.ID,
		Email: user.Email,
		Role:  rbac.Canonical(user.Role),
	}

	*input.RequestValidationInput.Request = *input.RequestValidationInput.Request.WithContext(
		context.WithValue(ctx, UserIDKey, claims.UserID),
	)
	*input.RequestValidationInput.Request = *input.RequestValidationInput.Request.WithContext(
		context.WithValue(input.RequestValidationInput.Request.Context(), UserClaimsKey, authenticatedUser),
	)

	return nil
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func GetAuthenticatedUser(ctx context.Context) (*AuthenticatedUser, bool) {
	user, ok := ctx.Value(UserClaimsKey).(*AuthenticatedUser)
	return user, ok
}
