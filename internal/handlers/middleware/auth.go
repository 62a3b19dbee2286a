package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/apperrors"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/handlers/render"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/handlers/userctx"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
)

const bearerScheme = "Bearer"

type authService interface {
	Authenticate(ctx context.Context, access string) (models.Claims, error)
}

type errorLogger interface {
	Error(msg string, args ...any)
}

// Require valid access token in 'Authorization: Bearer <token>' header
// Claims of the authenticated user are available to next handler with userctx.FromContext
func AuthMiddleware(as authService, l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Access token required", http.StatusUnauthorized)
				return
			}

			claims, err := as.Authenticate(r.Context(), token)
			switch {
			case err == nil:
			case errors.Is(err, apperrors.ErrTokenBlacklisted):
				render.ServiceError(w, "Token is blacklisted", http.StatusForbidden)
				return
			case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenExpired):
				render.ServiceError(w, "Invalid token", http.StatusForbidden)
				return
			default:
				l.Error("Failed to authenticate request", "error", err)
				render.InternalError(w)
				return
			}

			ctx := userctx.New(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
