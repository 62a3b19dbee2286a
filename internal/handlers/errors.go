package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/apperrors"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/handlers/render"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/handlers/userctx"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/logger"
)

// Translate service error to response
// Unknown errors are logged and never shown to the client
func renderError(w http.ResponseWriter, l logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		render.ServiceError(w, "User already exists", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrUserNotFound):
		render.ServiceError(w, "User not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrPostNotFound):
		render.ServiceError(w, "Post not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrCommentNotFound):
		render.ServiceError(w, "Comment not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrForbidden):
		render.ServiceError(w, "Forbidden", http.StatusForbidden)
	default:
		l.Error("Request failed", "error", err)
		render.InternalError(w)
	}
}

// Read uuid from path parameter. Writes 400 if it is malformed
func pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	return parseID(w, chi.URLParam(r, param), param)
}

// Read optional uuid from query parameter. Writes 400 if it is malformed
func queryID(w http.ResponseWriter, r *http.Request, param string) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return nil, true
	}

	id, ok := parseID(w, raw, param)
	if !ok {
		return nil, false
	}
	return &id, true
}

func parseID(w http.ResponseWriter, raw string, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		render.ServiceError(w, fmt.Sprintf("Invalid %s", param), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// Id of the authenticated user. Auth middleware always sets it for protected routes
func currentUserID(w http.ResponseWriter, r *http.Request, l logger.Logger) (uuid.UUID, bool) {
	claims, ok := userctx.FromContext(r.Context())
	if !ok {
		l.Error("Claims not found in request context", "uri", r.RequestURI)
		render.InternalError(w)
		return uuid.Nil, false
	}
	return claims.UserID, true
}
