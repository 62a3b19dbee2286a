package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/apperrors"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/handlers/render"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/logger"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
)

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

func handleRegister(as authService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required,min=2,max=50"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := as.Register(r.Context(), data.Username, data.Email, data.Password)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, newUserResponse(user), http.StatusCreated)
	})
}

func handleLogin(as authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		AccessToken  string    `json:"accessToken"`
		RefreshToken string    `json:"refreshToken"`
		UserID       uuid.UUID `json:"userId"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		session, err := as.Login(r.Context(), data.Email, data.Password)
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		case err != nil:
			renderError(w, l, err)
			return
		}

		render.JSON(w, response{
			AccessToken:  session.Access.Value,
			RefreshToken: session.Refresh.Value,
			UserID:       session.UserID,
		})
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func handleRefresh(as authService, l logger.Logger) http.Handler {
	type response struct {
		AccessToken string `json:"accessToken"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := bindRefreshRequest(w, r)
		if !ok {
			return
		}
		if data.RefreshToken == "" {
			render.ServiceError(w, "Refresh token required", http.StatusUnauthorized)
			return
		}

		access, err := as.Refresh(r.Context(), data.RefreshToken)
		switch {
		case errors.Is(err, apperrors.ErrInvalidRefreshToken):
			render.ServiceError(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		case err != nil:
			renderError(w, l, err)
			return
		}

		render.JSON(w, response{AccessToken: access.Value})
	})
}

// Without refresh token every session of the user is closed
func handleLogout(as authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUserID(w, r, l)
		if !ok {
			return
		}

		data, ok := bindRefreshRequest(w, r)
		if !ok {
			return
		}

		err := as.Logout(r.Context(), userID, data.RefreshToken)
		switch {
		case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
			render.ServiceError(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		case err != nil:
			renderError(w, l, err)
			return
		}

		render.JSON(w, MessageResponse{Message: "User logged out successfully"})
	})
}

// Empty body is the same as body without token
func bindRefreshRequest(w http.ResponseWriter, r *http.Request) (refreshRequest, bool) {
	var data refreshRequest

	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil && !errors.Is(err, io.EOF) {
		render.DecodeError(w, err)
		return data, false
	}

	return data, true
}
