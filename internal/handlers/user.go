package handlers

import (
	"net/http"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/handlers/render"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/logger"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository"
)

func handleListUsers(us userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		users, err := us.ListUsers(r.Context())
		if err != nil {
			renderError(w, l, err)
			return
		}

		res := make([]UserResponse, 0, len(users))
		for _, u := range users {
			res = append(res, newUserResponse(u))
		}
		render.JSON(w, res)
	})
}

func handleGetUser(us userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r, "user_id")
		if !ok {
			return
		}

		user, err := us.GetUser(r.Context(), userID)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newUserResponse(user))
	})
}

func handleUpdateUser(us userService, l logger.Logger) http.Handler {
	type request struct {
		Username *string `json:"username" validate:"omitempty,min=2,max=50"`
		Email    *string `json:"email" validate:"omitempty,email"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := currentUserID(w, r, l)
		if !ok {
			return
		}
		userID, ok := pathID(w, r, "user_id")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := us.UpdateUser(r.Context(), actorID, userID, repository.UpdateUserParams{
			Username: data.Username,
			Email:    data.Email,
		})
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newUserResponse(user))
	})
}

// Deleting the account also closes every session of it
func handleDeleteUser(us userService, as authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := currentUserID(w, r, l)
		if !ok {
			return
		}
		userID, ok := pathID(w, r, "user_id")
		if !ok {
			return
		}

		err := us.DeleteUser(r.Context(), actorID, userID)
		if err != nil {
			renderError(w, l, err)
			return
		}

		err = as.Logout(r.Context(), userID, "")
		if err != nil {
			l.Error("User deleted but sessions are not revoked", "user_id", userID, "error", err)
			render.InternalError(w)
			return
		}

		render.JSON(w, MessageResponse{Message: "User deleted successfully"})
	})
}
