package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/handlers/render"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/logger"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository"
)

type PostResponse struct {
	ID        uuid.UUID `json:"id"`
	Sender    uuid.UUID `json:"sender"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newPostResponse(p models.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		Sender:    p.OwnerID,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func handleCreatePost(ps postService, l logger.Logger) http.Handler {
	type request struct {
		Title   string `json:"title" validate:"required,max=200"`
		Content string `json:"content" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := currentUserID(w, r, l)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		post, err := ps.CreatePost(r.Context(), ownerID, data.Title, data.Content)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, newPostResponse(post), http.StatusCreated)
	})
}

// Posts of one user only if 'sender' query parameter is set
func handleListPosts(ps postService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := queryID(w, r, "sender")
		if !ok {
			return
		}

		posts, err := ps.ListPosts(r.Context(), repository.ListPostsOpts{OwnerID: ownerID})
		if err != nil {
			renderError(w, l, err)
			return
		}

		res := make([]PostResponse, 0, len(posts))
		for _, p := range posts {
			res = append(res, newPostResponse(p))
		}
		render.JSON(w, res)
	})
}

func handleGetPost(ps postService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID, ok := pathID(w, r, "post_id")
		if !ok {
			return
		}

		post, err := ps.GetPost(r.Context(), postID)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newPostResponse(post))
	})
}

// PUT replaces both fields, PATCH (partial) updates only the fields sent
func handleUpdatePost(ps postService, l logger.Logger, partial bool) http.Handler {
	type replaceRequest struct {
		Title   *string `json:"title" validate:"required,min=1,max=200"`
		Content *string `json:"content" validate:"required,min=1"`
	}
	type patchRequest struct {
		Title   *string `json:"title" validate:"omitempty,min=1,max=200"`
		Content *string `json:"content" validate:"omitempty,min=1"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := currentUserID(w, r, l)
		if !ok {
			return
		}
		postID, ok := pathID(w, r, "post_id")
		if !ok {
			return
		}

		var params repository.UpdatePostParams
		if partial {
			data, err := render.BindAndValidate[patchRequest](w, r)
			if err != nil {
				return
			}
			params = repository.UpdatePostParams{Title: data.Title, Content: data.Content}
		} else {
			data, err := render.BindAndValidate[replaceRequest](w, r)
			if err != nil {
				return
			}
			params = repository.UpdatePostParams{Title: data.Title, Content: data.Content}
		}

		post, err := ps.UpdatePost(r.Context(), actorID, postID, params)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newPostResponse(post))
	})
}
