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

type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"postId"`
	Sender    uuid.UUID `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newCommentResponse(c models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		Sender:    c.AuthorID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func handleCreateComment(cs commentService, l logger.Logger) http.Handler {
	type request struct {
		PostID  string `json:"postId" validate:"required,uuid"`
		Content string `json:"content" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorID, ok := currentUserID(w, r, l)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}
		postID, ok := parseID(w, data.PostID, "postId")
		if !ok {
			return
		}

		comment, err := cs.CreateComment(r.Context(), authorID, postID, data.Content)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, newCommentResponse(comment), http.StatusCreated)
	})
}

// Comments of one post only if 'post_id' query parameter is set
func handleListComments(cs commentService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID, ok := queryID(w, r, "post_id")
		if !ok {
			return
		}

		comments, err := cs.ListComments(r.Context(), repository.ListCommentsOpts{PostID: postID})
		if err != nil {
			renderError(w, l, err)
			return
		}

		res := make([]CommentResponse, 0, len(comments))
		for _, c := range comments {
			res = append(res, newCommentResponse(c))
		}
		render.JSON(w, res)
	})
}

func handleGetComment(cs commentService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		commentID, ok := pathID(w, r, "comment_id")
		if !ok {
			return
		}

		comment, err := cs.GetComment(r.Context(), commentID)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newCommentResponse(comment))
	})
}

func handleUpdateComment(cs commentService, l logger.Logger) http.Handler {
	type request struct {
		Content string `json:"content" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := currentUserID(w, r, l)
		if !ok {
			return
		}
		commentID, ok := pathID(w, r, "comment_id")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		comment, err := cs.UpdateComment(r.Context(), actorID, commentID, data.Content)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newCommentResponse(comment))
	})
}

func handleDeleteComment(cs commentService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := currentUserID(w, r, l)
		if !ok {
			return
		}
		commentID, ok := pathID(w, r, "comment_id")
		if !ok {
			return
		}

		err := cs.DeleteComment(r.Context(), actorID, commentID)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, MessageResponse{Message: "Comment deleted successfully"})
	})
}
