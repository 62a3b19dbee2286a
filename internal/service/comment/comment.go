package comment

import (
	"context"

	"github.com/google/uuid"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/service/ownership"
)

type CommentService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *CommentService {
	return &CommentService{storage: storage}
}

// Returns apperrors.ErrPostNotFound if there is no such post
func (s *CommentService) CreateComment(ctx context.Context, authorID uuid.UUID, postID uuid.UUID, content string) (models.Comment, error) {
	// Foreign key still guards the post deleted between check and insert
	if _, err := s.storage.Post().GetPost(ctx, postID); err != nil {
		return models.Comment{}, err
	}
	return s.storage.Comment().CreateComment(ctx, postID, authorID, content)
}

// Returns apperrors.ErrCommentNotFound
func (s *CommentService) GetComment(ctx context.Context, commentID uuid.UUID) (models.Comment, error) {
	return s.storage.Comment().GetComment(ctx, commentID)
}

// Listing comments of a missing post returns apperrors.ErrPostNotFound rather than an empty list
func (s *CommentService) ListComments(ctx context.Context, opts repository.ListCommentsOpts) ([]models.Comment, error) {
	if opts.PostID != nil {
		if _, err := s.storage.Post().GetPost(ctx, *opts.PostID); err != nil {
			return nil, err
		}
	}
	return s.storage.Comment().ListComments(ctx, opts)
}

// Returns apperrors.ErrCommentNotFound or apperrors.ErrForbidden
func (s *CommentService) UpdateComment(ctx context.Context, actorID uuid.UUID, commentID uuid.UUID, content string) (models.Comment, error) {
	if err := s.checkOwner(ctx, actorID, commentID); err != nil {
		return models.Comment{}, err
	}
	return s.storage.Comment().UpdateComment(ctx, commentID, content)
}

// Returns apperrors.ErrCommentNotFound or apperrors.ErrForbidden
func (s *CommentService) DeleteComment(ctx context.Context, actorID uuid.UUID, commentID uuid.UUID) error {
	if err := s.checkOwner(ctx, actorID, commentID); err != nil {
		return err
	}
	return s.storage.Comment().DeleteComment(ctx, commentID)
}

func (s *CommentService) checkOwner(ctx context.Context, actorID uuid.UUID, commentID uuid.UUID) error {
	return ownership.Check(ctx,
		func(ctx context.Context) error {
			_, err := s.storage.Comment().GetComment(ctx, commentID)
			return err
		},
		func(ctx context.Context) (bool, error) {
			return s.storage.Comment().IsCommentOwnedBy(ctx, commentID, actorID)
		},
	)
}
