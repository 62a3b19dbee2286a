package post

import (
	"context"

	"github.com/google/uuid"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/service/ownership"
)

type PostService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *PostService {
	return &PostService{storage: storage}
}

func (s *PostService) CreatePost(ctx context.Context, ownerID uuid.UUID, title string, content string) (models.Post, error) {
	return s.storage.Post().CreatePost(ctx, ownerID, title, content)
}

// Returns apperrors.ErrPostNotFound
func (s *PostService) GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error) {
	return s.storage.Post().GetPost(ctx, postID)
}

func (s *PostService) ListPosts(ctx context.Context, opts repository.ListPostsOpts) ([]models.Post, error) {
	return s.storage.Post().ListPosts(ctx, opts)
}

// Update post owned by the caller
// Returns apperrors.ErrPostNotFound or apperrors.ErrForbidden
func (s *PostService) UpdatePost(ctx context.Context, actorID uuid.UUID, postID uuid.UUID, params repository.UpdatePostParams) (models.Post, error) {
	err := ownership.Check(ctx,
		func(ctx context.Context) error {
			_, err := s.storage.Post().GetPost(ctx, postID)
			return err
		},
		func(ctx context.Context) (bool, error) {
			return s.storage.Post().IsPostOwnedBy(ctx, postID, actorID)
		},
	)
	if err != nil {
		return models.Post{}, err
	}

	return s.storage.Post().UpdatePost(ctx, postID, params)
}
