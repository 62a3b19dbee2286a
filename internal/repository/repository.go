package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
)

// Storage groups all repositories bound to one connection or one transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Blacklist() BlacklistRepo
	Post() PostRepo
	Comment() CommentRepo

	// Run fn in a transaction. Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}

type UpdateUserParams struct {
	Username *string
	Email    *string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If username or email is taken already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, email string, hashedPassword string) (models.User, error)

	// Get user by id, email or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)

	ListUsers(ctx context.Context) ([]models.User, error)

	// Update non nil fields only
	// Returns apperrors.ErrUserNotFound or apperrors.ErrUserAlreadyExists
	UpdateUser(ctx context.Context, userID uuid.UUID, params UpdateUserParams) (models.User, error)

	// Returns apperrors.ErrUserNotFound if nothing deleted
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// Refresh token repository interface
// Tokens with expires_at in the past are treated as absent
type RefreshTokenRepo interface {
	Save(ctx context.Context, token models.RefreshToken) error

	// Return not expired token
	// If the token is absent or expired, must return apperrors.ErrRefreshTokenNotFound
	Get(ctx context.Context, token string) (models.RefreshToken, error)

	// Atomically pair refresh token with new access token and return the access token it was paired with before
	// If the token is absent or expired, must return apperrors.ErrRefreshTokenNotFound
	ReplaceAccess(ctx context.Context, token string, access string) (previous string, err error)

	// Delete token and return it as it was stored
	// If the token is absent, must return apperrors.ErrRefreshTokenNotFound
	Delete(ctx context.Context, token string) (models.RefreshToken, error)

	// All not expired tokens issued to the user
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RefreshToken, error)

	// Delete tokens expired before 'now' and return how many were deleted
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Revoked access tokens
type BlacklistRepo interface {
	// Add token to the blacklist. Adding the same token twice is not an error
	Add(ctx context.Context, token models.BlacklistedToken) error

	Contains(ctx context.Context, token string) (bool, error)

	// Delete entries expired before 'now' and return how many were deleted
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type ListPostsOpts struct {
	OwnerID *uuid.UUID
}

type UpdatePostParams struct {
	Title   *string
	Content *string
}

type PostRepo interface {
	CreatePost(ctx context.Context, ownerID uuid.UUID, title string, content string) (models.Post, error)

	// Returns apperrors.ErrPostNotFound if post not exists
	GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error)

	// Newest first
	ListPosts(ctx context.Context, opts ListPostsOpts) ([]models.Post, error)

	// Update non nil fields only
	// Returns apperrors.ErrPostNotFound if post not exists
	UpdatePost(ctx context.Context, postID uuid.UUID, params UpdatePostParams) (models.Post, error)

	IsPostOwnedBy(ctx context.Context, postID uuid.UUID, userID uuid.UUID) (bool, error)
}

type ListCommentsOpts struct {
	PostID *uuid.UUID
}

type CommentRepo interface {
	// Returns apperrors.ErrPostNotFound if post not exists
	CreateComment(ctx context.Context, postID uuid.UUID, authorID uuid.UUID, content string) (models.Comment, error)

	// Returns apperrors.ErrCommentNotFound if comment not exists
	GetComment(ctx context.Context, commentID uuid.UUID) (models.Comment, error)

	// Oldest first
	ListComments(ctx context.Context, opts ListCommentsOpts) ([]models.Comment, error)

	// Returns apperrors.ErrCommentNotFound if comment not exists
	UpdateComment(ctx context.Context, commentID uuid.UUID, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, commentID uuid.UUID) error

	IsCommentOwnedBy(ctx context.Context, commentID uuid.UUID, userID uuid.UUID) (bool, error)
}
