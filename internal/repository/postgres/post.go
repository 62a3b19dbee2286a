package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/apperrors"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository"
)

type PostRepo struct {
	DB DBTX
}

const postColumns = `id, owner_id, title, content, created_at, updated_at`

const createPost = `-- name: CreatePost
INSERT INTO posts (id, owner_id, title, content)
VALUES ($1, $2, $3, $4)
RETURNING ` + postColumns

func (r *PostRepo) CreatePost(ctx context.Context, ownerID uuid.UUID, title string, content string) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, createPost, uuid.New(), ownerID, title, content)
	post, err := pgx.CollectOneRow(rows, rowToPost)
	if err != nil {
		return post, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

const getPost = `-- name: GetPost
SELECT ` + postColumns + ` FROM posts
WHERE id = $1
`

func (r *PostRepo) GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, getPost, postID)
	post, err := pgx.CollectOneRow(rows, rowToPost)
	return post, postErr(err)
}

const listPosts = `-- name: ListPosts
SELECT ` + postColumns + ` FROM posts
WHERE ($1::uuid IS NULL OR owner_id = $1)
ORDER BY created_at DESC, id
`

func (r *PostRepo) ListPosts(ctx context.Context, opts repository.ListPostsOpts) ([]models.Post, error) {
	rows, _ := r.DB.Query(ctx, listPosts, opts.OwnerID)
	posts, err := pgx.CollectRows(rows, rowToPost)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return posts, nil
}

const updatePost = `-- name: UpdatePost
UPDATE posts
SET title = COALESCE($2, title),
    content = COALESCE($3, content),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + postColumns

func (r *PostRepo) UpdatePost(ctx context.Context, postID uuid.UUID, params repository.UpdatePostParams) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, updatePost, postID, params.Title, params.Content)
	post, err := pgx.CollectOneRow(rows, rowToPost)
	return post, postErr(err)
}

const isPostOwnedBy = `-- name: IsPostOwnedBy
SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1 AND owner_id = $2)
`

func (r *PostRepo) IsPostOwnedBy(ctx context.Context, postID uuid.UUID, userID uuid.UUID) (bool, error) {
	rows, _ := r.DB.Query(ctx, isPostOwnedBy, postID, userID)
	owned, err := pgx.CollectOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return owned, nil
}

func rowToPost(row pgx.CollectableRow) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func postErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("repo error: %w", apperrors.ErrPostNotFound)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
