package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/apperrors"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository"
)

type CommentRepo struct {
	DB DBTX
}

const commentColumns = `id, post_id, author_id, content, created_at, updated_at`

const createComment = `-- name: CreateComment
INSERT INTO comments (id, post_id, author_id, content)
VALUES ($1, $2, $3, $4)
RETURNING ` + commentColumns

func (r *CommentRepo) CreateComment(ctx context.Context, postID uuid.UUID, authorID uuid.UUID, content string) (models.Comment, error) {
	rows, _ := r.DB.Query(ctx, createComment, uuid.New(), postID, authorID, content)
	comment, err := pgx.CollectOneRow(rows, rowToComment)

	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return comment, nil
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation && pgErr.ConstraintName == "comments_post_id_fkey":
		return comment, fmt.Errorf("repo error: %w", apperrors.ErrPostNotFound)
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation:
		return comment, fmt.Errorf("repo error: %w", apperrors.ErrUserNotFound)
	default:
		return comment, fmt.Errorf("db error: %w", err)
	}
}

const getComment = `-- name: GetComment
SELECT ` + commentColumns + ` FROM comments
WHERE id = $1
`

func (r *CommentRepo) GetComment(ctx context.Context, commentID uuid.UUID) (models.Comment, error) {
	rows, _ := r.DB.Query(ctx, getComment, commentID)
	comment, err := pgx.CollectOneRow(rows, rowToComment)
	return comment, commentErr(err)
}

const listComments = `-- name: ListComments
SELECT ` + commentColumns + ` FROM comments
WHERE ($1::uuid IS NULL OR post_id = $1)
ORDER BY created_at, id
`

func (r *CommentRepo) ListComments(ctx context.Context, opts repository.ListCommentsOpts) ([]models.Comment, error) {
	rows, _ := r.DB.Query(ctx, listComments, opts.PostID)
	comments, err := pgx.CollectRows(rows, rowToComment)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return comments, nil
}

const updateComment = `-- name: UpdateComment
UPDATE comments
SET content = $2,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + commentColumns

func (r *CommentRepo) UpdateComment(ctx context.Context, commentID uuid.UUID, content string) (models.Comment, error) {
	rows, _ := r.DB.Query(ctx, updateComment, commentID, content)
	comment, err := pgx.CollectOneRow(rows, rowToComment)
	return comment, commentErr(err)
}

const deleteComment = `-- name: DeleteComment
DELETE FROM comments
WHERE id = $1
`

func (r *CommentRepo) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteComment, commentID)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return fmt.Errorf("repo error: %w", apperrors.ErrCommentNotFound)
	default:
		return nil
	}
}

const isCommentOwnedBy = `-- name: IsCommentOwnedBy
SELECT EXISTS (SELECT 1 FROM comments WHERE id = $1 AND author_id = $2)
`

func (r *CommentRepo) IsCommentOwnedBy(ctx context.Context, commentID uuid.UUID, userID uuid.UUID) (bool, error) {
	rows, _ := r.DB.Query(ctx, isCommentOwnedBy, commentID, userID)
	owned, err := pgx.CollectOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return owned, nil
}

func rowToComment(row pgx.CollectableRow) (models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func commentErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("repo error: %w", apperrors.ErrCommentNotFound)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
