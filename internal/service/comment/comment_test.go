package comment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/apperrors"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository/postgres"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/testutil"
)

func TestCommentService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// alice owns the post, bob comments it
	inTx := func(t *testing.T, fn func(s *CommentService, post models.Post, alice models.User, bob models.User)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			alice, err := storage.User().CreateUser(t.Context(), "alice", "alice@example.com", "hashed")
			require.NoError(t, err)
			bob, err := storage.User().CreateUser(t.Context(), "bob", "bob@example.com", "hashed")
			require.NoError(t, err)
			post, err := storage.Post().CreatePost(t.Context(), alice.ID, "Hello", "World")
			require.NoError(t, err)

			fn(NewService(storage), post, alice, bob)
		})
	}

	t.Run("create and list", func(t *testing.T) {
		inTx(t, func(s *CommentService, post models.Post, _ models.User, bob models.User) {
			c, err := s.CreateComment(t.Context(), bob.ID, post.ID, "Nice")
			require.NoError(t, err)
			require.Equal(t, bob.ID, c.AuthorID)

			comments, err := s.ListComments(t.Context(), repository.ListCommentsOpts{PostID: &post.ID})
			require.NoError(t, err)
			require.Equal(t, []models.Comment{c}, comments)
		})
	})

	t.Run("comment not existed post", func(t *testing.T) {
		inTx(t, func(s *CommentService, _ models.Post, _ models.User, bob models.User) {
			_, err := s.CreateComment(t.Context(), bob.ID, uuid.New(), "Nice")
			require.ErrorIs(t, err, apperrors.ErrPostNotFound)
		})
	})

	t.Run("list comments of not existed post", func(t *testing.T) {
		inTx(t, func(s *CommentService, _ models.Post, _ models.User, _ models.User) {
			missing := uuid.New()
			_, err := s.ListComments(t.Context(), repository.ListCommentsOpts{PostID: &missing})
			require.ErrorIs(t, err, apperrors.ErrPostNotFound)
		})
	})

	t.Run("update and delete by author", func(t *testing.T) {
		inTx(t, func(s *CommentService, post models.Post, _ models.User, bob models.User) {
			c, err := s.CreateComment(t.Context(), bob.ID, post.ID, "Nice")
			require.NoError(t, err)

			updated, err := s.UpdateComment(t.Context(), bob.ID, c.ID, "Very nice")
			require.NoError(t, err)
			require.Equal(t, "Very nice", updated.Content)

			require.NoError(t, s.DeleteComment(t.Context(), bob.ID, c.ID))

			_, err = s.GetComment(t.Context(), c.ID)
			require.ErrorIs(t, err, apperrors.ErrCommentNotFound)
		})
	})

	t.Run("post owner can't touch comments of others", func(t *testing.T) {
		inTx(t, func(s *CommentService, post models.Post, alice models.User, bob models.User) {
			c, err := s.CreateComment(t.Context(), bob.ID, post.ID, "Nice")
			require.NoError(t, err)

			_, err = s.UpdateComment(t.Context(), alice.ID, c.ID, "Edited by alice")
			require.ErrorIs(t, err, apperrors.ErrForbidden)

			err = s.DeleteComment(t.Context(), alice.ID, c.ID)
			require.ErrorIs(t, err, apperrors.ErrForbidden)
		})
	})

	t.Run("not existed comment", func(t *testing.T) {
		inTx(t, func(s *CommentService, _ models.Post, alice models.User, _ models.User) {
			_, err := s.UpdateComment(t.Context(), alice.ID, uuid.New(), "x")
			require.ErrorIs(t, err, apperrors.ErrCommentNotFound)

			err = s.DeleteComment(t.Context(), alice.ID, uuid.New())
			require.ErrorIs(t, err, apperrors.ErrCommentNotFound)
		})
	})
}
