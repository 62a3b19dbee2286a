package post

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

func TestPostService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, fn func(s *PostService, alice models.User, bob models.User)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			alice, err := storage.User().CreateUser(t.Context(), "alice", "alice@example.com", "hashed")
			require.NoError(t, err)
			bob, err := storage.User().CreateUser(t.Context(), "bob", "bob@example.com", "hashed")
			require.NoError(t, err)

			fn(NewService(storage), alice, bob)
		})
	}

	t.Run("create, get and list", func(t *testing.T) {
		inTx(t, func(s *PostService, alice models.User, bob models.User) {
			created, err := s.CreatePost(t.Context(), alice.ID, "Hello", "World")
			require.NoError(t, err)
			require.Equal(t, alice.ID, created.OwnerID)

			got, err := s.GetPost(t.Context(), created.ID)
			require.NoError(t, err)
			require.Equal(t, created, got)

			_, err = s.CreatePost(t.Context(), bob.ID, "Bob", "post")
			require.NoError(t, err)

			bobPosts, err := s.ListPosts(t.Context(), repository.ListPostsOpts{OwnerID: &bob.ID})
			require.NoError(t, err)
			require.Len(t, bobPosts, 1)
		})
	})

	t.Run("update own post", func(t *testing.T) {
		inTx(t, func(s *PostService, alice models.User, _ models.User) {
			created, err := s.CreatePost(t.Context(), alice.ID, "Hello", "World")
			require.NoError(t, err)
			title := "Updated"

			updated, err := s.UpdatePost(t.Context(), alice.ID, created.ID, repository.UpdatePostParams{Title: &title})

			require.NoError(t, err)
			require.Equal(t, "Updated", updated.Title)
			require.Equal(t, "World", updated.Content)
		})
	})

	t.Run("update post of other user", func(t *testing.T) {
		inTx(t, func(s *PostService, alice models.User, bob models.User) {
			created, err := s.CreatePost(t.Context(), alice.ID, "Hello", "World")
			require.NoError(t, err)
			title := "Hacked"

			_, err = s.UpdatePost(t.Context(), bob.ID, created.ID, repository.UpdatePostParams{Title: &title})
			require.ErrorIs(t, err, apperrors.ErrForbidden)

			got, err := s.GetPost(t.Context(), created.ID)
			require.NoError(t, err)
			require.Equal(t, "Hello", got.Title, "post should stay untouched")
		})
	})

	t.Run("update not existed post", func(t *testing.T) {
		inTx(t, func(s *PostService, alice models.User, _ models.User) {
			title := "Updated"

			_, err := s.UpdatePost(t.Context(), alice.ID, uuid.New(), repository.UpdatePostParams{Title: &title})

			require.ErrorIs(t, err, apperrors.ErrPostNotFound)
		})
	})
}
