package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/apperrors"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/testutil"
)

func Test_PostRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Create users and run fn with storage bound to transaction
	withUsers := func(t *testing.T, fn func(s *Storage, alice models.User, bob models.User)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			s := NewStorage(tx)
			alice, err := s.User().CreateUser(t.Context(), "alice", "alice@example.com", "hashed")
			require.NoError(t, err)
			bob, err := s.User().CreateUser(t.Context(), "bob", "bob@example.com", "hashed")
			require.NoError(t, err)

			fn(s, alice, bob)
		})
	}

	t.Run("create and get", func(t *testing.T) {
		withUsers(t, func(s *Storage, alice models.User, _ models.User) {
			post, err := s.Post().CreatePost(t.Context(), alice.ID, "Hello", "World")
			require.NoError(t, err)
			assert.Equal(t, alice.ID, post.OwnerID)
			assert.Equal(t, "Hello", post.Title)
			assert.Equal(t, "World", post.Content)

			got, err := s.Post().GetPost(t.Context(), post.ID)
			require.NoError(t, err)
			assert.Equal(t, post, got)
		})
	})

	t.Run("get not existed", func(t *testing.T) {
		withUsers(t, func(s *Storage, _ models.User, _ models.User) {
			_, err := s.Post().GetPost(t.Context(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrPostNotFound)
		})
	})

	t.Run("list with owner filter", func(t *testing.T) {
		withUsers(t, func(s *Storage, alice models.User, bob models.User) {
			_, err := s.Post().CreatePost(t.Context(), alice.ID, "a1", "content")
			require.NoError(t, err)
			_, err = s.Post().CreatePost(t.Context(), alice.ID, "a2", "content")
			require.NoError(t, err)
			_, err = s.Post().CreatePost(t.Context(), bob.ID, "b1", "content")
			require.NoError(t, err)

			all, err := s.Post().ListPosts(t.Context(), repository.ListPostsOpts{})
			require.NoError(t, err)
			require.Len(t, all, 3)

			alicePosts, err := s.Post().ListPosts(t.Context(), repository.ListPostsOpts{OwnerID: &alice.ID})
			require.NoError(t, err)
			require.Len(t, alicePosts, 2)
			for _, p := range alicePosts {
				require.Equal(t, alice.ID, p.OwnerID)
			}
		})
	})

	t.Run("update", func(t *testing.T) {
		withUsers(t, func(s *Storage, alice models.User, _ models.User) {
			post, err := s.Post().CreatePost(t.Context(), alice.ID, "Hello", "World")
			require.NoError(t, err)

			got, err := s.Post().UpdatePost(t.Context(), post.ID, repository.UpdatePostParams{Content: ptr("Everyone")})
			require.NoError(t, err)
			assert.Equal(t, "Hello", got.Title, "title should be left as is")
			assert.Equal(t, "Everyone", got.Content)

			_, err = s.Post().UpdatePost(t.Context(), uuid.New(), repository.UpdatePostParams{Title: ptr("x")})
			require.ErrorIs(t, err, apperrors.ErrPostNotFound)
		})
	})

	t.Run("is owned by", func(t *testing.T) {
		withUsers(t, func(s *Storage, alice models.User, bob models.User) {
			post, err := s.Post().CreatePost(t.Context(), alice.ID, "Hello", "World")
			require.NoError(t, err)

			owned, err := s.Post().IsPostOwnedBy(t.Context(), post.ID, alice.ID)
			require.NoError(t, err)
			require.True(t, owned)

			owned, err = s.Post().IsPostOwnedBy(t.Context(), post.ID, bob.ID)
			require.NoError(t, err)
			require.False(t, owned)

			owned, err = s.Post().IsPostOwnedBy(t.Context(), uuid.New(), alice.ID)
			require.NoError(t, err)
			require.False(t, owned, "not existed post is owned by nobody")
		})
	})

	t.Run("deleted with owner", func(t *testing.T) {
		withUsers(t, func(s *Storage, alice models.User, _ models.User) {
			post, err := s.Post().CreatePost(t.Context(), alice.ID, "Hello", "World")
			require.NoError(t, err)

			require.NoError(t, s.User().DeleteUser(t.Context(), alice.ID))

			_, err = s.Post().GetPost(t.Context(), post.ID)
			require.ErrorIs(t, err, apperrors.ErrPostNotFound)
		})
	})
}
