package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/apperrors"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository/postgres"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/testutil"
)

func ptr[T any](v T) *T {
	return &v
}

func TestUser(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Create UserService bound to transaction, rolled back when test stops
	inTx := func(t *testing.T, fn func(s *UserService)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(NewService(BcryptHasher{Cost: bcrypt.MinCost}, postgres.NewStorage(tx)))
		})
	}

	t.Run("CreateUser", func(t *testing.T) {
		t.Run("create ok", func(t *testing.T) {
			inTx(t, func(s *UserService) {
				user, err := s.CreateUser(t.Context(), "alice", "alice@example.com", "password123")

				require.NoError(t, err)
				require.NotEqual(t, uuid.Nil, user.ID)
				require.Equal(t, "alice", user.Username)
				require.Equal(t, "alice@example.com", user.Email)
				require.NotEqual(t, "password123", user.HashedPassword, "password should be hashed")
				require.NoError(t, s.hasher.Compare(user.HashedPassword, "password123"))
			})
		})

		t.Run("empty password fail", func(t *testing.T) {
			inTx(t, func(s *UserService) {
				_, err := s.CreateUser(t.Context(), "alice", "alice@example.com", "")

				require.Error(t, err)
			})
		})

		t.Run("duplicate", func(t *testing.T) {
			inTx(t, func(s *UserService) {
				_, err := s.CreateUser(t.Context(), "alice", "alice@example.com", "password123")
				require.NoError(t, err)

				_, err = s.CreateUser(t.Context(), "alice2", "alice@example.com", "password123")

				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})
	})

	t.Run("CheckCredentials", func(t *testing.T) {
		inTx(t, func(s *UserService) {
			created, err := s.CreateUser(t.Context(), "alice", "alice@example.com", "password123")
			require.NoError(t, err)

			user, err := s.CheckCredentials(t.Context(), "alice@example.com", "password123")
			require.NoError(t, err)
			require.Equal(t, created.ID, user.ID)

			_, err = s.CheckCredentials(t.Context(), "alice@example.com", "wrong")
			require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

			_, err = s.CheckCredentials(t.Context(), "nobody@example.com", "password123")
			require.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "unknown email should look like wrong password")
		})
	})

	t.Run("UpdateUser", func(t *testing.T) {
		inTx(t, func(s *UserService) {
			alice, err := s.CreateUser(t.Context(), "alice", "alice@example.com", "password123")
			require.NoError(t, err)
			bob, err := s.CreateUser(t.Context(), "bob", "bob@example.com", "password123")
			require.NoError(t, err)

			updated, err := s.UpdateUser(t.Context(), alice.ID, alice.ID, repository.UpdateUserParams{Username: ptr("alice2")})
			require.NoError(t, err)
			require.Equal(t, "alice2", updated.Username)

			_, err = s.UpdateUser(t.Context(), bob.ID, alice.ID, repository.UpdateUserParams{Username: ptr("hacked")})
			require.ErrorIs(t, err, apperrors.ErrForbidden)

			_, err = s.UpdateUser(t.Context(), alice.ID, uuid.New(), repository.UpdateUserParams{Username: ptr("x")})
			require.ErrorIs(t, err, apperrors.ErrUserNotFound, "not existed user is reported before ownership")

			_, err = s.UpdateUser(t.Context(), alice.ID, alice.ID, repository.UpdateUserParams{Email: ptr("bob@example.com")})
			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists, "email of other user can't be taken")

			updated, err = s.UpdateUser(t.Context(), alice.ID, alice.ID, repository.UpdateUserParams{Username: ptr("alice2"), Email: ptr("alice@example.com")})
			require.NoError(t, err, "own identity can be sent again")
			require.Equal(t, "alice@example.com", updated.Email)
		})
	})

	t.Run("DeleteUser", func(t *testing.T) {
		inTx(t, func(s *UserService) {
			alice, err := s.CreateUser(t.Context(), "alice", "alice@example.com", "password123")
			require.NoError(t, err)
			bob, err := s.CreateUser(t.Context(), "bob", "bob@example.com", "password123")
			require.NoError(t, err)

			err = s.DeleteUser(t.Context(), bob.ID, alice.ID)
			require.ErrorIs(t, err, apperrors.ErrForbidden)

			err = s.DeleteUser(t.Context(), alice.ID, alice.ID)
			require.NoError(t, err)

			_, err = s.GetUser(t.Context(), alice.ID)
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)

			users, err := s.ListUsers(t.Context())
			require.NoError(t, err)
			require.Len(t, users, 1)
		})
	})
}
