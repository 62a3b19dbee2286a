package user

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/apperrors"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository"
)

type UserService struct {
	hasher  PasswordHasher
	storage repository.Storage

	// Compared against when user is unknown, so a login takes the same time either way
	dummyHash func() (string, error)
}

func NewService(hasher PasswordHasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = DefaultHasher
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
		dummyHash: sync.OnceValues(func() (string, error) {
			return hasher.Hash(uuid.NewString())
		}),
	}
}

// Create user with hashed password
// Returns apperrors.ErrUserAlreadyExists if username or email is taken
func (s *UserService) CreateUser(ctx context.Context, username string, email string, password string) (models.User, error) {
	var user models.User
	if password == "" {
		return user, errors.New("password must not be empty")
	}

	// Checked before hashing. The unique constraint still guards the race between check and insert
	if err := s.checkIdentityFree(ctx, uuid.Nil, &username, &email); err != nil {
		return user, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err = s.storage.User().CreateUser(ctx, username, email, hash)
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

// Find user by email and check the password
// Unknown email and wrong password are indistinguishable: both return apperrors.ErrInvalidCredentials
func (s *UserService) CheckCredentials(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, email)

	switch {
	case err == nil:
		if s.hasher.Compare(user.HashedPassword, password) != nil {
			return models.User{}, apperrors.ErrInvalidCredentials
		}
		return user, nil
	case errors.Is(err, apperrors.ErrUserNotFound):
		if hash, hashErr := s.dummyHash(); hashErr == nil {
			_ = s.hasher.Compare(hash, password)
		}
		return models.User{}, apperrors.ErrInvalidCredentials
	default:
		return models.User{}, fmt.Errorf("can't get user. Err: %w", err)
	}
}

func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.storage.User().ListUsers(ctx)
}

// Update username or email of the user. Users may update themselves only
// Returns apperrors.ErrUserAlreadyExists if new username or email belongs to other user
func (s *UserService) UpdateUser(ctx context.Context, actorID uuid.UUID, userID uuid.UUID, params repository.UpdateUserParams) (models.User, error) {
	if err := s.checkSelf(ctx, actorID, userID); err != nil {
		return models.User{}, err
	}
	if err := s.checkIdentityFree(ctx, userID, params.Username, params.Email); err != nil {
		return models.User{}, err
	}

	return s.storage.User().UpdateUser(ctx, userID, params)
}

// Delete user with everything the user owns. Users may delete themselves only
func (s *UserService) DeleteUser(ctx context.Context, actorID uuid.UUID, userID uuid.UUID) error {
	if err := s.checkSelf(ctx, actorID, userID); err != nil {
		return err
	}

	return s.storage.User().DeleteUser(ctx, userID)
}

// Missing user is reported before the ownership, the same way posts and comments do
func (s *UserService) checkSelf(ctx context.Context, actorID uuid.UUID, userID uuid.UUID) error {
	if _, err := s.storage.User().GetUserByID(ctx, userID); err != nil {
		return err
	}
	if actorID != userID {
		return apperrors.ErrForbidden
	}
	return nil
}

// Nil username or email is not checked. User with selfID may keep its own identity
func (s *UserService) checkIdentityFree(ctx context.Context, selfID uuid.UUID, username *string, email *string) error {
	var lookups []func() (models.User, error)
	if email != nil {
		lookups = append(lookups, func() (models.User, error) { return s.storage.User().GetUserByEmail(ctx, *email) })
	}
	if username != nil {
		lookups = append(lookups, func() (models.User, error) { return s.storage.User().GetUserByUsername(ctx, *username) })
	}

	for _, lookup := range lookups {
		found, err := lookup()
		switch {
		case err == nil && found.ID != selfID:
			return apperrors.ErrUserAlreadyExists
		case err == nil, errors.Is(err, apperrors.ErrUserNotFound):
		default:
			return fmt.Errorf("can't check user identity. Err: %w", err)
		}
	}

	return nil
}
