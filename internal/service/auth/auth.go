package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/apperrors"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/logger"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository"
)

const (
	EventRegister     = "register"
	EventLogin        = "login"
	EventRefresh      = "refresh"
	EventLogout       = "logout"
	EventAuthenticate = "authenticate"
)

type tokenManager interface {
	IssueAccess(userID uuid.UUID) (models.IssuedToken, error)
	IssueRefresh(userID uuid.UUID) (models.IssuedToken, error)
	ParseAccess(token string) (models.Claims, error)
	ParseRefresh(token string) (models.Claims, error)
	AccessTTL() time.Duration
}

type userService interface {
	CreateUser(ctx context.Context, username string, email string, password string) (models.User, error)
	CheckCredentials(ctx context.Context, email string, password string) (models.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (models.User, error)
}

// Receives outcome of every session operation
type Recorder interface {
	AuthEvent(event string, err error)
}

type noopRecorder struct{}

func (noopRecorder) AuthEvent(string, error) {}

type Config struct {
	// If not set than no-op logger is used
	Logger logger.Logger

	// If not set than events are not recorded
	Recorder Recorder
}

// Session service: issues, refreshes and revokes token pairs
type AuthService struct {
	tokens   tokenManager
	users    userService
	storage  repository.Storage
	logger   logger.Logger
	recorder Recorder

	now func() time.Time
}

func NewService(cfg Config, tokens tokenManager, users userService, storage repository.Storage) (*AuthService, error) {
	if tokens == nil || users == nil || storage == nil {
		return nil, errors.New("token manager, user service and storage must not be nil")
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = noopRecorder{}
	}

	return &AuthService{
		tokens:   tokens,
		users:    users,
		storage:  storage,
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
		now:      time.Now,
	}, nil
}

// Register new user
// Returns apperrors.ErrUserAlreadyExists if email or username is taken
func (s *AuthService) Register(ctx context.Context, username string, email string, password string) (user models.User, err error) {
	defer func() { s.recorder.AuthEvent(EventRegister, err) }()

	return s.users.CreateUser(ctx, username, email, password)
}

// Login user and start new session
// Returns apperrors.ErrInvalidCredentials if email is unknown or password is wrong
func (s *AuthService) Login(ctx context.Context, email string, password string) (session models.Session, err error) {
	defer func() { s.recorder.AuthEvent(EventLogin, err) }()

	user, err := s.users.CheckCredentials(ctx, email, password)
	if err != nil {
		return session, err
	}

	access, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return session, fmt.Errorf("can't issue access token. Err: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return session, fmt.Errorf("can't issue refresh token. Err: %w", err)
	}

	err = s.storage.Refresh().Save(context.WithoutCancel(ctx), models.RefreshToken{
		ID:          uuid.New(),
		UserID:      user.ID,
		Token:       refresh.Value,
		AccessToken: access.Value,
		CreatedAt:   s.now(),
		ExpiresAt:   refresh.ExpiresAt,
	})
	if err != nil {
		return session, fmt.Errorf("can't save refresh token. Err: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return models.Session{UserID: user.ID, Access: access, Refresh: refresh}, nil
}

// Issue new access token for the refresh token
// The refresh token stays the same. The access token it was paired with before is revoked
// Returns apperrors.ErrInvalidRefreshToken if the token is malformed, expired, revoked or its user is gone
func (s *AuthService) Refresh(ctx context.Context, refresh string) (access models.IssuedToken, err error) {
	defer func() { s.recorder.AuthEvent(EventRefresh, err) }()

	claims, err := s.tokens.ParseRefresh(refresh)
	if err != nil {
		return access, fmt.Errorf("%w: %w", apperrors.ErrInvalidRefreshToken, err)
	}

	stored, err := s.storage.Refresh().Get(ctx, refresh)
	switch {
	case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
		return access, fmt.Errorf("%w: %w", apperrors.ErrInvalidRefreshToken, err)
	case err != nil:
		return access, fmt.Errorf("can't get refresh token. Err: %w", err)
	case stored.UserID != claims.UserID:
		return access, fmt.Errorf("%w: token issued to other user", apperrors.ErrInvalidRefreshToken)
	}

	_, err = s.users.GetUser(ctx, claims.UserID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return access, fmt.Errorf("%w: %w", apperrors.ErrInvalidRefreshToken, err)
	case err != nil:
		return access, fmt.Errorf("can't get user. Err: %w", err)
	}

	access, err = s.tokens.IssueAccess(claims.UserID)
	if err != nil {
		return access, fmt.Errorf("can't issue access token. Err: %w", err)
	}

	// Pairing update and revocation of the replaced token either both happen or none
	wctx := context.WithoutCancel(ctx)
	err = s.storage.InTx(wctx, func(tx repository.Storage) error {
		previous, err := tx.Refresh().ReplaceAccess(wctx, refresh, access.Value)
		if err != nil {
			return err
		}
		return s.blacklist(wctx, tx, previous)
	})
	switch {
	case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
		// Logged out concurrently
		return models.IssuedToken{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidRefreshToken, err)
	case err != nil:
		return models.IssuedToken{}, fmt.Errorf("can't update refresh token. Err: %w", err)
	}

	return access, nil
}

// Logout the user
// With refresh token: revoke that session only, the token must belong to the user
// Without refresh token: revoke every session of the user
// Returns apperrors.ErrRefreshTokenNotFound if the refresh token is unknown, expired or belongs to other user
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, refresh string) (err error) {
	defer func() { s.recorder.AuthEvent(EventLogout, err) }()

	// Client disconnect must not leave a session half revoked
	ctx = context.WithoutCancel(ctx)

	if refresh != "" {
		err = s.revoke(ctx, userID, refresh)
		if err == nil {
			s.logger.Info("User logged out", "user_id", userID)
		}
		return err
	}

	tokens, err := s.storage.Refresh().ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("can't list user refresh tokens. Err: %w", err)
	}

	// Each session is revoked in its own transaction, so one failure does not keep the others alive
	var errs []error
	for _, t := range tokens {
		err := s.revoke(ctx, userID, t.Token)
		if err != nil && !errors.Is(err, apperrors.ErrRefreshTokenNotFound) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Error("Failed to revoke some sessions", "user_id", userID, "error", err)
		return err
	}

	s.logger.Info("User logged out everywhere", "user_id", userID, "sessions", len(tokens))
	return nil
}

// Verify access token and check it is not revoked
// Returns apperrors.ErrTokenInvalid, apperrors.ErrTokenExpired or apperrors.ErrTokenBlacklisted
func (s *AuthService) Authenticate(ctx context.Context, access string) (claims models.Claims, err error) {
	defer func() { s.recorder.AuthEvent(EventAuthenticate, err) }()

	claims, err = s.tokens.ParseAccess(access)
	if err != nil {
		return models.Claims{}, err
	}

	blacklisted, err := s.storage.Blacklist().Contains(ctx, access)
	switch {
	case err != nil:
		return models.Claims{}, fmt.Errorf("can't check blacklist. Err: %w", err)
	case blacklisted:
		return models.Claims{}, apperrors.ErrTokenBlacklisted
	}

	return claims, nil
}

// Delete the refresh token and blacklist the access token paired with it
func (s *AuthService) revoke(ctx context.Context, userID uuid.UUID, refresh string) error {
	return s.storage.InTx(ctx, func(tx repository.Storage) error {
		deleted, err := tx.Refresh().Delete(ctx, refresh)
		switch {
		case err != nil:
			return err
		case deleted.UserID != userID || !deleted.ExpiresAt.After(s.now()):
			// Rolled back: the token is left untouched
			return fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
		}

		return s.blacklist(ctx, tx, deleted.AccessToken)
	})
}

// Keep the entry for the longest time the token could still be valid
func (s *AuthService) blacklist(ctx context.Context, tx repository.Storage, access string) error {
	if access == "" {
		return nil
	}

	now := s.now()
	return tx.Blacklist().Add(ctx, models.BlacklistedToken{
		Token:         access,
		BlacklistedAt: now,
		ExpiresAt:     now.Add(s.tokens.AccessTTL()),
	})
}
