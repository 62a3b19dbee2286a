package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/apperrors"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultSigningMethod   = "HS256"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
}

// Token manager with sensible defaults
type Config struct {
	// Secret keys to sign access and refresh tokens
	// Both required and must differ, so one kind of token is never accepted as another
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenManager struct {
	accessKey  []byte
	refreshKey []byte

	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration

	// Overridable in tests
	now func() time.Time
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("access and refresh secrets must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if _, ok := alg.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing method %q is not supported", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field <= 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		alg:        alg,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// Issue access token valid for AccessTTL
func (m *TokenManager) IssueAccess(userID uuid.UUID) (models.IssuedToken, error) {
	return m.issue(userID, m.accessKey, m.accessTTL)
}

// Issue refresh token valid for RefreshTTL
func (m *TokenManager) IssueRefresh(userID uuid.UUID) (models.IssuedToken, error) {
	return m.issue(userID, m.refreshKey, m.refreshTTL)
}

// Verify access token signature and expiry
// Returns apperrors.ErrTokenExpired or apperrors.ErrTokenInvalid
func (m *TokenManager) ParseAccess(token string) (models.Claims, error) {
	return m.parse(token, m.accessKey)
}

// Verify refresh token signature and expiry
// Returns apperrors.ErrTokenExpired or apperrors.ErrTokenInvalid
func (m *TokenManager) ParseRefresh(token string) (models.Claims, error) {
	return m.parse(token, m.refreshKey)
}

func (m *TokenManager) issue(userID uuid.UUID, key []byte, ttl time.Duration) (models.IssuedToken, error) {
	now := m.now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	// Unique jti: two tokens issued to the same user within a second are still different strings
	token := jwt.NewWithClaims(m.alg, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

func (m *TokenManager) parse(token string, key []byte) (models.Claims, error) {
	claims := &tokenClaims{}

	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			return key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	switch {
	case err == nil && claims.UserID != uuid.Nil:
		return models.Claims{
			UserID:    claims.UserID,
			TokenID:   claims.ID,
			ExpiresAt: claims.ExpiresAt.Time,
		}, nil
	case err == nil:
		return models.Claims{}, fmt.Errorf("token has no subject: %w", apperrors.ErrTokenInvalid)
	case errors.Is(err, jwt.ErrTokenExpired):
		return models.Claims{}, fmt.Errorf("%w: %w", apperrors.ErrTokenExpired, err)
	default:
		return models.Claims{}, fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, err)
	}
}
