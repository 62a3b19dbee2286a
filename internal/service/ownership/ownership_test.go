package ownership

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/apperrors"
)

func TestCheck(t *testing.T) {
	dbErr := errors.New("connection refused")

	tests := []struct {
		name      string
		existsErr error
		owned     bool
		ownedErr  error
		expected  error
	}{
		{name: "owned", owned: true, expected: nil},
		{name: "not owned", owned: false, expected: apperrors.ErrForbidden},
		{name: "not found", existsErr: apperrors.ErrPostNotFound, expected: apperrors.ErrPostNotFound},
		{name: "not found wins over ownership error", existsErr: apperrors.ErrCommentNotFound, ownedErr: dbErr, expected: apperrors.ErrCommentNotFound},
		{name: "ownership lookup failed", ownedErr: dbErr, expected: dbErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ownershipChecked := false

			err := Check(t.Context(),
				func(context.Context) error { return tt.existsErr },
				func(context.Context) (bool, error) {
					ownershipChecked = true
					return tt.owned, tt.ownedErr
				},
			)

			require.True(t, ownershipChecked, "ownership lookup should run whether or not the resource exists")
			if tt.expected == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestIsNotFound(t *testing.T) {
	require.True(t, IsNotFound(apperrors.ErrPostNotFound))
	require.True(t, IsNotFound(apperrors.ErrCommentNotFound))
	require.True(t, IsNotFound(apperrors.ErrUserNotFound))
	require.False(t, IsNotFound(apperrors.ErrForbidden))
	require.False(t, IsNotFound(nil))
}
