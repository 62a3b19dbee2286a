package ownership

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/apperrors"
)

// Check that the resource exists and is owned by the caller
//
// exists must return the resource specific not found error if there is no resource.
// Both lookups always run, so the response time does not tell a missing resource from a foreign one.
// Returns the not found error, apperrors.ErrForbidden or nil.
func Check(ctx context.Context, exists func(context.Context) error, isOwnedBy func(context.Context) (bool, error)) error {
	existsErr := exists(ctx)
	owned, ownedErr := isOwnedBy(ctx)

	switch {
	case existsErr != nil:
		return existsErr
	case ownedErr != nil:
		return fmt.Errorf("can't check ownership. Err: %w", ownedErr)
	case !owned:
		return apperrors.ErrForbidden
	default:
		return nil
	}
}

// IsNotFound reports whether err means the checked resource does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrPostNotFound) ||
		errors.Is(err, apperrors.ErrCommentNotFound) ||
		errors.Is(err, apperrors.ErrUserNotFound)
}
