package guard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized is returned when no principal accompanies the request.
	ErrUnauthorized = errors.New("guard.unauthorized")

	// ErrForbidden is the sentinel every ForbiddenError matches via errors.Is.
	ErrForbidden = errors.New("guard.forbidden")

	// ErrNoPrincipalInContext is returned when middleware finds no principal
	// in the request context.
	ErrNoPrincipalInContext = errors.New("guard.no_principal_in_context")
)

// ForbiddenError reports a denied evaluation together with the required
// keys the role failed to satisfy.
type ForbiddenError struct {
	MissingKeys []string
}

// Error implements the error interface.
func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("guard.forbidden: missing permissions [%s]", strings.Join(e.MissingKeys, ", "))
}

// Is lets errors.Is(err, ErrForbidden) match any ForbiddenError.
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}
