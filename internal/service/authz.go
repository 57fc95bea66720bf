package service

import (
	"fmt"

	"github.com/google/uuid"
)

// Authorize decides whether caller may mutate a resource owned by owner.
// Pure and synchronous; every mutating catalog operation calls it after
// loading the resource and before changing anything.
func Authorize(caller, owner uuid.UUID) error {
	if caller != owner {
		return fmt.Errorf("%w: caller does not own this resource", ErrForbidden)
	}
	return nil
}
