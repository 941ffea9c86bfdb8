// AngelaMos | 2026
// policy.go

package policy

import (
	"fmt"

	"github.com/carterperez-dev/templates/classifieds/internal/core"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Principal is the authenticated caller, passed explicitly to every
// operation that reads or mutates owned resources.
type Principal struct {
	ID   int64
	Role string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsZero() bool {
	return p.ID == 0
}

// CanMutate reports whether principal may change a resource owned by ownerID.
func CanMutate(principal Principal, ownerID int64) bool {
	return principal.IsAdmin() || principal.ID == ownerID
}

// Authorize is CanMutate as an error. Call it after loading the target and
// before the first write.
func Authorize(principal Principal, ownerID int64) error {
	if principal.IsZero() {
		return fmt.Errorf("authorize: %w", core.ErrUnauthorized)
	}
	if !CanMutate(principal, ownerID) {
		return fmt.Errorf(
			"authorize: principal %d on resource of %d: %w",
			principal.ID,
			ownerID,
			core.ErrForbidden,
		)
	}
	return nil
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
