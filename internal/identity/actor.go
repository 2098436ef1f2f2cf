package identity

import (
	"strings"

	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

// Actor is the authenticated principal acting on a request, derived from the
// verified JWT claims.
type Actor struct {
	UserID   uint
	Username string
	Role     enums.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// CanActFor reports whether the actor may operate on the named seller's data.
// Admins act for anyone; sellers only for themselves (case-insensitive).
func (a Actor) CanActFor(sellerName string) bool {
	if a.IsAdmin() {
		return true
	}
	return strings.EqualFold(a.Username, sellerName)
}
