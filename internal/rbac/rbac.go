// Package rbac holds the ownership-scoped permission checks for event
// management. The checks are stateless predicates over the acting account and
// the target event; callers translate a denial into a generic not-found or
// forbidden response without exposing the target.
package rbac

import "podia/internal/model"

// Operation is a management operation on event listings.
type Operation string

// Management operations.
const (
	OpList   Operation = "list"
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Can reports whether account may perform op. For OpRead, OpUpdate, and
// OpDelete the target event must be given; for OpList and OpCreate it is nil.
//
// Admins may do anything. Hosts may create, and may read/update/delete only
// events they own. Everyone else has no management access.
func Can(account *model.Account, op Operation, event *model.Event) bool {
	if account == nil || !account.Active {
		return false
	}
	if account.IsAdmin() {
		return true
	}
	if !account.IsHost() {
		return false
	}

	switch op {
	case OpList, OpCreate:
		return true
	case OpRead, OpUpdate, OpDelete:
		return event != nil && event.OwnerID == account.ID
	default:
		return false
	}
}

// OwnerScope returns the owner filter for management list queries.
// Admins see everything (scoped=false); hosts see only their own events.
func OwnerScope(account *model.Account) (ownerID int64, scoped bool) {
	if account != nil && account.IsAdmin() {
		return 0, false
	}
	if account == nil {
		return 0, true
	}
	return account.ID, true
}
