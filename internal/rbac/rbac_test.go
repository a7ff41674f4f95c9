package rbac

import (
	"testing"

	"podia/internal/model"
)

func account(id int64, role string) *model.Account {
	return &model.Account{ID: id, Role: role, Active: true}
}

func TestCan_Admin(t *testing.T) {
	admin := account(1, model.RoleAdmin)
	foreign := &model.Event{ID: 10, OwnerID: 99}

	for _, op := range []Operation{OpList, OpCreate, OpRead, OpUpdate, OpDelete} {
		if !Can(admin, op, foreign) {
			t.Errorf("admin denied %s on foreign event", op)
		}
	}
}

func TestCan_Guest(t *testing.T) {
	guest := account(2, model.RoleGuest)
	event := &model.Event{ID: 10, OwnerID: 2}

	for _, op := range []Operation{OpList, OpCreate, OpRead, OpUpdate, OpDelete} {
		if Can(guest, op, event) {
			t.Errorf("guest allowed %s", op)
		}
	}
}

func TestCan_HostOwnEvent(t *testing.T) {
	host := account(3, model.RoleHost)
	own := &model.Event{ID: 10, OwnerID: 3}

	for _, op := range []Operation{OpList, OpCreate, OpRead, OpUpdate, OpDelete} {
		if !Can(host, op, own) {
			t.Errorf("host denied %s on own event", op)
		}
	}
}

func TestCan_HostForeignEvent(t *testing.T) {
	host := account(3, model.RoleHost)
	foreign := &model.Event{ID: 10, OwnerID: 4}

	// Create and list are allowed; anything targeting a foreign event is not.
	if !Can(host, OpCreate, nil) {
		t.Error("host denied create")
	}
	if !Can(host, OpList, nil) {
		t.Error("host denied list")
	}
	for _, op := range []Operation{OpRead, OpUpdate, OpDelete} {
		if Can(host, op, foreign) {
			t.Errorf("host allowed %s on foreign event", op)
		}
	}
}

func TestCan_NilAndInactive(t *testing.T) {
	if Can(nil, OpList, nil) {
		t.Error("nil account allowed list")
	}

	inactive := &model.Account{ID: 5, Role: model.RoleHost, Active: false}
	if Can(inactive, OpCreate, nil) {
		t.Error("inactive host allowed create")
	}
}

func TestCan_MissingTarget(t *testing.T) {
	host := account(3, model.RoleHost)
	for _, op := range []Operation{OpRead, OpUpdate, OpDelete} {
		if Can(host, op, nil) {
			t.Errorf("host allowed %s without a target event", op)
		}
	}
}

func TestOwnerScope(t *testing.T) {
	if _, scoped := OwnerScope(account(1, model.RoleAdmin)); scoped {
		t.Error("admin list should be unscoped")
	}

	ownerID, scoped := OwnerScope(account(7, model.RoleHost))
	if !scoped || ownerID != 7 {
		t.Errorf("host scope = (%d, %v); want (7, true)", ownerID, scoped)
	}

	if _, scoped := OwnerScope(nil); !scoped {
		t.Error("nil account must be scoped")
	}
}
