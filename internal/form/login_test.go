package form_test

import (
	"context"
	"errors"
	"testing"

	"podia/internal/form"
	"podia/internal/model"
	"podia/internal/testutil"
)

func TestLogin_Success(t *testing.T) {
	db := testutil.NewDB(t)
	created := testutil.CreateAccount(t, db, testutil.AccountSpec{
		Email: "login@b.com",
		Name:  "Anna",
		Role:  model.RoleGuest,
	})

	account, err := form.Login(context.Background(), db, "login@b.com", testutil.TestPassword)
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if account.ID != created.ID {
		t.Errorf("account ID = %d; want %d", account.ID, created.ID)
	}
}

func TestLogin_CaseInsensitiveEmail(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateAccount(t, db, testutil.AccountSpec{
		Email: "case@b.com",
		Name:  "Anna",
		Role:  model.RoleGuest,
	})

	if _, err := form.Login(context.Background(), db, "Case@B.COM", testutil.TestPassword); err != nil {
		t.Errorf("cased email should still log in: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateAccount(t, db, testutil.AccountSpec{
		Email: "wrong@b.com",
		Name:  "Anna",
		Role:  model.RoleGuest,
	})

	_, err := form.Login(context.Background(), db, "wrong@b.com", "not-the-password1")
	if !errors.Is(err, form.ErrInvalidCredentials) {
		t.Errorf("err = %v; want ErrInvalidCredentials", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := form.Login(context.Background(), db, "nobody@b.com", testutil.TestPassword)
	if !errors.Is(err, form.ErrInvalidCredentials) {
		t.Errorf("err = %v; want ErrInvalidCredentials", err)
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateAccount(t, db, testutil.AccountSpec{
		Email:    "gone@b.com",
		Name:     "Anna",
		Role:     model.RoleGuest,
		Inactive: true,
	})

	// Deactivated accounts fail exactly like bad credentials.
	_, err := form.Login(context.Background(), db, "gone@b.com", testutil.TestPassword)
	if !errors.Is(err, form.ErrInvalidCredentials) {
		t.Errorf("err = %v; want ErrInvalidCredentials", err)
	}
}
