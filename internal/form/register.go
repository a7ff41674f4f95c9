package form

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"podia/internal/auth"
	"podia/internal/geo"
	"podia/internal/model"
	"podia/internal/store"
	"podia/internal/validate"
)

// Registrar creates accounts from untrusted form input. The password policy
// is injected so callers and tests control it explicitly.
type Registrar struct {
	db     *sql.DB
	policy validate.PasswordPolicy
}

// NewRegistrar creates a Registrar.
func NewRegistrar(db *sql.DB, policy validate.PasswordPolicy) *Registrar {
	return &Registrar{db: db, policy: policy}
}

// truthy reports whether a checkbox-style form value is set.
func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// validateCommon checks the fields shared by both registration paths and
// accumulates field errors.
func (r *Registrar) validateCommon(ctx context.Context, values map[string]string, errs Errors) {
	queries := store.New(r.db)

	email := strings.TrimSpace(values[FieldEmail])
	if email == "" {
		errs.Add(FieldEmail, "Email is required")
	} else if err := validate.Email(email); err != nil {
		errs.Add(FieldEmail, "Enter a valid email address")
	} else {
		// Friendly pre-check; the unique constraint remains the real guard.
		_, err := queries.GetAccountByEmail(ctx, email)
		if err == nil {
			errs.Add(FieldEmail, "This email is already registered")
		} else if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("database error checking email", "error", err)
			errs.Add(FieldEmail, "Error checking email")
		}
	}

	name := strings.TrimSpace(values[FieldFirstName])
	if name == "" {
		errs.Add(FieldFirstName, "Name is required")
	} else if err := validate.LatinName(name); err != nil {
		errs.Add(FieldFirstName, "Name may contain only Latin letters, spaces, and hyphens")
	}

	password := values[FieldPassword]
	if password == "" {
		errs.Add(FieldPassword, "Password is required")
	} else if err := r.policy.Validate(password); err != nil {
		var perr *validate.PasswordError
		if errors.As(err, &perr) {
			// Every violated rule is reported, not just the first.
			for _, msg := range perr.Messages() {
				errs.Add(FieldPassword, msg)
			}
		} else {
			errs.Add(FieldPassword, "Invalid password")
		}
	}

	confirm := values[FieldConfirmPassword]
	if confirm == "" {
		errs.Add(FieldConfirmPassword, "Please confirm your password")
	} else if password != "" && password != confirm {
		// The mismatch belongs to the confirmation field.
		errs.Add(FieldConfirmPassword, "Passwords do not match")
	}

	if !truthy(values[FieldTerms]) {
		errs.Add(FieldTerms, "You must accept the site rules")
	}
}

// create persists the account in a single transaction. For hosts it also
// attempts the best-effort Hosts group membership.
func (r *Registrar) create(ctx context.Context, arg store.CreateAccountParams) (model.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Account{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	queries := store.New(r.db).WithTx(tx)

	account, err := queries.CreateAccount(ctx, arg)
	if err != nil {
		return model.Account{}, err
	}

	if account.Role == model.RoleHost {
		// Membership is best-effort: a missing group never fails registration.
		groupID, err := queries.GetGroupID(ctx, store.HostsGroupName)
		switch {
		case err == nil:
			if err := queries.AddAccountToGroup(ctx, store.AddAccountToGroupParams{
				AccountID: account.ID,
				GroupID:   groupID,
			}); err != nil {
				return model.Account{}, fmt.Errorf("adding host to group: %w", err)
			}
		case errors.Is(err, sql.ErrNoRows):
			slog.Warn("hosts group missing, skipping membership", "account_id", account.ID)
		default:
			return model.Account{}, fmt.Errorf("looking up hosts group: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Account{}, fmt.Errorf("committing registration: %w", err)
	}
	return account, nil
}

// RegisterGuest validates the guest registration fields and persists a new
// guest account. On validation failure it returns the field errors; the
// returned error is reserved for infrastructure failures.
//
// A successfully returned account is ready for immediate session
// establishment by the caller.
func (r *Registrar) RegisterGuest(ctx context.Context, values map[string]string) (model.Account, Errors, error) {
	errs := make(Errors)
	r.validateCommon(ctx, values, errs)
	if errs.Any() {
		return model.Account{}, errs, nil
	}

	arg, err := r.accountParams(values, model.RoleGuest)
	if err != nil {
		return model.Account{}, nil, err
	}

	// An unknown region is silently ignored: location stays unset.
	if region := values[FieldRegion]; region != "" {
		if p, ok := geo.Lookup(region); ok {
			arg.LocationLng = sql.NullFloat64{Float64: p.Lng, Valid: true}
			arg.LocationLat = sql.NullFloat64{Float64: p.Lat, Valid: true}
		}
	}

	return r.persist(ctx, arg, errs)
}

// RegisterHost validates the host registration fields and persists a new host
// account. All guest rules apply, plus region, phone, avatar, and contacts
// become mandatory. The role is always RoleHost: role or privilege flags in
// the input are ignored.
func (r *Registrar) RegisterHost(ctx context.Context, values map[string]string) (model.Account, Errors, error) {
	errs := make(Errors)
	r.validateCommon(ctx, values, errs)

	region := values[FieldRegion]
	if region == "" {
		errs.Add(FieldRegion, "Please choose your region")
	}

	phone := strings.TrimSpace(values[FieldPhone])
	if phone == "" {
		errs.Add(FieldPhone, "Phone number is required")
	} else if err := validate.Phone(phone); err != nil {
		errs.Add(FieldPhone, "Enter a valid 10-digit phone number")
	}

	if values[FieldAvatar] == "" {
		errs.Add(FieldAvatar, "Please add your photo")
	}

	if strings.TrimSpace(values[FieldContacts]) == "" {
		errs.Add(FieldContacts, "Contact information is required")
	}

	if errs.Any() {
		return model.Account{}, errs, nil
	}

	arg, err := r.accountParams(values, model.RoleHost)
	if err != nil {
		return model.Account{}, nil, err
	}

	arg.Phone = phone
	arg.AvatarRef = values[FieldAvatar]
	arg.Contacts = strings.TrimSpace(values[FieldContacts])
	arg.Instagram = strings.TrimSpace(values[FieldInstagram])
	arg.Facebook = strings.TrimSpace(values[FieldFacebook])
	arg.About = strings.TrimSpace(values[FieldAbout])

	// Region is mandatory for hosts, but an unrecognized name still only
	// skips the location rather than failing the registration.
	if p, ok := geo.Lookup(region); ok {
		arg.LocationLng = sql.NullFloat64{Float64: p.Lng, Valid: true}
		arg.LocationLat = sql.NullFloat64{Float64: p.Lat, Valid: true}
	}

	return r.persist(ctx, arg, errs)
}

// accountParams hashes the password and builds the insert parameters.
// The plaintext never leaves this call.
func (r *Registrar) accountParams(values map[string]string, role string) (store.CreateAccountParams, error) {
	hash, err := auth.HashPassword(values[FieldPassword])
	if err != nil {
		return store.CreateAccountParams{}, fmt.Errorf("hashing password: %w", err)
	}

	return store.CreateAccountParams{
		Email:        strings.TrimSpace(values[FieldEmail]),
		PasswordHash: hash,
		Name:         strings.TrimSpace(values[FieldFirstName]),
		Role:         role,
		CreatedAt:    time.Now(),
	}, nil
}

// persist runs the creation transaction and folds a lost duplicate-email race
// back into the email field errors.
func (r *Registrar) persist(ctx context.Context, arg store.CreateAccountParams, errs Errors) (model.Account, Errors, error) {
	account, err := r.create(ctx, arg)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			errs.Add(FieldEmail, "This email is already registered")
			return model.Account{}, errs, nil
		}
		return model.Account{}, nil, err
	}

	slog.Info("account registered", "account_id", account.ID, "role", account.Role)
	return account, nil, nil
}
