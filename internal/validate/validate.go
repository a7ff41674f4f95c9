// Package validate provides the pure input validation rules shared by the
// registration forms and the account password policy. Validators never
// correct input; they report a typed error and leave the value untouched.
package validate

import (
	"errors"
	"regexp"
	"unicode"
)

var (
	// ErrNotLatin is returned for names containing anything other than
	// ASCII letters, spaces, or hyphens.
	ErrNotLatin = errors.New("name may contain only Latin letters, spaces, and hyphens")

	// ErrBadEmail is returned for strings that do not look like an email address.
	ErrBadEmail = errors.New("enter a valid email address")

	// ErrBadPhone is returned for phone numbers that are not exactly 10 digits.
	ErrBadPhone = errors.New("enter a valid 10-digit phone number")
)

var (
	latinNameRe = regexp.MustCompile(`^[a-zA-Z\s-]+$`)
	emailRe     = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	phoneRe     = regexp.MustCompile(`^[0-9]{10}$`)
	passwordRe  = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// LatinName checks that s consists only of ASCII letters, whitespace, and hyphens.
func LatinName(s string) error {
	if !latinNameRe.MatchString(s) {
		return ErrNotLatin
	}
	return nil
}

// Email checks that s has a basic local@domain.tld shape.
func Email(s string) error {
	if !emailRe.MatchString(s) {
		return ErrBadEmail
	}
	return nil
}

// Phone checks that s is exactly 10 ASCII digits.
func Phone(s string) error {
	if !phoneRe.MatchString(s) {
		return ErrBadPhone
	}
	return nil
}

// PasswordReason identifies a single violated password rule.
type PasswordReason string

// Password policy violation reasons.
const (
	PasswordTooShort       PasswordReason = "too_short"
	PasswordForbiddenChars PasswordReason = "forbidden_chars"
	PasswordMissingDigit   PasswordReason = "missing_digit"
	PasswordMissingLetter  PasswordReason = "missing_letter"
)

// passwordMessages maps violation reasons to user-readable messages.
var passwordMessages = map[PasswordReason]string{
	PasswordTooShort:       "Password must be at least 8 characters",
	PasswordForbiddenChars: "Password may contain only Latin letters and digits",
	PasswordMissingDigit:   "Password must contain at least one digit",
	PasswordMissingLetter:  "Password must contain at least one letter",
}

// PasswordError reports every violated password rule, not just the first.
type PasswordError struct {
	Reasons []PasswordReason
}

func (e *PasswordError) Error() string {
	if len(e.Reasons) == 0 {
		return "invalid password"
	}
	return passwordMessages[e.Reasons[0]]
}

// Messages returns one user-readable message per violated rule, in policy order.
func (e *PasswordError) Messages() []string {
	msgs := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		msgs = append(msgs, passwordMessages[r])
	}
	return msgs
}

// PasswordPolicy is the account password policy. It is passed explicitly to
// the operations that need it rather than registered globally, so tests and
// callers can substitute their own.
type PasswordPolicy struct {
	MinLength int
}

// DefaultPasswordPolicy returns the policy enforced at account creation:
// at least 8 characters, Latin letters and digits only, with at least one of each.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 8}
}

// Validate checks password against the policy. On failure it returns a
// *PasswordError listing every violated rule.
func (p PasswordPolicy) Validate(password string) error {
	var reasons []PasswordReason

	if len(password) < p.MinLength {
		reasons = append(reasons, PasswordTooShort)
	}
	if !passwordRe.MatchString(password) {
		reasons = append(reasons, PasswordForbiddenChars)
	}

	hasDigit := false
	hasLetter := false
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasLetter = true
		}
	}
	if !hasDigit {
		reasons = append(reasons, PasswordMissingDigit)
	}
	if !hasLetter {
		reasons = append(reasons, PasswordMissingLetter)
	}

	if len(reasons) > 0 {
		return &PasswordError{Reasons: reasons}
	}
	return nil
}
