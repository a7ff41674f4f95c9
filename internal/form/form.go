// Package form implements the registration and login flows. Forms accept a
// mapping of field name to raw string value and return either a persisted
// account or a mapping of field name to ordered, user-readable error
// messages. Validation failures never escape as faults.
package form

// Errors maps field names to ordered user-readable messages.
type Errors map[string][]string

// Add appends a message to a field's error list.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Any returns true if any field has an error.
func (e Errors) Any() bool {
	return len(e) > 0
}

// Field names shared by the registration forms.
const (
	FieldEmail           = "email"
	FieldFirstName       = "first_name"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
	FieldTerms           = "terms_confirmed"
	FieldRegion          = "region"
	FieldPhone           = "phone_number"
	FieldAvatar          = "avatar"
	FieldContacts        = "contacts"
	FieldInstagram       = "instagram"
	FieldFacebook        = "facebook"
	FieldAbout           = "about"
)
