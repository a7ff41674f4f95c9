package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"podia/internal/form"
	"podia/internal/model"
	"podia/internal/service"
	"podia/internal/session"
)

// RegisterGuest handles POST /api/register/guest. The body is a JSON object
// of form fields. A successful registration immediately establishes a
// session.
func (h *Handler) RegisterGuest(w http.ResponseWriter, r *http.Request) {
	values, err := decodeFormValues(r)
	if err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	account, errs, err := h.registrar.RegisterGuest(r.Context(), values)
	if err != nil {
		slog.Error("guest registration failed", "error", err)
		WriteInternalError(w, "Registration failed")
		return
	}
	if errs.Any() {
		WriteValidationError(w, errs)
		return
	}

	h.finishRegistration(w, r, account)
}

// RegisterHost handles POST /api/register/host. The body is multipart form
// data carrying the profile fields and the avatar image.
func (h *Handler) RegisterHost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(service.MaxUploadSize + 1024*1024); err != nil {
		WriteBadRequest(w, "Invalid multipart form")
		return
	}

	values := map[string]string{}
	for _, field := range []string{
		form.FieldEmail, form.FieldFirstName, form.FieldPassword,
		form.FieldConfirmPassword, form.FieldTerms, form.FieldRegion,
		form.FieldPhone, form.FieldContacts, form.FieldInstagram,
		form.FieldFacebook, form.FieldAbout,
	} {
		values[field] = r.FormValue(field)
	}

	// The avatar is stored before validation so a reference exists for the
	// mandatory-field check. It is removed again if registration fails.
	avatarRef, err := h.storeUpload(r, form.FieldAvatar, service.MediaKindAvatar)
	if err != nil {
		WriteValidationError(w, map[string][]string{form.FieldAvatar: {err.Error()}})
		return
	}
	values[form.FieldAvatar] = avatarRef

	account, errs, err := h.registrar.RegisterHost(r.Context(), values)
	if err != nil {
		h.discardUpload(avatarRef)
		slog.Error("host registration failed", "error", err)
		WriteInternalError(w, "Registration failed")
		return
	}
	if errs.Any() {
		h.discardUpload(avatarRef)
		WriteValidationError(w, errs)
		return
	}

	h.finishRegistration(w, r, account)
}

// finishRegistration logs the new account in and writes the response.
func (h *Handler) finishRegistration(w http.ResponseWriter, r *http.Request, account model.Account) {
	if err := session.LogIn(r.Context(), h.sessions, account.ID); err != nil {
		slog.Error("session establishment failed", "error", err, "account_id", account.ID)
		WriteInternalError(w, "Registration succeeded but login failed")
		return
	}

	accountID := account.ID
	_ = h.audit.LogAccount(r.Context(), model.AuditLevelInfo, "Account registered",
		&accountID, clientIP(r), map[string]any{"role": account.Role})

	WriteCreated(w, toAccountView(account))
}

// storeUpload reads a multipart file field and stores it through the media
// service. A missing file yields an empty reference and no error so the form
// layer can report the missing field.
func (h *Handler) storeUpload(r *http.Request, field, kind string) (string, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", fmt.Errorf("could not read uploaded file")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("could not read uploaded file")
	}

	ref, err := h.media.Store(kind, data)
	if err != nil {
		return "", err
	}
	return ref, nil
}

// discardUpload removes a stored upload after a failed registration.
func (h *Handler) discardUpload(ref string) {
	if ref == "" {
		return
	}
	if err := h.media.Delete(ref); err != nil {
		slog.Error("failed to discard upload", "error", err, "ref", ref)
	}
}

// decodeFormValues reads a flat JSON object into form values. Booleans and
// numbers are stringified so checkbox-style fields work either way.
func decodeFormValues(r *http.Request) (map[string]string, error) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			values[k] = t
		case bool:
			if t {
				values[k] = "true"
			} else {
				values[k] = "false"
			}
		case float64:
			values[k] = fmt.Sprintf("%v", t)
		case nil:
			// skip
		default:
			return nil, fmt.Errorf("field %q has unsupported type", k)
		}
	}
	return values, nil
}

// clientIP extracts the client IP for audit entries.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
