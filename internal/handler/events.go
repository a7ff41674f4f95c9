package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"podia/internal/middleware"
	"podia/internal/model"
	"podia/internal/rbac"
	"podia/internal/render"
	"podia/internal/service"
	"podia/internal/store"
	"podia/internal/util"
)

// eventView is the JSON shape of an event listing. The description is served
// both raw and rendered so clients can show it without their own Markdown
// pipeline.
type eventView struct {
	ID              int64      `json:"id"`
	OwnerID         int64      `json:"owner_id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Description     string     `json:"description"`
	DescriptionHTML string     `json:"description_html"`
	Category        string     `json:"category"`
	Address         string     `json:"address"`
	MaxGuests       int64      `json:"max_guests"`
	GuestCount      int64      `json:"guest_count"`
	Photo           string     `json:"photo"`
	PriceCents      *int64     `json:"price_cents,omitempty"`
	Duration        *string    `json:"duration,omitempty"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	Link1           *string    `json:"link1,omitempty"`
	Link2           *string    `json:"link2,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toEventView(e model.Event, guestCount int64) eventView {
	html, err := render.Markdown(e.Description)
	if err != nil {
		slog.Error("description rendering failed", "error", err, "event_id", e.ID)
		html = ""
	}

	view := eventView{
		ID:              e.ID,
		OwnerID:         e.OwnerID,
		Title:           e.Title,
		Slug:            e.Slug,
		Description:     e.Description,
		DescriptionHTML: html,
		Category:        e.Category,
		Address:         e.Address,
		MaxGuests:       e.MaxGuests,
		GuestCount:      guestCount,
		Photo:           e.PhotoRef,
		CreatedAt:       e.CreatedAt,
	}
	if e.PriceCents.Valid {
		view.PriceCents = &e.PriceCents.Int64
	}
	if e.Duration.Valid {
		view.Duration = &e.Duration.String
	}
	if e.ScheduledAt.Valid {
		view.ScheduledAt = &e.ScheduledAt.Time
	}
	if e.Link1.Valid {
		view.Link1 = &e.Link1.String
	}
	if e.Link2.Valid {
		view.Link2 = &e.Link2.String
	}
	return view
}

// ListEvents handles GET /api/events. Admins see every event; hosts see only
// their own.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r)
	page, perPage := pagination(r)
	limit := int64(perPage)
	offset := int64((page - 1) * perPage)

	var (
		events []model.Event
		total  int64
		err    error
	)
	if ownerID, scoped := rbac.OwnerScope(account); scoped {
		events, err = h.queries.ListEventsByOwner(r.Context(), store.ListEventsByOwnerParams{
			OwnerID: ownerID,
			Limit:   limit,
			Offset:  offset,
		})
		if err == nil {
			total, err = h.queries.CountEventsByOwner(r.Context(), ownerID)
		}
	} else {
		events, err = h.queries.ListEvents(r.Context(), store.ListEventsParams{Limit: limit, Offset: offset})
		if err == nil {
			total, err = h.queries.CountEvents(r.Context())
		}
	}
	if err != nil {
		slog.Error("event listing failed", "error", err)
		WriteInternalError(w, "Could not list events")
		return
	}

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		count, err := h.queries.CountEventGuests(r.Context(), e.ID)
		if err != nil {
			slog.Error("guest count failed", "error", err, "event_id", e.ID)
		}
		views = append(views, toEventView(e, count))
	}

	WriteSuccess(w, views, &Meta{Total: total, Page: page, PerPage: perPage})
}

// CreateEvent handles POST /api/events. The body is multipart form data
// carrying the listing fields and the photo.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r)
	if !rbac.Can(account, rbac.OpCreate, nil) {
		WriteError(w, http.StatusForbidden, "forbidden", "Insufficient permissions", nil)
		return
	}

	if err := r.ParseMultipartForm(service.MaxUploadSize + 1024*1024); err != nil {
		WriteBadRequest(w, "Invalid multipart form")
		return
	}

	fields, errs := eventFields(r)

	photoRef, err := h.storeUpload(r, "photo", service.MediaKindPhoto)
	if err != nil {
		errs["photo"] = append(errs["photo"], err.Error())
	} else if photoRef == "" {
		errs["photo"] = append(errs["photo"], "Please add a photo of your event")
	}

	if len(errs) > 0 {
		h.discardUpload(photoRef)
		WriteValidationError(w, errs)
		return
	}

	slug, err := h.uniqueSlug(r.Context(), fields.title)
	if err != nil {
		h.discardUpload(photoRef)
		slog.Error("slug generation failed", "error", err)
		WriteInternalError(w, "Could not create event")
		return
	}

	event, err := h.queries.CreateEvent(r.Context(), store.CreateEventParams{
		OwnerID:     account.ID,
		Title:       fields.title,
		Slug:        slug,
		Description: fields.description,
		Category:    fields.category,
		Address:     fields.address,
		MaxGuests:   fields.maxGuests,
		PhotoRef:    photoRef,
		PriceCents:  fields.priceCents,
		Duration:    fields.duration,
		ScheduledAt: fields.scheduledAt,
		Link1:       fields.link1,
		Link2:       fields.link2,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		h.discardUpload(photoRef)
		slog.Error("event creation failed", "error", err)
		WriteInternalError(w, "Could not create event")
		return
	}

	accountID := account.ID
	_ = h.audit.LogListing(r.Context(), model.AuditLevelInfo, "Event created",
		&accountID, clientIP(r), map[string]any{"event_id": event.ID})

	WriteCreated(w, toEventView(event, 0))
}

// GetEvent handles GET /api/events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadEventForManagement(w, r, rbac.OpRead)
	if !ok {
		return
	}

	count, err := h.queries.CountEventGuests(r.Context(), event.ID)
	if err != nil {
		slog.Error("guest count failed", "error", err, "event_id", event.ID)
	}
	WriteSuccess(w, toEventView(event, count), nil)
}

// UpdateEvent handles PUT /api/events/{id}. The owner, the slug, and the
// creation time never change; a new photo replaces the old one.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadEventForManagement(w, r, rbac.OpUpdate)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(service.MaxUploadSize + 1024*1024); err != nil {
		WriteBadRequest(w, "Invalid multipart form")
		return
	}

	fields, errs := eventFields(r)

	photoRef, err := h.storeUpload(r, "photo", service.MediaKindPhoto)
	if err != nil {
		errs["photo"] = append(errs["photo"], err.Error())
	}

	if len(errs) > 0 {
		h.discardUpload(photoRef)
		WriteValidationError(w, errs)
		return
	}

	newPhoto := event.PhotoRef
	if photoRef != "" {
		newPhoto = photoRef
	}

	updated, err := h.queries.UpdateEvent(r.Context(), store.UpdateEventParams{
		Title:       fields.title,
		Description: fields.description,
		Category:    fields.category,
		Address:     fields.address,
		MaxGuests:   fields.maxGuests,
		PhotoRef:    newPhoto,
		PriceCents:  fields.priceCents,
		Duration:    fields.duration,
		ScheduledAt: fields.scheduledAt,
		Link1:       fields.link1,
		Link2:       fields.link2,
		ID:          event.ID,
	})
	if err != nil {
		h.discardUpload(photoRef)
		slog.Error("event update failed", "error", err, "event_id", event.ID)
		WriteInternalError(w, "Could not update event")
		return
	}

	if photoRef != "" && event.PhotoRef != "" {
		h.discardUpload(event.PhotoRef)
	}

	accountID := middleware.GetAccountID(r)
	_ = h.audit.LogListing(r.Context(), model.AuditLevelInfo, "Event updated",
		&accountID, clientIP(r), map[string]any{"event_id": event.ID})

	count, err := h.queries.CountEventGuests(r.Context(), event.ID)
	if err != nil {
		slog.Error("guest count failed", "error", err, "event_id", event.ID)
	}
	WriteSuccess(w, toEventView(updated, count), nil)
}

// DeleteEvent handles DELETE /api/events/{id}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadEventForManagement(w, r, rbac.OpDelete)
	if !ok {
		return
	}

	if err := h.queries.DeleteEvent(r.Context(), event.ID); err != nil {
		slog.Error("event deletion failed", "error", err, "event_id", event.ID)
		WriteInternalError(w, "Could not delete event")
		return
	}
	h.discardUpload(event.PhotoRef)

	accountID := middleware.GetAccountID(r)
	_ = h.audit.LogListing(r.Context(), model.AuditLevelInfo, "Event deleted",
		&accountID, clientIP(r), map[string]any{"event_id": event.ID, "title": event.Title})

	WriteSuccess(w, map[string]string{"status": "deleted"}, nil)
}

// ListEventGuests handles GET /api/events/{id}/guests.
func (h *Handler) ListEventGuests(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadEventForManagement(w, r, rbac.OpRead)
	if !ok {
		return
	}

	guests, err := h.queries.ListEventGuests(r.Context(), event.ID)
	if err != nil {
		slog.Error("guest listing failed", "error", err, "event_id", event.ID)
		WriteInternalError(w, "Could not list guests")
		return
	}

	views := make([]accountView, 0, len(guests))
	for _, g := range guests {
		views = append(views, toAccountView(g))
	}
	WriteSuccess(w, views, &Meta{Total: int64(len(views)), Page: 1, PerPage: len(views)})
}

// JoinEvent handles POST /api/events/{id}/join. Joining twice is a no-op.
func (h *Handler) JoinEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(r)
	if !ok {
		WriteNotFound(w, "Event not found")
		return
	}

	event, err := h.queries.GetEventByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Event not found")
			return
		}
		slog.Error("event load failed", "error", err, "event_id", id)
		WriteInternalError(w, "Could not join event")
		return
	}

	accountID := middleware.GetAccountID(r)
	// The guest set stays disjoint from ownership.
	if accountID == event.OwnerID {
		WriteError(w, http.StatusConflict, "own_event", "You cannot join your own event", nil)
		return
	}

	count, err := h.queries.CountEventGuests(r.Context(), event.ID)
	if err != nil {
		slog.Error("guest count failed", "error", err, "event_id", event.ID)
		WriteInternalError(w, "Could not join event")
		return
	}
	if count >= event.MaxGuests {
		WriteError(w, http.StatusConflict, "event_full", "This event is fully booked", nil)
		return
	}

	if err := h.queries.AddEventGuest(r.Context(), store.AddEventGuestParams{
		EventID:   event.ID,
		AccountID: accountID,
		CreatedAt: time.Now(),
	}); err != nil {
		slog.Error("event join failed", "error", err, "event_id", event.ID)
		WriteInternalError(w, "Could not join event")
		return
	}

	_ = h.audit.LogListing(r.Context(), model.AuditLevelInfo, "Guest joined event",
		&accountID, clientIP(r), map[string]any{"event_id": event.ID})

	WriteSuccess(w, map[string]string{"status": "joined"}, nil)
}

// LeaveEvent handles DELETE /api/events/{id}/join. Leaving an event the
// account never joined is a no-op.
func (h *Handler) LeaveEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(r)
	if !ok {
		WriteNotFound(w, "Event not found")
		return
	}

	if _, err := h.queries.GetEventByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Event not found")
			return
		}
		slog.Error("event load failed", "error", err, "event_id", id)
		WriteInternalError(w, "Could not leave event")
		return
	}

	accountID := middleware.GetAccountID(r)
	if err := h.queries.RemoveEventGuest(r.Context(), store.RemoveEventGuestParams{
		EventID:   id,
		AccountID: accountID,
	}); err != nil {
		slog.Error("event leave failed", "error", err, "event_id", id)
		WriteInternalError(w, "Could not leave event")
		return
	}

	WriteSuccess(w, map[string]string{"status": "left"}, nil)
}

// loadEventForManagement resolves {id}, loads the event, and checks the
// management permission. A missing event and a foreign event produce the same
// not-found response so hosts cannot probe for other hosts' listings.
func (h *Handler) loadEventForManagement(w http.ResponseWriter, r *http.Request, op rbac.Operation) (model.Event, bool) {
	id, ok := urlParamID(r)
	if !ok {
		WriteNotFound(w, "Event not found")
		return model.Event{}, false
	}

	event, err := h.queries.GetEventByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Event not found")
			return model.Event{}, false
		}
		slog.Error("event load failed", "error", err, "event_id", id)
		WriteInternalError(w, "Could not load event")
		return model.Event{}, false
	}

	account := middleware.GetAccount(r)
	if !rbac.Can(account, op, &event) {
		WriteNotFound(w, "Event not found")
		return model.Event{}, false
	}
	return event, true
}

// eventFieldValues holds the parsed listing fields from a create or update
// form.
type eventFieldValues struct {
	title       string
	description string
	category    string
	address     string
	maxGuests   int64
	priceCents  sql.NullInt64
	duration    sql.NullString
	scheduledAt sql.NullTime
	link1       sql.NullString
	link2       sql.NullString
}

// eventFields reads and validates the listing fields of a multipart form.
func eventFields(r *http.Request) (eventFieldValues, map[string][]string) {
	errs := map[string][]string{}
	var f eventFieldValues

	f.title = strings.TrimSpace(r.FormValue("title"))
	if f.title == "" {
		errs["title"] = append(errs["title"], "Title is required")
	}

	f.description = strings.TrimSpace(r.FormValue("description"))

	f.category = strings.TrimSpace(r.FormValue("category"))
	if !model.IsValidCategory(f.category) {
		errs["category"] = append(errs["category"], "Choose a valid category")
	}

	f.address = strings.TrimSpace(r.FormValue("address"))
	if f.address == "" {
		errs["address"] = append(errs["address"], "Address is required")
	}

	maxGuests, err := strconv.ParseInt(r.FormValue("max_guests"), 10, 64)
	if err != nil || maxGuests <= 0 {
		errs["max_guests"] = append(errs["max_guests"], "Guest capacity must be a positive number")
	}
	f.maxGuests = maxGuests

	if v := r.FormValue("price_cents"); v != "" {
		f.priceCents = util.ParseNullInt64NonNegative(v)
		if !f.priceCents.Valid {
			errs["price_cents"] = append(errs["price_cents"], "Price must be a non-negative number of cents")
		}
	}
	f.duration = util.NullStringFromValue(r.FormValue("duration"))
	if v := r.FormValue("scheduled_at"); v != "" {
		f.scheduledAt = util.ParseNullTime(v)
		if !f.scheduledAt.Valid {
			errs["scheduled_at"] = append(errs["scheduled_at"], "Use an RFC 3339 timestamp")
		}
	}
	f.link1 = util.NullStringFromValue(r.FormValue("link1"))
	f.link2 = util.NullStringFromValue(r.FormValue("link2"))

	return f, errs
}

// uniqueSlug derives a slug from the title and suffixes it until no other
// event uses it. Titles that slugify to nothing fall back to "event".
func (h *Handler) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := util.Slugify(title)
	if base == "" {
		base = "event"
	}

	candidate := base
	for i := 2; ; i++ {
		n, err := h.queries.CountEventsBySlug(ctx, candidate)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}

// GetEventDescription handles GET /api/events/{id}/description. It returns
// the sanitized HTML rendering of the listing description on its own so
// clients can embed it directly.
func (h *Handler) GetEventDescription(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadEventForManagement(w, r, rbac.OpRead)
	if !ok {
		return
	}

	html, err := render.Markdown(event.Description)
	if err != nil {
		slog.Error("description rendering failed", "error", err, "event_id", event.ID)
		WriteInternalError(w, "Could not render description")
		return
	}
	WriteSuccess(w, map[string]string{"description_html": html}, nil)
}
