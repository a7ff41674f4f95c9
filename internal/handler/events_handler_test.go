package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"podia/internal/model"
	"podia/internal/testutil"
)

func eventFormFields() map[string]string {
	return map[string]string{
		"title":      "Old Town Walking Tour",
		"category":   model.CategoryTour,
		"address":    "1 Rynok Square, Lviv",
		"max_guests": "10",
	}
}

// createEvent posts a valid event form and returns its ID.
func (a *testApp) createEvent(t *testing.T, fields map[string]string) int64 {
	t.Helper()

	resp := a.postMultipart(t, http.MethodPost, "/api/events", fields, "photo")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("event creation = %d; want 201", resp.StatusCode)
	}
	id, ok := dataOf(t, decodeBody(t, resp))["id"].(float64)
	if !ok {
		t.Fatal("created event has no id")
	}
	return int64(id)
}

func TestCreateEvent(t *testing.T) {
	app := newTestApp(t)
	ownerID := app.login(t, "host@example.com", model.RoleHost)

	fields := eventFormFields()
	fields["description"] = "A walk through the **old town**."
	fields["price_cents"] = "25000"
	fields["duration"] = "2 hours"

	resp := app.postMultipart(t, http.MethodPost, "/api/events", fields, "photo")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d; want 201", resp.StatusCode)
	}
	data := dataOf(t, decodeBody(t, resp))

	if int64(data["owner_id"].(float64)) != ownerID {
		t.Errorf("owner_id = %v; want %d", data["owner_id"], ownerID)
	}
	if data["slug"] != "old-town-walking-tour" {
		t.Errorf("slug = %v", data["slug"])
	}
	if html, _ := data["description_html"].(string); html == "" {
		t.Error("description_html missing")
	}
	if data["price_cents"].(float64) != 25000 {
		t.Errorf("price_cents = %v", data["price_cents"])
	}
	if photo, _ := data["photo"].(string); photo == "" {
		t.Error("photo reference missing")
	}
}

func TestCreateEvent_SlugsDeduplicated(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "host@example.com", model.RoleHost)

	app.createEvent(t, eventFormFields())

	resp := app.postMultipart(t, http.MethodPost, "/api/events", eventFormFields(), "photo")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d; want 201", resp.StatusCode)
	}
	if slug := dataOf(t, decodeBody(t, resp))["slug"]; slug != "old-town-walking-tour-2" {
		t.Errorf("second slug = %v; want old-town-walking-tour-2", slug)
	}
}

func TestCreateEvent_ValidationErrors(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "host@example.com", model.RoleHost)

	fields := eventFormFields()
	fields["title"] = ""
	fields["category"] = "skydiving"
	fields["max_guests"] = "0"

	resp := app.postMultipart(t, http.MethodPost, "/api/events", fields, "photo")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d; want 422", resp.StatusCode)
	}
	fieldErrs := fieldErrors(t, decodeBody(t, resp))
	for _, field := range []string{"title", "category", "max_guests"} {
		if _, ok := fieldErrs[field]; !ok {
			t.Errorf("expected error on %s, got %v", field, fieldErrs)
		}
	}
}

func TestEvents_GuestDenied(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "guest@example.com", model.RoleGuest)

	resp := app.do(t, http.MethodGet, "/api/events")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("guest list = %d; want 403", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = app.postMultipart(t, http.MethodPost, "/api/events", eventFormFields(), "photo")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("guest create = %d; want 403", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestEvents_AnonymousDenied(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodGet, "/api/events")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous list = %d; want 401", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestListEvents_ScopedToOwner(t *testing.T) {
	app := newTestApp(t)

	other := testutil.CreateAccount(t, app.db, testutil.AccountSpec{
		Email: "other@example.com", Role: model.RoleHost,
	})
	testutil.CreateEvent(t, app.db, other.ID, "Foreign Event", "foreign-event")

	app.login(t, "host@example.com", model.RoleHost)
	app.createEvent(t, eventFormFields())

	resp := app.do(t, http.MethodGet, "/api/events")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}
	doc := decodeBody(t, resp)
	events, ok := doc["data"].([]any)
	if !ok || len(events) != 1 {
		t.Fatalf("host should see exactly their own event, got %v", doc["data"])
	}
	meta := doc["meta"].(map[string]any)
	if meta["total"].(float64) != 1 {
		t.Errorf("meta.total = %v; want 1", meta["total"])
	}
}

func TestListEvents_AdminSeesAll(t *testing.T) {
	app := newTestApp(t)

	host := testutil.CreateAccount(t, app.db, testutil.AccountSpec{
		Email: "host@example.com", Role: model.RoleHost,
	})
	testutil.CreateEvent(t, app.db, host.ID, "Event One", "event-one")
	testutil.CreateEvent(t, app.db, host.ID, "Event Two", "event-two")

	app.login(t, "admin@example.com", model.RoleAdmin)

	resp := app.do(t, http.MethodGet, "/api/events")
	doc := decodeBody(t, resp)
	if events, ok := doc["data"].([]any); !ok || len(events) != 2 {
		t.Errorf("admin should see all events, got %v", doc["data"])
	}
}

func TestGetEvent_ForeignLooksMissing(t *testing.T) {
	app := newTestApp(t)

	other := testutil.CreateAccount(t, app.db, testutil.AccountSpec{
		Email: "other@example.com", Role: model.RoleHost,
	})
	event := testutil.CreateEvent(t, app.db, other.ID, "Foreign Event", "foreign-event")

	app.login(t, "host@example.com", model.RoleHost)

	// A foreign event is indistinguishable from a missing one.
	for _, path := range []string{
		fmt.Sprintf("/api/events/%d", event.ID),
		"/api/events/99999",
	} {
		resp := app.do(t, http.MethodGet, path)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s = %d; want 404", path, resp.StatusCode)
		}
		_ = resp.Body.Close()
	}
}

func TestGetEvent_AdminSeesForeign(t *testing.T) {
	app := newTestApp(t)

	host := testutil.CreateAccount(t, app.db, testutil.AccountSpec{
		Email: "host@example.com", Role: model.RoleHost,
	})
	event := testutil.CreateEvent(t, app.db, host.ID, "Host Event", "host-event")

	app.login(t, "admin@example.com", model.RoleAdmin)

	resp := app.do(t, http.MethodGet, fmt.Sprintf("/api/events/%d", event.ID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}
	if title := dataOf(t, decodeBody(t, resp))["title"]; title != "Host Event" {
		t.Errorf("title = %v", title)
	}
}

func TestUpdateEvent_OwnerImmutable(t *testing.T) {
	app := newTestApp(t)
	ownerID := app.login(t, "host@example.com", model.RoleHost)
	id := app.createEvent(t, eventFormFields())

	fields := eventFormFields()
	fields["title"] = "Updated Tour"
	fields["owner_id"] = "42"

	resp := app.postMultipart(t, http.MethodPut, fmt.Sprintf("/api/events/%d", id), fields, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}
	data := dataOf(t, decodeBody(t, resp))
	if data["title"] != "Updated Tour" {
		t.Errorf("title = %v", data["title"])
	}
	if int64(data["owner_id"].(float64)) != ownerID {
		t.Errorf("owner_id = %v; must stay %d", data["owner_id"], ownerID)
	}
	if data["slug"] != "old-town-walking-tour" {
		t.Errorf("slug = %v; must not change on update", data["slug"])
	}
}

func TestUpdateEvent_ForeignDenied(t *testing.T) {
	app := newTestApp(t)

	other := testutil.CreateAccount(t, app.db, testutil.AccountSpec{
		Email: "other@example.com", Role: model.RoleHost,
	})
	event := testutil.CreateEvent(t, app.db, other.ID, "Foreign Event", "foreign-event")

	app.login(t, "host@example.com", model.RoleHost)

	resp := app.postMultipart(t, http.MethodPut, fmt.Sprintf("/api/events/%d", event.ID), eventFormFields(), "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d; want 404", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestDeleteEvent(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "host@example.com", model.RoleHost)
	id := app.createEvent(t, eventFormFields())

	resp := app.do(t, http.MethodDelete, fmt.Sprintf("/api/events/%d", id))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete = %d; want 200", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = app.do(t, http.MethodGet, fmt.Sprintf("/api/events/%d", id))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted event still readable: %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestJoinAndLeaveEvent(t *testing.T) {
	app := newTestApp(t)

	host := testutil.CreateAccount(t, app.db, testutil.AccountSpec{
		Email: "host@example.com", Role: model.RoleHost,
	})
	event := testutil.CreateEvent(t, app.db, host.ID, "Tour", "tour")

	app.login(t, "guest@example.com", model.RoleGuest)

	resp := app.do(t, http.MethodPost, fmt.Sprintf("/api/events/%d/join", event.ID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join = %d; want 200", resp.StatusCode)
	}
	_ = resp.Body.Close()

	// Joining again is a no-op.
	resp = app.do(t, http.MethodPost, fmt.Sprintf("/api/events/%d/join", event.ID))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("repeat join = %d; want 200", resp.StatusCode)
	}
	_ = resp.Body.Close()

	var n int64
	if err := app.db.QueryRow(`SELECT COUNT(*) FROM event_guests WHERE event_id = ?`, event.ID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("guest rows = %d; want 1", n)
	}

	resp = app.do(t, http.MethodDelete, fmt.Sprintf("/api/events/%d/join", event.ID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leave = %d; want 200", resp.StatusCode)
	}
	_ = resp.Body.Close()

	if err := app.db.QueryRow(`SELECT COUNT(*) FROM event_guests WHERE event_id = ?`, event.ID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("guest rows after leave = %d; want 0", n)
	}
}

func TestJoinEvent_Full(t *testing.T) {
	app := newTestApp(t)

	host := testutil.CreateAccount(t, app.db, testutil.AccountSpec{
		Email: "host@example.com", Role: model.RoleHost,
	})
	event := testutil.CreateEvent(t, app.db, host.ID, "Tiny Tour", "tiny-tour")
	if _, err := app.db.Exec(`UPDATE events SET max_guests = 1 WHERE id = ?`, event.ID); err != nil {
		t.Fatal(err)
	}

	first := testutil.CreateAccount(t, app.db, testutil.AccountSpec{Email: "first@example.com"})
	if _, err := app.db.Exec(
		`INSERT INTO event_guests (event_id, account_id) VALUES (?, ?)`, event.ID, first.ID,
	); err != nil {
		t.Fatal(err)
	}

	app.login(t, "late@example.com", model.RoleGuest)

	resp := app.do(t, http.MethodPost, fmt.Sprintf("/api/events/%d/join", event.ID))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("join full event = %d; want 409", resp.StatusCode)
	}
	if code := errorOf(t, decodeBody(t, resp))["code"]; code != "event_full" {
		t.Errorf("code = %v", code)
	}
}

func TestListEventGuests(t *testing.T) {
	app := newTestApp(t)

	guest := testutil.CreateAccount(t, app.db, testutil.AccountSpec{Email: "guest@example.com"})

	app.login(t, "host@example.com", model.RoleHost)
	id := app.createEvent(t, eventFormFields())

	if _, err := app.db.Exec(
		`INSERT INTO event_guests (event_id, account_id) VALUES (?, ?)`, id, guest.ID,
	); err != nil {
		t.Fatal(err)
	}

	resp := app.do(t, http.MethodGet, fmt.Sprintf("/api/events/%d/guests", id))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}
	doc := decodeBody(t, resp)
	guests, ok := doc["data"].([]any)
	if !ok || len(guests) != 1 {
		t.Fatalf("guests = %v; want one entry", doc["data"])
	}
	if email := guests[0].(map[string]any)["email"]; email != "guest@example.com" {
		t.Errorf("guest email = %v", email)
	}
}

func TestJoinEvent_OwnerCannotJoin(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "host@example.com", model.RoleHost)
	id := app.createEvent(t, eventFormFields())

	resp := app.do(t, http.MethodPost, fmt.Sprintf("/api/events/%d/join", id))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("owner join = %d; want 409", resp.StatusCode)
	}
	if code := errorOf(t, decodeBody(t, resp))["code"]; code != "own_event" {
		t.Errorf("code = %v", code)
	}

	var n int64
	if err := app.db.QueryRow(`SELECT COUNT(*) FROM event_guests WHERE event_id = ?`, id).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("guest rows = %d; the owner must never enter the guest set", n)
	}
}

func TestCreateEvent_FreeEvent(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "host@example.com", model.RoleHost)

	fields := eventFormFields()
	fields["price_cents"] = "0"

	resp := app.postMultipart(t, http.MethodPost, "/api/events", fields, "photo")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d; a zero price is a valid free event", resp.StatusCode)
	}
	if price := dataOf(t, decodeBody(t, resp))["price_cents"]; price != 0.0 {
		t.Errorf("price_cents = %v; want 0", price)
	}
}

func TestCreateEvent_NegativePrice(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "host@example.com", model.RoleHost)

	fields := eventFormFields()
	fields["price_cents"] = "-100"

	resp := app.postMultipart(t, http.MethodPost, "/api/events", fields, "photo")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d; want 422", resp.StatusCode)
	}
	if _, ok := fieldErrors(t, decodeBody(t, resp))["price_cents"]; !ok {
		t.Error("expected price_cents field error")
	}
}
