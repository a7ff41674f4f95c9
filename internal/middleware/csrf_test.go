package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func csrfTestKey() []byte {
	return bytes.Repeat([]byte("k"), 32)
}

func TestCSRF_AllowsSafeMethods(t *testing.T) {
	handler := CSRF(DefaultCSRFConfig(csrfTestKey(), false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET status = %d; want 200", rec.Code)
	}
}

func TestCSRF_RejectsCrossSitePost(t *testing.T) {
	handler := CSRF(DefaultCSRFConfig(csrfTestKey(), false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/events", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("cross-site POST status = %d; want 403", rec.Code)
	}
}

func TestCSRF_AllowsSameOriginPost(t *testing.T) {
	handler := CSRF(DefaultCSRFConfig(csrfTestKey(), false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/events", nil)
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("same-origin POST status = %d; want 200", rec.Code)
	}
}

func TestDefaultCSRFConfig(t *testing.T) {
	dev := DefaultCSRFConfig(csrfTestKey(), true)
	if len(dev.TrustedOrigins) == 0 {
		t.Error("development config should trust localhost origins")
	}

	prod := DefaultCSRFConfig(csrfTestKey(), false)
	if len(prod.TrustedOrigins) != 0 {
		t.Error("production config should not trust extra origins")
	}
}
