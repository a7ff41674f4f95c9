package handler

import (
	"context"
	"net/http"
	"time"
)

// Health handles GET /api/health. It reports whether the database answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		WriteJSON(w, http.StatusServiceUnavailable, Response{Data: status})
		return
	}

	WriteSuccess(w, status, nil)
}
