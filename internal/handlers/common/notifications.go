package common

import (
	"net/http"

	"millflow/internal/response"
)

// ListNotifications handles GET /api/v1/notifications?role=&unread=true.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	notes, err := h.Svc.ListNotifications(r.Context(), q.Get("role"), q.Get("unread") == "true")
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, notes)
}

// MarkNotificationRead handles POST /api/v1/notifications/:id/read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request, id string) {
	n, err := h.Svc.MarkNotificationRead(r.Context(), id)
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, n)
}

// MarkAllNotificationsRead handles POST /api/v1/notifications/read-all?role=.
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.Svc.MarkAllNotificationsRead(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, map[string]int{"updated": n})
}
