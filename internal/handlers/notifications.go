package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hospital-portal/internal/notify"
)

// NotificationHandler exposes the operator notification channel.
type NotificationHandler struct {
	notes *notify.Channel
}

func NewNotificationHandler(notes *notify.Channel) *NotificationHandler {
	return &NotificationHandler{notes: notes}
}

// List returns the visible notifications, oldest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	type item struct {
		notify.Message
		Duration int64 `json:"duration"`
	}

	visible := h.notes.Visible()
	out := make([]item, len(visible))
	for i, m := range visible {
		out[i] = item{Message: m, Duration: m.DurationMS()}
	}
	JSON(w, http.StatusOK, map[string]any{"data": out})
}

// Dismiss removes one notification before its timer does.
func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if !h.notes.Dismiss(chi.URLParam(r, "id")) {
		JSONError(w, http.StatusNotFound, "Notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
