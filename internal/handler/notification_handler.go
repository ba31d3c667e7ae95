package handler

import (
	"net/http"

	"recipe-admin/internal/event"
)

type NotificationHandler struct {
	inbox *event.Inbox
}

func NewNotificationHandler(inbox *event.Inbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

type notificationsResponse struct {
	Notifications []event.Event `json:"notifications"`
	Redirect      string        `json:"redirect,omitempty"`
}

// Drain hands the pending toasts to the UI exactly once.
func (h *NotificationHandler) Drain(w http.ResponseWriter, r *http.Request) {
	events, redirect := h.inbox.Drain()
	writeSuccess(w, http.StatusOK, notificationsResponse{Notifications: events, Redirect: redirect}, nil)
}
