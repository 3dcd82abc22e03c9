package services

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neopaysim/backend/internal/middleware"
	"github.com/neopaysim/backend/internal/store"
)

type NotificationService struct {
	store store.Store
}

func NewNotificationService(st store.Store) *NotificationService {
	return &NotificationService{store: st}
}

// ListNotifications returns the caller's notifications, newest first.
func (ns *NotificationService) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	notifications, err := ns.store.GetNotifications(r.Context(), userID)
	if err != nil {
		log.Printf("[NOTIFY] Failed to list notifications for %s: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch notifications", http.StatusInternalServerError, nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

// MarkRead flags a single notification as read.
func (ns *NotificationService) MarkRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	id := chi.URLParam(r, "notificationId")
	if err := ns.store.MarkNotificationRead(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotificationNotFound) {
			SendErrorResponse(w, "Notification not found", http.StatusNotFound, nil)
			return
		}
		log.Printf("[NOTIFY] Failed to mark notification %s read: %v", id, err)
		SendErrorResponse(w, "Failed to update notification", http.StatusInternalServerError, nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}
