package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wildhaven/parkops-backend/internal/middleware"
	"github.com/wildhaven/parkops-backend/internal/store"
)

type NotificationResponse struct {
	ID         uuid.UUID  `json:"id"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	EntityType string     `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`
	Message    string     `json:"message"`
	Read       bool       `json:"read"`
	CreatedAt  time.Time  `json:"created_at"`
}

func convertToNotificationResponse(n store.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		ActorID:    n.ActorID,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		Message:    n.Message,
		Read:       n.Read,
		CreatedAt:  n.CreatedAt,
	}
}

func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)

	items, err := s.notifier.GetUserNotifications(r.Context(), user.ID, limit, offset)
	if err != nil {
		logger.Error("failed to list notifications", "user_id", user.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	response := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		response = append(response, convertToNotificationResponse(n))
	}
	writeJSON(w, r, http.StatusOK, response)
}

type unreadCountResponse struct {
	Unread int64 `json:"unread"`
}

func (s *Server) GetUnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	count, err := s.notifier.GetUnreadCount(r.Context(), user.ID)
	if err != nil {
		logger.Error("failed to count unread notifications", "user_id", user.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, unreadCountResponse{Unread: count})
}

func (s *Server) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	notificationID, err := uuid.Parse(chi.URLParam(r, "notificationID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid notification ID", nil))
		return
	}

	notification, err := s.notifier.MarkAsRead(r.Context(), user.ID, notificationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("Notification"))
			return
		}
		logger.Error("failed to mark notification read", "notification_id", notificationID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, convertToNotificationResponse(notification))
}

func (s *Server) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	if err := s.notifier.MarkAllAsRead(r.Context(), user.ID); err != nil {
		logger.Error("failed to mark notifications read", "user_id", user.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, messageResponse{Message: "All notifications marked as read"})
}
