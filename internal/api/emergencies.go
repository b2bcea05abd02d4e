package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wildhaven/parkops-backend/internal/image"
	"github.com/wildhaven/parkops-backend/internal/middleware"
	"github.com/wildhaven/parkops-backend/internal/notifications"
	"github.com/wildhaven/parkops-backend/internal/queue"
	"github.com/wildhaven/parkops-backend/internal/rbac"
	"github.com/wildhaven/parkops-backend/internal/store"
)

type reportEmergencyRequest struct {
	Description string `json:"description"`
	Location    string `json:"location"`
	Priority    string `json:"priority"`
}

type assignEmergencyRequest struct {
	AssigneeID uuid.UUID `json:"assignee_id"`
}

type EmergencyResponse struct {
	ID           uuid.UUID  `json:"id"`
	ReporterID   uuid.UUID  `json:"reporter_id"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	AssignedTo   *uuid.UUID `json:"assigned_to,omitempty"`
	HasPhoto     bool       `json:"has_photo"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

func convertToEmergencyResponse(e store.Emergency) EmergencyResponse {
	return EmergencyResponse{
		ID:          e.ID,
		ReporterID:  e.ReporterID,
		Description: e.Description,
		Location:    e.Location,
		Priority:    e.Priority,
		Status:      e.Status,
		AssignedTo:  e.AssignedTo,
		HasPhoto:    e.PhotoKey != nil,
		CreatedAt:   e.CreatedAt,
		ResolvedAt:  e.ResolvedAt,
	}
}

func validPriority(p string) bool {
	switch p {
	case store.EmergencyPriorityLow, store.EmergencyPriorityMedium, store.EmergencyPriorityHigh:
		return true
	}
	return false
}

// ReportEmergency files a report and queues a broadcast to responding
// staff on the critical queue.
func (s *Server) ReportEmergency(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requirePermission(w, r, rbac.ReportEmergency)
	if !ok {
		return
	}

	var req reportEmergencyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return
	}

	var details []ErrorDetail
	if req.Description == "" {
		details = append(details, ErrorDetail{Field: "description", Message: "description is required"})
	}
	if req.Location == "" {
		details = append(details, ErrorDetail{Field: "location", Message: "location is required"})
	}
	if req.Priority == "" {
		req.Priority = store.EmergencyPriorityMedium
	}
	if !validPriority(req.Priority) {
		details = append(details, ErrorDetail{Field: "priority", Message: "priority must be low, medium or high"})
	}
	if len(details) > 0 {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid emergency report", details))
		return
	}

	emergency, err := s.db.Queries().CreateEmergency(r.Context(), store.CreateEmergencyParams{
		ReporterID:  user.ID,
		Description: req.Description,
		Location:    req.Location,
		Priority:    req.Priority,
	})
	if err != nil {
		logger.Error("failed to create emergency", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	if _, err := s.queue.EnqueueCritical(queue.TypeEmergencyBroadcast, queue.EmergencyBroadcastPayload{
		EmergencyID: emergency.ID,
	}); err != nil {
		// report is stored either way, responders may still see it in-app
		logger.Error("failed to enqueue emergency broadcast", "emergency_id", emergency.ID, "error", err)
	}

	logger.Info("emergency reported",
		"emergency_id", emergency.ID,
		"priority", emergency.Priority,
		"location", emergency.Location)

	writeJSON(w, r, http.StatusCreated, convertToEmergencyResponse(emergency))
}

func (s *Server) ListEmergencies(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.engine.HasAnyPermission(user.Role, []rbac.Permission{rbac.ManageEmergencies, rbac.RespondEmergency}) {
		writeError(w, r, http.StatusForbidden, PermissionDenied("Insufficient permissions"))
		return
	}

	limit, offset := parsePagination(r)

	var (
		emergencies []store.Emergency
		err         error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		emergencies, err = s.db.Queries().ListEmergenciesByStatus(r.Context(), status, limit, offset)
	} else {
		emergencies, err = s.db.Queries().ListEmergencies(r.Context(), limit, offset)
	}
	if err != nil {
		logger.Error("failed to list emergencies", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	response := make([]EmergencyResponse, 0, len(emergencies))
	for _, e := range emergencies {
		response = append(response, convertToEmergencyResponse(e))
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (s *Server) GetEmergency(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	emergency, ok := s.loadEmergency(w, r)
	if !ok {
		return
	}

	isReporter := emergency.ReporterID == user.ID
	if !isReporter && !s.engine.HasAnyPermission(user.Role, []rbac.Permission{rbac.ManageEmergencies, rbac.RespondEmergency}) {
		writeError(w, r, http.StatusForbidden, PermissionDenied("Insufficient permissions to view this emergency"))
		return
	}

	writeJSON(w, r, http.StatusOK, convertToEmergencyResponse(emergency))
}

// AssignEmergency puts a responder on an open report and notifies them.
func (s *Server) AssignEmergency(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requirePermission(w, r, rbac.ManageEmergencies)
	if !ok {
		return
	}

	emergencyID, err := uuid.Parse(chi.URLParam(r, "emergencyID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid emergency ID", nil))
		return
	}

	var req assignEmergencyRequest
	if err := decodeJSON(r, &req); err != nil || req.AssigneeID == uuid.Nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("assignee_id is required", nil))
		return
	}

	assignee, err := s.db.Queries().GetUser(r.Context(), req.AssigneeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusBadRequest, ValidationErr("Assignee does not exist", nil))
			return
		}
		logger.Error("failed to get assignee", "user_id", req.AssigneeID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	if !s.engine.HasPermission(rbac.Role(assignee.Role), rbac.RespondEmergency) {
		writeError(w, r, http.StatusBadRequest,
			ValidationErr("Assignee cannot respond to emergencies", nil))
		return
	}

	emergency, err := s.db.Queries().AssignEmergency(r.Context(), emergencyID, req.AssigneeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusConflict, ConflictErr("Emergency is missing or already resolved"))
			return
		}
		logger.Error("failed to assign emergency", "emergency_id", emergencyID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	if err := s.notifier.Notify(r.Context(), user.ID, "emergency", emergency.ID,
		fmt.Sprintf("You have been assigned to an emergency at %s", emergency.Location),
		[]notifications.NotifierGroup{{
			IDs:      []uuid.UUID{req.AssigneeID},
			Template: "emergency_assigned",
			TemplateData: map[string]interface{}{
				"Priority":    emergency.Priority,
				"Location":    emergency.Location,
				"Description": emergency.Description,
			},
		}}); err != nil {
		logger.Error("failed to dispatch assignment notification", "emergency_id", emergency.ID, "error", err)
	}

	logger.Info("emergency assigned",
		"emergency_id", emergency.ID,
		"assignee_id", req.AssigneeID,
		"by", user.ID)

	writeJSON(w, r, http.StatusOK, convertToEmergencyResponse(emergency))
}

// ResolveEmergency closes a report. Allowed for manage_emergencies
// holders or the assigned responder.
func (s *Server) ResolveEmergency(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	emergency, ok := s.loadEmergency(w, r)
	if !ok {
		return
	}

	isAssignee := emergency.AssignedTo != nil && *emergency.AssignedTo == user.ID &&
		s.engine.HasPermission(user.Role, rbac.RespondEmergency)
	if !isAssignee && !s.engine.HasPermission(user.Role, rbac.ManageEmergencies) {
		writeError(w, r, http.StatusForbidden, PermissionDenied("Insufficient permissions to resolve this emergency"))
		return
	}

	resolved, err := s.db.Queries().ResolveEmergency(r.Context(), emergency.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusConflict, ConflictErr("Emergency is already resolved"))
			return
		}
		logger.Error("failed to resolve emergency", "emergency_id", emergency.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	logger.Info("emergency resolved", "emergency_id", resolved.ID, "by", user.ID)

	writeJSON(w, r, http.StatusOK, convertToEmergencyResponse(resolved))
}

// UploadEmergencyPhoto accepts a multipart photo, stores original and
// thumbnail in S3 and records the keys.
func (s *Server) UploadEmergencyPhoto(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	emergency, ok := s.loadEmergency(w, r)
	if !ok {
		return
	}

	isReporter := emergency.ReporterID == user.ID
	if !isReporter && !s.engine.HasPermission(user.Role, rbac.ManageEmergencies) {
		writeError(w, r, http.StatusForbidden, PermissionDenied("Insufficient permissions to attach a photo"))
		return
	}

	if err := r.ParseMultipartForm(image.MaxFileSize); err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid multipart form", nil))
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("photo file field is required", nil))
		return
	}
	defer file.Close()

	processed, err := image.ValidateAndProcess(file, header.Size)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr(err.Error(), nil))
		return
	}

	ext := image.Extension(processed.ContentType)
	photoKey := fmt.Sprintf("emergencies/%s/photo%s", emergency.ID, ext)
	thumbKey := fmt.Sprintf("emergencies/%s/thumb%s", emergency.ID, ext)

	if err := s.storage.PutObject(r.Context(), photoKey, bytes.NewReader(processed.Original), processed.ContentType); err != nil {
		logger.Error("failed to upload photo", "emergency_id", emergency.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}
	if err := s.storage.PutObject(r.Context(), thumbKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		logger.Error("failed to upload thumbnail", "emergency_id", emergency.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	updated, err := s.db.Queries().SetEmergencyPhoto(r.Context(), emergency.ID, photoKey, thumbKey)
	if err != nil {
		logger.Error("failed to record photo keys", "emergency_id", emergency.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	logger.Info("emergency photo uploaded",
		"emergency_id", emergency.ID,
		"content_type", processed.ContentType,
		"width", processed.Width,
		"height", processed.Height)

	writeJSON(w, r, http.StatusOK, convertToEmergencyResponse(updated))
}

type photoURLResponse struct {
	PhotoURL     string `json:"photo_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ExpiresIn    int    `json:"expires_in_seconds"`
}

// GetEmergencyPhotoURL returns short-lived presigned URLs so clients
// fetch the photo straight from storage.
func (s *Server) GetEmergencyPhotoURL(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	emergency, ok := s.loadEmergency(w, r)
	if !ok {
		return
	}

	isReporter := emergency.ReporterID == user.ID
	if !isReporter && !s.engine.HasAnyPermission(user.Role, []rbac.Permission{rbac.ManageEmergencies, rbac.RespondEmergency}) {
		writeError(w, r, http.StatusForbidden, PermissionDenied("Insufficient permissions to view this photo"))
		return
	}

	if emergency.PhotoKey == nil {
		writeError(w, r, http.StatusNotFound, NotFound("Photo"))
		return
	}

	const expiry = 15 * time.Minute

	photoURL, err := s.storage.GeneratePresignedURL(r.Context(), http.MethodGet, *emergency.PhotoKey, expiry)
	if err != nil {
		logger.Error("failed to presign photo URL", "emergency_id", emergency.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	response := photoURLResponse{
		PhotoURL:  photoURL,
		ExpiresIn: int(expiry.Seconds()),
	}

	if emergency.ThumbnailKey != nil {
		thumbURL, err := s.storage.GeneratePresignedURL(r.Context(), http.MethodGet, *emergency.ThumbnailKey, expiry)
		if err != nil {
			logger.Warn("failed to presign thumbnail URL", "emergency_id", emergency.ID, "error", err)
		} else {
			response.ThumbnailURL = thumbURL
		}
	}

	writeJSON(w, r, http.StatusOK, response)
}

func (s *Server) loadEmergency(w http.ResponseWriter, r *http.Request) (store.Emergency, bool) {
	logger := middleware.GetLoggerFromContext(r.Context())

	emergencyID, err := uuid.Parse(chi.URLParam(r, "emergencyID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid emergency ID", nil))
		return store.Emergency{}, false
	}

	emergency, err := s.db.Queries().GetEmergency(r.Context(), emergencyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("Emergency"))
			return store.Emergency{}, false
		}
		logger.Error("failed to get emergency", "emergency_id", emergencyID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return store.Emergency{}, false
	}

	return emergency, true
}
