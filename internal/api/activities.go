package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wildhaven/parkops-backend/internal/booking"
	"github.com/wildhaven/parkops-backend/internal/middleware"
	"github.com/wildhaven/parkops-backend/internal/rbac"
	"github.com/wildhaven/parkops-backend/internal/store"
)

type activityRequest struct {
	Name                    string  `json:"name"`
	Description             string  `json:"description"`
	Category                string  `json:"category"`
	Capacity                int     `json:"capacity"`
	Status                  string  `json:"status"`
	RequiredRole            *string `json:"required_role"`
	PerUserLimit            int     `json:"per_user_limit"`
	MinAdvanceDays          *int    `json:"min_advance_days"`
	MaxAdvanceDays          *int    `json:"max_advance_days"`
	AllowedWeekdays         []int32 `json:"allowed_weekdays"`
	TourGuideAvailable      bool    `json:"tour_guide_available"`
	MinParticipantsForGuide *int    `json:"min_participants_for_guide"`
}

type ActivityResponse struct {
	ID                      uuid.UUID `json:"id"`
	Name                    string    `json:"name"`
	Description             string    `json:"description"`
	Category                string    `json:"category"`
	Capacity                int       `json:"capacity"`
	Status                  string    `json:"status"`
	RequiredRole            *string   `json:"required_role,omitempty"`
	PerUserLimit            int       `json:"per_user_limit"`
	MinAdvanceDays          int       `json:"min_advance_days"`
	MaxAdvanceDays          int       `json:"max_advance_days"`
	AllowedWeekdays         []int32   `json:"allowed_weekdays,omitempty"`
	TourGuideAvailable      bool      `json:"tour_guide_available"`
	MinParticipantsForGuide int       `json:"min_participants_for_guide"`
	CreatedAt               time.Time `json:"created_at"`
}

func convertToActivityResponse(a store.Activity) ActivityResponse {
	return ActivityResponse{
		ID:                      a.ID,
		Name:                    a.Name,
		Description:             a.Description,
		Category:                a.Category,
		Capacity:                a.Capacity,
		Status:                  a.Status,
		RequiredRole:            a.RequiredRole,
		PerUserLimit:            a.PerUserLimit,
		MinAdvanceDays:          a.MinAdvanceDays,
		MaxAdvanceDays:          a.MaxAdvanceDays,
		AllowedWeekdays:         a.AllowedWeekdays,
		TourGuideAvailable:      a.TourGuideAvailable,
		MinParticipantsForGuide: a.MinParticipantsForGuide,
		CreatedAt:               a.CreatedAt,
	}
}

// validateActivityRequest applies scheduling defaults and checks the
// fields the database cannot.
func validateActivityRequest(req *activityRequest) []ErrorDetail {
	var details []ErrorDetail
	if req.Name == "" {
		details = append(details, ErrorDetail{Field: "name", Message: "name is required"})
	}
	if req.Capacity <= 0 {
		req.Capacity = booking.DefaultCapacity
	}
	if req.Status == "" {
		req.Status = booking.StatusActive
	}
	if req.MinAdvanceDays == nil {
		v := booking.DefaultMinAdvanceDays
		req.MinAdvanceDays = &v
	}
	if req.MaxAdvanceDays == nil {
		v := booking.DefaultMaxAdvanceDays
		req.MaxAdvanceDays = &v
	}
	if *req.MinAdvanceDays < 0 {
		details = append(details, ErrorDetail{Field: "min_advance_days", Message: "must not be negative"})
	}
	if *req.MaxAdvanceDays < *req.MinAdvanceDays {
		details = append(details, ErrorDetail{Field: "max_advance_days", Message: "must not be less than min_advance_days"})
	}
	if req.MinParticipantsForGuide == nil {
		v := booking.DefaultMinParticipantsForGuide
		req.MinParticipantsForGuide = &v
	}
	for _, d := range req.AllowedWeekdays {
		if d < 0 || d > 6 {
			details = append(details, ErrorDetail{Field: "allowed_weekdays", Message: "weekdays must be 0 (Sunday) through 6 (Saturday)"})
			break
		}
	}
	if req.RequiredRole != nil && !rbac.Role(*req.RequiredRole).Valid() {
		details = append(details, ErrorDetail{Field: "required_role", Message: "unknown role"})
	}
	return details
}

func (s *Server) CreateActivity(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.ManageActivities); !ok {
		return
	}

	var req activityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return
	}

	if details := validateActivityRequest(&req); len(details) > 0 {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid activity", details))
		return
	}

	activity, err := s.db.Queries().CreateActivity(r.Context(), store.CreateActivityParams{
		Name:                    req.Name,
		Description:             req.Description,
		Category:                req.Category,
		Capacity:                req.Capacity,
		Status:                  req.Status,
		RequiredRole:            req.RequiredRole,
		PerUserLimit:            req.PerUserLimit,
		MinAdvanceDays:          *req.MinAdvanceDays,
		MaxAdvanceDays:          *req.MaxAdvanceDays,
		AllowedWeekdays:         req.AllowedWeekdays,
		TourGuideAvailable:      req.TourGuideAvailable,
		MinParticipantsForGuide: *req.MinParticipantsForGuide,
	})
	if err != nil {
		logger.Error("failed to create activity", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusCreated, convertToActivityResponse(activity))
}

func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	limit, offset := parsePagination(r)

	var (
		activities []store.Activity
		err        error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		activities, err = s.db.Queries().ListActivitiesByStatus(r.Context(), status)
	} else {
		activities, err = s.db.Queries().ListActivities(r.Context(), limit, offset)
	}
	if err != nil {
		logger.Error("failed to list activities", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	response := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		response = append(response, convertToActivityResponse(a))
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (s *Server) GetActivity(w http.ResponseWriter, r *http.Request) {
	activity, ok := s.loadActivity(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, convertToActivityResponse(activity))
}

func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.ManageActivities); !ok {
		return
	}

	current, ok := s.loadActivity(w, r)
	if !ok {
		return
	}

	var req activityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return
	}

	if details := validateActivityRequest(&req); len(details) > 0 {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid activity", details))
		return
	}

	activity, err := s.db.Queries().UpdateActivity(r.Context(), store.UpdateActivityParams{
		ID:                      current.ID,
		Name:                    req.Name,
		Description:             req.Description,
		Category:                req.Category,
		Capacity:                req.Capacity,
		Status:                  req.Status,
		RequiredRole:            req.RequiredRole,
		PerUserLimit:            req.PerUserLimit,
		MinAdvanceDays:          *req.MinAdvanceDays,
		MaxAdvanceDays:          *req.MaxAdvanceDays,
		AllowedWeekdays:         req.AllowedWeekdays,
		TourGuideAvailable:      req.TourGuideAvailable,
		MinParticipantsForGuide: *req.MinParticipantsForGuide,
	})
	if err != nil {
		logger.Error("failed to update activity", "activity_id", current.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, convertToActivityResponse(activity))
}

func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.ManageActivities); !ok {
		return
	}

	activityID, err := uuid.Parse(chi.URLParam(r, "activityID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid activity ID", nil))
		return
	}

	if err := s.db.Queries().DeleteActivity(r.Context(), activityID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("Activity"))
			return
		}
		logger.Error("failed to delete activity", "activity_id", activityID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusNoContent, nil)
}

type availabilityResponse struct {
	ActivityID     uuid.UUID `json:"activity_id"`
	Date           string    `json:"date"`
	Capacity       int       `json:"capacity"`
	Booked         int       `json:"booked"`
	SlotsLeft      int       `json:"slots_left"`
	CapacityLevel  string    `json:"capacity_level"`
	CapacityAdvice string    `json:"capacity_advice"`
}

// GetActivityAvailability reports remaining slots for one date plus a
// capacity advisory band.
func (s *Server) GetActivityAvailability(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	activity, ok := s.loadActivity(w, r)
	if !ok {
		return
	}

	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("date query parameter must be YYYY-MM-DD", nil))
		return
	}

	booked, err := s.db.Queries().CountConfirmedParticipants(r.Context(), activity.ID, date)
	if err != nil {
		logger.Error("failed to count participants", "activity_id", activity.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	capacity := activity.Capacity
	if capacity <= 0 {
		capacity = booking.DefaultCapacity
	}
	slotsLeft := capacity - booked
	if slotsLeft < 0 {
		slotsLeft = 0
	}

	advice := booking.ClassifyCapacity(slotsLeft, capacity)

	writeJSON(w, r, http.StatusOK, availabilityResponse{
		ActivityID:     activity.ID,
		Date:           date.Format("2006-01-02"),
		Capacity:       capacity,
		Booked:         booked,
		SlotsLeft:      slotsLeft,
		CapacityLevel:  string(advice.Level),
		CapacityAdvice: advice.Message,
	})
}

// loadActivity parses the path ID and fetches the row, writing
// 400/404/500 responses itself.
func (s *Server) loadActivity(w http.ResponseWriter, r *http.Request) (store.Activity, bool) {
	logger := middleware.GetLoggerFromContext(r.Context())

	activityID, err := uuid.Parse(chi.URLParam(r, "activityID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid activity ID", nil))
		return store.Activity{}, false
	}

	activity, err := s.db.Queries().GetActivity(r.Context(), activityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("Activity"))
			return store.Activity{}, false
		}
		logger.Error("failed to get activity", "activity_id", activityID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return store.Activity{}, false
	}

	return activity, true
}
