package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/wildhaven/parkops-backend/internal/auth"
	"github.com/wildhaven/parkops-backend/internal/booking"
	"github.com/wildhaven/parkops-backend/internal/middleware"
	"github.com/wildhaven/parkops-backend/internal/notifications"
	"github.com/wildhaven/parkops-backend/internal/rbac"
	"github.com/wildhaven/parkops-backend/internal/store"
)

type createBookingRequest struct {
	Participants     int                `json:"participants"`
	Date             openapi_types.Date `json:"date"`
	RequestTourGuide bool               `json:"request_tour_guide"`
}

type BookingResponse struct {
	ID                 uuid.UUID          `json:"id"`
	ActivityID         uuid.UUID          `json:"activity_id"`
	ActivityName       *string            `json:"activity_name,omitempty"`
	UserID             uuid.UUID          `json:"user_id"`
	UserEmail          *string            `json:"user_email,omitempty"`
	Participants       int                `json:"participants"`
	BookingDate        openapi_types.Date `json:"booking_date"`
	TourGuideRequested bool               `json:"tour_guide_requested"`
	Status             string             `json:"status"`
	CreatedAt          time.Time          `json:"created_at"`
	CancelledAt        *time.Time         `json:"cancelled_at,omitempty"`
}

// bookingDecisionResponse is returned on a successful booking. Warnings
// carry informational rule messages (remaining slots, guide
// confirmation) even though the booking went through.
type bookingDecisionResponse struct {
	Booking   BookingResponse `json:"booking"`
	Warnings  []string        `json:"warnings,omitempty"`
	SlotsLeft int             `json:"slots_left"`
}

func convertToBookingResponse(b store.Booking) BookingResponse {
	return BookingResponse{
		ID:                 b.ID,
		ActivityID:         b.ActivityID,
		UserID:             b.UserID,
		Participants:       b.Participants,
		BookingDate:        openapi_types.Date{Time: b.BookingDate},
		TourGuideRequested: b.TourGuideRequested,
		Status:             b.Status,
		CreatedAt:          b.CreatedAt,
		CancelledAt:        b.CancelledAt,
	}
}

func convertToBookingResponseFromRow(row store.BookingRow) BookingResponse {
	response := convertToBookingResponse(row.Booking)
	response.ActivityName = &row.ActivityName
	response.UserEmail = &row.UserEmail
	return response
}

// toRuleActivity maps a stored activity plus live counts into the rule
// engine's value type.
func toRuleActivity(a store.Activity, currentBookings int) booking.Activity {
	weekdays := make([]time.Weekday, 0, len(a.AllowedWeekdays))
	for _, d := range a.AllowedWeekdays {
		weekdays = append(weekdays, time.Weekday(d))
	}

	var requiredRole rbac.Role
	if a.RequiredRole != nil {
		requiredRole = rbac.Role(*a.RequiredRole)
	}

	return booking.Activity{
		Capacity:                a.Capacity,
		CurrentBookings:         currentBookings,
		Status:                  a.Status,
		RequiredRole:            requiredRole,
		PerUserLimit:            a.PerUserLimit,
		MinAdvanceDays:          a.MinAdvanceDays,
		MaxAdvanceDays:          a.MaxAdvanceDays,
		AllowedWeekdays:         weekdays,
		TourGuideAvailable:      a.TourGuideAvailable,
		MinParticipantsForGuide: a.MinParticipantsForGuide,
	}
}

// CreateBooking runs the full rule set against the requested activity
// and date, and only persists the booking when every rule passes.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	activity, ok := s.loadActivity(w, r)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return
	}

	// The rule engine treats an unauthenticated caller as a distinct
	// failure mode, so the user is resolved here rather than rejected
	// up front.
	var ruleUser *booking.User
	caller, authed := auth.GetAuthenticatedUser(r.Context())
	if authed {
		existing, err := s.db.Queries().CountUserBookings(r.Context(), activity.ID, caller.ID)
		if err != nil {
			logger.Error("failed to count user bookings", "activity_id", activity.ID, "error", err)
			writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
			return
		}
		ruleUser = &booking.User{
			ID:               caller.ID,
			Role:             caller.Role,
			ExistingBookings: existing,
		}
	}

	booked, err := s.db.Queries().CountConfirmedParticipants(r.Context(), activity.ID, req.Date.Time)
	if err != nil {
		logger.Error("failed to count participants", "activity_id", activity.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	decision := booking.ValidateCompleteBooking(
		toRuleActivity(activity, booked),
		booking.Attempt{
			Participants:     req.Participants,
			Date:             req.Date.Time,
			RequestTourGuide: req.RequestTourGuide,
			User:             ruleUser,
		},
	)

	if !decision.OK {
		if decision.RequiresAuth {
			writeError(w, r, http.StatusUnauthorized, Unauthorized("You must be logged in to book an activity"))
			return
		}

		failures := make([]string, 0, len(decision.Failures))
		for _, ro := range decision.Failures {
			failures = append(failures, ro.Message)
		}
		writeError(w, r, http.StatusUnprocessableEntity,
			BookingRejectedErr(booking.FormatFailures(decision), failures))
		return
	}

	created, err := s.db.Queries().CreateBooking(r.Context(), store.CreateBookingParams{
		ActivityID:         activity.ID,
		UserID:             caller.ID,
		Participants:       req.Participants,
		BookingDate:        req.Date.Time,
		TourGuideRequested: req.RequestTourGuide,
	})
	if err != nil {
		logger.Error("failed to create booking", "activity_id", activity.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	logger.Info("booking created",
		"booking_id", created.ID,
		"activity_id", activity.ID,
		"participants", created.Participants)

	if err := s.notifier.Notify(r.Context(), caller.ID, "booking", created.ID,
		"Your booking for "+activity.Name+" is confirmed",
		[]notifications.NotifierGroup{{
			IDs:      []uuid.UUID{caller.ID},
			Template: "booking_confirmed",
			TemplateData: map[string]interface{}{
				"ActivityName": activity.Name,
				"Date":         req.Date.Time.Format("2006-01-02"),
				"Participants": created.Participants,
				"TourGuide":    created.TourGuideRequested,
			},
		}}); err != nil {
		// booking already persisted, delivery is best effort
		logger.Error("failed to dispatch booking notification", "booking_id", created.ID, "error", err)
	}

	warnings := make([]string, 0, len(decision.Warnings))
	for _, ro := range decision.Warnings {
		warnings = append(warnings, ro.Message)
	}

	slotsLeft := 0
	if capacityOutcome, found := decision.Outcome(booking.RuleCapacity); found {
		slotsLeft = capacityOutcome.SlotsLeft
	}

	writeJSON(w, r, http.StatusCreated, bookingDecisionResponse{
		Booking:   convertToBookingResponse(created),
		Warnings:  warnings,
		SlotsLeft: slotsLeft,
	})
}

func (s *Server) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)

	bookings, err := s.db.Queries().ListBookingsByUser(r.Context(), user.ID, limit, offset)
	if err != nil {
		logger.Error("failed to list bookings for user", "user_id", user.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, convertToBookingResponseFromRow(b))
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (s *Server) GetBooking(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid booking ID", nil))
		return
	}

	row, err := s.db.Queries().GetBooking(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("Booking"))
			return
		}
		logger.Error("failed to get booking", "booking_id", bookingID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	// owner, or anyone holding view_all_data
	isOwner := row.UserID == user.ID
	if !isOwner && !s.engine.HasPermission(user.Role, rbac.ViewAllData) {
		writeError(w, r, http.StatusForbidden, PermissionDenied("Insufficient permissions to view this booking"))
		return
	}

	writeJSON(w, r, http.StatusOK, convertToBookingResponseFromRow(row))
}

// CancelBooking lets the owner cancel before the booked date; holders
// of manage_bookings can cancel anytime.
func (s *Server) CancelBooking(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid booking ID", nil))
		return
	}

	row, err := s.db.Queries().GetBooking(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("Booking"))
			return
		}
		logger.Error("failed to get booking", "booking_id", bookingID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	isOwner := row.UserID == user.ID
	canManage := s.engine.HasPermission(user.Role, rbac.ManageBookings)

	canCancel := canManage
	if isOwner && time.Now().Before(row.BookingDate) {
		canCancel = true
	}

	if !canCancel {
		writeError(w, r, http.StatusForbidden, PermissionDenied("Insufficient permissions to cancel this booking"))
		return
	}

	cancelled, err := s.db.Queries().CancelBooking(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusConflict, ConflictErr("Booking is not in a cancellable state"))
			return
		}
		logger.Error("failed to cancel booking", "booking_id", bookingID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	logger.Info("booking cancelled", "booking_id", bookingID, "by", user.ID)

	writeJSON(w, r, http.StatusOK, convertToBookingResponse(cancelled))
}

// ListActivityBookings requires manage_bookings or view_all_data.
func (s *Server) ListActivityBookings(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.engine.HasAnyPermission(user.Role, []rbac.Permission{rbac.ManageBookings, rbac.ViewAllData}) {
		writeError(w, r, http.StatusForbidden, PermissionDenied("Insufficient permissions"))
		return
	}

	activityID, err := uuid.Parse(chi.URLParam(r, "activityID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid activity ID", nil))
		return
	}

	limit, offset := parsePagination(r)

	bookings, err := s.db.Queries().ListBookingsByActivity(r.Context(), activityID, limit, offset)
	if err != nil {
		logger.Error("failed to list bookings for activity", "activity_id", activityID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, convertToBookingResponseFromRow(b))
	}
	writeJSON(w, r, http.StatusOK, response)
}
