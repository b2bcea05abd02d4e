package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wildhaven/parkops-backend/internal/middleware"
	"github.com/wildhaven/parkops-backend/internal/queue"
	"github.com/wildhaven/parkops-backend/internal/rbac"
	"github.com/wildhaven/parkops-backend/internal/store"
)

type submitApplicationRequest struct {
	ApplicantName string `json:"applicant_name"`
	Email         string `json:"email"`
	RoleApplied   string `json:"role_applied"`
	CoverNote     string `json:"cover_note"`
}

type reviewApplicationRequest struct {
	Approve bool    `json:"approve"`
	Note    *string `json:"note"`
}

type ApplicationResponse struct {
	ID            uuid.UUID  `json:"id"`
	ApplicantName string     `json:"applicant_name"`
	Email         string     `json:"email"`
	RoleApplied   string     `json:"role_applied"`
	CoverNote     string     `json:"cover_note"`
	Status        string     `json:"status"`
	ReviewedBy    *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewNote    *string    `json:"review_note,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
}

func convertToApplicationResponse(a store.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:            a.ID,
		ApplicantName: a.ApplicantName,
		Email:         a.Email,
		RoleApplied:   a.RoleApplied,
		CoverNote:     a.CoverNote,
		Status:        a.Status,
		ReviewedBy:    a.ReviewedBy,
		ReviewNote:    a.ReviewNote,
		CreatedAt:     a.CreatedAt,
		ReviewedAt:    a.ReviewedAt,
	}
}

// SubmitApplication accepts staff applications. Applicants may not yet
// have an account, so the endpoint only needs the caller (if any) to
// hold submit_application when authenticated.
func (s *Server) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req submitApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return
	}

	var details []ErrorDetail
	if req.ApplicantName == "" {
		details = append(details, ErrorDetail{Field: "applicant_name", Message: "applicant_name is required"})
	}
	if req.Email == "" {
		details = append(details, ErrorDetail{Field: "email", Message: "email is required"})
	}
	role := rbac.Canonical(req.RoleApplied)
	if !role.Valid() || role == rbac.RoleAdmin || role == rbac.RoleTourist {
		details = append(details, ErrorDetail{Field: "role_applied", Message: "must be an applicable staff role"})
	}
	if len(details) > 0 {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid application", details))
		return
	}

	application, err := s.db.Queries().CreateApplication(r.Context(), store.CreateApplicationParams{
		ApplicantName: req.ApplicantName,
		Email:         req.Email,
		RoleApplied:   role.String(),
		CoverNote:     req.CoverNote,
	})
	if err != nil {
		logger.Error("failed to create application", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	logger.Info("application submitted", "application_id", application.ID, "role", role)

	writeJSON(w, r, http.StatusCreated, convertToApplicationResponse(application))
}

func (s *Server) ListApplications(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.ApproveApplication); !ok {
		return
	}

	limit, offset := parsePagination(r)

	var (
		applications []store.Application
		err          error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		applications, err = s.db.Queries().ListApplicationsByStatus(r.Context(), status, limit, offset)
	} else {
		applications, err = s.db.Queries().ListApplications(r.Context(), limit, offset)
	}
	if err != nil {
		logger.Error("failed to list applications", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	response := make([]ApplicationResponse, 0, len(applications))
	for _, a := range applications {
		response = append(response, convertToApplicationResponse(a))
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (s *Server) GetApplication(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.ApproveApplication); !ok {
		return
	}

	applicationID, err := uuid.Parse(chi.URLParam(r, "applicationID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid application ID", nil))
		return
	}

	application, err := s.db.Queries().GetApplication(r.Context(), applicationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("Application"))
			return
		}
		logger.Error("failed to get application", "application_id", applicationID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, convertToApplicationResponse(application))
}

// ReviewApplication approves or rejects a pending application. On
// approval a user account is created with the applied role, and the
// applicant is emailed either way.
func (s *Server) ReviewApplication(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requirePermission(w, r, rbac.ApproveApplication)
	if !ok {
		return
	}

	applicationID, err := uuid.Parse(chi.URLParam(r, "applicationID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid application ID", nil))
		return
	}

	var req reviewApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return
	}

	status := store.ApplicationStatusRejected
	if req.Approve {
		status = store.ApplicationStatusApproved
	}

	application, err := s.db.Queries().ReviewApplication(r.Context(), store.ReviewApplicationParams{
		ID:         applicationID,
		Status:     status,
		ReviewedBy: user.ID,
		ReviewNote: req.Note,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// either missing or already reviewed
			if _, getErr := s.db.Queries().GetApplication(r.Context(), applicationID); getErr == nil {
				writeError(w, r, http.StatusConflict, ConflictErr("Application has already been reviewed"))
				return
			}
			writeError(w, r, http.StatusNotFound, NotFound("Application"))
			return
		}
		logger.Error("failed to review application", "application_id", applicationID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	if req.Approve {
		if _, err := s.db.Queries().CreateUser(r.Context(), store.CreateUserParams{
			Email:    application.Email,
			FullName: application.ApplicantName,
			Role:     application.RoleApplied,
		}); err != nil {
			// account may already exist; the review itself stands
			logger.Warn("failed to create user for approved application",
				"application_id", applicationID, "error", err)
		}
	}

	note := ""
	if application.ReviewNote != nil {
		note = *application.ReviewNote
	}
	if _, err := s.queue.Enqueue(queue.TypeEmailDelivery, queue.EmailDeliveryPayload{
		To:      application.Email,
		Subject: "Your staff application has been " + application.Status,
		Body: "Hello " + application.ApplicantName + ",\n\nYour application for the " +
			application.RoleApplied + " position has been " + application.Status + ".\n" + note,
	}); err != nil {
		logger.Error("failed to enqueue application email", "application_id", applicationID, "error", err)
	}

	logger.Info("application reviewed",
		"application_id", applicationID,
		"status", application.Status,
		"reviewed_by", user.ID)

	writeJSON(w, r, http.StatusOK, convertToApplicationResponse(application))
}
