package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wildhaven/parkops-backend/internal/middleware"
	"github.com/wildhaven/parkops-backend/internal/rbac"
	"github.com/wildhaven/parkops-backend/internal/store"
)

type createAnimalCaseRequest struct {
	AnimalName  string     `json:"animal_name"`
	Species     string     `json:"species"`
	Description string     `json:"description"`
	VetID       *uuid.UUID `json:"vet_id"`
}

type updateAnimalCaseRequest struct {
	Description string     `json:"description"`
	Status      string     `json:"status"`
	VetID       *uuid.UUID `json:"vet_id"`
}

type AnimalCaseResponse struct {
	ID          uuid.UUID  `json:"id"`
	AnimalName  string     `json:"animal_name"`
	Species     string     `json:"species"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	VetID       *uuid.UUID `json:"vet_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func convertToAnimalCaseResponse(c store.AnimalCase) AnimalCaseResponse {
	return AnimalCaseResponse{
		ID:          c.ID,
		AnimalName:  c.AnimalName,
		Species:     c.Species,
		Description: c.Description,
		Status:      c.Status,
		VetID:       c.VetID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func validAnimalCaseStatus(s string) bool {
	switch s {
	case store.AnimalCaseStatusOpen, store.AnimalCaseStatusUnderTreatment, store.AnimalCaseStatusResolved:
		return true
	}
	return false
}

func (s *Server) CreateAnimalCase(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.ManageAnimalCases); !ok {
		return
	}

	var req createAnimalCaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return
	}

	var details []ErrorDetail
	if req.AnimalName == "" {
		details = append(details, ErrorDetail{Field: "animal_name", Message: "animal_name is required"})
	}
	if req.Species == "" {
		details = append(details, ErrorDetail{Field: "species", Message: "species is required"})
	}
	if len(details) > 0 {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid animal case", details))
		return
	}

	animalCase, err := s.db.Queries().CreateAnimalCase(r.Context(), store.CreateAnimalCaseParams{
		AnimalName:  req.AnimalName,
		Species:     req.Species,
		Description: req.Description,
		VetID:       req.VetID,
	})
	if err != nil {
		logger.Error("failed to create animal case", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	logger.Info("animal case opened", "case_id", animalCase.ID, "species", animalCase.Species)

	writeJSON(w, r, http.StatusCreated, convertToAnimalCaseResponse(animalCase))
}

func (s *Server) ListAnimalCases(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.engine.HasAnyPermission(user.Role, []rbac.Permission{rbac.ManageAnimalCases, rbac.ViewAnimalCases}) {
		writeError(w, r, http.StatusForbidden, PermissionDenied("Insufficient permissions"))
		return
	}

	limit, offset := parsePagination(r)

	cases, err := s.db.Queries().ListAnimalCases(r.Context(), limit, offset)
	if err != nil {
		logger.Error("failed to list animal cases", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	response := make([]AnimalCaseResponse, 0, len(cases))
	for _, c := range cases {
		response = append(response, convertToAnimalCaseResponse(c))
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (s *Server) GetAnimalCase(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.engine.HasAnyPermission(user.Role, []rbac.Permission{rbac.ManageAnimalCases, rbac.ViewAnimalCases}) {
		writeError(w, r, http.StatusForbidden, PermissionDenied("Insufficient permissions"))
		return
	}

	caseID, err := uuid.Parse(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid case ID", nil))
		return
	}

	animalCase, err := s.db.Queries().GetAnimalCase(r.Context(), caseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("Animal case"))
			return
		}
		logger.Error("failed to get animal case", "case_id", caseID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, convertToAnimalCaseResponse(animalCase))
}

func (s *Server) UpdateAnimalCase(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.ManageAnimalCases); !ok {
		return
	}

	caseID, err := uuid.Parse(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid case ID", nil))
		return
	}

	var req updateAnimalCaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return
	}

	if !validAnimalCaseStatus(req.Status) {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid animal case", []ErrorDetail{
			{Field: "status", Message: "status must be open, under_treatment or resolved"},
		}))
		return
	}

	animalCase, err := s.db.Queries().UpdateAnimalCase(r.Context(), store.UpdateAnimalCaseParams{
		ID:          caseID,
		Description: req.Description,
		Status:      req.Status,
		VetID:       req.VetID,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("Animal case"))
			return
		}
		logger.Error("failed to update animal case", "case_id", caseID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, convertToAnimalCaseResponse(animalCase))
}
