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

type createVehicleRequest struct {
	PlateNumber string `json:"plate_number"`
	VehicleType string `json:"vehicle_type"`
}

type assignVehicleRequest struct {
	DriverID uuid.UUID `json:"driver_id"`
}

type VehicleResponse struct {
	ID            uuid.UUID  `json:"id"`
	PlateNumber   string     `json:"plate_number"`
	VehicleType   string     `json:"vehicle_type"`
	Status        string     `json:"status"`
	DriverID      *uuid.UUID `json:"driver_id,omitempty"`
	LastServiceAt *time.Time `json:"last_service_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func convertToVehicleResponse(v store.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:            v.ID,
		PlateNumber:   v.PlateNumber,
		VehicleType:   v.VehicleType,
		Status:        v.Status,
		DriverID:      v.DriverID,
		LastServiceAt: v.LastServiceAt,
		CreatedAt:     v.CreatedAt,
	}
}

func (s *Server) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.ManageVehicles); !ok {
		return
	}

	var req createVehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return
	}

	var details []ErrorDetail
	if req.PlateNumber == "" {
		details = append(details, ErrorDetail{Field: "plate_number", Message: "plate_number is required"})
	}
	if req.VehicleType == "" {
		details = append(details, ErrorDetail{Field: "vehicle_type", Message: "vehicle_type is required"})
	}
	if len(details) > 0 {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid vehicle", details))
		return
	}

	vehicle, err := s.db.Queries().CreateVehicle(r.Context(), store.CreateVehicleParams{
		PlateNumber: req.PlateNumber,
		VehicleType: req.VehicleType,
	})
	if err != nil {
		logger.Error("failed to create vehicle", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusCreated, convertToVehicleResponse(vehicle))
}

func (s *Server) ListVehicles(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.engine.HasAnyPermission(user.Role, []rbac.Permission{rbac.ManageVehicles, rbac.AssignVehicles}) {
		writeError(w, r, http.StatusForbidden, PermissionDenied("Insufficient permissions"))
		return
	}

	limit, offset := parsePagination(r)

	var (
		vehicles []store.Vehicle
		err      error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		vehicles, err = s.db.Queries().ListVehiclesByStatus(r.Context(), status)
	} else {
		vehicles, err = s.db.Queries().ListVehicles(r.Context(), limit, offset)
	}
	if err != nil {
		logger.Error("failed to list vehicles", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	response := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		response = append(response, convertToVehicleResponse(v))
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (s *Server) GetVehicle(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.engine.HasAnyPermission(user.Role, []rbac.Permission{rbac.ManageVehicles, rbac.AssignVehicles}) {
		writeError(w, r, http.StatusForbidden, PermissionDenied("Insufficient permissions"))
		return
	}

	vehicleID, err := uuid.Parse(chi.URLParam(r, "vehicleID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid vehicle ID", nil))
		return
	}

	vehicle, err := s.db.Queries().GetVehicle(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("Vehicle"))
			return
		}
		logger.Error("failed to get vehicle", "vehicle_id", vehicleID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, convertToVehicleResponse(vehicle))
}

// AssignVehicle puts an available vehicle on patrol with a driver who
// can actually drive.
func (s *Server) AssignVehicle(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.AssignVehicles); !ok {
		return
	}

	vehicleID, err := uuid.Parse(chi.URLParam(r, "vehicleID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid vehicle ID", nil))
		return
	}

	var req assignVehicleRequest
	if err := decodeJSON(r, &req); err != nil || req.DriverID == uuid.Nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("driver_id is required", nil))
		return
	}

	driver, err := s.db.Queries().GetUser(r.Context(), req.DriverID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusBadRequest, ValidationErr("Driver does not exist", nil))
			return
		}
		logger.Error("failed to get driver", "user_id", req.DriverID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	if !rbac.IsAnyRole(rbac.Role(driver.Role), rbac.RoleSafariDriver, rbac.RoleEmergencyOfficer, rbac.RoleAdmin) {
		writeError(w, r, http.StatusBadRequest, ValidationErr("User cannot be assigned as a driver", nil))
		return
	}

	vehicle, err := s.db.Queries().AssignVehicle(r.Context(), vehicleID, req.DriverID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusConflict, ConflictErr("Vehicle is not available for assignment"))
			return
		}
		logger.Error("failed to assign vehicle", "vehicle_id", vehicleID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	logger.Info("vehicle assigned", "vehicle_id", vehicle.ID, "driver_id", req.DriverID)

	writeJSON(w, r, http.StatusOK, convertToVehicleResponse(vehicle))
}

func (s *Server) ReleaseVehicle(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.AssignVehicles); !ok {
		return
	}

	vehicleID, err := uuid.Parse(chi.URLParam(r, "vehicleID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid vehicle ID", nil))
		return
	}

	vehicle, err := s.db.Queries().ReleaseVehicle(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("Vehicle"))
			return
		}
		logger.Error("failed to release vehicle", "vehicle_id", vehicleID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, convertToVehicleResponse(vehicle))
}

func (s *Server) MarkVehicleServiced(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.ManageVehicles); !ok {
		return
	}

	vehicleID, err := uuid.Parse(chi.URLParam(r, "vehicleID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid vehicle ID", nil))
		return
	}

	vehicle, err := s.db.Queries().MarkVehicleServiced(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("Vehicle"))
			return
		}
		logger.Error("failed to mark vehicle serviced", "vehicle_id", vehicleID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, convertToVehicleResponse(vehicle))
}
