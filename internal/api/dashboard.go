package api

import (
	"net/http"

	"github.com/wildhaven/parkops-backend/internal/middleware"
	"github.com/wildhaven/parkops-backend/internal/rbac"
)

type dashboardResponse struct {
	Users               int64 `json:"users"`
	Activities          int64 `json:"activities"`
	Bookings            int64 `json:"bookings"`
	PendingApplications int64 `json:"pending_applications"`
	OpenEmergencies     int64 `json:"open_emergencies"`
	OpenAnimalCases     int64 `json:"open_animal_cases"`
	AvailableVehicles   int64 `json:"available_vehicles"`
}

// GetDashboard serves the operations snapshot to staff holding
// view_dashboard.
func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.ViewDashboard); !ok {
		return
	}

	counts, err := s.db.Queries().GetDashboardCounts(r.Context())
	if err != nil {
		logger.Error("failed to load dashboard counts", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, dashboardResponse{
		Users:               counts.Users,
		Activities:          counts.Activities,
		Bookings:            counts.Bookings,
		PendingApplications: counts.PendingApplications,
		OpenEmergencies:     counts.OpenEmergencies,
		OpenAnimalCases:     counts.OpenAnimalCases,
		AvailableVehicles:   counts.AvailableVehicles,
	})
}
