package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wildhaven/parkops-backend/internal/auth"
	"github.com/wildhaven/parkops-backend/internal/rbac"
)

type Server struct {
	db       DatabaseService
	queue    QueueService
	storage  StorageService
	authSvc  AuthenticationService
	notifier NotifierService
	engine   *rbac.Engine
}

func NewServer(db DatabaseService, queue QueueService, storage StorageService, authSvc AuthenticationService, notifier NotifierService, engine *rbac.Engine) *Server {
	return &Server{
		db:       db,
		queue:    queue,
		storage:  storage,
		authSvc:  authSvc,
		notifier: notifier,
		engine:   engine,
	}
}

// Routes registers every handler on the router. Authentication and
// request validation happen in the OpenAPI middleware mounted by the
// caller; permission checks happen per handler.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/ready", s.ReadinessCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/otp/request", s.RequestOTP)
		r.Post("/otp/verify", s.VerifyOTP)
		r.Post("/refresh", s.RefreshToken)
		r.Post("/logout", s.Logout)
	})

	r.Route("/activities", func(r chi.Router) {
		r.Get("/", s.ListActivities)
		r.Post("/", s.CreateActivity)
		r.Get("/{activityID}", s.GetActivity)
		r.Put("/{activityID}", s.UpdateActivity)
		r.Delete("/{activityID}", s.DeleteActivity)
		r.Get("/{activityID}/availability", s.GetActivityAvailability)
		r.Post("/{activityID}/bookings", s.CreateBooking)
		r.Get("/{activityID}/bookings", s.ListActivityBookings)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Get("/me", s.GetMyBookings)
		r.Get("/{bookingID}", s.GetBooking)
		r.Post("/{bookingID}/cancel", s.CancelBooking)
	})

	r.Route("/applications", func(r chi.Router) {
		r.Post("/", s.SubmitApplication)
		r.Get("/", s.ListApplications)
		r.Get("/{applicationID}", s.GetApplication)
		r.Post("/{applicationID}/review", s.ReviewApplication)
	})

	r.Route("/emergencies", func(r chi.Router) {
		r.Post("/", s.ReportEmergency)
		r.Get("/", s.ListEmergencies)
		r.Get("/{emergencyID}", s.GetEmergency)
		r.Post("/{emergencyID}/assign", s.AssignEmergency)
		r.Post("/{emergencyID}/resolve", s.ResolveEmergency)
		r.Post("/{emergencyID}/photo", s.UploadEmergencyPhoto)
		r.Get("/{emergencyID}/photo", s.GetEmergencyPhotoURL)
	})

	r.Route("/animal-cases", func(r chi.Router) {
		r.Post("/", s.CreateAnimalCase)
		r.Get("/", s.ListAnimalCases)
		r.Get("/{caseID}", s.GetAnimalCase)
		r.Put("/{caseID}", s.UpdateAnimalCase)
	})

	r.Route("/vehicles", func(r chi.Router) {
		r.Post("/", s.CreateVehicle)
		r.Get("/", s.ListVehicles)
		r.Get("/{vehicleID}", s.GetVehicle)
		r.Post("/{vehicleID}/assign", s.AssignVehicle)
		r.Post("/{vehicleID}/release", s.ReleaseVehicle)
		r.Post("/{vehicleID}/service", s.MarkVehicleServiced)
	})

	r.Get("/dashboard", s.GetDashboard)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.ListUsers)
		r.Post("/", s.CreateUser)
		r.Get("/me", s.GetCurrentUser)
		r.Get("/{userID}", s.GetUser)
		r.Put("/{userID}/role", s.UpdateUserRole)
		r.Delete("/{userID}", s.DeleteUser)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", s.ListNotifications)
		r.Get("/unread-count", s.GetUnreadNotificationCount)
		r.Post("/{notificationID}/read", s.MarkNotificationRead)
		r.Post("/read-all", s.MarkAllNotificationsRead)
	})
}

// requireUser pulls the authenticated caller from the context, writing
// a 401 when missing.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*auth.AuthenticatedUser, bool) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, Unauthorized("Authentication required"))
		return nil, false
	}
	return user, true
}

// requirePermission resolves the caller and checks a single permission
// against the static catalog. Writes 401/403 on failure.
func (s *Server) requirePermission(w http.ResponseWriter, r *http.Request, perm rbac.Permission) (*auth.AuthenticatedUser, bool) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return nil, false
	}
	if !s.engine.HasPermission(user.Role, perm) {
		writeError(w, r, http.StatusForbidden, PermissionDenied("Insufficient permissions"))
		return nil, false
	}
	return user, true
}
