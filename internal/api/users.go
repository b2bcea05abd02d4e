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

type createUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type updateUserRoleRequest struct {
	Role string `json:"role"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func convertToUserResponse(u store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.ManageUsers); !ok {
		return
	}

	limit, offset := parsePagination(r)

	var (
		users []store.User
		err   error
	)
	if role := r.URL.Query().Get("role"); role != "" {
		users, err = s.db.Queries().ListUsersByRole(r.Context(), rbac.Canonical(role).String())
	} else {
		users, err = s.db.Queries().ListUsers(r.Context(), limit, offset)
	}
	if err != nil {
		logger.Error("failed to list users", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, convertToUserResponse(u))
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.ManageUsers); !ok {
		return
	}

	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return
	}

	var details []ErrorDetail
	if req.Email == "" {
		details = append(details, ErrorDetail{Field: "email", Message: "email is required"})
	}
	role := rbac.Canonical(req.Role)
	if !role.Valid() {
		details = append(details, ErrorDetail{Field: "role", Message: "unknown role"})
	}
	if len(details) > 0 {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid user", details))
		return
	}

	user, err := s.db.Queries().CreateUser(r.Context(), store.CreateUserParams{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     role.String(),
	})
	if err != nil {
		logger.Error("failed to create user", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	logger.Info("user created", "user_id", user.ID, "role", user.Role)

	writeJSON(w, r, http.StatusCreated, convertToUserResponse(user))
}

func (s *Server) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	caller, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	user, err := s.db.Queries().GetUser(r.Context(), caller.ID)
	if err != nil {
		logger.Error("failed to get current user", "user_id", caller.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, convertToUserResponse(user))
}

func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	if _, ok := s.requirePermission(w, r, rbac.ManageUsers); !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid user ID", nil))
		return
	}

	user, err := s.db.Queries().GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("User"))
			return
		}
		logger.Error("failed to get user", "user_id", userID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, convertToUserResponse(user))
}

func (s *Server) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	caller, ok := s.requirePermission(w, r, rbac.ManageUsers)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid user ID", nil))
		return
	}

	var req updateUserRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return
	}

	role := rbac.Canonical(req.Role)
	if !role.Valid() {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid user", []ErrorDetail{
			{Field: "role", Message: "unknown role"},
		}))
		return
	}

	user, err := s.db.Queries().UpdateUserRole(r.Context(), userID, role.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("User"))
			return
		}
		logger.Error("failed to update user role", "user_id", userID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	logger.Info("user role updated", "user_id", userID, "role", role, "by", caller.ID)

	writeJSON(w, r, http.StatusOK, convertToUserResponse(user))
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	caller, ok := s.requirePermission(w, r, rbac.ManageUsers)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid user ID", nil))
		return
	}

	if userID == caller.ID {
		writeError(w, r, http.StatusConflict, ConflictErr("Cannot delete your own account"))
		return
	}

	if err := s.db.Queries().DeleteUser(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, NotFound("User"))
			return
		}
		logger.Error("failed to delete user", "user_id", userID, "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusNoContent, nil)
}
