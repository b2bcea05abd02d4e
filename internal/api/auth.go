package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/wildhaven/parkops-backend/internal/auth"
	"github.com/wildhaven/parkops-backend/internal/middleware"
	"github.com/wildhaven/parkops-backend/internal/queue"
)

type requestOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// RequestOTP generates a login code and queues it for email delivery.
// Unknown emails get the same response as known ones so the endpoint
// cannot be used to enumerate accounts.
func (s *Server) RequestOTP(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req requestOTPRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		writeError(w, r, http.StatusBadRequest, ValidationErr("A valid email is required", nil))
		return
	}

	accepted := messageResponse{Message: "If the account exists, a login code has been sent"}

	code, err := s.authSvc.RequestOTP(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			writeJSON(w, r, http.StatusAccepted, accepted)
		case errors.Is(err, auth.ErrOTPCooldown):
			writeError(w, r, http.StatusTooManyRequests, ConflictErr("Please wait before requesting another code"))
		default:
			logger.Error("failed to request OTP", "error", err)
			writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		}
		return
	}

	if _, err := s.queue.Enqueue(queue.TypeEmailDelivery, queue.EmailDeliveryPayload{
		To:      req.Email,
		Subject: "Your Wildhaven login code",
		Body:    fmt.Sprintf("Your one-time login code is %s. It expires in a few minutes.", code),
	}); err != nil {
		logger.Error("failed to enqueue OTP email", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusAccepted, accepted)
}

func (s *Server) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req verifyOTPRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Code == "" {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Email and code are required", nil))
		return
	}

	access, refresh, err := s.authSvc.VerifyOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrOTPInvalid), errors.Is(err, auth.ErrUserNotFound):
			writeError(w, r, http.StatusUnauthorized, Unauthorized("Invalid or expired code"))
		case errors.Is(err, auth.ErrOTPMaxAttempts):
			writeError(w, r, http.StatusTooManyRequests, ConflictErr("Too many attempts, request a new code"))
		default:
			logger.Error("failed to verify OTP", "error", err)
			writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		}
		return
	}

	writeJSON(w, r, http.StatusOK, tokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

func (s *Server) RefreshToken(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		writeError(w, r, http.StatusBadRequest, ValidationErr("refresh_token is required", nil))
		return
	}

	access, refresh, err := s.authSvc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshInvalid) {
			writeError(w, r, http.StatusUnauthorized, Unauthorized("Invalid or expired refresh token"))
			return
		}
		logger.Error("failed to refresh token", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, tokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		writeError(w, r, http.StatusBadRequest, ValidationErr("refresh_token is required", nil))
		return
	}

	if err := s.authSvc.Logout(r.Context(), req.RefreshToken); err != nil {
		logger.Error("failed to log out", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred"))
		return
	}

	writeJSON(w, r, http.StatusOK, messageResponse{Message: "Logged out"})
}
