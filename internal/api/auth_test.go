package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wildhaven/parkops-backend/internal/auth"
	"github.com/wildhaven/parkops-backend/internal/queue"
)

func TestServer_RequestOTP(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping auth tests in short mode")
	}

	env := newTestEnv(t)

	t.Run("known account gets a code emailed", func(t *testing.T) {
		env.authSvc.On("RequestOTP", mock.Anything, "ranger@example.com").Return("482913", nil)
		env.queue.ExpectEnqueue(queue.TypeEmailDelivery)

		rec := env.request(t, nil, http.MethodPost, "/auth/otp/request", map[string]interface{}{
			"email": "ranger@example.com",
		})

		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
		env.queue.AssertExpectations(t)
	})

	t.Run("unknown account gets the same response", func(t *testing.T) {
		env.authSvc.On("RequestOTP", mock.Anything, "ghost@example.com").Return("", auth.ErrUserNotFound)

		rec := env.request(t, nil, http.MethodPost, "/auth/otp/request", map[string]interface{}{
			"email": "ghost@example.com",
		})

		require.Equal(t, http.StatusAccepted, rec.Code)
		env.queue.AssertNotCalled(t, "Enqueue", queue.TypeEmailDelivery, mock.Anything)
	})

	t.Run("cooldown maps to 429", func(t *testing.T) {
		env.authSvc.On("RequestOTP", mock.Anything, "eager@example.com").Return("", auth.ErrOTPCooldown)

		rec := env.request(t, nil, http.MethodPost, "/auth/otp/request", map[string]interface{}{
			"email": "eager@example.com",
		})

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("missing email is rejected", func(t *testing.T) {
		rec := env.request(t, nil, http.MethodPost, "/auth/otp/request", map[string]interface{}{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_VerifyOTP(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping auth tests in short mode")
	}

	env := newTestEnv(t)

	t.Run("valid code returns a token pair", func(t *testing.T) {
		env.authSvc.On("VerifyOTP", mock.Anything, "ranger@example.com", "482913").
			Return("access-token", "refresh-token", nil)

		rec := env.request(t, nil, http.MethodPost, "/auth/otp/verify", map[string]interface{}{
			"email": "ranger@example.com",
			"code":  "482913",
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp tokenPairResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, "refresh-token", resp.RefreshToken)
	})

	t.Run("wrong code maps to 401", func(t *testing.T) {
		env.authSvc.On("VerifyOTP", mock.Anything, "ranger@example.com", "000000").
			Return("", "", auth.ErrOTPInvalid)

		rec := env.request(t, nil, http.MethodPost, "/auth/otp/verify", map[string]interface{}{
			"email": "ranger@example.com",
			"code":  "000000",
		})

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, CodeAuthRequired, errorCode(t, rec))
	})

	t.Run("attempt limit maps to 429", func(t *testing.T) {
		env.authSvc.On("VerifyOTP", mock.Anything, "brute@example.com", "111111").
			Return("", "", auth.ErrOTPMaxAttempts)

		rec := env.request(t, nil, http.MethodPost, "/auth/otp/verify", map[string]interface{}{
			"email": "brute@example.com",
			"code":  "111111",
		})

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestServer_RefreshAndLogout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping auth tests in short mode")
	}

	env := newTestEnv(t)

	t.Run("refresh rotates the pair", func(t *testing.T) {
		env.authSvc.On("Refresh", mock.Anything, "old-refresh").
			Return("new-access", "new-refresh", nil)

		rec := env.request(t, nil, http.MethodPost, "/auth/refresh", map[string]interface{}{
			"refresh_token": "old-refresh",
		})

		require.Equal(t, http.StatusOK, rec.Code)

		var resp tokenPairResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "new-refresh", resp.RefreshToken)
	})

	t.Run("revoked refresh token maps to 401", func(t *testing.T) {
		env.authSvc.On("Refresh", mock.Anything, "revoked").
			Return("", "", auth.ErrRefreshInvalid)

		rec := env.request(t, nil, http.MethodPost, "/auth/refresh", map[string]interface{}{
			"refresh_token": "revoked",
		})

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("logout invalidates the session", func(t *testing.T) {
		env.authSvc.On("Logout", mock.Anything, "current-refresh").Return(nil)

		rec := env.request(t, nil, http.MethodPost, "/auth/logout", map[string]interface{}{
			"refresh_token": "current-refresh",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		env.authSvc.AssertExpectations(t)
	})
}
