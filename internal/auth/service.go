package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wildhaven/parkops-backend/internal/config"
	"github.com/wildhaven/parkops-backend/internal/logging"
	"github.com/wildhaven/parkops-backend/internal/store"
)

var (
	ErrOTPCooldown    = errors.New("please wait before requesting another OTP")
	ErrOTPInvalid     = errors.New("invalid or expired OTP")
	ErrOTPMaxAttempts = errors.New("maximum OTP attempts exceeded")
	ErrRefreshInvalid = errors.New("invalid or expired refresh token")
	ErrUserNotFound   = errors.New("user not found")
)

// AuthService handles passwordless OTP authentication and rotating refresh tokens.
type AuthService struct {
	redis          *redisStore
	jwt            *JWTService
	queries        *store.Store
	otpExpiry      time.Duration
	otpCooldown    time.Duration
	otpMaxAttempts int
	refreshExpiry  time.Duration
}

func NewAuthService(redisClient *redis.Client, jwtSvc *JWTService, queries *store.Store, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		redis:          newRedisStore(redisClient),
		jwt:            jwtSvc,
		queries:        queries,
		otpExpiry:      cfg.OTPExpiry,
		otpCooldown:    cfg.OTPCooldown,
		otpMaxAttempts: cfg.OTPMaxAttempts,
		refreshExpiry:  cfg.RefreshExpiry,
	}
}

// RequestOTP generates a 6-digit code for a known user and returns the
// plaintext so the caller can deliver it by email. Only the hash is
// stored.
func (s *AuthService) RequestOTP(ctx context.Context, email string) (string, error) {
	if _, err := s.queries.GetUserByEmail(ctx, email); err != nil {
		return "", ErrUserNotFound
	}

	on, err := s.redis.isOnCooldown(ctx, email)
	if err != nil {
		return "", fmt.Errorf("checking OTP cooldown: %w", err)
	}
	if on {
		return "", ErrOTPCooldown
	}

	code, err := generateOTPCode()
	if err != nil {
		return "", fmt.Errorf("generating OTP: %w", err)
	}

	if err := s.redis.storeOTPHash(ctx, email, hashString(code), s.otpExpiry); err != nil {
		return "", fmt.Errorf("storing OTP: %w", err)
	}

	if err := s.redis.setCooldown(ctx, email, s.otpCooldown); err != nil {
		return "", fmt.Errorf("setting OTP cooldown: %w", err)
	}

	return code, nil
}

// VerifyOTP checks the code and returns a new access + refresh token pair.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (accessToken, refreshToken string, err error) {
	storedHash, err := s.redis.getOTPHash(ctx, email)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", "", ErrOTPInvalid
		}
		return "", "", fmt.Errorf("retrieving OTP hash: %w", err)
	}

	attempts, err := s.redis.incrOTPAttempts(ctx, email, s.otpExpiry)
	if err != nil {
		return "", "", fmt.Errorf("incrementing OTP attempts: %w", err)
	}

	if attempts > int64(s.otpMaxAttempts) {
		_ = s.redis.deleteOTP(ctx, email)
		return "", "", ErrOTPMaxAttempts
	}

	if hashString(code) != storedHash {
		if attempts >= int64(s.otpMaxAttempts) {
			_ = s.redis.deleteOTP(ctx, email)
			return "", "", ErrOTPMaxAttempts
		}
		return "", "", ErrOTPInvalid
	}

	// single use
	if err := s.redis.deleteOTP(ctx, email); err != nil {
		return "", "", fmt.Errorf("deleting OTP: %w", err)
	}

	user, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", ErrUserNotFound
	}

	return s.issueTokenPair(ctx, user.ID)
}

// Refresh rotates the refresh token and returns a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (newAccess, newRefresh string, err error) {
	hash := hashString(refreshToken)

	userIDStr, err := s.redis.getRefreshToken(ctx, hash)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", "", ErrRefreshInvalid
		}
		return "", "", fmt.Errorf("retrieving refresh token: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return "", "", fmt.Errorf("invalid user ID in refresh token: %w", err)
	}

	if err := s.redis.deleteRefreshToken(ctx, hash); err != nil {
		return "", "", fmt.Errorf("deleting refresh token: %w", err)
	}

	newAccess, newRefresh, err = s.issueTokenPair(ctx, userID)
	if err != nil {
		return "", "", err
	}

	logging.Info("refresh token rotated", "user_id", userID)
	return newAccess, newRefresh, nil
}

// Logout revokes the refresh token. Idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	hash := hashString(refreshToken)

	userIDStr, err := s.redis.getRefreshToken(ctx, hash)
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("looking up refresh token: %w", err)
	}

	if err := s.redis.deleteRefreshToken(ctx, hash); err != nil {
		return fmt.Errorf("deleting refresh token: %w", err)
	}

	if userIDStr != "" {
		logging.Info("user logged out", "user_id", userIDStr)
	}
	return nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, userID uuid.UUID) (accessToken, refreshToken string, err error) {
	accessToken, err = s.jwt.GenerateToken(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("generating access token: %w", err)
	}

	rawRefresh, err := generateRefreshToken()
	if err != nil {
		return "", "", fmt.Errorf("generating refresh token: %w", err)
	}

	if err := s.redis.storeRefreshToken(ctx, hashString(rawRefresh), userID.String(), s.refreshExpiry); err != nil {
		return "", "", fmt.Errorf("storing refresh token: %w", err)
	}

	return accessToken, rawRefresh, nil
}

func generateOTPCode() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// 32 random bytes as a hex string.
func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
