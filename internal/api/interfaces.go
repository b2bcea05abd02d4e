package api

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wildhaven/parkops-backend/internal/notifications"
	"github.com/wildhaven/parkops-backend/internal/store"
)

// DatabaseService defines the interface for database operations
type DatabaseService interface {
	Queries() *store.Store
	Pool() *pgxpool.Pool
	Close()
}

// QueueService defines the interface for background task dispatch
type QueueService interface {
	Enqueue(taskType string, data interface{}, opts ...asynq.Option) (*asynq.TaskInfo, error)
	EnqueueCritical(taskType string, data interface{}) (*asynq.TaskInfo, error)
}

// StorageService defines the interface for object storage operations
type StorageService interface {
	PutObject(ctx context.Context, key string, body io.Reader, contentType string) error
	GeneratePresignedURL(ctx context.Context, method string, key string, duration time.Duration) (string, error)
}

// AuthenticationService defines the interface for login operations
type AuthenticationService interface {
	RequestOTP(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email, code string) (accessToken, refreshToken string, err error)
	Refresh(ctx context.Context, refreshToken string) (newAccess, newRefresh string, err error)
	Logout(ctx context.Context, refreshToken string) error
}

// NotifierService defines the interface for the notification dispatcher
type NotifierService interface {
	Notify(ctx context.Context, actorID uuid.UUID, entityType string, entityID uuid.UUID, message string, groups []notifications.NotifierGroup) error
	GetUserNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]store.Notification, error)
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) (store.Notification, error)
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}
