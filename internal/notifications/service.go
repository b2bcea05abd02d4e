package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wildhaven/parkops-backend/internal/store"
)

type NotificationService struct {
	pool    *pgxpool.Pool
	queries *store.Store
}

func NewNotificationService(pool *pgxpool.Pool, queries *store.Store) *NotificationService {
	return &NotificationService{
		pool:    pool,
		queries: queries,
	}
}

// Publish writes one in-app notification per recipient. The actor is
// skipped so users do not get notified about their own actions. All
// rows commit together.
func (s *NotificationService) Publish(ctx context.Context, actorID uuid.UUID, entityType string, entityID uuid.UUID, message string, notifierIDs []uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)

	for _, notifierID := range notifierIDs {
		if notifierID == actorID {
			continue
		}

		_, err = qtx.CreateNotification(ctx, store.CreateNotificationParams{
			UserID:     notifierID,
			ActorID:    &actorID,
			EntityType: entityType,
			EntityID:   entityID,
			Message:    message,
		})
		if err != nil {
			return fmt.Errorf("failed to create notification for %s: %w", notifierID, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *NotificationService) GetUserNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]store.Notification, error) {
	return s.queries.ListNotifications(ctx, userID, limit, offset)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) (store.Notification, error) {
	return s.queries.MarkNotificationRead(ctx, notificationID, userID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	_, err := s.queries.MarkAllNotificationsRead(ctx, userID)
	return err
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.queries.CountUnreadNotifications(ctx, userID)
}
