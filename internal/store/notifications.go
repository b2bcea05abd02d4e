package store

import (
	"context"

	"github.com/google/uuid"
)

type CreateNotificationParams struct {
	UserID     uuid.UUID
	ActorID    *uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	Message    string
}

func (s *Store) CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error) {
	return one[Notification](s.db.Query(ctx, `
		INSERT INTO notifications (user_id, actor_id, entity_type, entity_id, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`,
		arg.UserID, arg.ActorID, arg.EntityType, arg.EntityID, arg.Message))
}

func (s *Store) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, error) {
	return many[Notification](s.db.Query(ctx, `
		SELECT * FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset))
}

func (s *Store) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM notifications
		WHERE user_id = $1 AND read = false`, userID).Scan(&n)
	return n, err
}

// MarkNotificationRead only touches rows owned by the caller.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) (Notification, error) {
	return one[Notification](s.db.Query(ctx, `
		UPDATE notifications SET read = true
		WHERE id = $1 AND user_id = $2
		RETURNING *`, id, userID))
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET read = true
		WHERE user_id = $1 AND read = false`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
