package store

import (
	"context"

	"github.com/google/uuid"
)

type CreateEmergencyParams struct {
	ReporterID  uuid.UUID
	Description string
	Location    string
	Priority    string
}

func (s *Store) CreateEmergency(ctx context.Context, arg CreateEmergencyParams) (Emergency, error) {
	return one[Emergency](s.db.Query(ctx, `
		INSERT INTO emergencies (reporter_id, description, location, priority, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`,
		arg.ReporterID, arg.Description, arg.Location, arg.Priority,
		EmergencyStatusOpen))
}

func (s *Store) GetEmergency(ctx context.Context, id uuid.UUID) (Emergency, error) {
	return one[Emergency](s.db.Query(ctx, `
		SELECT * FROM emergencies WHERE id = $1`, id))
}

func (s *Store) ListEmergencies(ctx context.Context, limit, offset int) ([]Emergency, error) {
	return many[Emergency](s.db.Query(ctx, `
		SELECT * FROM emergencies
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset))
}

func (s *Store) ListEmergenciesByStatus(ctx context.Context, status string, limit, offset int) ([]Emergency, error) {
	return many[Emergency](s.db.Query(ctx, `
		SELECT * FROM emergencies
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, status, limit, offset))
}

func (s *Store) AssignEmergency(ctx context.Context, id, assigneeID uuid.UUID) (Emergency, error) {
	return one[Emergency](s.db.Query(ctx, `
		UPDATE emergencies
		SET assigned_to = $2, status = $3
		WHERE id = $1 AND status <> $4
		RETURNING *`,
		id, assigneeID, EmergencyStatusInProgress, EmergencyStatusResolved))
}

func (s *Store) ResolveEmergency(ctx context.Context, id uuid.UUID) (Emergency, error) {
	return one[Emergency](s.db.Query(ctx, `
		UPDATE emergencies
		SET status = $2, resolved_at = now()
		WHERE id = $1 AND status <> $2
		RETURNING *`, id, EmergencyStatusResolved))
}

// SetEmergencyPhoto records the S3 keys of the uploaded photo and its
// generated thumbnail.
func (s *Store) SetEmergencyPhoto(ctx context.Context, id uuid.UUID, photoKey, thumbnailKey string) (Emergency, error) {
	return one[Emergency](s.db.Query(ctx, `
		UPDATE emergencies
		SET photo_key = $2, thumbnail_key = $3
		WHERE id = $1
		RETURNING *`, id, photoKey, thumbnailKey))
}

func (s *Store) CountOpenEmergencies(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM emergencies WHERE status <> $1`,
		EmergencyStatusResolved).Scan(&n)
	return n, err
}
