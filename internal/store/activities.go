package store

import (
	"context"

	"github.com/google/uuid"
)

type CreateActivityParams struct {
	Name                    string
	Description             string
	Category                string
	Capacity                int
	Status                  string
	RequiredRole            *string
	PerUserLimit            int
	MinAdvanceDays          int
	MaxAdvanceDays          int
	AllowedWeekdays         []int32
	TourGuideAvailable      bool
	MinParticipantsForGuide int
}

func (s *Store) CreateActivity(ctx context.Context, arg CreateActivityParams) (Activity, error) {
	return one[Activity](s.db.Query(ctx, `
		INSERT INTO activities (
			name, description, category, capacity, status,
			required_role, per_user_limit,
			min_advance_days, max_advance_days, allowed_weekdays,
			tour_guide_available, min_participants_for_guide
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING *`,
		arg.Name, arg.Description, arg.Category, arg.Capacity, arg.Status,
		arg.RequiredRole, arg.PerUserLimit,
		arg.MinAdvanceDays, arg.MaxAdvanceDays, arg.AllowedWeekdays,
		arg.TourGuideAvailable, arg.MinParticipantsForGuide))
}

func (s *Store) GetActivity(ctx context.Context, id uuid.UUID) (Activity, error) {
	return one[Activity](s.db.Query(ctx, `
		SELECT * FROM activities WHERE id = $1`, id))
}

func (s *Store) ListActivities(ctx context.Context, limit, offset int) ([]Activity, error) {
	return many[Activity](s.db.Query(ctx, `
		SELECT * FROM activities
		ORDER BY name
		LIMIT $1 OFFSET $2`, limit, offset))
}

func (s *Store) ListActivitiesByStatus(ctx context.Context, status string) ([]Activity, error) {
	return many[Activity](s.db.Query(ctx, `
		SELECT * FROM activities WHERE status = $1 ORDER BY name`, status))
}

type UpdateActivityParams struct {
	ID                      uuid.UUID
	Name                    string
	Description             string
	Category                string
	Capacity                int
	Status                  string
	RequiredRole            *string
	PerUserLimit            int
	MinAdvanceDays          int
	MaxAdvanceDays          int
	AllowedWeekdays         []int32
	TourGuideAvailable      bool
	MinParticipantsForGuide int
}

func (s *Store) UpdateActivity(ctx context.Context, arg UpdateActivityParams) (Activity, error) {
	return one[Activity](s.db.Query(ctx, `
		UPDATE activities SET
			name = $2, description = $3, category = $4, capacity = $5,
			status = $6, required_role = $7, per_user_limit = $8,
			min_advance_days = $9, max_advance_days = $10, allowed_weekdays = $11,
			tour_guide_available = $12, min_participants_for_guide = $13
		WHERE id = $1
		RETURNING *`,
		arg.ID, arg.Name, arg.Description, arg.Category, arg.Capacity,
		arg.Status, arg.RequiredRole, arg.PerUserLimit,
		arg.MinAdvanceDays, arg.MaxAdvanceDays, arg.AllowedWeekdays,
		arg.TourGuideAvailable, arg.MinParticipantsForGuide))
}

func (s *Store) SetActivityStatus(ctx context.Context, id uuid.UUID, status string) (Activity, error) {
	return one[Activity](s.db.Query(ctx, `
		UPDATE activities SET status = $2 WHERE id = $1
		RETURNING *`, id, status))
}

func (s *Store) DeleteActivity(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CountActivities(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM activities`).Scan(&n)
	return n, err
}
