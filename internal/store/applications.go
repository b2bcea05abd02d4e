package store

import (
	"context"

	"github.com/google/uuid"
)

type CreateApplicationParams struct {
	ApplicantName string
	Email         string
	RoleApplied   string
	CoverNote     string
}

func (s *Store) CreateApplication(ctx context.Context, arg CreateApplicationParams) (Application, error) {
	return one[Application](s.db.Query(ctx, `
		INSERT INTO applications (applicant_name, email, role_applied, cover_note, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`,
		arg.ApplicantName, arg.Email, arg.RoleApplied, arg.CoverNote,
		ApplicationStatusPending))
}

func (s *Store) GetApplication(ctx context.Context, id uuid.UUID) (Application, error) {
	return one[Application](s.db.Query(ctx, `
		SELECT * FROM applications WHERE id = $1`, id))
}

func (s *Store) ListApplications(ctx context.Context, limit, offset int) ([]Application, error) {
	return many[Application](s.db.Query(ctx, `
		SELECT * FROM applications
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset))
}

func (s *Store) ListApplicationsByStatus(ctx context.Context, status string, limit, offset int) ([]Application, error) {
	return many[Application](s.db.Query(ctx, `
		SELECT * FROM applications
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, status, limit, offset))
}

type ReviewApplicationParams struct {
	ID         uuid.UUID
	Status     string
	ReviewedBy uuid.UUID
	ReviewNote *string
}

// ReviewApplication transitions a pending application to approved or
// rejected. Applications already reviewed are not touched.
func (s *Store) ReviewApplication(ctx context.Context, arg ReviewApplicationParams) (Application, error) {
	return one[Application](s.db.Query(ctx, `
		UPDATE applications
		SET status = $2, reviewed_by = $3, review_note = $4, reviewed_at = now()
		WHERE id = $1 AND status = $5
		RETURNING *`,
		arg.ID, arg.Status, arg.ReviewedBy, arg.ReviewNote,
		ApplicationStatusPending))
}

func (s *Store) CountApplicationsByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM applications WHERE status = $1`, status).Scan(&n)
	return n, err
}
