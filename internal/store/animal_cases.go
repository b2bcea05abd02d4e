package store

import (
	"context"

	"github.com/google/uuid"
)

type CreateAnimalCaseParams struct {
	AnimalName  string
	Species     string
	Description string
	VetID       *uuid.UUID
}

func (s *Store) CreateAnimalCase(ctx context.Context, arg CreateAnimalCaseParams) (AnimalCase, error) {
	return one[AnimalCase](s.db.Query(ctx, `
		INSERT INTO animal_cases (animal_name, species, description, status, vet_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`,
		arg.AnimalName, arg.Species, arg.Description,
		AnimalCaseStatusOpen, arg.VetID))
}

func (s *Store) GetAnimalCase(ctx context.Context, id uuid.UUID) (AnimalCase, error) {
	return one[AnimalCase](s.db.Query(ctx, `
		SELECT * FROM animal_cases WHERE id = $1`, id))
}

func (s *Store) ListAnimalCases(ctx context.Context, limit, offset int) ([]AnimalCase, error) {
	return many[AnimalCase](s.db.Query(ctx, `
		SELECT * FROM animal_cases
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset))
}

func (s *Store) ListAnimalCasesByVet(ctx context.Context, vetID uuid.UUID) ([]AnimalCase, error) {
	return many[AnimalCase](s.db.Query(ctx, `
		SELECT * FROM animal_cases
		WHERE vet_id = $1
		ORDER BY created_at DESC`, vetID))
}

type UpdateAnimalCaseParams struct {
	ID          uuid.UUID
	Description string
	Status      string
	VetID       *uuid.UUID
}

func (s *Store) UpdateAnimalCase(ctx context.Context, arg UpdateAnimalCaseParams) (AnimalCase, error) {
	return one[AnimalCase](s.db.Query(ctx, `
		UPDATE animal_cases
		SET description = $2, status = $3, vet_id = $4, updated_at = now()
		WHERE id = $1
		RETURNING *`,
		arg.ID, arg.Description, arg.Status, arg.VetID))
}

func (s *Store) CountOpenAnimalCases(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM animal_cases WHERE status <> $1`,
		AnimalCaseStatusResolved).Scan(&n)
	return n, err
}
