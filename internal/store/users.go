package store

import (
	"context"

	"github.com/google/uuid"
)

type CreateUserParams struct {
	Email    string
	FullName string
	Role     string
}

func (s *Store) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	return one[User](s.db.Query(ctx, `
		INSERT INTO users (email, full_name, role)
		VALUES ($1, $2, $3)
		RETURNING *`,
		arg.Email, arg.FullName, arg.Role))
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return one[User](s.db.Query(ctx, `
		SELECT * FROM users WHERE id = $1`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return one[User](s.db.Query(ctx, `
		SELECT * FROM users WHERE lower(email) = lower($1)`, email))
}

func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	return many[User](s.db.Query(ctx, `
		SELECT * FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset))
}

func (s *Store) ListUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	return many[User](s.db.Query(ctx, `
		SELECT * FROM users WHERE id = ANY($1)`, ids))
}

func (s *Store) ListUsersByRole(ctx context.Context, role string) ([]User, error) {
	return many[User](s.db.Query(ctx, `
		SELECT * FROM users WHERE role = $1 ORDER BY full_name`, role))
}

func (s *Store) UpdateUserRole(ctx context.Context, id uuid.UUID, role string) (User, error) {
	return one[User](s.db.Query(ctx, `
		UPDATE users SET role = $2 WHERE id = $1
		RETURNING *`, id, role))
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}
