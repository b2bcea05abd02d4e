package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CreateBookingParams struct {
	ActivityID         uuid.UUID
	UserID             uuid.UUID
	Participants       int
	BookingDate        time.Time
	TourGuideRequested bool
}

func (s *Store) CreateBooking(ctx context.Context, arg CreateBookingParams) (Booking, error) {
	return one[Booking](s.db.Query(ctx, `
		INSERT INTO bookings (
			activity_id, user_id, participants, booking_date,
			tour_guide_requested, status
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *`,
		arg.ActivityID, arg.UserID, arg.Participants, arg.BookingDate,
		arg.TourGuideRequested, BookingStatusConfirmed))
}

func (s *Store) GetBooking(ctx context.Context, id uuid.UUID) (BookingRow, error) {
	return one[BookingRow](s.db.Query(ctx, `
		SELECT b.*, a.name AS activity_name, u.email AS user_email
		FROM bookings b
		JOIN activities a ON a.id = b.activity_id
		JOIN users u ON u.id = b.user_id
		WHERE b.id = $1`, id))
}

func (s *Store) ListBookingsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]BookingRow, error) {
	return many[BookingRow](s.db.Query(ctx, `
		SELECT b.*, a.name AS activity_name, u.email AS user_email
		FROM bookings b
		JOIN activities a ON a.id = b.activity_id
		JOIN users u ON u.id = b.user_id
		WHERE b.user_id = $1
		ORDER BY b.booking_date DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset))
}

func (s *Store) ListBookingsByActivity(ctx context.Context, activityID uuid.UUID, limit, offset int) ([]BookingRow, error) {
	return many[BookingRow](s.db.Query(ctx, `
		SELECT b.*, a.name AS activity_name, u.email AS user_email
		FROM bookings b
		JOIN activities a ON a.id = b.activity_id
		JOIN users u ON u.id = b.user_id
		WHERE b.activity_id = $1
		ORDER BY b.booking_date DESC
		LIMIT $2 OFFSET $3`, activityID, limit, offset))
}

// CountConfirmedParticipants sums the participants of all confirmed
// bookings for an activity on one date. Feeds the capacity rule.
func (s *Store) CountConfirmedParticipants(ctx context.Context, activityID uuid.UUID, date time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(participants), 0)
		FROM bookings
		WHERE activity_id = $1 AND booking_date = $2 AND status = $3`,
		activityID, date, BookingStatusConfirmed).Scan(&n)
	return n, err
}

// CountUserBookings counts a user's confirmed bookings for an
// activity. Feeds the per-user limit rule.
func (s *Store) CountUserBookings(ctx context.Context, activityID, userID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT count(*)
		FROM bookings
		WHERE activity_id = $1 AND user_id = $2 AND status = $3`,
		activityID, userID, BookingStatusConfirmed).Scan(&n)
	return n, err
}

func (s *Store) CancelBooking(ctx context.Context, id uuid.UUID) (Booking, error) {
	return one[Booking](s.db.Query(ctx, `
		UPDATE bookings
		SET status = $2, cancelled_at = now()
		WHERE id = $1 AND status = $3
		RETURNING *`, id, BookingStatusCancelled, BookingStatusConfirmed))
}

func (s *Store) CountBookings(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM bookings`).Scan(&n)
	return n, err
}
