package store

import "context"

// DashboardCounts is the aggregate snapshot served to staff with the
// view_dashboard permission.
type DashboardCounts struct {
	Users               int64 `db:"users"`
	Activities          int64 `db:"activities"`
	Bookings            int64 `db:"bookings"`
	PendingApplications int64 `db:"pending_applications"`
	OpenEmergencies     int64 `db:"open_emergencies"`
	OpenAnimalCases     int64 `db:"open_animal_cases"`
	AvailableVehicles   int64 `db:"available_vehicles"`
}

func (s *Store) GetDashboardCounts(ctx context.Context) (DashboardCounts, error) {
	return one[DashboardCounts](s.db.Query(ctx, `
		SELECT
			(SELECT count(*) FROM users) AS users,
			(SELECT count(*) FROM activities) AS activities,
			(SELECT count(*) FROM bookings) AS bookings,
			(SELECT count(*) FROM applications WHERE status = 'pending') AS pending_applications,
			(SELECT count(*) FROM emergencies WHERE status <> 'resolved') AS open_emergencies,
			(SELECT count(*) FROM animal_cases WHERE status <> 'resolved') AS open_animal_cases,
			(SELECT count(*) FROM vehicles WHERE status = 'available') AS available_vehicles`))
}
