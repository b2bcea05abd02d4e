package store

import (
	"context"

	"github.com/google/uuid"
)

type CreateVehicleParams struct {
	PlateNumber string
	VehicleType string
}

func (s *Store) CreateVehicle(ctx context.Context, arg CreateVehicleParams) (Vehicle, error) {
	return one[Vehicle](s.db.Query(ctx, `
		INSERT INTO vehicles (plate_number, vehicle_type, status)
		VALUES ($1, $2, $3)
		RETURNING *`,
		arg.PlateNumber, arg.VehicleType, VehicleStatusAvailable))
}

func (s *Store) GetVehicle(ctx context.Context, id uuid.UUID) (Vehicle, error) {
	return one[Vehicle](s.db.Query(ctx, `
		SELECT * FROM vehicles WHERE id = $1`, id))
}

func (s *Store) ListVehicles(ctx context.Context, limit, offset int) ([]Vehicle, error) {
	return many[Vehicle](s.db.Query(ctx, `
		SELECT * FROM vehicles
		ORDER BY plate_number
		LIMIT $1 OFFSET $2`, limit, offset))
}

func (s *Store) ListVehiclesByStatus(ctx context.Context, status string) ([]Vehicle, error) {
	return many[Vehicle](s.db.Query(ctx, `
		SELECT * FROM vehicles WHERE status = $1 ORDER BY plate_number`, status))
}

// AssignVehicle puts an available vehicle on patrol with the given
// driver. Vehicles in maintenance or already out cannot be assigned.
func (s *Store) AssignVehicle(ctx context.Context, id, driverID uuid.UUID) (Vehicle, error) {
	return one[Vehicle](s.db.Query(ctx, `
		UPDATE vehicles
		SET driver_id = $2, status = $3
		WHERE id = $1 AND status = $4
		RETURNING *`,
		id, driverID, VehicleStatusOnPatrol, VehicleStatusAvailable))
}

func (s *Store) ReleaseVehicle(ctx context.Context, id uuid.UUID) (Vehicle, error) {
	return one[Vehicle](s.db.Query(ctx, `
		UPDATE vehicles
		SET driver_id = NULL, status = $2
		WHERE id = $1
		RETURNING *`, id, VehicleStatusAvailable))
}

func (s *Store) SetVehicleStatus(ctx context.Context, id uuid.UUID, status string) (Vehicle, error) {
	return one[Vehicle](s.db.Query(ctx, `
		UPDATE vehicles SET status = $2 WHERE id = $1
		RETURNING *`, id, status))
}

func (s *Store) MarkVehicleServiced(ctx context.Context, id uuid.UUID) (Vehicle, error) {
	return one[Vehicle](s.db.Query(ctx, `
		UPDATE vehicles
		SET last_service_at = now(), status = $2
		WHERE id = $1
		RETURNING *`, id, VehicleStatusAvailable))
}

func (s *Store) CountAvailableVehicles(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM vehicles WHERE status = $1`,
		VehicleStatusAvailable).Scan(&n)
	return n, err
}
