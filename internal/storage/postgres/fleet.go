// internal/storage/postgres/fleet.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"logistics-intake/internal/common/database"
	"logistics-intake/internal/models"
)

// ErrInUse is returned when a driver or vehicle still backs existing orders.
var ErrInUse = errors.New("record is referenced by existing service orders")

const fkViolation = "23503"

// FleetRepository stores drivers and vehicles.
type FleetRepository struct {
	db *database.PostgresClient
}

func NewFleetRepository(db *database.PostgresClient) *FleetRepository {
	return &FleetRepository{db: db}
}

// --- Drivers ---

func (r *FleetRepository) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, assignment, status FROM drivers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	drivers := []models.Driver{}
	for rows.Next() {
		var d models.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Assignment, &d.Status); err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (r *FleetRepository) SaveDriver(ctx context.Context, d *models.Driver) (int64, error) {
	if d.Status == "" {
		d.Status = models.DriverAvailable
	}

	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO drivers (name, assignment, status) VALUES ($1, $2, $3) RETURNING id`,
		d.Name, d.Assignment, d.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert driver: %w", err)
	}
	return id, nil
}

func (r *FleetRepository) UpdateDriver(ctx context.Context, d *models.Driver) error {
	res, err := r.db.Exec(ctx,
		`UPDATE drivers SET name = $1, assignment = $2, status = $3 WHERE id = $4`,
		d.Name, d.Assignment, d.Status, d.ID,
	)
	if err != nil {
		return fmt.Errorf("update driver %d: %w", d.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *FleetRepository) DeleteDriver(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		if isFKViolation(err) {
			return ErrInUse
		}
		return fmt.Errorf("delete driver %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- Vehicles ---

func (r *FleetRepository) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	rows, err := r.db.Query(ctx, `SELECT id, model, plate, color, status FROM vehicles ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []models.Vehicle{}
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.Model, &v.Plate, &v.Color, &v.Status); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *FleetRepository) SaveVehicle(ctx context.Context, v *models.Vehicle) (int64, error) {
	if v.Status == "" {
		v.Status = models.VehicleAvailable
	}

	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO vehicles (model, plate, color, status) VALUES ($1, $2, $3, $4) RETURNING id`,
		v.Model, v.Plate, v.Color, v.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert vehicle: %w", err)
	}
	return id, nil
}

func (r *FleetRepository) UpdateVehicle(ctx context.Context, v *models.Vehicle) error {
	res, err := r.db.Exec(ctx,
		`UPDATE vehicles SET model = $1, plate = $2, color = $3, status = $4 WHERE id = $5`,
		v.Model, v.Plate, v.Color, v.Status, v.ID,
	)
	if err != nil {
		return fmt.Errorf("update vehicle %d: %w", v.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *FleetRepository) DeleteVehicle(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		if isFKViolation(err) {
			return ErrInUse
		}
		return fmt.Errorf("delete vehicle %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func isFKViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == fkViolation
}
