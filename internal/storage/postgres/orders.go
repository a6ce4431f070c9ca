// internal/storage/postgres/orders.go

// Package postgres persists service orders and fleet resources.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"logistics-intake/internal/common/database"
	"logistics-intake/internal/models"
)

// OrderRepository stores finalized service orders.
type OrderRepository struct {
	db *database.PostgresClient
}

func NewOrderRepository(db *database.PostgresClient) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, requester_name, destination, departure_at, passengers,
	await_return, whatsapp_id, proad, vehicle_type, notes, driver_id, vehicle_id, created_at`

// Save inserts a finalized order and returns its id.
func (r *OrderRepository) Save(ctx context.Context, order *models.ServiceOrder) (int64, error) {
	query := `
		INSERT INTO service_orders
			(requester_name, destination, departure_at, passengers, await_return,
			 whatsapp_id, proad, vehicle_type, notes, driver_id, vehicle_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		order.RequesterName,
		order.Destination,
		nullTime(order.DepartureAt),
		order.Passengers,
		order.AwaitReturn,
		order.WhatsappID,
		nullString(order.Proad),
		order.VehicleType,
		nullString(order.Notes),
		nullInt(order.DriverID),
		nullInt(order.VehicleID),
		order.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert service order: %w", err)
	}
	return id, nil
}

// List returns every order, most recent first.
func (r *OrderRepository) List(ctx context.Context) ([]models.ServiceOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_orders ORDER BY created_at DESC`, orderColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list service orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// GetByID returns one order or sql.ErrNoRows.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.ServiceOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_orders WHERE id = $1`, orderColumns)

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get service order %d: %w", id, err)
	}
	return order, nil
}

// Update rewrites the mutable fields of an existing order.
func (r *OrderRepository) Update(ctx context.Context, order *models.ServiceOrder) error {
	query := `
		UPDATE service_orders
		SET requester_name = $1, destination = $2, departure_at = $3, passengers = $4,
		    await_return = $5, proad = $6, vehicle_type = $7, notes = $8,
		    driver_id = $9, vehicle_id = $10
		WHERE id = $11`

	res, err := r.db.Exec(ctx, query,
		order.RequesterName,
		order.Destination,
		nullTime(order.DepartureAt),
		order.Passengers,
		order.AwaitReturn,
		nullString(order.Proad),
		order.VehicleType,
		nullString(order.Notes),
		nullInt(order.DriverID),
		nullInt(order.VehicleID),
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("update service order %d: %w", order.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes one order.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM service_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service order %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteAll wipes the table. Guarded by an obscure route, same as always.
func (r *OrderRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM service_orders`); err != nil {
		return fmt.Errorf("wipe service orders: %w", err)
	}
	return nil
}

// FindByDepartureBetween returns orders departing inside [from, to], for the
// period report.
func (r *OrderRepository) FindByDepartureBetween(ctx context.Context, from, to time.Time) ([]models.ServiceOrder, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM service_orders WHERE departure_at BETWEEN $1 AND $2 ORDER BY departure_at`,
		orderColumns,
	)

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("find service orders by departure: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.ServiceOrder, error) {
	var (
		order     models.ServiceOrder
		departure sql.NullTime
		proad     sql.NullString
		notes     sql.NullString
		driverID  sql.NullInt64
		vehicleID sql.NullInt64
	)

	err := row.Scan(
		&order.ID,
		&order.RequesterName,
		&order.Destination,
		&departure,
		&order.Passengers,
		&order.AwaitReturn,
		&order.WhatsappID,
		&proad,
		&order.VehicleType,
		&notes,
		&driverID,
		&vehicleID,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if departure.Valid {
		t := departure.Time
		order.DepartureAt = &t
	}
	order.Proad = proad.String
	order.Notes = notes.String
	if driverID.Valid {
		id := driverID.Int64
		order.DriverID = &id
	}
	if vehicleID.Valid {
		id := vehicleID.Int64
		order.VehicleID = &id
	}

	return &order, nil
}

func scanOrders(rows *sql.Rows) ([]models.ServiceOrder, error) {
	orders := []models.ServiceOrder{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service order: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}
