// internal/models/fleet.go
package models

// DriverStatus values mirror the fleet board.
type DriverStatus string

const (
	DriverAvailable   DriverStatus = "DISPONIVEL"
	DriverOnTrip      DriverStatus = "EM_VIAGEM"
	DriverUnavailable DriverStatus = "INDISPONIVEL"
)

type Driver struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	Assignment string       `json:"assignment"` // e.g. Vara Cível, Adm
	Status     DriverStatus `json:"status"`
}

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "DISPONIVEL"
	VehicleOnTrip      VehicleStatus = "EM_VIAGEM"
	VehicleMaintenance VehicleStatus = "MANUTENCAO"
)

type Vehicle struct {
	ID     int64         `json:"id"`
	Model  string        `json:"model"`
	Plate  string        `json:"plate"`
	Color  string        `json:"color"`
	Status VehicleStatus `json:"status"`
}
