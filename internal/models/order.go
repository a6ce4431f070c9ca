// internal/models/order.go
package models

import "time"

// ServiceOrder is the durable record of a finalized trip request. It is only
// ever created after every business rule check has passed.
type ServiceOrder struct {
	ID            int64      `json:"id"`
	RequesterName string     `json:"requesterName"`
	Destination   string     `json:"destination"`
	DepartureAt   *time.Time `json:"departureAt"`
	Passengers    string     `json:"passengers"` // names joined with ", "
	AwaitReturn   bool       `json:"awaitReturn"`
	WhatsappID    string     `json:"whatsappId"`
	Proad         string     `json:"proad,omitempty"`
	VehicleType   string     `json:"vehicleType"`
	Notes         string     `json:"notes,omitempty"`
	DriverID      *int64     `json:"driverId,omitempty"`
	VehicleID     *int64     `json:"vehicleId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}
