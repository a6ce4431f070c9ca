// internal/intake/rules/engine.go

// Package rules validates a candidate trip record against capacity, date, and
// destination policy. Checks are pure, order-sensitive, and short-circuit on
// the first violation.
package rules

import (
	"fmt"
	"time"

	"logistics-intake/internal/common/logger"
	"logistics-intake/internal/intake/extraction"
)

const (
	DefaultVehicleType = "Carro Convencional"
	HomeCity           = "Goiânia"

	defaultPassengerLimit = 4
)

// passengerLimits caps the passenger list per vehicle type. Unknown types
// fall back to the conventional-car limit.
var passengerLimits = map[string]int{
	"Carro Convencional": 4,
	"Caminhonete":        3,
	"Van":                15,
}

// referenceZone is the fixed time zone every travel date is judged in.
var referenceZone = loadReferenceZone()

// ReferenceZone returns the fixed zone trips are scheduled and judged in.
func ReferenceZone() *time.Location {
	return referenceZone
}

func loadReferenceZone() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.FixedZone("-03", -3*60*60)
	}
	return loc
}

// Evaluation is the outcome of one rule-engine pass. Rejection is empty when
// every check passed; otherwise it carries the user-facing corrective message
// of the first failing check.
type Evaluation struct {
	VehicleType string // resolved, never blank
	Destination string // home-city default applied, still un-normalized
	Rejection   string
}

func (e Evaluation) OK() bool {
	return e.Rejection == ""
}

type Engine struct {
	logger logger.Logger
	now    func() time.Time
}

func NewEngine(log logger.Logger) *Engine {
	return &Engine{
		logger: log.With(map[string]interface{}{
			"component": "rule-engine",
		}),
		now: time.Now,
	}
}

// NewEngineAt builds an engine with a fixed clock, for tests.
func NewEngineAt(log logger.Logger, now func() time.Time) *Engine {
	e := NewEngine(log)
	e.now = now
	return e
}

// Evaluate runs the checks in their fixed order: vehicle default, travel-date
// validity, capacity, explicit return confirmation, destination/PROAD. The
// first failing check short-circuits.
func (e *Engine) Evaluate(data *extraction.TripData) Evaluation {
	eval := Evaluation{
		VehicleType: data.VehicleType,
		Destination: applyHomeCityDefault(data.Destination),
	}

	// Defaults resolve before any check so the capacity lookup always has a
	// concrete vehicle type.
	if eval.VehicleType == "" {
		eval.VehicleType = DefaultVehicleType
		e.logger.Info("vehicle type absent, default applied", map[string]interface{}{
			"default": DefaultVehicleType,
		})
	}

	if rejection := e.checkDeparture(data.DepartureISO); rejection != "" {
		eval.Rejection = rejection
		return eval
	}

	if rejection := e.checkCapacity(eval.VehicleType, data.Passengers); rejection != "" {
		eval.Rejection = rejection
		return eval
	}

	// The return flag must be explicitly present. A missing flag is never
	// inferred as false; the requester gets asked instead.
	if data.AwaitReturn == nil {
		eval.Rejection = "Desculpe, preciso confirmar: o motorista deve aguardar o retorno?"
		return eval
	}

	if RequiresProad(eval.Destination) && data.Proad == "" {
		eval.Rejection = fmt.Sprintf(
			"Para o destino '%s', o número do PROAD é obrigatório. Por favor, informe.",
			data.Destination,
		)
		return eval
	}

	return eval
}

// checkDeparture rejects departures in the past, judged in the reference
// zone. An unparseable timestamp is skipped rather than rejected; the model
// already committed to ISO-8601 and a malformed value is rare enough to log
// and let through.
func (e *Engine) checkDeparture(departureISO string) string {
	if departureISO == "" {
		return ""
	}

	departure, err := time.Parse(time.RFC3339, departureISO)
	if err != nil {
		e.logger.Warn("departure timestamp unparseable, date check skipped", map[string]interface{}{
			"value": departureISO,
			"error": err.Error(),
		})
		return ""
	}

	if departure.Before(e.now().In(referenceZone)) {
		return "❌ A data/hora informada já passou. Por favor, informe uma data futura."
	}
	return ""
}

func (e *Engine) checkCapacity(vehicleType string, passengers []string) string {
	if passengers == nil {
		return ""
	}

	limit, ok := passengerLimits[vehicleType]
	if !ok {
		limit = defaultPassengerLimit
	}

	if len(passengers) > limit {
		return fmt.Sprintf(
			"❌ O veículo '%s' comporta no máximo %d passageiros. Você informou %d. Deseja uma Van?",
			vehicleType, limit, len(passengers),
		)
	}
	return ""
}

// PassengerLimit exposes the capacity table for the HTTP surface.
func PassengerLimit(vehicleType string) int {
	if limit, ok := passengerLimits[vehicleType]; ok {
		return limit
	}
	return defaultPassengerLimit
}
