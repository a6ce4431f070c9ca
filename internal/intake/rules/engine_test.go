// internal/intake/rules/engine_test.go
package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-intake/internal/common/logger"
	"logistics-intake/internal/intake/extraction"
)

func boolPtr(b bool) *bool { return &b }

// fixedEngine evaluates against a frozen clock: 2026-09-01 10:00 in the
// reference zone.
func fixedEngine(t *testing.T) *Engine {
	t.Helper()
	frozen := time.Date(2026, 9, 1, 10, 0, 0, 0, ReferenceZone())
	return NewEngineAt(logger.NewTestLogger(t), func() time.Time { return frozen })
}

func validTrip() *extraction.TripData {
	return &extraction.TripData{
		RequesterName: "Maria",
		Destination:   "Forum",
		DepartureISO:  "2026-09-10T14:00:00-03:00",
		Passengers:    []string{"Maria", "João"},
		AwaitReturn:   boolPtr(true),
		VehicleType:   "Carro Convencional",
	}
}

func TestEvaluateAcceptsValidTrip(t *testing.T) {
	eval := fixedEngine(t).Evaluate(validTrip())
	assert.True(t, eval.OK())
	assert.Equal(t, "Carro Convencional", eval.VehicleType)
	assert.Equal(t, "Forum - Goiânia", eval.Destination)
}

func TestEvaluateAppliesVehicleDefault(t *testing.T) {
	trip := validTrip()
	trip.VehicleType = ""

	eval := fixedEngine(t).Evaluate(trip)
	assert.True(t, eval.OK())
	assert.Equal(t, DefaultVehicleType, eval.VehicleType)
}

func TestEvaluateRejectsPastDeparture(t *testing.T) {
	trip := validTrip()
	trip.DepartureISO = "2026-08-30T08:00:00-03:00"

	eval := fixedEngine(t).Evaluate(trip)
	require.False(t, eval.OK())
	assert.Equal(t, "❌ A data/hora informada já passou. Por favor, informe uma data futura.", eval.Rejection)
}

func TestEvaluateSkipsUnparseableDeparture(t *testing.T) {
	trip := validTrip()
	trip.DepartureISO = "amanhã de manhã"

	eval := fixedEngine(t).Evaluate(trip)
	assert.True(t, eval.OK())
}

func TestEvaluateCapacity(t *testing.T) {
	tests := []struct {
		name        string
		vehicleType string
		passengers  int
		wantOK      bool
	}{
		{"car at limit", "Carro Convencional", 4, true},
		{"car over limit", "Carro Convencional", 5, false},
		{"pickup over limit", "Caminhonete", 4, false},
		{"van holds fifteen", "Van", 15, true},
		{"van over limit", "Van", 16, false},
		{"unknown type uses default limit", "Ônibus", 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := validTrip()
			trip.VehicleType = tt.vehicleType
			trip.Passengers = make([]string, tt.passengers)
			for i := range trip.Passengers {
				trip.Passengers[i] = "P"
			}

			eval := fixedEngine(t).Evaluate(trip)
			assert.Equal(t, tt.wantOK, eval.OK())
			if !tt.wantOK {
				assert.Contains(t, eval.Rejection, "comporta no máximo")
			}
		})
	}
}

func TestEvaluateSkipsCapacityWhenPassengersAbsent(t *testing.T) {
	trip := validTrip()
	trip.Passengers = nil

	eval := fixedEngine(t).Evaluate(trip)
	assert.True(t, eval.OK())
}

func TestEvaluateDemandsExplicitReturnFlag(t *testing.T) {
	trip := validTrip()
	trip.AwaitReturn = nil

	eval := fixedEngine(t).Evaluate(trip)
	require.False(t, eval.OK())
	assert.Equal(t, "Desculpe, preciso confirmar: o motorista deve aguardar o retorno?", eval.Rejection)
}

func TestEvaluateDemandsProadForOutsideTrips(t *testing.T) {
	trip := validTrip()
	trip.Destination = "Anápolis"
	trip.Proad = ""

	eval := fixedEngine(t).Evaluate(trip)
	require.False(t, eval.OK())
	assert.Equal(t, "Para o destino 'Anápolis', o número do PROAD é obrigatório. Por favor, informe.", eval.Rejection)

	trip.Proad = "2026.01.000123"
	assert.True(t, fixedEngine(t).Evaluate(trip).OK())
}

// A bare landmark picks up the home-city default before the PROAD check runs,
// so it never demands a PROAD.
func TestEvaluateHomeCityDefaultPreemptsProad(t *testing.T) {
	trip := validTrip()
	trip.Destination = "Forum"
	trip.Proad = ""

	eval := fixedEngine(t).Evaluate(trip)
	assert.True(t, eval.OK())
	assert.Equal(t, "Forum - Goiânia", eval.Destination)
}

// Capacity is checked before the PROAD requirement: an overloaded van headed
// out of town complains about seats first.
func TestEvaluateCapacityBeforeProad(t *testing.T) {
	trip := validTrip()
	trip.Destination = "Anápolis"
	trip.Proad = ""
	trip.Passengers = []string{"a", "b", "c", "d", "e"}

	eval := fixedEngine(t).Evaluate(trip)
	require.False(t, eval.OK())
	assert.Contains(t, eval.Rejection, "comporta no máximo")
}

func TestRequiresProad(t *testing.T) {
	tests := []struct {
		destination string
		want        bool
	}{
		{"Forum - Goiânia", false},
		{"forum - goiania", false},
		{"Aparecida de Goiânia", false},
		{"Anápolis", true},
		{"Brasília", true},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RequiresProad(tt.destination), tt.destination)
	}
}

func TestApplyHomeCityDefault(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Forum", "Forum - Goiânia"},
		{"Forum - Goiânia", "Forum - Goiânia"},
		{"Anápolis", "Anápolis"},
		{"Senador Canedo", "Senador Canedo"},
		{"aparecida", "aparecida"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, applyHomeCityDefault(tt.in), tt.in)
	}
}

func TestNormalizeDestination(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"goiania", "Goiânia"},
		{"anapolis", "Anápolis"},
		{"Forum - goiania", "Forum - Goiânia"},
		{"aparecida", "Aparecida de Goiânia"},
		{"Aparecida de Goiânia", "Aparecida de Goiânia"},
		{"Goiânia - Goiânia", "Goiânia"},
		{"goiania - Goiânia", "Goiânia"},
		{"trindade", "Trindade"},
		{"senador canedo", "Senador Canedo"},
		{"Brasília", "Brasília"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDestination(tt.in), tt.in)
	}
}

func TestPassengerLimit(t *testing.T) {
	assert.Equal(t, 4, PassengerLimit("Carro Convencional"))
	assert.Equal(t, 3, PassengerLimit("Caminhonete"))
	assert.Equal(t, 15, PassengerLimit("Van"))
	assert.Equal(t, 4, PassengerLimit("Ônibus"))
}
