// internal/report/report_test.go
package report

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-intake/internal/models"
)

type fakeFinder struct {
	orders []models.ServiceOrder
	err    error
	from   time.Time
	to     time.Time
}

func (f *fakeFinder) FindByDepartureBetween(_ context.Context, from, to time.Time) ([]models.ServiceOrder, error) {
	f.from, f.to = from, to
	return f.orders, f.err
}

func int64Ptr(v int64) *int64 { return &v }

func TestGenerateRendersRows(t *testing.T) {
	departure := time.Date(2026, 9, 10, 14, 30, 0, 0, time.UTC)
	finder := &fakeFinder{orders: []models.ServiceOrder{
		{
			ID:            1,
			RequesterName: "Maria",
			Passengers:    "Maria, João",
			Destination:   "Anápolis",
			DepartureAt:   &departure,
			AwaitReturn:   true,
			WhatsappID:    "556299999",
			Proad:         "2026.01.000123",
			DriverID:      int64Ptr(3),
			VehicleID:     int64Ptr(5),
			VehicleType:   "Van",
			Notes:         "urgente",
		},
		{
			ID:            2,
			RequesterName: "João",
			Passengers:    "João",
			Destination:   "Forum - Goiânia",
			AwaitReturn:   false,
			WhatsappID:    "556288888",
			VehicleType:   "Carro Convencional",
		},
	}}

	data, err := NewService(finder).Generate(
		context.Background(),
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, header, records[0])
	assert.Equal(t, []string{
		"1", "Maria", "Maria, João", "Anápolis", "10/09/2026 14:30", "SIM",
		"556299999", "2026.01.000123", "3", "5", "Van", "urgente",
	}, records[1])
	assert.Equal(t, []string{
		"2", "João", "João", "Forum - Goiânia", "DATA NULA (ERRO)", "NÃO",
		"556288888", "-", "Não atribuído", "Não atribuído", "Carro Convencional", "",
	}, records[2])
}

func TestWriteCSVExpandsPeriodToFullDays(t *testing.T) {
	finder := &fakeFinder{}
	loc := time.UTC

	err := NewService(finder).WriteCSV(
		context.Background(),
		&strings.Builder{},
		time.Date(2026, 9, 3, 11, 45, 0, 0, loc),
		time.Date(2026, 9, 5, 8, 0, 0, 0, loc),
	)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 9, 3, 0, 0, 0, 0, loc), finder.from)
	assert.Equal(t, time.Date(2026, 9, 5, 23, 59, 59, 0, loc), finder.to)
}

func TestGenerateSurfacesQueryError(t *testing.T) {
	finder := &fakeFinder{err: errors.New("connection reset")}

	_, err := NewService(finder).Generate(
		context.Background(),
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load report orders")
}
