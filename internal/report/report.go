// internal/report/report.go

// Package report renders the period report consumed by the fleet desk.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"logistics-intake/internal/models"
)

// OrderFinder is the slice of the order repository the report needs.
type OrderFinder interface {
	FindByDepartureBetween(ctx context.Context, from, to time.Time) ([]models.ServiceOrder, error)
}

type Service struct {
	orders OrderFinder
}

func NewService(orders OrderFinder) *Service {
	return &Service{orders: orders}
}

var header = []string{
	"ID", "Solicitante", "Passageiros", "Destino", "Saída", "Aguardar?",
	"WhatsApp", "PROAD", "Motorista", "Veículo", "Tipo Veículo", "Observações",
}

// WriteCSV streams the orders departing inside [from, to] as CSV. The from
// day starts at midnight and the to day runs through 23:59:59, both in the
// order's stored zone.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, from, to time.Time) error {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, to.Location())

	orders, err := s.orders.FindByDepartureBetween(ctx, start, end)
	if err != nil {
		return fmt.Errorf("load report orders: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	for _, order := range orders {
		if err := cw.Write(row(order)); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Generate renders the report into memory.
func (s *Service) Generate(ctx context.Context, from, to time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.WriteCSV(ctx, &buf, from, to); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func row(order models.ServiceOrder) []string {
	departure := "DATA NULA (ERRO)"
	if order.DepartureAt != nil {
		departure = order.DepartureAt.Format("02/01/2006 15:04")
	}

	awaiting := "NÃO"
	if order.AwaitReturn {
		awaiting = "SIM"
	}

	proad := "-"
	if order.Proad != "" {
		proad = order.Proad
	}

	return []string{
		strconv.FormatInt(order.ID, 10),
		order.RequesterName,
		order.Passengers,
		order.Destination,
		departure,
		awaiting,
		order.WhatsappID,
		proad,
		assigned(order.DriverID),
		assigned(order.VehicleID),
		order.VehicleType,
		order.Notes,
	}
}

func assigned(id *int64) string {
	if id == nil {
		return "Não atribuído"
	}
	return strconv.FormatInt(*id, 10)
}
