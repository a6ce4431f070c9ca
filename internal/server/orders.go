// internal/server/orders.go
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"logistics-intake/internal/intake/rules"
	"logistics-intake/internal/models"
)

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.List(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("order listing failed", nil)
		s.respondError(w, http.StatusInternalServerError, "Erro ao listar ordens de serviço")
		return
	}
	s.respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	order, err := s.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.respondError(w, http.StatusNotFound, "Ordem de serviço não encontrada")
			return
		}
		s.logger.WithError(err).Error("order lookup failed", map[string]interface{}{
			"orderId": id,
		})
		s.respondError(w, http.StatusInternalServerError, "Erro ao buscar ordem de serviço")
		return
	}
	s.respondJSON(w, http.StatusOK, order)
}

// handleCreateOrder registers an order entered manually by the fleet desk,
// outside the chat flow.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var order models.ServiceOrder
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		s.respondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	order.ID = 0
	if order.VehicleType == "" {
		order.VehicleType = rules.DefaultVehicleType
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().In(rules.ReferenceZone())
	}

	id, err := s.orders.Save(r.Context(), &order)
	if err != nil {
		s.logger.WithError(err).Error("order creation failed", nil)
		s.respondError(w, http.StatusInternalServerError, "Erro ao salvar ordem de serviço")
		return
	}
	order.ID = id

	s.respondJSON(w, http.StatusCreated, order)
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	var order models.ServiceOrder
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		s.respondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	order.ID = id

	if err := s.orders.Update(r.Context(), &order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.respondError(w, http.StatusNotFound, "Ordem de serviço não encontrada")
			return
		}
		s.logger.WithError(err).Error("order update failed", map[string]interface{}{
			"orderId": id,
		})
		s.respondError(w, http.StatusInternalServerError, "Erro ao atualizar ordem de serviço")
		return
	}
	s.respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	if err := s.orders.Delete(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.respondError(w, http.StatusNotFound, "Ordem de serviço não encontrada")
			return
		}
		s.logger.WithError(err).Error("order deletion failed", map[string]interface{}{
			"orderId": id,
		})
		s.respondError(w, http.StatusInternalServerError, "Erro ao excluir ordem de serviço")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWipeOrders(w http.ResponseWriter, r *http.Request) {
	if err := s.orders.DeleteAll(r.Context()); err != nil {
		s.logger.WithError(err).Error("order wipe failed", nil)
		s.respondError(w, http.StatusInternalServerError, "Erro ao limpar ordens de serviço")
		return
	}
	s.logger.Warn("all service orders wiped", nil)
	w.WriteHeader(http.StatusNoContent)
}

// handleReport streams the CSV report for the dataInicio..dataFim period.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	from, errFrom := time.ParseInLocation("2006-01-02", r.URL.Query().Get("dataInicio"), rules.ReferenceZone())
	to, errTo := time.ParseInLocation("2006-01-02", r.URL.Query().Get("dataFim"), rules.ReferenceZone())
	if errFrom != nil || errTo != nil {
		s.respondError(w, http.StatusBadRequest, "Parâmetros 'dataInicio' e 'dataFim' são obrigatórios no formato AAAA-MM-DD")
		return
	}

	filename := "relatorio_" + from.Format("2006-01-02") + "_" + to.Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := s.report.WriteCSV(r.Context(), w, from, to); err != nil {
		s.logger.WithError(err).Error("report generation failed", nil)
	}
}

// pathID reads the {id} route variable. The route pattern constrains it to
// digits, so the parse cannot fail.
func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}
