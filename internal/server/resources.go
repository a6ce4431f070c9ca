// internal/server/resources.go
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"logistics-intake/internal/models"
	"logistics-intake/internal/storage/postgres"
)

const (
	driverInUseMessage  = "Não é possível excluir este motorista pois ele está vinculado a ordens de serviço."
	vehicleInUseMessage = "Não é possível excluir este veículo pois ele está vinculado a ordens de serviço."
)

func (s *Server) handleListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := s.fleet.ListDrivers(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("driver listing failed", nil)
		s.respondError(w, http.StatusInternalServerError, "Erro ao listar motoristas")
		return
	}
	s.respondJSON(w, http.StatusOK, drivers)
}

func (s *Server) handleCreateDriver(w http.ResponseWriter, r *http.Request) {
	var driver models.Driver
	if err := json.NewDecoder(r.Body).Decode(&driver); err != nil {
		s.respondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if driver.Name == "" {
		s.respondError(w, http.StatusBadRequest, "Campo 'name' é obrigatório")
		return
	}

	id, err := s.fleet.SaveDriver(r.Context(), &driver)
	if err != nil {
		s.logger.WithError(err).Error("driver creation failed", nil)
		s.respondError(w, http.StatusInternalServerError, "Erro ao salvar motorista")
		return
	}
	driver.ID = id
	s.respondJSON(w, http.StatusCreated, driver)
}

func (s *Server) handleUpdateDriver(w http.ResponseWriter, r *http.Request) {
	var driver models.Driver
	if err := json.NewDecoder(r.Body).Decode(&driver); err != nil {
		s.respondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	driver.ID = pathID(r)

	if err := s.fleet.UpdateDriver(r.Context(), &driver); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.respondError(w, http.StatusNotFound, "Motorista não encontrado")
			return
		}
		s.logger.WithError(err).Error("driver update failed", map[string]interface{}{
			"driverId": driver.ID,
		})
		s.respondError(w, http.StatusInternalServerError, "Erro ao atualizar motorista")
		return
	}
	s.respondJSON(w, http.StatusOK, driver)
}

func (s *Server) handleDeleteDriver(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	if err := s.fleet.DeleteDriver(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, postgres.ErrInUse):
			s.respondError(w, http.StatusConflict, driverInUseMessage)
		case errors.Is(err, sql.ErrNoRows):
			s.respondError(w, http.StatusNotFound, "Motorista não encontrado")
		default:
			s.logger.WithError(err).Error("driver deletion failed", map[string]interface{}{
				"driverId": id,
			})
			s.respondError(w, http.StatusInternalServerError, "Erro ao excluir motorista")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.fleet.ListVehicles(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("vehicle listing failed", nil)
		s.respondError(w, http.StatusInternalServerError, "Erro ao listar veículos")
		return
	}
	s.respondJSON(w, http.StatusOK, vehicles)
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		s.respondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if vehicle.Model == "" || vehicle.Plate == "" {
		s.respondError(w, http.StatusBadRequest, "Campos 'model' e 'plate' são obrigatórios")
		return
	}

	id, err := s.fleet.SaveVehicle(r.Context(), &vehicle)
	if err != nil {
		s.logger.WithError(err).Error("vehicle creation failed", nil)
		s.respondError(w, http.StatusInternalServerError, "Erro ao salvar veículo")
		return
	}
	vehicle.ID = id
	s.respondJSON(w, http.StatusCreated, vehicle)
}

func (s *Server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		s.respondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	vehicle.ID = pathID(r)

	if err := s.fleet.UpdateVehicle(r.Context(), &vehicle); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.respondError(w, http.StatusNotFound, "Veículo não encontrado")
			return
		}
		s.logger.WithError(err).Error("vehicle update failed", map[string]interface{}{
			"vehicleId": vehicle.ID,
		})
		s.respondError(w, http.StatusInternalServerError, "Erro ao atualizar veículo")
		return
	}
	s.respondJSON(w, http.StatusOK, vehicle)
}

func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	if err := s.fleet.DeleteVehicle(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, postgres.ErrInUse):
			s.respondError(w, http.StatusConflict, vehicleInUseMessage)
		case errors.Is(err, sql.ErrNoRows):
			s.respondError(w, http.StatusNotFound, "Veículo não encontrado")
		default:
			s.logger.WithError(err).Error("vehicle deletion failed", map[string]interface{}{
				"vehicleId": id,
			})
			s.respondError(w, http.StatusInternalServerError, "Erro ao excluir veículo")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
