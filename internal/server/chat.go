// internal/server/chat.go
package server

import (
	"encoding/json"
	"net/http"
)

type chatRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Message  string `json:"message"`
	History  string `json:"history"`
}

// handleChatMessage runs one conversation turn. A dropped turn (admission
// timeout, provider exhaustion, unparseable reply) still answers 200 with a
// null reply so the channel adapter stays silent instead of erroring at the
// user.
func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if req.UserID == "" || req.Message == "" {
		s.respondError(w, http.StatusBadRequest, "Campos 'userId' e 'message' são obrigatórios")
		return
	}

	reply, err := s.chat.ProcessMessage(r.Context(), req.UserID, req.UserName, req.Message, req.History)
	if err != nil {
		s.logger.WithError(err).Warn("chat turn dropped", map[string]interface{}{
			"userId": req.UserID,
		})
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"reply":   reply,
	})
}

func (s *Server) handleChatMetrics(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"metrics": s.chat.Metrics(),
	})
}

func (s *Server) handleBotStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"active": s.chat.Enabled(),
	})
}

func (s *Server) handleBotToggle(w http.ResponseWriter, r *http.Request) {
	active := s.chat.Toggle()
	s.logger.Info("bot state toggled", map[string]interface{}{
		"active": active,
	})
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"active": active,
	})
}
