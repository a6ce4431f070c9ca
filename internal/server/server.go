// internal/server/server.go

// Package server exposes the chat, fleet, and session-proxy HTTP surface.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"logistics-intake/internal/common/logger"
	"logistics-intake/internal/intake/conversation"
	"logistics-intake/internal/models"
)

// ChatEngine is the conversation orchestrator contract the server depends on.
type ChatEngine interface {
	ProcessMessage(ctx context.Context, userID, displayName, message, history string) (*string, error)
	Metrics() conversation.Snapshot
	Enabled() bool
	Toggle() bool
}

// OrderStore is the order repository surface used by the CRUD endpoints.
type OrderStore interface {
	Save(ctx context.Context, order *models.ServiceOrder) (int64, error)
	List(ctx context.Context) ([]models.ServiceOrder, error)
	GetByID(ctx context.Context, id int64) (*models.ServiceOrder, error)
	Update(ctx context.Context, order *models.ServiceOrder) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

// FleetStore is the driver/vehicle repository surface.
type FleetStore interface {
	ListDrivers(ctx context.Context) ([]models.Driver, error)
	SaveDriver(ctx context.Context, d *models.Driver) (int64, error)
	UpdateDriver(ctx context.Context, d *models.Driver) error
	DeleteDriver(ctx context.Context, id int64) error
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	SaveVehicle(ctx context.Context, v *models.Vehicle) (int64, error)
	UpdateVehicle(ctx context.Context, v *models.Vehicle) error
	DeleteVehicle(ctx context.Context, id int64) error
}

// ReportWriter renders the period report.
type ReportWriter interface {
	WriteCSV(ctx context.Context, w io.Writer, from, to time.Time) error
}

type Server struct {
	router *mux.Router
	chat   ChatEngine
	orders OrderStore
	fleet  FleetStore
	report ReportWriter
	proxy  *sessionProxy
	logger logger.Logger
}

type Options struct {
	Chat            ChatEngine
	Orders          OrderStore
	Fleet           FleetStore
	Report          ReportWriter
	WhatsappAPIURL  string
	WhatsappTimeout time.Duration
	Logger          logger.Logger
}

func New(opts Options) *Server {
	s := &Server{
		router: mux.NewRouter(),
		chat:   opts.Chat,
		orders: opts.Orders,
		fleet:  opts.Fleet,
		report: opts.Report,
		proxy:  newSessionProxy(opts.WhatsappAPIURL, opts.WhatsappTimeout),
		logger: opts.Logger.With(map[string]interface{}{
			"component": "http-server",
		}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Chat
	s.router.HandleFunc("/api/chat/message", s.handleChatMessage).Methods(http.MethodPost)
	s.router.HandleFunc("/api/chat/metrics", s.handleChatMetrics).Methods(http.MethodGet)

	// Bot switch + session proxy
	s.router.HandleFunc("/api/whatsapp/bot-status", s.handleBotStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/api/whatsapp/bot-toggle", s.handleBotToggle).Methods(http.MethodPost)
	s.router.HandleFunc("/api/whatsapp/start", s.proxy.forward("/session/start", http.MethodPost)).Methods(http.MethodPost)
	s.router.HandleFunc("/api/whatsapp/qr", s.proxy.forward("/session/qr", http.MethodGet)).Methods(http.MethodGet)
	s.router.HandleFunc("/api/whatsapp/status", s.proxy.forward("/session/status", http.MethodGet)).Methods(http.MethodGet)
	s.router.HandleFunc("/api/whatsapp/logout", s.proxy.forward("/session/logout", http.MethodDelete)).Methods(http.MethodDelete)

	// Service orders
	s.router.HandleFunc("/api/os", s.handleListOrders).Methods(http.MethodGet)
	s.router.HandleFunc("/api/os", s.handleCreateOrder).Methods(http.MethodPost)
	s.router.HandleFunc("/api/os/wipe-all-secret-key", s.handleWipeOrders).Methods(http.MethodDelete)
	s.router.HandleFunc("/api/os/{id:[0-9]+}", s.handleGetOrder).Methods(http.MethodGet)
	s.router.HandleFunc("/api/os/{id:[0-9]+}", s.handleUpdateOrder).Methods(http.MethodPut)
	s.router.HandleFunc("/api/os/{id:[0-9]+}", s.handleDeleteOrder).Methods(http.MethodDelete)

	// Fleet resources
	s.router.HandleFunc("/api/recursos/motoristas", s.handleListDrivers).Methods(http.MethodGet)
	s.router.HandleFunc("/api/recursos/motoristas", s.handleCreateDriver).Methods(http.MethodPost)
	s.router.HandleFunc("/api/recursos/motoristas/{id:[0-9]+}", s.handleUpdateDriver).Methods(http.MethodPut)
	s.router.HandleFunc("/api/recursos/motoristas/{id:[0-9]+}", s.handleDeleteDriver).Methods(http.MethodDelete)
	s.router.HandleFunc("/api/recursos/veiculos", s.handleListVehicles).Methods(http.MethodGet)
	s.router.HandleFunc("/api/recursos/veiculos", s.handleCreateVehicle).Methods(http.MethodPost)
	s.router.HandleFunc("/api/recursos/veiculos/{id:[0-9]+}", s.handleUpdateVehicle).Methods(http.MethodPut)
	s.router.HandleFunc("/api/recursos/veiculos/{id:[0-9]+}", s.handleDeleteVehicle).Methods(http.MethodDelete)

	// Reporting
	s.router.HandleFunc("/api/relatorio/csv", s.handleReport).Methods(http.MethodGet)
}

// Handler returns the fully-wired handler including CORS.
func (s *Server) Handler() http.Handler {
	return cors.AllowAll().Handler(s.router)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.WithError(err).Error("response encoding failed", nil)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
