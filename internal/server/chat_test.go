// internal/server/chat_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-intake/internal/common/logger"
	"logistics-intake/internal/intake/conversation"
	"logistics-intake/internal/models"
)

// stubChat scripts the conversation engine for handler tests.
type stubChat struct {
	reply    *string
	err      error
	enabled  bool
	lastUser string
	lastMsg  string
	lastHist string
}

func (s *stubChat) ProcessMessage(_ context.Context, userID, _, message, history string) (*string, error) {
	s.lastUser, s.lastMsg, s.lastHist = userID, message, history
	return s.reply, s.err
}

func (s *stubChat) Metrics() conversation.Snapshot {
	return conversation.Snapshot{
		TotalRequests:   7,
		ErrorRate:       "0.00%",
		ConcurrentSlots: "2/2",
	}
}

func (s *stubChat) Enabled() bool { return s.enabled }

func (s *stubChat) Toggle() bool {
	s.enabled = !s.enabled
	return s.enabled
}

type stubOrders struct {
	orders []models.ServiceOrder
	saved  *models.ServiceOrder
	err    error
}

func (s *stubOrders) Save(_ context.Context, order *models.ServiceOrder) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.saved = order
	return 10, nil
}
func (s *stubOrders) List(context.Context) ([]models.ServiceOrder, error) { return s.orders, s.err }
func (s *stubOrders) GetByID(context.Context, int64) (*models.ServiceOrder, error) {
	if len(s.orders) == 0 {
		return nil, s.err
	}
	return &s.orders[0], nil
}
func (s *stubOrders) Update(context.Context, *models.ServiceOrder) error { return s.err }
func (s *stubOrders) Delete(context.Context, int64) error                { return s.err }
func (s *stubOrders) DeleteAll(context.Context) error                    { return s.err }

func newTestServer(t *testing.T, chat *stubChat, orders *stubOrders) *Server {
	t.Helper()
	return New(Options{
		Chat:            chat,
		Orders:          orders,
		Report:          &stubReport{},
		WhatsappAPIURL:  "http://localhost:0",
		WhatsappTimeout: time.Second,
		Logger:          logger.NewTestLogger(t),
	})
}

type stubReport struct{}

func (s *stubReport) WriteCSV(_ context.Context, w io.Writer, _, _ time.Time) error {
	_, err := w.Write([]byte("ID,Solicitante\n"))
	return err
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestChatMessageHappyPath(t *testing.T) {
	reply := "Qual o destino?"
	chat := &stubChat{reply: &reply, enabled: true}
	s := newTestServer(t, chat, &stubOrders{})

	rec := doJSON(t, s, http.MethodPost, "/api/chat/message",
		`{"userId": "556299999", "userName": "Maria", "message": "preciso de um carro", "history": "User: oi"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool    `json:"success"`
		Reply   *string `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Reply)
	assert.Equal(t, "Qual o destino?", *resp.Reply)

	assert.Equal(t, "556299999", chat.lastUser)
	assert.Equal(t, "preciso de um carro", chat.lastMsg)
	assert.Equal(t, "User: oi", chat.lastHist)
}

func TestChatMessageValidatesRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing userId", `{"message": "oi"}`},
		{"missing message", `{"userId": "556299999"}`},
		{"both missing", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &stubChat{}, &stubOrders{})
			rec := doJSON(t, s, http.MethodPost, "/api/chat/message", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Campos 'userId' e 'message' são obrigatórios")
		})
	}
}

// A dropped turn is not an HTTP error: the adapter gets success with a null
// reply and stays silent.
func TestChatMessageDroppedTurnIsNullReply(t *testing.T) {
	chat := &stubChat{reply: nil, err: errors.New("queue wait exceeded")}
	s := newTestServer(t, chat, &stubOrders{})

	rec := doJSON(t, s, http.MethodPost, "/api/chat/message",
		`{"userId": "556299999", "message": "oi"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Nil(t, resp["reply"])
}

func TestChatMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &stubChat{enabled: true}, &stubOrders{})

	rec := doJSON(t, s, http.MethodGet, "/api/chat/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                  `json:"success"`
		Metrics conversation.Snapshot `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(7), resp.Metrics.TotalRequests)
	assert.Equal(t, "2/2", resp.Metrics.ConcurrentSlots)
}

func TestBotStatusAndToggle(t *testing.T) {
	chat := &stubChat{enabled: true}
	s := newTestServer(t, chat, &stubOrders{})

	rec := doJSON(t, s, http.MethodGet, "/api/whatsapp/bot-status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active": true}`, rec.Body.String())

	rec = doJSON(t, s, http.MethodPost, "/api/whatsapp/bot-toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active": false}`, rec.Body.String())
	assert.False(t, chat.enabled)
}

func TestReportRoute(t *testing.T) {
	s := newTestServer(t, &stubChat{}, &stubOrders{})

	rec := doJSON(t, s, http.MethodGet, "/api/relatorio/csv?dataInicio=2026-09-01&dataFim=2026-09-30", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "relatorio_2026-09-01_2026-09-30.csv")
	assert.Contains(t, rec.Body.String(), "ID,Solicitante")
}

func TestReportRouteValidatesPeriod(t *testing.T) {
	s := newTestServer(t, &stubChat{}, &stubOrders{})

	rec := doJSON(t, s, http.MethodGet, "/api/relatorio/csv?dataInicio=setembro", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
