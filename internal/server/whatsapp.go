// internal/server/whatsapp.go
package server

import (
	"io"
	"net/http"
	"strings"
	"time"
)

// sessionProxy forwards session-management calls to the channel bridge that
// owns the actual WhatsApp connection.
type sessionProxy struct {
	baseURL string
	client  *http.Client
}

func newSessionProxy(baseURL string, timeout time.Duration) *sessionProxy {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &sessionProxy{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *sessionProxy) forward(path, method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := http.NewRequestWithContext(r.Context(), method, p.baseURL+path, r.Body)
		if err != nil {
			writeProxyError(w)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "" {
			req.Header.Set("Content-Type", ct)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			writeProxyError(w)
			return
		}
		defer resp.Body.Close()

		if ct := resp.Header.Get("Content-Type"); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.WriteHeader(resp.StatusCode)
		io.Copy(w, resp.Body) //nolint:errcheck
	}
}

func writeProxyError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	w.Write([]byte(`{"success":false,"message":"Serviço de sessão WhatsApp indisponível"}`)) //nolint:errcheck
}
