package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/rjboer/GoRanging/internal/logging"
)

// WebServer exposes estimate history and live updates over HTTP.
type WebServer struct {
	srv    *http.Server
	hub    *Hub
	logger logging.Logger
}

// NewWebServer wires the hub's endpoints onto addr.
func NewWebServer(addr string, hub *Hub, logger logging.Logger) *WebServer {
	if logger == nil {
		logger = logging.Default()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/history", hub.handleHistory)
	mux.HandleFunc("/api/live", hub.handleLive)
	mux.HandleFunc("/api/diagnostics", hub.handleDiagnostics)

	return &WebServer{
		hub:    hub,
		logger: logger,
		srv:    &http.Server{Addr: addr, Handler: mux},
	}
}

// Start listens until the context is canceled, then drains and shuts down.
func (w *WebServer) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := w.srv.Shutdown(shutdownCtx); err != nil {
			w.logger.Warn("telemetry server shutdown", logging.F("error", err))
		}
	}()

	if err := w.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		w.logger.Error("telemetry server", logging.F("error", err))
	}
}
