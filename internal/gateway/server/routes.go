package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"askdata/internal/gateway/handler"
	"askdata/internal/gateway/middleware"
)

func NewMux(h *handler.Handler, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// RPC Handlers
	mux.Handle(h.NewAnalyzeHandler())

	// HTTP Handlers
	mux.HandleFunc("/api/chat", h.HandleChat)
	mux.HandleFunc("GET /api/runs/{runID}", h.HandleListRun)
	mux.HandleFunc("GET /api/runs/{runID}/{name}", h.HandleGetRunFile)
	mux.HandleFunc("GET /ws/analyze", h.HandleAnalyzeWS)

	// Ops Handlers
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	// Middleware
	return middleware.CORS(middleware.Logging(log)(mux))
}
