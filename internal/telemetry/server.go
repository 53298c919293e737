package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server exposes a registry over HTTP at /metrics, with a /health probe.
type Server struct {
	srv *http.Server
	log zerolog.Logger
}

// NewServer builds the metrics server on addr. It does not listen yet.
func NewServer(addr string, reg *prometheus.Registry, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: logger.With().Str("component", "telemetry").Logger(),
	}
}

// Start serves in a fresh goroutine and returns immediately. Listen
// failures are logged, not fatal: a run without metrics still runs.
func (s *Server) Start() {
	s.log.Info().Str("addr", s.srv.Addr).Msg("metrics server listening")
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("metrics server")
		}
	}()
}

// Stop shuts the server down, waiting briefly for in-flight scrapes.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Warn().Err(err).Msg("metrics server shutdown")
	}
}
