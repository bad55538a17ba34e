// README: API gateway; wires module services into the router and serves until the context ends.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"parkdesk/internal/metrics"
	"parkdesk/internal/modules/parking"
	"parkdesk/internal/modules/pricing"
)

const shutdownTimeout = 10 * time.Second

type ServerDeps struct {
	Parking *parking.Service
	Pricing *pricing.Service
	Logger  *slog.Logger
	// Metrics and Gatherer are optional; /metrics is served only with a Gatherer.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// Now and Location drive report bucketing; zero values mean time.Now and time.Local.
	Now      func() time.Time
	Location *time.Location
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

func NewServer(addr string, deps ServerDeps) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(deps),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: deps.Logger,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
