package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/moodmapper/moodmapper/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Server runs the HTTP API until its context is cancelled.
type Server struct {
	addr   string
	logger logging.Logger
	http   *http.Server
}

// NewServer builds the server around the given handler set.
func NewServer(addr string, h *Handler, logger logging.Logger) *Server {
	return &Server{
		addr:   addr,
		logger: logger,
		http: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(h),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info(ctx, "http server stopped")
	return nil
}
