package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/buddyboard/buddyboard/internal/config"
	"github.com/buddyboard/buddyboard/internal/middleware"
	"github.com/rs/zerolog/log"
)

type Server struct {
	cfg     *config.Config
	http    *http.Server
	limiter *middleware.RateLimiter

	// released in reverse order on shutdown
	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	s := &Server{cfg: cfg}

	router, err := s.setupRoutes(ctx)
	if err != nil {
		s.closeAll()
		return nil, fmt.Errorf("setup routes: %w", err)
	}

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Handler exposes the router for in-process tests
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.http.Addr).Msg("listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := s.http.Shutdown(shutdownCtx)
		s.closeAll()
		return err
	case err := <-errCh:
		s.closeAll()
		return err
	}
}

func (s *Server) onClose(name string, fn func() error) {
	s.closers = append(s.closers, namedCloser{name: name, close: fn})
}

func (s *Server) closeAll() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		if err := c.close(); err != nil {
			log.Warn().Err(err).Str("resource", c.name).Msg("error during close")
			continue
		}
		log.Info().Str("resource", c.name).Msg("closed")
	}
	s.closers = nil
}
