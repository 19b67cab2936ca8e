package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPServerService binds the listener itself, so a busy port fails Serve at once and
// suture restarts the service with backoff instead of the error surfacing later.
type HTTPServerService struct {
	srv             *http.Server
	listen          func(network, addr string) (net.Listener, error)
	shutdownTimeout time.Duration
	logger          zerolog.Logger
}

func NewHTTPServerService(srv *http.Server, shutdownTimeout time.Duration, logger zerolog.Logger) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		srv:             srv,
		listen:          net.Listen,
		shutdownTimeout: shutdownTimeout,
		logger:          logger.With().Str("service", "http").Logger(),
	}
}

func (s *HTTPServerService) Serve(ctx context.Context) error {
	ln, err := s.listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("http listening")

	served := make(chan error, 1)
	go func() { served <- s.srv.Serve(ln) }()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http serve: %w", err)
	case <-ctx.Done():
	}

	// ctx уже отменён: на shutdown берём свой таймаут
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(sctx); err != nil {
		s.logger.Warn().Err(err).Msg("graceful shutdown incomplete, closing connections")
		_ = s.srv.Close()
	}
	<-served
	return ctx.Err()
}

func (s *HTTPServerService) String() string { return "http-server" }
