package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/docvault/internal/bootstrap"
	"github.com/baechuer/docvault/internal/logger"
)

const shutdownTimeout = 15 * time.Second

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
	Addr() string
}

type stdServer struct{ *http.Server }

func (s stdServer) Addr() string { return s.Server.Addr }

type serverBuilder func() (httpServer, func(), error)

// Run serves until ctx is cancelled or the listener fails. The return value
// is the process exit code.
func Run(ctx context.Context, build serverBuilder, lg zerolog.Logger) int {
	srv, cleanup, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("bootstrap failed")
		return 1
	}
	defer cleanup()

	listenErr := make(chan error, 1)
	go func() { listenErr <- listen(srv, lg) }()

	select {
	case err := <-listenErr:
		lg.Error().Err(err).Msg("listener stopped unexpectedly")
		return 1
	case <-ctx.Done():
		lg.Info().Msg("stopping docvault api")
	}

	stop(srv, lg)
	return 0
}

func listen(srv httpServer, lg zerolog.Logger) error {
	lg.Info().Str("addr", srv.Addr()).Msg("docvault api listening")
	err := srv.ListenAndServe()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		// Only reachable after stop; Run is no longer reading.
		return nil
	}
	return err
}

// stop drains in-flight requests and falls back to a hard close when the
// drain does not finish within shutdownTimeout.
func stop(srv httpServer, lg zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Warn().Err(err).Msg("drain incomplete, closing connections")
		_ = srv.Close()
	}
	lg.Info().Msg("docvault api stopped")
}

func main() {
	logger.Init()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, func() (httpServer, func(), error) {
		srv, cleanup, err := bootstrap.NewServer()
		if err != nil {
			return nil, nil, err
		}
		return stdServer{srv}, cleanup, nil
	}, logger.Logger)
	cancel()
	os.Exit(code)
}
