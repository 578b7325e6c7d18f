package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/revisit/internal/config"
	"github.com/at-ishikawa/revisit/internal/dispatch"
	"github.com/at-ishikawa/revisit/internal/persistence"
	"github.com/at-ishikawa/revisit/internal/schedule"
	"github.com/at-ishikawa/revisit/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{AddSource: true}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	handler, gateway, cleanup, err := newHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Server.Port)),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, gateway, logger)
}

// newHandler restores the state from the configured storage and returns the HTTP handler
// serving it. cleanup flushes the pending snapshot and closes the database.
func newHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) (http.Handler, *persistence.Gateway, func(), error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("cfg.Schedule.Location() > %w", err)
	}

	codec, err := persistence.NewCodec(cfg.Storage.Format)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("persistence.NewCodec() > %w", err)
	}
	store, closer, err := persistence.OpenStore(ctx, cfg.Storage, cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("persistence.OpenStore() > %w", err)
	}

	gateway := persistence.NewGateway(store, codec,
		persistence.WithKey(cfg.Storage.Key),
		persistence.WithWindow(cfg.Storage.Debounce),
		persistence.WithLogger(logger))
	initial, restored := gateway.Restore(ctx)
	logger.Info("state loaded", "restored", restored, "subjects", len(initial.Subjects), "items", len(initial.Items))

	dispatcher, err := dispatch.New(initial, gateway,
		dispatch.WithClock(schedule.SystemClock{Location: loc}),
		dispatch.WithLogger(logger))
	if err != nil {
		_ = closer.Close()
		return nil, nil, nil, fmt.Errorf("dispatch.New() > %w", err)
	}

	cleanup := func() {
		_ = gateway.Close()
		_ = closer.Close()
	}
	return server.NewReviewHandler(dispatcher, logger).Routes(cfg.Server.CORS.AllowedOrigins), gateway, cleanup, nil
}

// serve runs srv until ctx is canceled, then drains requests and writes the last snapshot.
func serve(ctx context.Context, srv *http.Server, gateway *persistence.Gateway, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("srv.ListenAndServe() > %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown() > %w", err)
	}
	gateway.Flush()
	return nil
}

func loadConfig() (*config.Config, error) {
	configFile := os.Getenv("REVISIT_CONFIG")
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
