package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/at-ishikawa/revisit/internal/client"
	"github.com/at-ishikawa/revisit/internal/config"
	"github.com/at-ishikawa/revisit/internal/dispatch"
	"github.com/at-ishikawa/revisit/internal/persistence"
	"github.com/at-ishikawa/revisit/internal/review"
	"github.com/at-ishikawa/revisit/internal/schedule"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// backend is what commands talk to: the local store or a running revisit-server.
type backend interface {
	Dispatch(ctx context.Context, cmd dispatch.Command) (review.State, error)
	State(ctx context.Context) (review.State, error)
	Replace(ctx context.Context, base, state review.State) (review.State, error)
	Schedule(ctx context.Context, id string) (dispatch.Schedule, error)
	Today() review.Date
	Close() error
}

// openBackend loads the config and connects to the server if one is configured,
// otherwise restores the state from the configured storage.
func openBackend(ctx context.Context) (backend, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("cfg.Schedule.Location() > %w", err)
	}
	clock := schedule.SystemClock{Location: loc}

	url := serverURL
	if url == "" {
		url = cfg.Server.URL
	}
	if url != "" {
		slog.Debug("using a remote server", "url", url)
		return &remoteBackend{Client: client.NewClient(url), clock: clock}, cfg, nil
	}

	b, err := openLocalBackend(ctx, cfg, clock)
	if err != nil {
		return nil, nil, err
	}
	return b, cfg, nil
}

func openLocalBackend(ctx context.Context, cfg *config.Config, clock schedule.Clock) (*localBackend, error) {
	codec, err := persistence.NewCodec(cfg.Storage.Format)
	if err != nil {
		return nil, fmt.Errorf("persistence.NewCodec() > %w", err)
	}
	store, closer, err := persistence.OpenStore(ctx, cfg.Storage, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("persistence.OpenStore() > %w", err)
	}

	gateway := persistence.NewGateway(store, codec,
		persistence.WithKey(cfg.Storage.Key),
		persistence.WithWindow(cfg.Storage.Debounce),
		persistence.WithLogger(slog.Default()))
	initial, _ := gateway.Restore(ctx)

	dispatcher, err := dispatch.New(initial, gateway,
		dispatch.WithClock(clock),
		dispatch.WithLogger(slog.Default()))
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("dispatch.New() > %w", err)
	}
	return &localBackend{
		Dispatcher: dispatcher,
		gateway:    gateway,
		closer:     closer,
	}, nil
}

type localBackend struct {
	*dispatch.Dispatcher
	gateway *persistence.Gateway
	closer  io.Closer
}

func (b *localBackend) State(_ context.Context) (review.State, error) {
	return b.Dispatcher.State(), nil
}

func (b *localBackend) Schedule(_ context.Context, id string) (dispatch.Schedule, error) {
	return b.Dispatcher.Schedule(id)
}

// Close writes the pending snapshot before the process exits.
func (b *localBackend) Close() error {
	if err := b.gateway.Close(); err != nil {
		return fmt.Errorf("gateway.Close() > %w", err)
	}
	if err := b.closer.Close(); err != nil {
		return fmt.Errorf("closer.Close() > %w", err)
	}
	return nil
}

type remoteBackend struct {
	*client.Client
	clock schedule.Clock
}

func (b *remoteBackend) Today() review.Date {
	return b.clock.Today()
}

// withBackend opens a backend for the duration of run and closes it afterwards.
func withBackend(ctx context.Context, run func(b backend, cfg *config.Config) error) (err error) {
	b, cfg, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := b.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close: %w", closeErr)
		}
	}()
	return run(b, cfg)
}

func findItem(ctx context.Context, b backend, id string) (review.Item, error) {
	state, err := b.State(ctx)
	if err != nil {
		return review.Item{}, fmt.Errorf("State() > %w", err)
	}
	return state.FindItem(id)
}
