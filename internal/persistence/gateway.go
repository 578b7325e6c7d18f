package persistence

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/at-ishikawa/revisit/internal/review"
)

const (
	DefaultKey    = "state"
	DefaultWindow = time.Second
)

// Gateway saves snapshots of the state under a single key.
// Notify coalesces bursts of changes into at most one write per window, carrying the latest state.
type Gateway struct {
	store  BlobStore
	codec  Codec
	key    string
	window time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	pending *review.State
	timer   *time.Timer
	closed  bool

	// writeMu orders taking the pending state and writing it
	writeMu sync.Mutex
}

type GatewayOption func(*Gateway)

func WithKey(key string) GatewayOption {
	return func(g *Gateway) {
		g.key = key
	}
}

func WithWindow(window time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.window = window
	}
}

func WithLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func NewGateway(store BlobStore, codec Codec, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		store:  store,
		codec:  codec,
		key:    DefaultKey,
		window: DefaultWindow,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "persistence")
	return g
}

// Restore reads the last snapshot. It returns the empty state and false when there is none
// or it cannot be read.
func (g *Gateway) Restore(ctx context.Context) (review.State, bool) {
	data, err := g.store.Read(ctx, g.key)
	if errors.Is(err, ErrSnapshotNotFound) {
		g.logger.Debug("no snapshot to restore", "key", g.key)
		return review.NewState(), false
	}
	if err != nil {
		g.logger.Warn("failed to read snapshot", "key", g.key, "error", err)
		return review.NewState(), false
	}

	state, err := g.codec.Decode(data)
	if err != nil {
		g.logger.Warn("failed to decode snapshot", "key", g.key, "error", err)
		return review.NewState(), false
	}
	// a list missing from the snapshot reads as empty
	if state.Categories == nil {
		state.Categories = []review.Category{}
	}
	if state.Subjects == nil {
		state.Subjects = []review.Subject{}
	}
	if state.Items == nil {
		state.Items = []review.Item{}
	}
	g.logger.Debug("restored snapshot", "key", g.key,
		"subjects", len(state.Subjects),
		"items", len(state.Items))
	return state, true
}

// Save writes the state right away. Failures are logged and never returned.
func (g *Gateway) Save(ctx context.Context, state review.State) {
	data, err := g.codec.Encode(state)
	if err != nil {
		g.logger.Error("failed to encode snapshot", "key", g.key, "error", err)
		return
	}
	if err := g.store.Write(ctx, g.key, data); err != nil {
		g.logger.Error("failed to write snapshot", "key", g.key, "error", errors.Join(review.ErrPersistenceUnavailable, err))
		return
	}
	g.logger.Debug("saved snapshot", "key", g.key, "bytes", len(data))
}

// Notify records the state as the next one to save. The write happens when the window
// opened by the first pending notification ends. It never blocks on I/O.
func (g *Gateway) Notify(state review.State) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pending = &state
	if g.closed {
		go g.flushPending()
		return
	}
	if g.timer == nil {
		g.timer = time.AfterFunc(g.window, g.flushPending)
	}
}

// Flush writes the pending state, if any, without waiting for the window.
func (g *Gateway) Flush() {
	g.mu.Lock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.mu.Unlock()
	g.flushPending()
}

// Close flushes the pending state. Later notifications are written without debouncing.
func (g *Gateway) Close() error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.Flush()
	return nil
}

func (g *Gateway) flushPending() {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	g.mu.Lock()
	pending := g.pending
	g.pending = nil
	g.timer = nil
	g.mu.Unlock()

	if pending == nil {
		return
	}
	g.Save(context.Background(), *pending)
}
