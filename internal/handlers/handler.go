// Package handlers holds long-running bus consumers that push events out
// of the process.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/mediarr/internal/events"
)

// Handler is a bus consumer started alongside the HTTP server.
type Handler interface {
	// Start blocks until ctx is done or the bus closes.
	Start(ctx context.Context) error
	Name() string
}

// BaseHandler carries the bus and logger shared by every handler.
type BaseHandler struct {
	bus    *events.Bus
	logger *slog.Logger
}

// NewBaseHandler creates a base handler. A nil logger uses slog.Default.
func NewBaseHandler(bus *events.Bus, logger *slog.Logger) *BaseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseHandler{bus: bus, logger: logger}
}

func (h *BaseHandler) Bus() *events.Bus     { return h.bus }
func (h *BaseHandler) Logger() *slog.Logger { return h.logger }

// Consume subscribes to eventType and calls fn for each event until ctx
// is done or the bus closes. fn runs on the consuming goroutine, so a slow
// fn backs up the subscription buffer and the bus starts dropping.
func (h *BaseHandler) Consume(ctx context.Context, eventType string, buffer int, fn func(context.Context, events.Event)) error {
	ch := h.bus.Subscribe(eventType, buffer)
	defer h.bus.Unsubscribe(ch)

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			fn(ctx, e)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunAll starts every handler and waits for them. Cancellation is a clean
// stop; the first other error cancels the rest and is returned.
func RunAll(ctx context.Context, logger *slog.Logger, hs ...Handler) error {
	if logger == nil {
		logger = slog.Default()
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, h := range hs {
		g.Go(func() error {
			logger.Info("starting handler", "handler", h.Name())
			err := h.Start(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("handler %s: %w", h.Name(), err)
			}
			logger.Debug("handler stopped", "handler", h.Name())
			return nil
		})
	}
	return g.Wait()
}
