package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

type logRoutes struct {
	sync.RWMutex
	handlers map[string]slog.Handler
}

// logRouter is a [slog.Handler] fanning records out to a changeable set of
// named handlers. Handlers derived with attributes or groups keep following
// the set of their root.
type logRouter struct {
	routes *logRoutes
	ops    []func(slog.Handler) slog.Handler
}

func newLogRouter() *logRouter {
	return &logRouter{
		routes: &logRoutes{
			handlers: make(map[string]slog.Handler),
		},
	}
}

func newTerminalHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
}

// AddHandler routes records to h under name, replacing any handler of the
// same name.
func (r *logRouter) AddHandler(name string, h slog.Handler) {
	r.routes.Lock()
	defer r.routes.Unlock()

	r.routes.handlers[name] = h
}

// RemoveHandler stops routing records to the handler called name.
func (r *logRouter) RemoveHandler(name string) {
	r.routes.Lock()
	defer r.routes.Unlock()

	delete(r.routes.handlers, name)
}

func (r *logRouter) derive(h slog.Handler) slog.Handler {
	for _, op := range r.ops {
		h = op(h)
	}

	return h
}

// Enabled reports whether any routed handler takes records of level.
func (r *logRouter) Enabled(ctx context.Context, level slog.Level) bool {
	r.routes.RLock()
	defer r.routes.RUnlock()

	for _, h := range r.routes.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

// Handle passes a copy of rec to every routed handler enabled for its level.
func (r *logRouter) Handle(ctx context.Context, rec slog.Record) error {
	r.routes.RLock()
	defer r.routes.RUnlock()

	var errs []error
	for _, h := range r.routes.handlers {
		if !h.Enabled(ctx, rec.Level) {
			continue
		}
		if err := r.derive(h).Handle(ctx, rec.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (r *logRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	attrs = slices.Clone(attrs)

	return &logRouter{
		routes: r.routes,
		ops: append(slices.Clone(r.ops), func(h slog.Handler) slog.Handler {
			return h.WithAttrs(attrs)
		}),
	}
}

func (r *logRouter) WithGroup(name string) slog.Handler {
	if name == "" {
		return r
	}

	return &logRouter{
		routes: r.routes,
		ops: append(slices.Clone(r.ops), func(h slog.Handler) slog.Handler {
			return h.WithGroup(name)
		}),
	}
}
