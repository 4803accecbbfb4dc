package jsonget

import (
	"context"
	"time"
)

// OnInvokeFunc is called before a function runs. Use this to enrich the
// context with logging fields or trace spans. The returned context is passed
// to the remaining hooks of the call.
type OnInvokeFunc func(ctx context.Context, function string) context.Context

// OnCompleteFunc is called after a function produced its output column.
type OnCompleteFunc func(ctx context.Context, function string, stats Stats, duration time.Duration)

// OnErrorFunc is called when a call fails as a whole, including calls to
// unknown functions.
type OnErrorFunc func(ctx context.Context, function string, err error, duration time.Duration)

// hooks holds all configured hook functions.
type hooks struct {
	onInvoke   []OnInvokeFunc
	onComplete []OnCompleteFunc
	onError    []OnErrorFunc
}

// WithOnInvoke adds a hook called before a function runs.
// Multiple hooks are called in order, with context chaining through each.
//
// Example:
//
//	jsonget.WithOnInvoke(func(ctx context.Context, function string) context.Context {
//	    return logger.With().Str("function", function).Logger().WithContext(ctx)
//	})
func WithOnInvoke(fn OnInvokeFunc) Option {
	return func(r *Registry) {
		r.hooks.onInvoke = append(r.hooks.onInvoke, fn)
	}
}

// WithOnComplete adds a hook called after a function produced its column.
// Multiple hooks are called in order.
//
// Example:
//
//	jsonget.WithOnComplete(func(ctx context.Context, function string, s jsonget.Stats, d time.Duration) {
//	    metrics.Count("jsonget.null_rows", s.Nulls(), "function:"+function)
//	})
func WithOnComplete(fn OnCompleteFunc) Option {
	return func(r *Registry) {
		r.hooks.onComplete = append(r.hooks.onComplete, fn)
	}
}

// WithOnError adds a hook called when a call fails as a whole.
// Multiple hooks are called in order.
func WithOnError(fn OnErrorFunc) Option {
	return func(r *Registry) {
		r.hooks.onError = append(r.hooks.onError, fn)
	}
}

func (h *hooks) invoke(ctx context.Context, function string) context.Context {
	for _, fn := range h.onInvoke {
		ctx = fn(ctx, function)
	}
	return ctx
}

func (h *hooks) complete(ctx context.Context, function string, stats Stats, d time.Duration) {
	for _, fn := range h.onComplete {
		fn(ctx, function, stats, d)
	}
}

func (h *hooks) fail(ctx context.Context, function string, err error, d time.Duration) {
	for _, fn := range h.onError {
		fn(ctx, function, err, d)
	}
}
