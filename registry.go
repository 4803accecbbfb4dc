package jsonget

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Registry resolves function names and aliases to Functions and invokes them
// with a shared allocator, navigator, and hooks.
//
// Usage:
//  1. Create a registry with New (the built-in functions are registered)
//  2. Optionally Register custom functions
//  3. Invoke functions by name
//
// Registry is safe for concurrent use after configuration. Do not call
// Register after calling Invoke.
type Registry struct {
	functions map[string]*Function
	mem       memory.Allocator
	nav       Navigator
	hooks     hooks
}

// Option configures a Registry.
type Option func(*Registry)

// New creates a Registry holding the built-in functions and applies opts.
//
// Example:
//
//	r := jsonget.New(
//	    jsonget.WithAllocator(mem),
//	    jsonget.WithOnComplete(func(ctx context.Context, function string, s jsonget.Stats, d time.Duration) {
//	        log.Printf("%s: %d rows, %d null (%v)", function, s.Rows, s.Nulls(), d)
//	    }),
//	)
func New(opts ...Option) *Registry {
	r := &Registry{
		functions: make(map[string]*Function),
		mem:       memory.DefaultAllocator,
		nav:       Lazy(),
	}
	for _, fn := range Functions() {
		r.Register(fn)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithAllocator sets the allocator for output columns.
func WithAllocator(mem memory.Allocator) Option {
	return func(r *Registry) {
		r.mem = mem
	}
}

// WithNavigator sets the navigator for functions that do not set their own.
func WithNavigator(nav Navigator) Option {
	return func(r *Registry) {
		r.nav = nav
	}
}

// WithFunctions registers additional functions.
func WithFunctions(fns ...*Function) Option {
	return func(r *Registry) {
		for _, fn := range fns {
			r.Register(fn)
		}
	}
}

// Register adds fn under its name and aliases, replacing any function
// previously registered under the same names.
func (r *Registry) Register(fn *Function) {
	r.functions[fn.Name] = fn
	for _, alias := range fn.Aliases {
		r.functions[alias] = fn
	}
}

// Lookup returns the function registered under name or alias.
func (r *Registry) Lookup(name string) (*Function, bool) {
	fn, ok := r.functions[name]
	return fn, ok
}

// Names returns the primary names of all registered functions, sorted.
func (r *Registry) Names() []string {
	seen := make(map[string]struct{}, len(r.functions))
	for _, fn := range r.functions {
		seen[fn.Name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke resolves name and evaluates the function over a batch. See
// Function.Invoke for the argument and null semantics.
//
// The invocation flow:
//  1. Look up the function by name or alias
//  2. Call OnInvoke hooks
//  3. Evaluate every row
//  4. Call OnComplete hooks, or OnError hooks if the call failed
func (r *Registry) Invoke(ctx context.Context, name string, json Arg, path ...Arg) (arrow.Array, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownFunction, name)
		r.hooks.fail(ctx, name, err, 0)
		return nil, err
	}

	ctx = r.hooks.invoke(ctx, fn.Name)

	start := time.Now()
	arr, stats, err := fn.invoke(r.mem, r.nav, json, path)
	duration := time.Since(start)

	if err != nil {
		r.hooks.fail(ctx, fn.Name, err, duration)
		return nil, err
	}
	r.hooks.complete(ctx, fn.Name, stats, duration)
	return arr, nil
}
