// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package scheduler provides the host's timer-scheduling entry points,
// setTimeout and setInterval, as named bindings which can be swapped at
// runtime by instrumentation.
//
// Callbacks run on timer goroutines. A callback that panics is reported by
// the host loop and does not bring the process down; intervals keep ticking.
package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DataDog/dd-entrypoint-go/internal/log"
)

// Names of the bindings installed by NewRegistry.
const (
	Timeout  = "setTimeout"
	Interval = "setInterval"
)

// ErrUnknownBinding is returned when swapping a binding that does not exist.
var ErrUnknownBinding = errors.New("scheduler: unknown binding")

// Callback is a function scheduled to run later. It receives the extra
// arguments given when it was scheduled.
type Callback func(args ...any)

// Func schedules cb to run after delay with args.
type Func func(cb Callback, delay time.Duration, args ...any) *Timer

// Timer is a handle on a scheduled callback.
type Timer struct {
	stop func() bool
}

// Stop cancels the timer. It returns false if the timer had already fired
// (for timeouts) or had already been stopped.
func (t *Timer) Stop() bool {
	if t == nil || t.stop == nil {
		return false
	}
	return t.stop()
}

// Registry holds the named scheduling bindings.
type Registry struct {
	mu       sync.RWMutex // guards bindings
	bindings map[string]Func
}

// NewRegistry returns a registry holding the host implementations of
// setTimeout and setInterval.
func NewRegistry() *Registry {
	return &Registry{
		bindings: map[string]Func{
			Timeout:  hostTimeout,
			Interval: hostInterval,
		},
	}
}

// Lookup returns the function currently bound to name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.bindings[name]
	return fn, ok
}

// Swap binds fn to name and returns the previous binding. Only existing
// bindings can be swapped.
func (r *Registry) Swap(name string, fn Func) (Func, error) {
	if fn == nil {
		return nil, fmt.Errorf("scheduler: nil function for %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.bindings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBinding, name)
	}
	r.bindings[name] = fn
	return prev, nil
}

// Instrument atomically replaces the binding of name with wrap applied to the
// current binding. The returned restore function puts the replaced binding
// back; calling it more than once has no further effect.
func (r *Registry) Instrument(name string, wrap func(Func) Func) (restore func(), err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.bindings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBinding, name)
	}
	fn := wrap(prev)
	if fn == nil {
		return nil, fmt.Errorf("scheduler: nil function for %q", name)
	}
	r.bindings[name] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.bindings[name] = prev
		})
	}, nil
}

// Default is the process-wide registry used by SetTimeout and SetInterval.
var Default = NewRegistry()

// SetTimeout runs cb once after delay through the current "setTimeout" binding.
func SetTimeout(cb Callback, delay time.Duration, args ...any) *Timer {
	return Default.call(Timeout, cb, delay, args)
}

// SetInterval runs cb every delay through the current "setInterval" binding,
// until the returned timer is stopped.
func SetInterval(cb Callback, delay time.Duration, args ...any) *Timer {
	return Default.call(Interval, cb, delay, args)
}

func (r *Registry) call(name string, cb Callback, delay time.Duration, args []any) *Timer {
	fn, ok := r.Lookup(name)
	if !ok {
		log.Warn("scheduler: no binding for %s", name)
		return nil
	}
	return fn(cb, delay, args...)
}

// SetTimeout runs cb once after delay through r's "setTimeout" binding.
func (r *Registry) SetTimeout(cb Callback, delay time.Duration, args ...any) *Timer {
	return r.call(Timeout, cb, delay, args)
}

// SetInterval runs cb every delay through r's "setInterval" binding.
func (r *Registry) SetInterval(cb Callback, delay time.Duration, args ...any) *Timer {
	return r.call(Interval, cb, delay, args)
}
