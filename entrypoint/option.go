// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package entrypoint

import (
	"github.com/DataDog/dd-entrypoint-go/internal"
	"github.com/DataDog/dd-entrypoint-go/internal/stacktrace"
	"github.com/DataDog/dd-entrypoint-go/scheduler"
)

type config struct {
	// tracer starts and stops the spans of traced protected calls.
	tracer Tracer

	// stackDepth is the maximum number of frames captured when a traced
	// wrapper is built.
	stackDepth int

	// traceEnabled is the initial value of the trace flag.
	traceEnabled bool

	// errorResults reports non-nil trailing error results to the handler.
	errorResults bool

	// registry holds the timer bindings replaced by InstrumentTimerScheduler.
	registry *scheduler.Registry
}

// Option represents an option that can be passed to New.
type Option func(*config)

func defaults(cfg *config) {
	cfg.tracer = noopTracer{}
	cfg.stackDepth = internal.IntEnv("DD_ENTRYPOINT_STACK_DEPTH", stacktrace.DefaultDepth)
	if cfg.stackDepth <= 0 {
		cfg.stackDepth = stacktrace.DefaultDepth
	}
	cfg.traceEnabled = internal.BoolEnv("DD_ENTRYPOINT_TRACE_ENABLED", false)
	cfg.errorResults = internal.BoolEnv("DD_ENTRYPOINT_ERROR_RESULTS", false)
	cfg.registry = scheduler.Default
}

// WithTracer sets the tracer used by traced protected calls. A nil tracer
// disables span creation.
func WithTracer(t Tracer) Option {
	return func(cfg *config) {
		if t == nil {
			t = noopTracer{}
		}
		cfg.tracer = t
	}
}

// WithStackDepth sets the maximum number of frames kept in the stack marker of
// traced wrappers. Non-positive values select the default of 15 frames.
// It can also be set with DD_ENTRYPOINT_STACK_DEPTH.
func WithStackDepth(n int) Option {
	return func(cfg *config) {
		if n <= 0 {
			n = stacktrace.DefaultDepth
		}
		cfg.stackDepth = n
	}
}

// WithTraceEnabled sets the initial value of the trace flag. It can also be
// set with DD_ENTRYPOINT_TRACE_ENABLED.
func WithTraceEnabled(enabled bool) Option {
	return func(cfg *config) {
		cfg.traceEnabled = enabled
	}
}

// WithErrorResults makes protected functions whose last result is an error
// report non-nil errors to the handler. Results are still returned
// unchanged. It can also be set with DD_ENTRYPOINT_ERROR_RESULTS.
func WithErrorResults(enabled bool) Option {
	return func(cfg *config) {
		cfg.errorResults = enabled
	}
}

// WithRegistry sets the scheduler registry instrumented by
// InstrumentTimerScheduler. It defaults to scheduler.Default.
func WithRegistry(r *scheduler.Registry) Option {
	return func(cfg *config) {
		if r != nil {
			cfg.registry = r
		}
	}
}
