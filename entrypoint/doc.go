// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package entrypoint protects the functions through which external code calls
// into an application: handlers, listeners and timer callbacks.
//
// A Guard wraps a function into a protected function of the same type. When
// the wrapped function panics, the guard's Handler observes the panic value
// and the panic then continues, unchanged, towards the caller. When tracing is
// enabled at wrap time, each call of the protected function is bracketed by a
// trace span started and stopped through the configured Tracer; the span is
// named after the stack that created the wrapper.
//
// Wrappers are memoized: protecting the same function twice under the same
// trace setting returns the same wrapper.
//
//	g := entrypoint.New(func(v any) { log.Printf("entry point failed: %v", v) })
//	handle := entrypoint.Protect(g, func(msg string) error { ... })
//
// Timer callbacks scheduled through the scheduler package can be protected
// as a whole with Guard.InstrumentTimerScheduler.
package entrypoint
