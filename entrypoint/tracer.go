// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package entrypoint

// TraceHandle is the opaque value returned by Tracer.StartTrace. It is given
// back, unchanged, to the matching stop call.
type TraceHandle any

// Tracer starts and stops the spans bracketing protected calls.
type Tracer interface {
	// StartTrace starts a span with the given label.
	StartTrace(label string) TraceHandle

	// StopTrace stops the span identified by h.
	StopTrace(h TraceHandle)
}

// ErrorTracer is implemented by tracers which can record why a protected
// call failed. When available, it is used instead of StopTrace for calls
// that panicked or, with WithErrorResults, returned an error.
type ErrorTracer interface {
	Tracer

	// StopTraceWithError stops the span identified by h, marking it as
	// failed with err.
	StopTraceWithError(h TraceHandle, err error)
}

// TracerFuncs adapts a pair of plain functions into a Tracer. Nil fields are
// skipped.
type TracerFuncs struct {
	Start func(label string) TraceHandle
	Stop  func(h TraceHandle)
}

var _ Tracer = TracerFuncs{}

// StartTrace implements Tracer.
func (t TracerFuncs) StartTrace(label string) TraceHandle {
	if t.Start == nil {
		return nil
	}
	return t.Start(label)
}

// StopTrace implements Tracer.
func (t TracerFuncs) StopTrace(h TraceHandle) {
	if t.Stop != nil {
		t.Stop(h)
	}
}

type noopTracer struct{}

func (noopTracer) StartTrace(string) TraceHandle { return nil }
func (noopTracer) StopTrace(TraceHandle)         {}
