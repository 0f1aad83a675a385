// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package ddtrace reports protected calls as Datadog APM spans.
//
// Each traced call of a protected function becomes one span. Panics finish
// the span with the error, and the stack of the code that created the
// wrapper is attached as the "entrypoint.stack" tag.
//
//	g := entrypoint.New(handler, entrypoint.WithTracer(ddtrace.NewTracer()))
//	g.SetTraceEnabled(true)
package ddtrace

import (
	"strings"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/ext"
	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"

	"github.com/DataDog/dd-entrypoint-go/entrypoint"
	"github.com/DataDog/dd-entrypoint-go/internal/log"
)

const (
	componentName = "DataDog/dd-entrypoint-go"

	// TagStack holds the frames of the stack that created the protected
	// function, one per line.
	TagStack = "entrypoint.stack"
)

// Tracer starts one span per traced protected call.
type Tracer struct {
	cfg config
}

var _ entrypoint.ErrorTracer = (*Tracer)(nil)

// NewTracer returns a Tracer starting its spans on the global Datadog tracer.
//
// entrypoint.Tracer carries no context, so every span is started as the root
// of a new trace: a protected call does not join the trace of its caller.
func NewTracer(opts ...Option) *Tracer {
	var cfg config
	defaults(&cfg)
	for _, fn := range opts {
		fn(&cfg)
	}
	log.Debug("ddtrace: configuration: %#v", cfg)
	return &Tracer{cfg: cfg}
}

// StartTrace implements entrypoint.Tracer.
func (t *Tracer) StartTrace(label string) entrypoint.TraceHandle {
	name, frames := entrypoint.ParseTraceLabel(label)
	opts := []tracer.StartSpanOption{
		tracer.ResourceName(name),
		tracer.Tag(ext.Component, componentName),
		tracer.Tag(ext.SpanKind, ext.SpanKindInternal),
	}
	if t.cfg.serviceName != "" {
		opts = append(opts, tracer.ServiceName(t.cfg.serviceName))
	}
	if len(frames) > 0 {
		opts = append(opts, tracer.Tag(TagStack, strings.Join(frames, "\n")))
	}
	opts = append(opts, t.cfg.spanOpts...)
	return tracer.StartSpan(t.cfg.operationName, opts...)
}

// StopTrace implements entrypoint.Tracer.
func (t *Tracer) StopTrace(h entrypoint.TraceHandle) {
	if span, ok := h.(*tracer.Span); ok {
		span.Finish()
	}
}

// StopTraceWithError implements entrypoint.ErrorTracer.
func (t *Tracer) StopTraceWithError(h entrypoint.TraceHandle, err error) {
	if span, ok := h.(*tracer.Span); ok {
		span.Finish(tracer.WithError(err))
	}
}
