// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package otel reports protected calls as OpenTelemetry spans.
package otel // import "github.com/DataDog/dd-entrypoint-go/contrib/go.opentelemetry.io/otel"

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DataDog/dd-entrypoint-go/entrypoint"
	"github.com/DataDog/dd-entrypoint-go/instrumentation/errortrace"
	"github.com/DataDog/dd-entrypoint-go/internal/version"
)

const (
	instrumentationName = "github.com/DataDog/dd-entrypoint-go"

	// AttrStack holds the frames of the stack that created the protected
	// function.
	AttrStack          = attribute.Key("entrypoint.stack")
	attrExceptionStack = attribute.Key("exception.stacktrace")
)

// Tracer starts one OpenTelemetry span per traced protected call.
type Tracer struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue
}

var _ entrypoint.ErrorTracer = (*Tracer)(nil)

type config struct {
	provider trace.TracerProvider
	attrs    []attribute.KeyValue
}

// Option specifies instrumentation configuration options.
type Option func(*config)

// WithTracerProvider sets the provider used to create the tracer. It defaults
// to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		if tp != nil {
			cfg.provider = tp
		}
	}
}

// WithAttributes adds attrs to every started span.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return func(cfg *config) {
		cfg.attrs = append(cfg.attrs, attrs...)
	}
}

// NewTracer returns a Tracer.
//
// entrypoint.Tracer carries no context, so spans are started from
// context.Background() and each one is the root of a new trace: a protected
// call does not join the trace of its caller.
func NewTracer(opts ...Option) *Tracer {
	cfg := config{provider: otel.GetTracerProvider()}
	for _, fn := range opts {
		fn(&cfg)
	}
	return &Tracer{
		tracer: cfg.provider.Tracer(instrumentationName, trace.WithInstrumentationVersion(version.Tag)),
		attrs:  cfg.attrs,
	}
}

// StartTrace implements entrypoint.Tracer.
func (t *Tracer) StartTrace(label string) entrypoint.TraceHandle {
	name, frames := entrypoint.ParseTraceLabel(label)
	attrs := t.attrs
	if len(frames) > 0 {
		attrs = append(attrs[:len(attrs):len(attrs)], AttrStack.StringSlice(frames))
	}
	_, span := t.tracer.Start(context.Background(), name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return span
}

// StopTrace implements entrypoint.Tracer.
func (t *Tracer) StopTrace(h entrypoint.TraceHandle) {
	if span, ok := h.(trace.Span); ok {
		span.End()
	}
}

// StopTraceWithError implements entrypoint.ErrorTracer.
func (t *Tracer) StopTraceWithError(h entrypoint.TraceHandle, err error) {
	span, ok := h.(trace.Span)
	if !ok {
		return
	}
	var opts []trace.EventOption
	if stack := errortrace.Stack(err); stack != "" {
		opts = append(opts, trace.WithAttributes(attrExceptionStack.String(stack)))
	}
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}
