// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package opentracing reports protected calls as OpenTracing spans.
package opentracing // import "github.com/DataDog/dd-entrypoint-go/contrib/opentracing/opentracing-go"

import (
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	otlog "github.com/opentracing/opentracing-go/log"

	"github.com/DataDog/dd-entrypoint-go/entrypoint"
	"github.com/DataDog/dd-entrypoint-go/instrumentation/errortrace"
)

// TagStack holds the frames of the stack that created the protected function.
const TagStack = "entrypoint.stack"

// Tracer starts one span per traced protected call on an opentracing.Tracer.
type Tracer struct {
	tracer opentracing.Tracer
}

var _ entrypoint.ErrorTracer = (*Tracer)(nil)

// NewTracer returns a Tracer using t, or the global tracer when t is nil.
// Spans are started without a parent, since entrypoint.Tracer carries no
// context.
func NewTracer(t opentracing.Tracer) *Tracer {
	if t == nil {
		t = opentracing.GlobalTracer()
	}
	return &Tracer{tracer: t}
}

// StartTrace implements entrypoint.Tracer.
func (t *Tracer) StartTrace(label string) entrypoint.TraceHandle {
	name, frames := entrypoint.ParseTraceLabel(label)
	opts := []opentracing.StartSpanOption{
		opentracing.Tag{Key: string(ext.Component), Value: "entrypoint"},
	}
	if len(frames) > 0 {
		opts = append(opts, opentracing.Tag{Key: TagStack, Value: strings.Join(frames, "\n")})
	}
	return t.tracer.StartSpan(name, opts...)
}

// StopTrace implements entrypoint.Tracer.
func (t *Tracer) StopTrace(h entrypoint.TraceHandle) {
	if span, ok := h.(opentracing.Span); ok {
		span.Finish()
	}
}

// StopTraceWithError implements entrypoint.ErrorTracer.
func (t *Tracer) StopTraceWithError(h entrypoint.TraceHandle, err error) {
	span, ok := h.(opentracing.Span)
	if !ok {
		return
	}
	ext.Error.Set(span, true)
	fields := []otlog.Field{otlog.String("event", "error"), otlog.Error(err)}
	if stack := errortrace.Stack(err); stack != "" {
		fields = append(fields, otlog.String("stack", stack))
	}
	span.LogFields(fields...)
	span.Finish()
}
