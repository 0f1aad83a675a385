// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package otel

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/DataDog/dd-entrypoint-go/entrypoint"
)

func setup(t *testing.T, opts ...Option) (*entrypoint.Guard, *tracetest.SpanRecorder) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	opts = append([]Option{WithTracerProvider(tp)}, opts...)
	g := entrypoint.New(func(any) {},
		entrypoint.WithTracer(NewTracer(opts...)),
		entrypoint.WithErrorResults(true),
	)
	g.SetTraceEnabled(true)
	return g, sr
}

func attr(attrs []attribute.KeyValue, k attribute.Key) (attribute.Value, bool) {
	for _, kv := range attrs {
		if kv.Key == k {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracer(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		g, sr := setup(t, WithAttributes(attribute.String("team", "core")))
		fn := entrypoint.Protect(g, func(s string) string { return strings.ToUpper(s) })
		assert.Equal(t, "HI", fn("hi"))

		spans := sr.Ended()
		require.Len(t, spans, 1)
		s := spans[0]
		assert.Equal(t, entrypoint.TraceName, s.Name())
		assert.Equal(t, trace.SpanKindInternal, s.SpanKind())
		assert.Equal(t, codes.Unset, s.Status().Code)
		assert.Equal(t, instrumentationName, s.InstrumentationScope().Name)

		team, ok := attr(s.Attributes(), "team")
		require.True(t, ok)
		assert.Equal(t, "core", team.AsString())
		stack, ok := attr(s.Attributes(), AttrStack)
		require.True(t, ok)
		assert.Contains(t, strings.Join(stack.AsStringSlice(), "\n"), "TestTracer")
	})

	t.Run("panic", func(t *testing.T) {
		g, sr := setup(t)
		fn := entrypoint.Protect(g, func() { panic("boom") })
		assert.PanicsWithValue(t, "boom", fn)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		s := spans[0]
		assert.Equal(t, codes.Error, s.Status().Code)
		assert.Equal(t, "panic: boom", s.Status().Description)
		require.Len(t, s.Events(), 1)
		ev := s.Events()[0]
		assert.Equal(t, "exception", ev.Name)
		stack, ok := attr(ev.Attributes, attrExceptionStack)
		require.True(t, ok)
		assert.Contains(t, stack.AsString(), "TestTracer")
	})

	t.Run("error-result", func(t *testing.T) {
		g, sr := setup(t)
		fn := entrypoint.Protect(g, func() (int, error) { return 0, errors.New("failed") })
		_, err := fn()
		assert.EqualError(t, err, "failed")

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, "failed", spans[0].Status().Description)
	})

	t.Run("foreign-handle", func(t *testing.T) {
		tr := NewTracer()
		assert.NotPanics(t, func() {
			tr.StopTrace(nil)
			tr.StopTraceWithError(42, errors.New("x"))
		})
	})
}
