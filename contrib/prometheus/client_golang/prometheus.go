// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package prometheus counts failures of protected calls with the
// prometheus/client_golang package (https://github.com/prometheus/client_golang).
package prometheus // import "github.com/DataDog/dd-entrypoint-go/contrib/prometheus/client_golang"

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DataDog/dd-entrypoint-go/entrypoint"
)

const (
	// LabelKind is "panic" or "error", depending on the kind of failure.
	LabelKind = "kind"

	kindPanic = "panic"
	kindError = "error"
)

// NewCounter returns the counter vector used by Handler, named
// entrypoint_failures_total.
func NewCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "entrypoint",
			Name:      "failures_total",
			Help:      "Failures observed by protected entry points, by kind.",
		},
		[]string{LabelKind},
	)
}

// Handler returns a handler incrementing c, labelled by the failure kind:
// "error" for an entrypoint.ErrorResult, "panic" for anything else.
func Handler(c *prometheus.CounterVec) entrypoint.Handler {
	return func(v any) {
		kind := kindPanic
		if _, ok := v.(entrypoint.ErrorResult); ok {
			kind = kindError
		}
		c.WithLabelValues(kind).Inc()
	}
}

// NewHandler registers a new counter on reg and returns a handler counting
// into it. A counter already registered on reg under the same name is reused.
func NewHandler(reg prometheus.Registerer) (entrypoint.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := NewCounter()
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("prometheus: cannot register counter: %w", err)
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("prometheus: cannot register counter: %w", err)
		}
		c = existing
	}
	return Handler(c), nil
}
