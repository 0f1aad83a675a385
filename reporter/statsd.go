// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package reporter

import (
	"fmt"

	"github.com/DataDog/datadog-go/v5/statsd"

	"github.com/DataDog/dd-entrypoint-go/entrypoint"
	"github.com/DataDog/dd-entrypoint-go/internal/log"
)

const (
	// MetricPanics counts panics observed by protected calls.
	MetricPanics = "entrypoint.panics"
	// MetricErrors counts error results observed by protected calls.
	MetricErrors = "entrypoint.errors"
)

// Counter is the part of a statsd client used to count failures.
// statsd.ClientInterface implements it.
type Counter interface {
	Incr(name string, tags []string, rate float64) error
}

var _ Counter = (statsd.ClientInterface)(nil)

// Statsd returns a handler incrementing MetricPanics, or MetricErrors for an
// entrypoint.ErrorResult, on c.
func Statsd(c Counter, tags ...string) entrypoint.Handler {
	return func(v any) {
		name := MetricPanics
		if _, ok := v.(entrypoint.ErrorResult); ok {
			name = MetricErrors
		}
		if err := c.Incr(name, tags, 1); err != nil {
			log.Error("reporter: failed to send %s: %v", name, err)
		}
	}
}

// NewStatsd dials a statsd client at addr and returns a handler counting
// into it, along with the client so that the caller can close it.
func NewStatsd(addr string, tags ...string) (entrypoint.Handler, statsd.ClientInterface, error) {
	client, err := statsd.New(addr, statsd.WithTags(tags))
	if err != nil {
		return nil, nil, fmt.Errorf("reporter: cannot create statsd client: %w", err)
	}
	return Statsd(client), client, nil
}
