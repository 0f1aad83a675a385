// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package ddtrace

import "github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"

const defaultOperationName = "entrypoint.protected"

type config struct {
	operationName string
	serviceName   string
	spanOpts      []tracer.StartSpanOption
}

// Option specifies instrumentation configuration options.
type Option func(*config)

func defaults(cfg *config) {
	cfg.operationName = defaultOperationName
}

// WithOperationName sets the operation name of the started spans. It
// defaults to "entrypoint.protected".
func WithOperationName(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.operationName = name
		}
	}
}

// WithService sets the service name of the started spans. When unset, the
// global tracer's service is used.
func WithService(name string) Option {
	return func(cfg *config) {
		cfg.serviceName = name
	}
}

// WithSpanOptions appends opts to the options used to start every span.
func WithSpanOptions(opts ...tracer.StartSpanOption) Option {
	return func(cfg *config) {
		cfg.spanOpts = append(cfg.spanOpts, opts...)
	}
}
