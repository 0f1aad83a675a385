// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package reporter provides ready-made entrypoint handlers.
package reporter

import (
	"sync"

	"github.com/DataDog/dd-entrypoint-go/entrypoint"
	"github.com/DataDog/dd-entrypoint-go/internal/log"
)

// Log returns a handler writing failures to the guard's logger. Repeated
// failures are aggregated and flushed periodically.
func Log() entrypoint.Handler {
	return func(v any) {
		log.Error("entrypoint: protected call failed: %v", v)
	}
}

// Multi returns a handler calling every non-nil handler in hs, in order.
func Multi(hs ...entrypoint.Handler) entrypoint.Handler {
	handlers := make([]entrypoint.Handler, 0, len(hs))
	for _, h := range hs {
		if h != nil {
			handlers = append(handlers, h)
		}
	}
	return func(v any) {
		for _, h := range handlers {
			h(v)
		}
	}
}

// Collector keeps every value it is handed. It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	values []any
}

// Handle records v. It can be given to entrypoint.New as a method value.
func (c *Collector) Handle(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = append(c.values, v)
}

// Values returns a copy of the recorded values, oldest first.
func (c *Collector) Values() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.values...)
}

// Len returns the number of recorded values.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}

// Reset forgets the recorded values.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = nil
}
