// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package prometheus

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/dd-entrypoint-go/entrypoint"
)

func TestHandler(t *testing.T) {
	c := NewCounter()
	g := entrypoint.New(Handler(c), entrypoint.WithErrorResults(true))

	boom := entrypoint.Protect(g, func() { panic("boom") })
	boomErr := entrypoint.Protect(g, func() error { panic(errors.New("boom")) })
	fault := entrypoint.Protect(g, func() {
		var m map[string]int
		m["x"] = 1
	})
	fail := entrypoint.Protect(g, func() error { return errors.New("failed") })
	ok := entrypoint.Protect(g, func() error { return nil })

	assert.Panics(t, boom)
	assert.Panics(t, boom)
	assert.Panics(t, func() { boomErr() })
	assert.Panics(t, fault)
	assert.Error(t, fail())
	assert.NoError(t, ok())

	assert.Equal(t, 4.0, testutil.ToFloat64(c.WithLabelValues(kindPanic)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.WithLabelValues(kindError)))
}

func TestNewHandler(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()

	h1, err := NewHandler(reg)
	require.NoError(t, err)
	h2, err := NewHandler(reg)
	require.NoError(t, err)

	h1("boom")
	h2(errors.New("failed"))

	n, err := testutil.GatherAndCount(reg, "entrypoint_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	t.Run("conflict", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		require.NoError(t, reg.Register(prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "entrypoint_failures_total",
			Help: "unrelated",
		})))
		_, err := NewHandler(reg)
		assert.Error(t, err)
	})
}
