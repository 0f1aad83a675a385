// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2022 Datadog, Inc.

package logrus

import (
	"errors"
	"runtime"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/dd-entrypoint-go/entrypoint"
)

func TestHandler(t *testing.T) {
	t.Run("panic", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		g := entrypoint.New(Handler(logger))
		fn := entrypoint.Protect(g, func() { panic(42) })
		assert.PanicsWithValue(t, 42, fn)

		require.Len(t, hook.AllEntries(), 1)
		e := hook.LastEntry()
		assert.Equal(t, logrus.ErrorLevel, e.Level)
		assert.Equal(t, "protected call panicked", e.Message)
		assert.Equal(t, "panic", e.Data[FieldKind])
		assert.Equal(t, 42, e.Data[FieldValue])
	})

	t.Run("panic-with-error", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		g := entrypoint.New(Handler(logger), entrypoint.WithErrorResults(true))
		fault := entrypoint.Protect(g, func() error {
			var s []int
			return errors.New(strconv.Itoa(s[1]))
		})
		assert.Panics(t, func() { fault() })

		require.Len(t, hook.AllEntries(), 1)
		e := hook.LastEntry()
		assert.Equal(t, "protected call panicked", e.Message)
		assert.Equal(t, "panic", e.Data[FieldKind])
		_, isRuntime := e.Data[logrus.ErrorKey].(runtime.Error)
		assert.True(t, isRuntime, "%T", e.Data[logrus.ErrorKey])
	})

	t.Run("error", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		err := errors.New("failed")
		g := entrypoint.New(Handler(logger.WithField("job", "sync")), entrypoint.WithErrorResults(true))
		fn := entrypoint.Protect(g, func() error { return err })
		assert.Same(t, err, fn())

		require.Len(t, hook.AllEntries(), 1)
		e := hook.LastEntry()
		assert.Equal(t, "protected call failed", e.Message)
		assert.Equal(t, "error", e.Data[FieldKind])
		assert.Equal(t, err, e.Data[logrus.ErrorKey])
		assert.Equal(t, "sync", e.Data["job"])
	})

	t.Run("standard-logger", func(t *testing.T) {
		hook := test.NewGlobal()
		defer logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
		Handler(nil)("boom")
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, "boom", hook.LastEntry().Data[FieldValue])
	})
}
