// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package scheduler

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/DataDog/dd-entrypoint-go/internal/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTimeout(t *testing.T) {
	t.Run("fires with args", func(t *testing.T) {
		r := NewRegistry()
		got := make(chan []any, 1)
		r.SetTimeout(func(args ...any) { got <- args }, time.Millisecond, "a", 2)
		select {
		case args := <-got:
			assert.Equal(t, []any{"a", 2}, args)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout did not fire")
		}
	})

	t.Run("negative delay", func(t *testing.T) {
		r := NewRegistry()
		got := make(chan struct{}, 1)
		r.SetTimeout(func(...any) { got <- struct{}{} }, -time.Second)
		select {
		case <-got:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout did not fire")
		}
	})

	t.Run("stop", func(t *testing.T) {
		r := NewRegistry()
		var fired atomic.Bool
		timer := r.SetTimeout(func(...any) { fired.Store(true) }, time.Hour)
		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())
		assert.False(t, fired.Load())
	})

	t.Run("panic is reported", func(t *testing.T) {
		rl := new(log.RecordLogger)
		defer log.UseLogger(rl)()

		r := NewRegistry()
		done := make(chan struct{})
		r.SetTimeout(func(...any) {
			defer close(done)
			panic("boom")
		}, 0)
		<-done
		require.Eventually(t, func() bool {
			log.Flush()
			for _, l := range rl.Logs() {
				if strings.Contains(l, "uncaught panic in setTimeout callback: boom") {
					return true
				}
			}
			return false
		}, 5*time.Second, 10*time.Millisecond)
	})
}

func TestInterval(t *testing.T) {
	t.Run("ticks until stopped", func(t *testing.T) {
		r := NewRegistry()
		var n atomic.Int32
		timer := r.SetInterval(func(args ...any) {
			assert.Equal(t, []any{"x"}, args)
			n.Add(1)
		}, time.Millisecond, "x")
		require.Eventually(t, func() bool { return n.Load() >= 3 }, 5*time.Second, time.Millisecond)
		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())
	})

	t.Run("survives panics", func(t *testing.T) {
		defer log.UseLogger(log.DiscardLogger{})()
		r := NewRegistry()
		var n atomic.Int32
		timer := r.SetInterval(func(...any) {
			n.Add(1)
			panic("tick")
		}, time.Millisecond)
		defer timer.Stop()
		require.Eventually(t, func() bool { return n.Load() >= 2 }, 5*time.Second, time.Millisecond)
	})
}

func TestSwap(t *testing.T) {
	t.Run("replace and restore", func(t *testing.T) {
		r := NewRegistry()
		var calls []time.Duration
		fake := func(cb Callback, delay time.Duration, args ...any) *Timer {
			calls = append(calls, delay)
			cb(args...)
			return nil
		}
		prev, err := r.Swap(Timeout, fake)
		require.NoError(t, err)
		require.NotNil(t, prev)

		var got []any
		r.SetTimeout(func(args ...any) { got = args }, 7*time.Millisecond, 1, "two")
		assert.Equal(t, []time.Duration{7 * time.Millisecond}, calls)
		assert.Equal(t, []any{1, "two"}, got)

		_, err = r.Swap(Timeout, prev)
		require.NoError(t, err)
		timer := r.SetTimeout(func(...any) {}, time.Hour)
		assert.True(t, timer.Stop())
		assert.Len(t, calls, 1)
	})

	t.Run("unknown", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Swap("requestAnimationFrame", hostTimeout)
		assert.True(t, errors.Is(err, ErrUnknownBinding))
		_, ok := r.Lookup("requestAnimationFrame")
		assert.False(t, ok)
	})

	t.Run("nil", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Swap(Interval, nil)
		assert.Error(t, err)
		fn, ok := r.Lookup(Interval)
		assert.True(t, ok)
		assert.NotNil(t, fn)
	})
}

func TestDefault(t *testing.T) {
	got := make(chan struct{}, 1)
	SetTimeout(func(...any) { got <- struct{}{} }, time.Millisecond)
	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout did not fire")
	}

	var n atomic.Int32
	timer := SetInterval(func(...any) { n.Add(1) }, time.Millisecond)
	require.Eventually(t, func() bool { return n.Load() >= 1 }, 5*time.Second, time.Millisecond)
	timer.Stop()
}

func TestNilTimer(t *testing.T) {
	var timer *Timer
	assert.False(t, timer.Stop())
}

func TestInstrument(t *testing.T) {
	t.Run("wraps current binding", func(t *testing.T) {
		r := NewRegistry()
		var seen []time.Duration
		restore, err := r.Instrument(Timeout, func(orig Func) Func {
			return func(cb Callback, delay time.Duration, args ...any) *Timer {
				seen = append(seen, delay)
				return orig(cb, delay, args...)
			}
		})
		require.NoError(t, err)

		timer := r.SetTimeout(func(...any) {}, time.Hour)
		assert.True(t, timer.Stop())
		assert.Equal(t, []time.Duration{time.Hour}, seen)

		restore()
		restore()
		timer = r.SetTimeout(func(...any) {}, time.Hour)
		assert.True(t, timer.Stop())
		assert.Len(t, seen, 1)
	})

	t.Run("unknown", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Instrument("nope", func(orig Func) Func { return orig })
		assert.ErrorIs(t, err, ErrUnknownBinding)
	})

	t.Run("nil wrapper result", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Instrument(Interval, func(Func) Func { return nil })
		assert.Error(t, err)
		_, ok := r.Lookup(Interval)
		assert.True(t, ok)
	})
}
