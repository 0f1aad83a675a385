// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package entrypoint

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/DataDog/dd-entrypoint-go/internal/log"
	"github.com/DataDog/dd-entrypoint-go/internal/stacktrace"
	"github.com/DataDog/dd-entrypoint-go/scheduler"
)

// maxDroppedFrames bounds the scheduler and shim frames found between the
// code scheduling a callback and the shim protecting it.
const maxDroppedFrames = 8

var schedulerPkg = reflect.TypeOf((*scheduler.Registry)(nil)).Elem().PkgPath()

// isSchedulingFrame reports frames of the scheduler package and of timer
// shims, which sit between a scheduling call and the wrapper build.
func isSchedulingFrame(f stacktrace.StackFrame) bool {
	return f.Namespace == schedulerPkg || strings.Contains(f.Function, "(*Guard).InstrumentTimerScheduler")
}

// InstrumentTimerScheduler replaces the scheduler binding called name,
// scheduler.Timeout or scheduler.Interval, with one that protects every
// callback with g before handing it, along with the delay and extra
// arguments, to the replaced binding.
//
// The binding belongs to the guard's registry, scheduler.Default unless
// WithRegistry was given, so the change is visible to the whole process
// until restore is called.
func (g *Guard) InstrumentTimerScheduler(name string) (restore func(), err error) {
	restore, err = g.cfg.registry.Instrument(name, func(orig scheduler.Func) scheduler.Func {
		return func(cb scheduler.Callback, delay time.Duration, args ...any) *scheduler.Timer {
			if cb != nil {
				cb = g.protect(cb, builderFrames, isSchedulingFrame).(scheduler.Callback)
			}
			return orig(cb, delay, args...)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("entrypoint: cannot instrument %s: %w", name, err)
	}
	log.Debug("entrypoint: instrumented %s", name)
	return restore, nil
}
