// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package scheduler

import (
	"sync"
	"time"

	"github.com/DataDog/dd-entrypoint-go/internal/log"
)

// minInterval bounds how fast an interval can tick.
const minInterval = time.Millisecond

func hostTimeout(cb Callback, delay time.Duration, args ...any) *Timer {
	if delay < 0 {
		delay = 0
	}
	t := time.AfterFunc(delay, func() { run(Timeout, cb, args) })
	return &Timer{stop: t.Stop}
}

func hostInterval(cb Callback, delay time.Duration, args ...any) *Timer {
	if delay < minInterval {
		delay = minInterval
	}
	var (
		once sync.Once
		done = make(chan struct{})
	)
	go func() {
		tick := time.NewTicker(delay)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				run(Interval, cb, args)
			case <-done:
				return
			}
		}
	}()
	return &Timer{stop: func() bool {
		stopped := false
		once.Do(func() {
			close(done)
			stopped = true
		})
		return stopped
	}}
}

// run invokes cb the way an event loop does: a panicking callback is
// reported and the loop carries on.
func run(name string, cb Callback, args []any) {
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("scheduler: uncaught panic in %s callback: %v", name, r)
		}
	}()
	cb(args...)
}
