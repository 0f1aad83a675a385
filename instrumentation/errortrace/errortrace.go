// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

// Package errortrace turns the failures observed by protected entry points
// into errors that remember where they were raised.
package errortrace

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"strconv"
)

// TracerError is an error type that holds stackframes from when the error was thrown.
// It can be used interchangeably with the built-in Go error type.
type TracerError struct {
	stackFrames *runtime.Frames
	value       any
	inner       error
	stack       *bytes.Buffer
}

// defaultStackLength specifies the default maximum size of a stack trace.
const defaultStackLength = 32

func (err *TracerError) Error() string {
	return err.inner.Error()
}

// New returns a TracerError holding text and the stack of its caller.
func New(text string) *TracerError {
	// Skip one to exclude New(...)
	return Wrap(errors.New(text), 0, 1)
}

// Wrap takes in a failure value, either an error or any value passed to
// panic, and records the stack trace at the moment that it was raised. When
// called from a deferred recover, the recorded stack includes the frames of
// the panicking call. Non-error values become errors reading "panic: <value>".
func Wrap(v any, n uint, skip uint) *TracerError {
	if v == nil {
		return nil
	}
	if e, ok := v.(*TracerError); ok {
		return e
	}
	if n <= 0 {
		n = defaultStackLength
	}

	pcs := make([]uintptr, n)
	var stackFrames *runtime.Frames
	// +2 to exclude runtime.Callers and Wrap
	numFrames := runtime.Callers(2+int(skip), pcs)
	if numFrames > 0 {
		stackFrames = runtime.CallersFrames(pcs[:numFrames])
	}

	inner, ok := v.(error)
	if !ok {
		inner = fmt.Errorf("panic: %v", v)
	}
	return &TracerError{
		stackFrames: stackFrames,
		value:       v,
		inner:       inner,
	}
}

// Value returns the failure value exactly as it was given to Wrap.
func (err *TracerError) Value() any {
	if err == nil {
		return nil
	}
	return err.value
}

// Format returns a string representation of the stack trace.
func (err *TracerError) Format() string {
	if err == nil || (err.stackFrames == nil && err.stack == nil) {
		return ""
	}
	if err.stack != nil {
		return err.stack.String()
	}

	out := bytes.Buffer{}
	for i := 0; ; i++ {
		frame, more := err.stackFrames.Next()
		if i != 0 {
			out.WriteByte('\n')
		}
		out.WriteString(frame.Function)
		out.WriteByte('\n')
		out.WriteByte('\t')
		out.WriteString(frame.File)
		out.WriteByte(':')
		out.WriteString(strconv.Itoa(frame.Line))
		if !more {
			break
		}
	}
	// CallersFrames returns an iterator that is consumed as we read it. In order to
	// allow calling Format() multiple times, we save the result into err.stack, which can be
	// returned in future calls
	err.stack = &out
	return out.String()
}

// Unwrap takes a wrapped error and returns the inner error.
func (err *TracerError) Unwrap() error {
	if err == nil {
		return nil
	}
	return err.inner
}

// Stack returns the recorded stack of err if err is, or wraps, a TracerError.
func Stack(err error) string {
	var te *TracerError
	if errors.As(err, &te) {
		return te.Format()
	}
	return ""
}
