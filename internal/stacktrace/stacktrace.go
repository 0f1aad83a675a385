// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package stacktrace captures the stack of the current goroutine.
package stacktrace

import (
	"bytes"
	"runtime"
	"strconv"
	"strings"

	"github.com/DataDog/gostackparse"
)

// DefaultDepth is the number of frames kept when no depth is given.
const DefaultDepth = 15

const pkgPrefix = "github.com/DataDog/dd-entrypoint-go/internal/stacktrace."

// StackTrace is a list of frames, the first frame is the top of the stack.
type StackTrace []StackFrame

// StackFrame represents a single frame in the stack trace.
type StackFrame struct {
	Index     uint32 // Index of the frame (0 = top of the stack)
	File      string // File name where the code line is
	Line      uint32 // Line number in the context of the file where the code is
	Namespace string // Namespace is the fully qualified name of the package where the code is
	ClassName string // ClassName is the method receiver, if any
	Function  string // Function is the fully qualified name of the function where the line of code is
}

// String renders the frame as "function (file:line)".
func (f StackFrame) String() string {
	var sb strings.Builder
	sb.WriteString(f.Function)
	sb.WriteString(" (")
	sb.WriteString(f.File)
	sb.WriteByte(':')
	sb.WriteString(strconv.FormatUint(uint64(f.Line), 10))
	sb.WriteByte(')')
	return sb.String()
}

// Lines renders every frame of the stack on its own line.
func (s StackTrace) Lines() []string {
	lines := make([]string, len(s))
	for i, f := range s {
		lines[i] = f.String()
	}
	return lines
}

// String renders the stack, one frame per line.
func (s StackTrace) String() string {
	return strings.Join(s.Lines(), "\n")
}

// DropWhile returns s without its leading frames matching drop. A nil drop
// keeps every frame.
func (s StackTrace) DropWhile(drop func(StackFrame) bool) StackTrace {
	if drop == nil {
		return s
	}
	i := 0
	for i < len(s) && drop(s[i]) {
		i++
	}
	if i == 0 {
		return s
	}
	out := make(StackTrace, len(s)-i)
	copy(out, s[i:])
	for j := range out {
		out[j].Index = uint32(j)
	}
	return out
}

// Capture returns at most depth frames of the calling goroutine's stack,
// starting at the caller of Capture and skipping skip more frames. A depth
// of zero or less selects DefaultDepth.
func Capture(skip, depth int) StackTrace {
	if depth <= 0 {
		depth = DefaultDepth
	}
	goroutines, _ := gostackparse.Parse(bytes.NewReader(readStack()))
	if len(goroutines) == 0 {
		return nil
	}
	frames := goroutines[0].Stack
	for len(frames) > 0 && isOwnFrame(frames[0].Func) {
		frames = frames[1:]
	}
	if skip > 0 {
		if skip >= len(frames) {
			return nil
		}
		frames = frames[skip:]
	}
	if len(frames) > depth {
		frames = frames[:depth]
	}
	stack := make(StackTrace, len(frames))
	for i, f := range frames {
		fn := trimArgs(f.Func)
		namespace, receiver := parseSymbol(fn)
		stack[i] = StackFrame{
			Index:     uint32(i),
			File:      f.File,
			Line:      uint32(f.Line),
			Namespace: namespace,
			ClassName: receiver,
			Function:  fn,
		}
	}
	return stack
}

// readStack returns the formatted stack of the current goroutine.
func readStack() []byte {
	buf := make([]byte, 4096)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			return buf[:n]
		}
		buf = make([]byte, 2*len(buf))
	}
}

func isOwnFrame(fn string) bool {
	return fn == pkgPrefix+"readStack" || fn == pkgPrefix+"Capture"
}

// trimArgs removes an argument list the traceback may have left on the symbol.
func trimArgs(fn string) string {
	if strings.HasSuffix(fn, ")") {
		if i := strings.LastIndex(fn, "("); i > 0 && fn[i-1] != '.' {
			return fn[:i]
		}
	}
	return fn
}

// parseSymbol splits a symbol such as
// github.com/DataDog/dd-entrypoint-go/entrypoint.(*Guard).Protect into its
// package (github.com/DataDog/dd-entrypoint-go/entrypoint) and its method
// receiver (*Guard). Only pointer-receiver methods can be told apart from
// closures, so value receivers are reported without a receiver.
func parseSymbol(fn string) (namespace, receiver string) {
	fn = strings.ReplaceAll(fn, "[...]", "")
	slash := strings.LastIndexByte(fn, '/')
	base := fn[slash+1:]
	parts := strings.Split(base, ".")
	namespace = fn[:slash+1] + parts[0]
	if len(parts) >= 3 && strings.HasPrefix(parts[1], "(") && strings.HasSuffix(parts[1], ")") {
		receiver = strings.Trim(parts[1], "()")
	}
	return namespace, receiver
}
