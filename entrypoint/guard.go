// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package entrypoint

import (
	"fmt"
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/DataDog/dd-entrypoint-go/instrumentation/errortrace"
	"github.com/DataDog/dd-entrypoint-go/internal/log"
	"github.com/DataDog/dd-entrypoint-go/internal/stacktrace"
)

// Handler observes the value of a panic raised by a protected function. It
// is called synchronously, before the panic resumes; it cannot stop the
// panic from reaching the caller. With WithErrorResults, it also receives
// an ErrorResult for every non-nil error returned by a protected function.
type Handler func(v any)

// ErrorResult is given to the handler when a protected function returns a
// non-nil error as its last result. Any other value given to the handler,
// including errors, was passed to panic.
type ErrorResult struct {
	Err error
}

// Error implements error.
func (r ErrorResult) Error() string { return r.Err.Error() }

// Unwrap returns the returned error.
func (r ErrorResult) Unwrap() error { return r.Err }

// builderFrames is the number of guard frames between stacktrace.Capture and
// the code calling Protect: buildProtected, protect and the public entry.
const builderFrames = 3

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Guard produces protected wrappers around functions. A Guard is safe for
// concurrent use.
type Guard struct {
	handler Handler
	cfg     *config
	traced  atomic.Bool

	mu       sync.Mutex // guards wrappers
	wrappers map[wrapperKey]weak.Pointer[protected]
}

// New returns a guard reporting panics to handler. A nil handler logs them.
func New(handler Handler, opts ...Option) *Guard {
	cfg := new(config)
	defaults(cfg)
	for _, fn := range opts {
		fn(cfg)
	}
	if handler == nil {
		handler = logHandler
	}
	g := &Guard{
		handler:  handler,
		cfg:      cfg,
		wrappers: make(map[wrapperKey]weak.Pointer[protected]),
	}
	g.traced.Store(cfg.traceEnabled)
	log.Debug("entrypoint: new guard (trace: %t, stack depth: %d, error results: %t)",
		cfg.traceEnabled, cfg.stackDepth, cfg.errorResults)
	return g
}

func logHandler(v any) {
	log.Error("entrypoint: protected call panicked: %v", v)
}

// SetTraceEnabled sets whether wrappers created from now on trace their
// calls. Existing wrappers keep the setting they were created with.
func (g *Guard) SetTraceEnabled(enabled bool) {
	g.traced.Store(enabled)
	if _, ok := g.cfg.tracer.(noopTracer); ok && enabled {
		log.Debug("entrypoint: tracing enabled without a tracer, no spans will be created")
	}
}

// TraceEnabled reports whether wrappers created now trace their calls.
func (g *Guard) TraceEnabled() bool {
	return g.traced.Load()
}

// Wrap is an alias for Protect.
func (g *Guard) Wrap(fn any) any {
	return g.protect(fn, builderFrames, nil)
}

// Protect returns a function of the same type as fn which calls fn with the
// same arguments and returns its results. A panic raised by fn is reported
// to the guard's handler and then raised again, with the same value, to the
// caller.
//
// Protecting the same function again, with the trace flag unchanged, returns
// the same wrapper. A nil func is returned as is. Protect panics if fn is
// not a func.
func (g *Guard) Protect(fn any) any {
	return g.protect(fn, builderFrames, nil)
}

// Protect is the typed form of Guard.Protect.
func Protect[F any](g *Guard, fn F) F {
	w := g.protect(fn, builderFrames, nil)
	if w == nil {
		return fn
	}
	return w.(F)
}

// Forget drops the wrappers cached for fn, under both trace settings.
// Wrappers already handed out keep working. Entries are also dropped on
// their own once their wrapper is garbage collected.
func (g *Guard) Forget(fn any) {
	if fn == nil {
		return
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return
	}
	id := funcID(fn)
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.wrappers, wrapperKey{fn: id, typ: v.Type(), traced: false})
	delete(g.wrappers, wrapperKey{fn: id, typ: v.Type(), traced: true})
}

// protect returns the wrapper of fn. skip is the number of frames between
// the stack capture and the code creating the wrapper; leading frames
// matching drop are removed after skipping.
func (g *Guard) protect(fn any, skip int, drop func(stacktrace.StackFrame) bool) any {
	if fn == nil {
		return nil
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("entrypoint: cannot protect value of non-func type %T", fn))
	}
	if v.IsNil() {
		return fn
	}
	traced := g.traced.Load()
	key := wrapperKey{fn: funcID(fn), typ: v.Type(), traced: traced}

	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.wrappers[key].Value(); p != nil {
		return p.wrapper
	}
	p := g.buildProtected(v, traced, skip, drop)
	ref := weak.Make(p)
	g.wrappers[key] = ref
	runtime.AddCleanup(p, g.dropWrapper, cachedWrapper{key: key, ref: ref})
	return p.wrapper
}

func (g *Guard) dropWrapper(c cachedWrapper) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.wrappers[c.key] == c.ref {
		delete(g.wrappers, c.key)
	}
}

// protected is the state behind one wrapper.
type protected struct {
	g        *Guard
	fn       reflect.Value
	wrapper  any
	variadic bool
	traced   bool
	label    string
	errIndex int // index of the error result to report, or -1
}

func (g *Guard) buildProtected(fn reflect.Value, traced bool, skip int, drop func(stacktrace.StackFrame) bool) *protected {
	typ := fn.Type()
	p := &protected{
		g:        g,
		fn:       fn,
		variadic: typ.IsVariadic(),
		traced:   traced,
		errIndex: -1,
	}
	if traced {
		depth := g.cfg.stackDepth
		if drop != nil {
			depth += maxDroppedFrames
		}
		stack := stacktrace.Capture(skip, depth).DropWhile(drop)
		if len(stack) > g.cfg.stackDepth {
			stack = stack[:g.cfg.stackDepth]
		}
		p.label = traceLabel(stack.Lines())
	}
	if g.cfg.errorResults {
		if n := typ.NumOut(); n > 0 && typ.Out(n-1) == errorType {
			p.errIndex = n - 1
		}
	}
	log.Debug("entrypoint: protecting %s (trace: %t)", typ, traced)
	p.wrapper = reflect.MakeFunc(typ, p.call).Interface()
	return p
}

func (p *protected) call(args []reflect.Value) []reflect.Value {
	var failure error
	if p.traced {
		h := p.g.cfg.tracer.StartTrace(p.label)
		defer func() { p.g.stopTrace(h, failure) }()
	}
	results := p.invoke(args, &failure)
	if p.errIndex >= 0 {
		if err, _ := results[p.errIndex].Interface().(error); err != nil {
			if p.traced {
				failure = errortrace.Wrap(err, 0, 0)
			}
			p.g.handler(ErrorResult{Err: err})
		}
	}
	return results
}

// invoke calls the original function. A panic is reported to the handler
// and raised again with the same value.
func (p *protected) invoke(args []reflect.Value, failure *error) []reflect.Value {
	defer func() {
		if r := recover(); r != nil {
			if p.traced {
				// skip this deferred function
				*failure = errortrace.Wrap(r, 0, 1)
			}
			p.g.handler(r)
			panic(r)
		}
	}()
	if p.variadic {
		return p.fn.CallSlice(args)
	}
	return p.fn.Call(args)
}

func (g *Guard) stopTrace(h TraceHandle, failure error) {
	if failure != nil {
		if et, ok := g.cfg.tracer.(ErrorTracer); ok {
			et.StopTraceWithError(h, failure)
			return
		}
	}
	g.cfg.tracer.StopTrace(h)
}
