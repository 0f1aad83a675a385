// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package entrypoint

import (
	"reflect"
	"unsafe"
	"weak"
)

// wrapperKey identifies a wrapper in a guard's cache.
type wrapperKey struct {
	fn     uintptr
	typ    reflect.Type
	traced bool
}

// cachedWrapper is handed to the cleanup of a wrapper, which drops the cache
// entry if it still points at that wrapper.
//
// The cache only holds wrappers weakly. A live wrapper keeps its original
// function reachable, so the function's address cannot be reused while the
// entry resolves; once the wrapper is collected the entry is dead and gets
// removed.
type cachedWrapper struct {
	key wrapperKey
	ref weak.Pointer[protected]
}

// funcID returns the address of the function value held by fn. Func values
// are pointer-shaped and stored directly in the interface data word: every
// closure instance has its own address, top-level functions share a static
// one.
func funcID(fn any) uintptr {
	type eface struct {
		typ  unsafe.Pointer
		data unsafe.Pointer
	}
	return uintptr((*eface)(unsafe.Pointer(&fn)).data)
}
