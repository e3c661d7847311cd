// Package weakref holds non-owning references to heap objects whose static
// type is only known at run time.
//
// The standard weak package needs the pointee type as a type parameter. The
// container stores instances as `any`, so a reference is made from the
// object's address with weak.Make[byte] and the original pointer type is
// rebuilt with reflect when the object is still alive.
//
// Only heap objects can be referenced. Make cannot tell a pointer to a
// package-level variable from a heap pointer, so callers must not pass one.
package weakref

import (
	"reflect"
	"unsafe"
	"weak"
)

// Ref is a weak reference. The zero Ref refers to nothing.
type Ref struct {
	ptr weak.Pointer[byte]
	typ reflect.Type
}

// Make returns a weak reference to the object v points to. It reports false
// when v cannot be referenced weakly: nil, non-pointer values, and pointers
// to zero-sized types (which all share one address and are never freed).
func Make(v any) (Ref, bool) {
	if v == nil {
		return Ref{}, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return Ref{}, false
	}
	if rv.Type().Elem().Size() == 0 {
		return Ref{}, false
	}

	p := (*byte)(rv.UnsafePointer())

	return Ref{ptr: weak.Make(p), typ: rv.Type()}, true
}

// Value returns the referenced object, or false once it has been collected.
func (r Ref) Value() (any, bool) {
	if r.typ == nil {
		return nil, false
	}

	p := r.ptr.Value()
	if p == nil {
		return nil, false
	}

	rv := reflect.NewAt(r.typ.Elem(), unsafe.Pointer(p))
	if rv.Type() != r.typ {
		rv = rv.Convert(r.typ)
	}

	return rv.Interface(), true
}

// Alive reports whether the referenced object has not been collected yet.
func (r Ref) Alive() bool {
	return r.typ != nil && r.ptr.Value() != nil
}
