package depot

import (
	"fmt"
	"reflect"
)

// Resolve with type safety. Soft failures (not registered, missing
// dependency, type mismatch, null value) are reported as false; use Lookup
// to learn why.
func Resolve[T any](r Resolver, opts ...ResolveOption) (T, bool) {
	instance, err := Lookup[T](r, opts...)
	return instance, err == nil
}

// Lookup resolves T and returns the error explaining a failure.
func Lookup[T any](r Resolver, opts ...ResolveOption) (T, error) {
	return lookup[T](r, KeyOf[T](opts...), call{})
}

// MustResolve resolves or panics - use only during startup.
func MustResolve[T any](r Resolver, opts ...ResolveOption) T {
	instance, err := Lookup[T](r, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", KeyOf[T](opts...), err))
	}

	return instance
}

// ResolveWith resolves T through its one-argument factory.
//
// Example:
//
//	cat, ok := depot.ResolveWith[Animal](c, "Persian")
func ResolveWith[T, A any](r Resolver, a A, opts ...ResolveOption) (T, bool) {
	instance, err := LookupWith[T](r, a, opts...)
	return instance, err == nil
}

// LookupWith is ResolveWith returning the error explaining a failure.
func LookupWith[T, A any](r Resolver, a A, opts ...ResolveOption) (T, error) {
	return lookupArgs[T](r, []reflect.Type{reflect.TypeFor[A]()}, []any{a}, opts)
}

// ResolveWith2 resolves T through its two-argument factory.
func ResolveWith2[T, A, B any](r Resolver, a A, b B, opts ...ResolveOption) (T, bool) {
	instance, err := lookupArgs[T](r,
		[]reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()}, []any{a, b}, opts)
	return instance, err == nil
}

// ResolveWith3 resolves T through its three-argument factory.
func ResolveWith3[T, A, B, C any](r Resolver, a A, b B, c C, opts ...ResolveOption) (T, bool) {
	instance, err := lookupArgs[T](r,
		[]reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C]()}, []any{a, b, c}, opts)
	return instance, err == nil
}

// LookupArgs resolves T through a factory whose parameters are the dynamic
// types of args, as installed by Autowire. A nil argument cannot carry its
// type; use the typed ResolveWith variants for those.
func LookupArgs[T any](r Resolver, args []any, opts ...ResolveOption) (T, error) {
	types := make([]reflect.Type, len(args))
	for i, a := range args {
		types[i] = reflect.TypeOf(a)
	}
	return lookupArgs[T](r, types, args, opts)
}

func lookupArgs[T any](r Resolver, types []reflect.Type, args []any, opts []ResolveOption) (T, error) {
	return lookup[T](r, KeyWithArgs[T](types, opts...), call{args: args, withArgs: true})
}

// ResolveProtocol resolves whatever is registered under a protocol name.
func ResolveProtocol(r Resolver, protocol string, opts ...ResolveOption) (any, bool) {
	instance, err := LookupProtocol(r, protocol, opts...)
	return instance, err == nil
}

// LookupProtocol is ResolveProtocol returning the error explaining a
// failure.
func LookupProtocol(r Resolver, protocol string, opts ...ResolveOption) (any, error) {
	return lookup[any](r, ProtocolKey(protocol, opts...), call{})
}

// LookupProtocolArgs resolves a protocol through its argument factory.
// Protocol keys carry no signature, so args are passed through unchecked.
func LookupProtocolArgs(r Resolver, protocol string, args []any, opts ...ResolveOption) (any, error) {
	return lookup[any](r, ProtocolKey(protocol, opts...), call{args: args, withArgs: true})
}

func lookup[T any](r Resolver, key Key, in call) (T, error) {
	var zero T

	if r == nil {
		return zero, ErrNotRegistered(key)
	}

	in.want = reflect.TypeFor[T]()

	instance, err := r.resolve(key, in)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, ErrTypeMismatch(key, instance)
	}

	return typed, nil
}
