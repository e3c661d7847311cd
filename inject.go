package depot

import (
	"reflect"
)

// Inject adds a property injector: once the instance exists and is cached,
// V is resolved and handed to fn together with the instance. A V that cannot
// be resolved is skipped. Because the instance is cached before injectors
// run, V may itself depend on the instance.
//
// Usage:
//
//	depot.Define[*A](
//	    depot.Class[*A](),
//	    depot.Inject(func(a *A, b *B) { a.b = b }),
//	)
func Inject[T, V any](fn func(T, V)) Option {
	return property[T](fn != nil, func(r Resolver, target T) {
		if v, ok := Resolve[V](r); ok {
			fn(target, v)
		}
	})
}

// InjectNamed is Inject for a named dependency.
func InjectNamed[T, V any](name string, fn func(T, V)) Option {
	return property[T](fn != nil, func(r Resolver, target T) {
		if v, ok := Resolve[V](r, Name(name)); ok {
			fn(target, v)
		}
	})
}

func property[T any](ok bool, run func(Resolver, T)) Option {
	return optionFunc(func(d *Definition) {
		if !ok {
			d.fail("property injector is nil")
			return
		}
		d.properties = append(d.properties, typedInjector(run))
	})
}

// Setter adds a setter injector taking one resolved dependency.
func Setter[T, A any](fn func(T, A)) Option {
	return setter[T](fn != nil, func(r Resolver, target T) {
		a, ok := Resolve[A](r)
		if !ok {
			return
		}
		fn(target, a)
	})
}

// Setter2 adds a setter injector taking two resolved dependencies. The
// setter runs only when every dependency resolves.
func Setter2[T, A, B any](fn func(T, A, B)) Option {
	return setter[T](fn != nil, func(r Resolver, target T) {
		a, ok := Resolve[A](r)
		if !ok {
			return
		}
		b, ok := Resolve[B](r)
		if !ok {
			return
		}
		fn(target, a, b)
	})
}

// Setter3 adds a setter injector taking three resolved dependencies.
func Setter3[T, A, B, C any](fn func(T, A, B, C)) Option {
	return setter[T](fn != nil, func(r Resolver, target T) {
		a, ok := Resolve[A](r)
		if !ok {
			return
		}
		b, ok := Resolve[B](r)
		if !ok {
			return
		}
		c, ok := Resolve[C](r)
		if !ok {
			return
		}
		fn(target, a, b, c)
	})
}

func setter[T any](ok bool, run func(Resolver, T)) Option {
	return optionFunc(func(d *Definition) {
		if !ok {
			d.fail("setter is nil")
			return
		}
		d.setters = append(d.setters, typedInjector(run))
	})
}

// typedInjector adapts run to the untyped instance. Instances that are not
// a T are left alone.
func typedInjector[T any](run func(Resolver, T)) injector {
	return injector{
		target: reflect.TypeFor[T](),
		run: func(r Resolver, instance any) {
			if target, ok := instance.(T); ok {
				run(r, target)
			}
		},
	}
}

// Completed adds a callback run after all injection, in registration order.
func Completed(fn func(r Resolver, instance any)) Option {
	return optionFunc(func(d *Definition) {
		if fn == nil {
			d.fail("completion callback is nil")
			return
		}
		d.completions = append(d.completions, fn)
	})
}
