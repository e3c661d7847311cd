package depot

import (
	"reflect"
)

// Value makes the definition return v on every resolution.
func Value[V any](v V) Option {
	return optionFunc(func(d *Definition) {
		if !d.setStrategy(KindValue, implTypeOf[V](v)) {
			return
		}
		d.value = v
	})
}

// Constructor builds the instance from the resolver. Returning an error
// reports a missing dependency; nothing is cached.
//
// Example:
//
//	depot.Define[*Service](depot.Constructor(func(r depot.Resolver) (*Service, error) {
//	    db, err := depot.Lookup[*DB](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &Service{db: db}, nil
//	}))
func Constructor[V any](fn func(Resolver) (V, error)) Option {
	return optionFunc(func(d *Definition) {
		if fn == nil {
			d.fail("constructor is nil")
			return
		}
		if !d.setStrategy(KindConstructor, reflect.TypeFor[V]()) {
			return
		}
		d.constructor = func(r Resolver) (any, error) {
			return fn(r)
		}
	})
}

// Factory builds the instance from the resolver without reporting errors.
func Factory[V any](fn func(Resolver) V) Option {
	return optionFunc(func(d *Definition) {
		if fn == nil {
			d.fail("factory is nil")
			return
		}
		if !d.setStrategy(KindFactory, reflect.TypeFor[V]()) {
			return
		}
		d.factory = func(r Resolver, _ []any) (any, error) {
			return fn(r), nil
		}
	})
}

// FactoryWith builds the instance from one caller argument. The definition
// is installed under the argument key of A and resolved with ResolveWith.
func FactoryWith[V, A any](fn func(Resolver, A) (V, error)) Option {
	return argFactory[V](fn != nil, []reflect.Type{reflect.TypeFor[A]()},
		func(r Resolver, args []any) (any, error) {
			return fn(r, arg[A](args, 0))
		})
}

// FactoryWith2 builds the instance from two caller arguments.
func FactoryWith2[V, A, B any](fn func(Resolver, A, B) (V, error)) Option {
	return argFactory[V](fn != nil, []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()},
		func(r Resolver, args []any) (any, error) {
			return fn(r, arg[A](args, 0), arg[B](args, 1))
		})
}

// FactoryWith3 builds the instance from three caller arguments.
func FactoryWith3[V, A, B, C any](fn func(Resolver, A, B, C) (V, error)) Option {
	return argFactory[V](fn != nil, []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C]()},
		func(r Resolver, args []any) (any, error) {
			return fn(r, arg[A](args, 0), arg[B](args, 1), arg[C](args, 2))
		})
}

func argFactory[V any](ok bool, params []reflect.Type, fn func(Resolver, []any) (any, error)) Option {
	return optionFunc(func(d *Definition) {
		if !ok {
			d.fail("factory is nil")
			return
		}
		if !d.setStrategy(KindFactory, reflect.TypeFor[V]()) {
			return
		}
		d.factory = fn
		d.args = SignatureOf(params...)
	})
}

// arg extracts argument i, the zero value when it is missing or nil.
func arg[A any](args []any, i int) A {
	var zero A
	if i >= len(args) || args[i] == nil {
		return zero
	}
	a, ok := args[i].(A)
	if !ok {
		return zero
	}
	return a
}

// Class default-constructs V: a pointer to a fresh zero value when V is a
// pointer type, the zero value otherwise.
func Class[V any]() Option {
	return optionFunc(func(d *Definition) {
		t := reflect.TypeFor[V]()
		if t.Kind() == reflect.Interface {
			d.fail("cannot default-construct interface %s", typeIdentity(t))
			return
		}
		if !d.setStrategy(KindClass, t) {
			return
		}
		d.class = t
	})
}

// Group applies shared options to a batch of definitions. A name is only
// given to definitions that have none.
func Group(defs []*Definition, opts ...Option) []*Definition {
	for _, d := range defs {
		if d == nil {
			continue
		}
		for _, opt := range opts {
			if _, ok := opt.(NameOption); ok && d.name != "" {
				continue
			}
			if opt != nil {
				opt.apply(d)
			}
		}
	}
	return defs
}

// implTypeOf prefers the dynamic type of v so a value registered as an
// interface still reports what it really is.
func implTypeOf[V any](v V) reflect.Type {
	if t := reflect.TypeOf(any(v)); t != nil {
		return t
	}
	return reflect.TypeFor[V]()
}
