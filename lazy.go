package depot

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Lazy wraps a dependency that is resolved on first access.
// This is useful for breaking cycles through constructors or deferring
// resolution of expensive objects until they're actually needed.
//
// A Lazy created inside a constructor resolves through the container once
// the constructor has returned, so it may point back at the definition
// being built.
type Lazy[T any] struct {
	resolver Resolver
	opts     []ResolveOption
	mu       sync.Once
	value    T
	err      error
	resolved atomic.Bool
}

// NewLazy creates a new lazy dependency wrapper.
func NewLazy[T any](r Resolver, opts ...ResolveOption) *Lazy[T] {
	return &Lazy[T]{
		resolver: r,
		opts:     opts,
	}
}

// Get resolves the dependency and returns it.
// The resolution happens only once; subsequent calls return the cached value.
func (l *Lazy[T]) Get() (T, error) {
	l.mu.Do(func() {
		value, err := Lookup[T](l.resolver, l.opts...)
		if err != nil {
			l.err = err

			return
		}

		l.value = value
		l.resolved.Store(true)
	})

	return l.value, l.err
}

// MustGet resolves the dependency and returns it, panicking on error.
func (l *Lazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("lazy dependency %s failed: %v", l.Key(), err))
	}

	return value
}

// IsResolved returns true if the dependency has been resolved.
func (l *Lazy[T]) IsResolved() bool {
	return l.resolved.Load()
}

// Key returns the key of the dependency.
func (l *Lazy[T]) Key() Key {
	return KeyOf[T](l.opts...)
}

// Provider wraps a dependency that is resolved again on each access.
// With a transient definition every call yields a fresh instance.
type Provider[T any] struct {
	resolver Resolver
	opts     []ResolveOption
}

// NewProvider creates a new provider.
func NewProvider[T any](r Resolver, opts ...ResolveOption) *Provider[T] {
	return &Provider[T]{
		resolver: r,
		opts:     opts,
	}
}

// Provide resolves and returns an instance of the dependency.
func (p *Provider[T]) Provide() (T, error) {
	return Lookup[T](p.resolver, p.opts...)
}

// MustProvide resolves and returns an instance, panicking on error.
func (p *Provider[T]) MustProvide() T {
	value, err := p.Provide()
	if err != nil {
		panic(fmt.Sprintf("provider %s failed: %v", p.Key(), err))
	}

	return value
}

// Key returns the key of the dependency.
func (p *Provider[T]) Key() Key {
	return KeyOf[T](p.opts...)
}
