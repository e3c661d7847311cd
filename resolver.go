package depot

import (
	"reflect"
	"sync/atomic"
)

// Resolver resolves keys into instances. *Container is a Resolver, and every
// factory, injector and completion callback receives one bound to the
// construction in progress. Resolve dependencies through the Resolver you
// are handed: it knows which definitions the current call chain is
// building, which is what lets legal cycles close and self-recursion be
// reported instead of deadlocking.
//
// A Resolver handed to a callback belongs to the calling goroutine until
// the callback returns; afterwards it behaves like its container.
type Resolver interface {
	// Container returns the container this resolver reads from.
	Container() *Container

	resolve(key Key, in call) (any, error)
}

// call carries what a caller supplied beyond the key.
type call struct {
	args     []any
	withArgs bool
	want     reflect.Type
}

// resolution is the Resolver handed to callbacks of one construction. It
// links to the constructions further up the same call chain.
type resolution struct {
	c      *Container
	def    *Definition
	key    Key
	parent *resolution
	done   atomic.Bool
}

func (r *resolution) Container() *Container {
	return r.c
}

func (r *resolution) resolve(key Key, in call) (any, error) {
	return r.c.resolveFrom(r, key, in)
}

// holds reports whether the chain is still constructing def, i.e. whether
// the calling goroutine owns def's write lock.
func (r *resolution) holds(def *Definition) bool {
	for p := r; p != nil; p = p.parent {
		if p.def == def && !p.done.Load() {
			return true
		}
	}
	return false
}

// resolveFrom runs middleware around one resolution and reports soft
// failures.
func (c *Container) resolveFrom(chain *resolution, key Key, in call) (any, error) {
	def, middleware := c.lookup(key)

	var (
		instance any
		err      error
	)

	if err = middleware.beforeResolve(key); err == nil {
		instance, err = c.resolveDefinition(chain, def, key, in)
	}

	middleware.afterResolve(key, instance, err)

	if err != nil {
		c.diagnose(key, err)
		return nil, err
	}

	return instance, nil
}

// resolveDefinition is the resolve-or-create protocol. Only the first of
// several concurrent callers constructs; the rest observe its instance.
func (c *Container) resolveDefinition(chain *resolution, def *Definition, key Key, in call) (any, error) {
	if def == nil {
		return nil, ErrNotRegistered(key)
	}

	// Re-entry from the chain that is constructing def: the lock is already
	// ours, so read the cell directly.
	if chain.holds(def) {
		return def.reenter(key, in.want)
	}

	// Fast path: check cache (read lock)
	if !def.mu.TryRLock() {
		// Write-locked. When this goroutine holds the lock, the call came
		// back through a captured container rather than the handle.
		if def.owner.Load() == goid() {
			return def.reenter(key, in.want)
		}
		def.mu.RLock()
	}
	instance, ok := def.cell().Load()
	def.mu.RUnlock()

	if ok {
		return expect(key, instance, in.want)
	}

	// Slow path: construct (write lock)
	def.mu.Lock()
	defer def.mu.Unlock()

	def.owner.Store(goid())
	defer def.owner.Store(0)

	// Double-check after acquiring write lock
	if instance, ok := def.cell().Load(); ok {
		return expect(key, instance, in.want)
	}

	child := &resolution{c: c, def: def, key: key, parent: chain}
	defer child.done.Store(true)

	instance, err := def.build(child, key, in)
	if err != nil {
		return nil, err
	}

	if _, err := expect(key, instance, in.want); err != nil {
		return nil, err
	}

	// Store before wiring so cycles through injection find the instance
	storage := def.cell()
	storage.Store(instance)

	def.wire(child, instance)

	storage.Autorelease()

	return instance, nil
}

// reenter serves a resolution of d made while the calling goroutine is
// constructing it. An instance stored ahead of wiring closes the cycle;
// without one the construction depends on itself.
func (d *Definition) reenter(key Key, want reflect.Type) (any, error) {
	if instance, ok := d.cell().Load(); ok {
		return expect(key, instance, want)
	}
	panic(ErrSelfRecursion(key))
}

// expect returns instance when it can be handed out as want.
func expect(key Key, instance any, want reflect.Type) (any, error) {
	if !satisfies(instance, want) {
		return nil, ErrTypeMismatch(key, instance)
	}
	return instance, nil
}

// build runs the creation strategy selected by the call.
func (d *Definition) build(r Resolver, key Key, in call) (any, error) {
	var (
		instance any
		err      error
	)

	switch {
	case in.withArgs:
		if d.factory == nil || d.args.IsZero() {
			return nil, ErrNoStrategy(key)
		}
		instance, err = d.factory(r, in.args)
	case d.kind == KindValue:
		instance = d.value
	case d.constructor != nil:
		instance, err = d.constructor(r)
	case d.class != nil:
		instance = newClass(d.class)
	case d.factory != nil && d.args.IsZero():
		instance, err = d.factory(r, nil)
	default:
		return nil, ErrNoStrategy(key)
	}

	if err != nil {
		return nil, ErrMissingDependency(key, err)
	}

	instance, ok := unwrapNull(instance)
	if !ok {
		return nil, ErrNullValue(key)
	}

	return instance, nil
}

// wire runs the post-creation steps in order: named properties, property
// injectors, setters, completion callbacks.
func (d *Definition) wire(r Resolver, instance any) {
	if len(d.propertyNames) > 0 {
		injectFieldsByName(r, instance, d.propertyNames)
	}
	if d.autowireTags {
		injectTaggedFields(r, instance)
	}

	for _, step := range d.properties {
		step.run(r, instance)
	}

	for _, step := range d.setters {
		step.run(r, instance)
	}

	for _, completed := range d.completions {
		completed(r, instance)
	}
}

// NullObject lets a type mark values that stand for "nothing". A strategy
// producing a null object resolves to nothing.
type NullObject interface {
	IsNull() bool
}

// unwrapNull treats nil, typed nil pointers inside a non-nil interface and
// null objects as "no value".
func unwrapNull(instance any) (any, bool) {
	if instance == nil {
		return nil, false
	}

	rv := reflect.ValueOf(instance)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return nil, false
		}
	}

	if null, ok := instance.(NullObject); ok && null.IsNull() {
		return nil, false
	}

	return instance, true
}

// newClass default-constructs t: a fresh zero value behind a pointer for
// pointer types, the zero value otherwise.
func newClass(t reflect.Type) any {
	if t.Kind() == reflect.Pointer {
		v := reflect.New(t.Elem())
		if v.Type() != t {
			v = v.Convert(t)
		}
		return v.Interface()
	}
	return reflect.New(t).Elem().Interface()
}
