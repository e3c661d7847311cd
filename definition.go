package depot

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
)

// Kind is the creation strategy of a definition.
type Kind int

const (
	// KindNone marks a definition that cannot build anything.
	KindNone Kind = iota
	// KindValue returns a fixed instance.
	KindValue
	// KindConstructor calls a function of the resolver.
	KindConstructor
	// KindFactory calls a function of the resolver and caller arguments.
	KindFactory
	// KindClass default-constructs a type.
	KindClass
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindConstructor:
		return "constructor"
	case KindFactory:
		return "factory"
	case KindClass:
		return "class"
	default:
		return "none"
	}
}

// injector is one post-creation wiring step. target is the type the step
// expects the instance to have; nil accepts anything.
type injector struct {
	target reflect.Type
	run    func(r Resolver, instance any)
}

// Definition describes how to build and wire one kind of object. Build it
// with Define or DefineProtocol and hand it to Container.Register. A
// definition must not be changed after it was registered.
type Definition struct {
	// mu guards storage and serialises construction.
	mu sync.RWMutex
	// owner is the goroutine constructing under mu, 0 when none.
	owner atomic.Int64

	name       string
	capability Capability
	aliases    []Capability
	implType   reflect.Type

	kind        Kind
	value       any
	constructor func(Resolver) (any, error)
	factory     func(Resolver, []any) (any, error)
	args        Signature
	class       reflect.Type

	scope *Scope

	propertyNames []string
	autowireTags  bool
	properties    []injector
	setters       []injector
	completions   []func(Resolver, any)

	storageOnce sync.Once
	storage     Storage

	errs []error
}

// Define starts a definition whose primary capability is T.
//
// Example:
//
//	depot.Define[Animal](
//	    depot.Name("cat"),
//	    depot.Constructor(func(r depot.Resolver) (*Cat, error) { return &Cat{}, nil }),
//	    depot.InScope(depot.Singleton),
//	)
func Define[T any](opts ...Option) *Definition {
	d := &Definition{capability: TypeCapability[T]()}
	d.apply(opts)
	return d
}

// DefineProtocol starts a definition addressed by a protocol name instead of
// a Go type. Protocol keys ignore argument signatures.
func DefineProtocol(protocol string, opts ...Option) *Definition {
	d := &Definition{capability: ProtocolCapability(protocol)}
	if protocol == "" {
		d.fail("protocol name cannot be empty")
	}
	d.apply(opts)
	return d
}

// As makes the definition reachable under capability I as well. All aliases
// share the definition's storage.
func As[I any]() Option {
	return optionFunc(func(d *Definition) {
		d.aliases = append(d.aliases, TypeCapability[I]())
	})
}

// AliasProtocol makes the definition reachable under another protocol name.
func AliasProtocol(protocol string) Option {
	return optionFunc(func(d *Definition) {
		if protocol == "" {
			d.fail("protocol alias cannot be empty")
			return
		}
		d.aliases = append(d.aliases, ProtocolCapability(protocol))
	})
}

// Name returns the definition name, "" when unnamed.
func (d *Definition) Name() string {
	return d.name
}

// Capability returns the primary capability.
func (d *Definition) Capability() Capability {
	return d.capability
}

// Aliases returns the additional capabilities.
func (d *Definition) Aliases() []Capability {
	return append([]Capability(nil), d.aliases...)
}

// Kind returns the creation strategy.
func (d *Definition) Kind() Kind {
	return d.kind
}

// Type returns the implementation type the definition produces, when known.
func (d *Definition) Type() reflect.Type {
	return d.implType
}

// Signature returns the argument signature of the factory, if any.
func (d *Definition) Signature() Signature {
	return d.args
}

// Scope returns the lifetime; nil until registered when none was set.
func (d *Definition) Scope() *Scope {
	return d.scope
}

func (d *Definition) String() string {
	if d.name == "" {
		return d.capability.String()
	}
	return fmt.Sprintf("%s[name=%s]", d.capability, d.name)
}

func (d *Definition) apply(opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(d)
		}
	}
}

func (d *Definition) fail(format string, args ...any) {
	d.errs = append(d.errs, ErrInvalidDefinition(d.String(), fmt.Sprintf(format, args...)))
}

// setStrategy records the creation strategy, refusing a second one.
func (d *Definition) setStrategy(kind Kind, implType reflect.Type) bool {
	if d.kind != KindNone {
		d.fail("creation strategy already set to %s, cannot also use %s", d.kind, kind)
		return false
	}
	d.kind = kind
	d.implType = implType
	return true
}

// validate reports every builder mistake and every static type conflict.
func (d *Definition) validate() error {
	err := multierr.Combine(d.errs...)

	if d.capability.IsZero() {
		err = multierr.Append(err, ErrInvalidDefinition(d.String(), "no capability"))
	}

	if d.implType != nil && d.implType.Kind() != reflect.Interface {
		for _, cp := range d.capabilities() {
			if cp.IsProtocol() {
				continue
			}
			if !d.implType.AssignableTo(cp.typ) {
				err = multierr.Append(err, ErrInvalidDefinition(d.String(),
					fmt.Sprintf("%s does not implement %s", typeIdentity(d.implType), cp)))
			}
		}

		for _, steps := range [][]injector{d.properties, d.setters} {
			for _, step := range steps {
				if step.target != nil && !d.implType.AssignableTo(step.target) {
					err = multierr.Append(err, ErrInvalidDefinition(d.String(),
						fmt.Sprintf("injector expects %s, definition builds %s",
							typeIdentity(step.target), typeIdentity(d.implType))))
				}
			}
		}
	}

	return multierr.Append(err, d.checkPropertyNames())
}

// capabilities returns the primary capability followed by the aliases.
func (d *Definition) capabilities() []Capability {
	caps := make([]Capability, 0, 1+len(d.aliases))
	caps = append(caps, d.capability)
	return append(caps, d.aliases...)
}

// keys lists every key the definition is installed under. Typed
// capabilities get a no-argument key when the definition can build without
// caller arguments, and an argument key when it has an argument factory.
// Protocol capabilities always get exactly one key without arguments.
func (d *Definition) keys() []Key {
	if d.kind == KindNone {
		return nil
	}

	noArgs := d.constructor != nil || d.class != nil || d.kind == KindValue ||
		(d.factory != nil && d.args.IsZero())
	withArgs := d.factory != nil && !d.args.IsZero()

	var keys []Key
	for _, cp := range d.capabilities() {
		if cp.IsProtocol() {
			keys = append(keys, Key{capability: cp, name: d.name})
			continue
		}
		if noArgs {
			keys = append(keys, Key{capability: cp, name: d.name})
		}
		if withArgs {
			keys = append(keys, Key{capability: cp, name: d.name, args: d.args})
		}
	}
	return keys
}

// cell returns the storage, creating it from the scope on first use.
func (d *Definition) cell() Storage {
	d.storageOnce.Do(func() {
		scope := d.scope
		if scope == nil {
			scope = Transient
		}
		// A value definition keeps its value alive, so a weak cell would
		// never be collected anyway. A strong one also never takes a weak
		// reference to a value that may not live on the heap.
		if d.kind == KindValue && scope == SingletonWeak {
			d.storage = NewStrongStorage()
			return
		}
		d.storage = scope.newStorage()
	})
	return d.storage
}

// release drops the cached instance.
func (d *Definition) release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cell().Clear()
}

// satisfies reports whether instance can be returned for type want. A nil
// want accepts every instance.
func satisfies(instance any, want reflect.Type) bool {
	if want == nil {
		return true
	}
	if instance == nil {
		return false
	}
	return reflect.TypeOf(instance).AssignableTo(want)
}
