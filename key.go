package depot

import (
	"cmp"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Capability identifies what a caller asks for: either a Go type (usually an
// interface) or a protocol name for name-addressed lookups.
type Capability struct {
	typ      reflect.Type
	protocol string
}

// TypeCapability returns the capability of type T. Interface types are kept
// as interfaces.
func TypeCapability[T any]() Capability {
	return Capability{typ: reflect.TypeFor[T]()}
}

// CapabilityOf returns the capability of a reflected type.
func CapabilityOf(t reflect.Type) Capability {
	return Capability{typ: t}
}

// ProtocolCapability returns a name-addressed capability.
func ProtocolCapability(protocol string) Capability {
	return Capability{protocol: protocol}
}

// Type returns the Go type of a typed capability, or nil for a protocol.
func (c Capability) Type() reflect.Type {
	return c.typ
}

// Protocol returns the protocol name, or "" for a typed capability.
func (c Capability) Protocol() string {
	return c.protocol
}

// IsProtocol reports whether the capability is name-addressed.
func (c Capability) IsProtocol() bool {
	return c.typ == nil && c.protocol != ""
}

// IsZero reports whether the capability identifies nothing.
func (c Capability) IsZero() bool {
	return c.typ == nil && c.protocol == ""
}

// String returns the stable identity of the capability.
func (c Capability) String() string {
	if c.typ != nil {
		return typeIdentity(c.typ)
	}
	if c.protocol != "" {
		return "protocol " + c.protocol
	}
	return "<nil>"
}

// Signature is the canonical identity of an ordered list of argument types.
// The zero value means "no arguments".
type Signature string

// SignatureOf builds the signature of the given argument types. No types
// yields the empty signature.
func SignatureOf(types ...reflect.Type) Signature {
	if len(types) == 0 {
		return ""
	}
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = typeIdentity(t)
	}
	return Signature("(" + strings.Join(parts, ", ") + ")")
}

// IsZero reports whether the signature carries no arguments.
func (s Signature) IsZero() bool {
	return s == ""
}

// Key identifies one entry in the container: a capability, an optional name
// and an optional argument signature. Keys are comparable and used directly
// as map keys.
type Key struct {
	capability Capability
	name       string
	args       Signature
}

// KeyOf returns the key resolving T with the given options (e.g. Name).
func KeyOf[T any](opts ...ResolveOption) Key {
	cfg := newResolveConfig(opts)
	return Key{capability: TypeCapability[T](), name: cfg.name}
}

// KeyWithArgs returns the key resolving T through an argument factory taking
// the given argument types.
func KeyWithArgs[T any](args []reflect.Type, opts ...ResolveOption) Key {
	cfg := newResolveConfig(opts)
	return Key{capability: TypeCapability[T](), name: cfg.name, args: SignatureOf(args...)}
}

// ProtocolKey returns the key of a name-addressed capability. Protocol keys
// never carry an argument signature.
func ProtocolKey(protocol string, opts ...ResolveOption) Key {
	cfg := newResolveConfig(opts)
	return Key{capability: ProtocolCapability(protocol), name: cfg.name}
}

// NewKey assembles a key from its parts.
func NewKey(capability Capability, name string, args Signature) Key {
	if capability.IsProtocol() {
		args = ""
	}
	return Key{capability: capability, name: name, args: args}
}

// Capability returns the capability of the key.
func (k Key) Capability() Capability {
	return k.capability
}

// Name returns the disambiguating name, "" when unnamed.
func (k Key) Name() string {
	return k.name
}

// Signature returns the argument signature, empty for no-argument keys.
func (k Key) Signature() Signature {
	return k.args
}

// String returns the canonical identity: capability, signature and name in
// that order.
func (k Key) String() string {
	var sb strings.Builder
	sb.WriteString(k.capability.String())
	if k.args != "" {
		sb.WriteString("; ")
		sb.WriteString(string(k.args))
	}
	if k.name != "" {
		sb.WriteString("; ")
		sb.WriteString(strconv.Quote(k.name))
	}
	return sb.String()
}

// Compare orders keys by capability identity, then signature, then name.
// Type identities are unique, so only equal keys compare as 0.
func (k Key) Compare(other Key) int {
	if c := cmp.Compare(k.capability.String(), other.capability.String()); c != 0 {
		return c
	}
	if c := cmp.Compare(k.args, other.args); c != 0 {
		return c
	}
	return cmp.Compare(k.name, other.name)
}

// Less reports whether k sorts before other.
func (k Key) Less(other Key) bool {
	return k.Compare(other) < 0
}

// identities interns the identity string of every type seen so far. Two
// distinct types never share a string: a type whose rendering is already
// taken, such as a second function-local type of the same name, gets a
// "#n" suffix.
var identities struct {
	mu     sync.Mutex
	byType sync.Map // reflect.Type -> string
	taken  map[string]int
}

// typeIdentity names a type by package path so that equally named types of
// different packages stay distinct. The result is unique per type within
// the process.
func typeIdentity(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if id, ok := identities.byType.Load(t); ok {
		return id.(string)
	}

	id := renderType(t)

	identities.mu.Lock()
	defer identities.mu.Unlock()

	if known, ok := identities.byType.Load(t); ok {
		return known.(string)
	}
	if identities.taken == nil {
		identities.taken = make(map[string]int)
	}
	n := identities.taken[id]
	identities.taken[id] = n + 1
	if n > 0 {
		id += "#" + strconv.Itoa(n+1)
	}
	identities.byType.Store(t, id)

	return id
}

// renderType spells out t. Element types are named through typeIdentity.
func renderType(t reflect.Type) string {
	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.Name()
		}
		return t.PkgPath() + "." + t.Name()
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + typeIdentity(t.Elem())
	case reflect.Slice:
		return "[]" + typeIdentity(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + typeIdentity(t.Elem())
	case reflect.Map:
		return "map[" + typeIdentity(t.Key()) + "]" + typeIdentity(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + typeIdentity(t.Elem())
		case reflect.SendDir:
			return "chan<- " + typeIdentity(t.Elem())
		default:
			return "chan " + typeIdentity(t.Elem())
		}
	default:
		return t.String()
	}
}
