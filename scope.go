package depot

import "fmt"

// Scope is a lifetime policy: it decides how the instance a definition
// produces is cached. Scopes compare by identity.
type Scope struct {
	name       string
	newStorage func() Storage
}

// NewScope creates a custom scope whose definitions cache instances in the
// storage returned by newStorage.
func NewScope(name string, newStorage func() Storage) *Scope {
	if newStorage == nil {
		panic("depot: scope storage constructor cannot be nil")
	}
	return &Scope{name: name, newStorage: newStorage}
}

var (
	// Transient builds a new instance for every resolution. Within one
	// resolution tree the instance is shared, which lets cycles close.
	Transient = NewScope("transient", NewAutoreleaseStorage)

	// Prototype is an alias of Transient.
	Prototype = Transient

	// Singleton keeps one instance until it is released.
	Singleton = NewScope("singleton", NewStrongStorage)

	// SingletonWeak keeps one instance for as long as something outside the
	// container holds it. Only pointers to heap objects are held weakly: a
	// Value definition is kept like a Singleton, and a constructor must not
	// return a pointer to a package-level variable.
	SingletonWeak = NewScope("singletonWeak", NewWeakStorage)
)

// Name returns the scope name.
func (s *Scope) Name() string {
	return s.name
}

func (s *Scope) String() string {
	return s.name
}

// ScopeByName returns the built-in scope with the given name.
func ScopeByName(name string) (*Scope, error) {
	switch name {
	case "transient", "prototype":
		return Transient, nil
	case "singleton":
		return Singleton, nil
	case "singletonWeak", "singleton_weak", "weak":
		return SingletonWeak, nil
	default:
		return nil, fmt.Errorf("unknown scope %q", name)
	}
}
