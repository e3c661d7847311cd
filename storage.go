package depot

import (
	"github.com/xraph/depot/internal/weakref"
)

// Storage caches the instance a definition produced. A scope creates one
// Storage per definition; the container guards every call with the
// definition's lock, so implementations need no locking of their own.
type Storage interface {
	// Load returns the cached instance, if any.
	Load() (any, bool)

	// Store caches a freshly built instance before it is wired.
	Store(instance any)

	// Clear drops the cached instance.
	Clear()

	// Autorelease is called once a resolution has finished wiring the
	// instance it stored.
	Autorelease()
}

// strongStorage keeps its instance until cleared.
type strongStorage struct {
	instance any
	set      bool
}

// NewStrongStorage returns storage that retains its instance until Clear.
func NewStrongStorage() Storage {
	return &strongStorage{}
}

func (s *strongStorage) Load() (any, bool) {
	return s.instance, s.set
}

func (s *strongStorage) Store(instance any) {
	s.instance = instance
	s.set = true
}

func (s *strongStorage) Clear() {
	s.instance = nil
	s.set = false
}

func (s *strongStorage) Autorelease() {}

// autoreleaseStorage shares its instance only within the resolution that
// built it, so cycles inside one resolution tree still close.
type autoreleaseStorage struct {
	strongStorage
}

// NewAutoreleaseStorage returns storage that forgets its instance as soon as
// the resolution that stored it completes.
func NewAutoreleaseStorage() Storage {
	return &autoreleaseStorage{}
}

func (s *autoreleaseStorage) Autorelease() {
	s.Clear()
}

// weakStorage observes its instance without keeping it alive.
type weakStorage struct {
	ref weakref.Ref
}

// NewWeakStorage returns storage that holds a weak reference. Only pointers
// can be held; any other value is dropped immediately.
func NewWeakStorage() Storage {
	return &weakStorage{}
}

func (s *weakStorage) Load() (any, bool) {
	return s.ref.Value()
}

func (s *weakStorage) Store(instance any) {
	ref, ok := weakref.Make(instance)
	if !ok {
		s.ref = weakref.Ref{}
		return
	}
	s.ref = ref
}

func (s *weakStorage) Clear() {
	s.ref = weakref.Ref{}
}

func (s *weakStorage) Autorelease() {}
