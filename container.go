package depot

import (
	"reflect"
	"slices"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Container is the registry of definitions. It is safe for concurrent use.
//
// Lock order: the registry lock is never held while waiting for a
// definition lock.
type Container struct {
	mu             sync.RWMutex
	objects        map[Key]*Definition
	defaultScope   *Scope
	configurations []Configuration
	middleware     middlewareChain
	logger         *zap.Logger
	diagnostics    bool
}

// New creates an empty container.
func New(opts ...ContainerOption) *Container {
	cfg := containerConfig{
		defaultScope: Transient,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Container{
		objects:      make(map[Key]*Definition),
		defaultScope: cfg.defaultScope,
		middleware:   newMiddlewareChain(cfg.middleware...),
		logger:       cfg.logger,
		diagnostics:  cfg.diagnostics,
	}
}

// Container returns c.
func (c *Container) Container() *Container {
	return c
}

func (c *Container) resolve(key Key, in call) (any, error) {
	return c.resolveFrom(nil, key, in)
}

// DefaultScope returns the scope given to definitions registered without one.
func (c *Container) DefaultScope() *Scope {
	return c.defaultScope
}

// Register installs definitions under all of their keys. A key that is
// already taken is overwritten: the last registration wins. Invalid
// definitions are skipped and reported in the returned error; the valid ones
// of the same call are installed regardless.
func (c *Container) Register(defs ...*Definition) error {
	type entry struct {
		key Key
		def *Definition
	}

	var (
		errs    error
		valid   []*Definition
		entries []entry
	)

	for _, def := range defs {
		if def == nil {
			errs = multierr.Append(errs, ErrInvalidDefinition("<nil>", "definition is nil"))
			continue
		}
		if err := def.validate(); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		valid = append(valid, def)
		for _, key := range def.keys() {
			entries = append(entries, entry{key: key, def: def})
		}
	}

	type overwrite struct {
		key      Key
		previous *Definition
		current  *Definition
	}
	var overwritten []overwrite

	c.mu.Lock()
	for _, def := range valid {
		if def.scope == nil {
			def.scope = c.defaultScope
		}
	}
	for _, e := range entries {
		if prev, exists := c.objects[e.key]; exists && prev != e.def {
			overwritten = append(overwritten, overwrite{key: e.key, previous: prev, current: e.def})
		}
		c.objects[e.key] = e.def
	}
	c.mu.Unlock()

	for _, o := range overwritten {
		c.logger.Warn("definition overwritten",
			zap.Stringer("key", o.key),
			zap.Stringer("previous", o.previous),
			zap.Stringer("current", o.current),
		)
	}

	return errs
}

// RegisterConfiguration registers the definitions each configuration
// supplies and remembers the configurations for introspection.
func (c *Container) RegisterConfiguration(configurations ...Configuration) error {
	var errs error

	for _, cfg := range configurations {
		if cfg == nil {
			continue
		}

		c.mu.Lock()
		c.configurations = append(c.configurations, cfg)
		c.mu.Unlock()

		errs = multierr.Append(errs, c.Register(cfg.Definitions(c)...))
	}

	return errs
}

// Configurations returns the configurations registered so far, in order.
func (c *Container) Configurations() []Configuration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.configurations)
}

// Use adds middleware to the container.
// Middleware is called in the order they are added.
func (c *Container) Use(middleware Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.middleware = c.middleware.with(middleware)
}

// Release drops the cached instances of every definition in scope.
func (c *Container) Release(scope *Scope) {
	for _, def := range c.definitions(func(d *Definition) bool { return d.scope == scope }) {
		def.release()
	}
}

// ReleaseName drops the cached instances of every definition named name.
func (c *Container) ReleaseName(name string) {
	for _, def := range c.definitions(func(d *Definition) bool { return d.name == name }) {
		def.release()
	}
}

// ReleaseAll drops every cached instance.
func (c *Container) ReleaseAll() {
	for _, def := range c.definitions(nil) {
		def.release()
	}
}

// Clean forgets every registration. Cached instances go with them.
func (c *Container) Clean() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.objects = make(map[Key]*Definition)
}

// Remove uninstalls a single key and reports whether it was installed. Other
// keys of the same definition stay installed.
func (c *Container) Remove(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.objects[key]; !exists {
		return false
	}
	delete(c.objects, key)

	return true
}

// Has checks if a key is installed.
func (c *Container) Has(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.objects[key]

	return exists
}

// Keys returns every installed key in sorted order.
func (c *Container) Keys() []Key {
	c.mu.RLock()
	keys := make([]Key, 0, len(c.objects))
	for key := range c.objects {
		keys = append(keys, key)
	}
	c.mu.RUnlock()

	slices.SortFunc(keys, Key.Compare)

	return keys
}

// Definition returns the definition installed under key.
func (c *Container) Definition(key Key) (*Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	def, ok := c.objects[key]

	return def, ok
}

// ObjectType returns the implementation type registered for T without
// constructing anything.
func ObjectType[T any](c *Container, opts ...ResolveOption) (reflect.Type, bool) {
	return c.objectType(KeyOf[T](opts...))
}

// ProtocolType returns the implementation type registered for a protocol.
func ProtocolType(c *Container, protocol string, opts ...ResolveOption) (reflect.Type, bool) {
	return c.objectType(ProtocolKey(protocol, opts...))
}

func (c *Container) objectType(key Key) (reflect.Type, bool) {
	def, ok := c.Definition(key)
	if !ok || def.implType == nil {
		return nil, false
	}
	return def.implType, true
}

// lookup returns the definition for key along with the middleware to run.
func (c *Container) lookup(key Key) (*Definition, middlewareChain) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.objects[key], c.middleware
}

// definitions returns each distinct installed definition matching keep.
// Several keys may share one definition.
func (c *Container) definitions(keep func(*Definition) bool) []*Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[*Definition]struct{}, len(c.objects))
	defs := make([]*Definition, 0, len(c.objects))
	for _, def := range c.objects {
		if _, dup := seen[def]; dup {
			continue
		}
		seen[def] = struct{}{}
		if keep == nil || keep(def) {
			defs = append(defs, def)
		}
	}

	return defs
}

// diagnose logs a failed resolution together with what could have been
// resolved instead.
func (c *Container) diagnose(key Key, err error) {
	if !c.diagnostics {
		return
	}

	c.logger.Debug("resolve failed",
		zap.Stringer("key", key),
		zap.Error(err),
		zap.String("resolvable", c.Dump()),
	)
}
