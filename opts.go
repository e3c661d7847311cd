package depot

import "go.uber.org/zap"

// Option configures a Definition.
type Option interface {
	apply(*Definition)
}

// optionFunc is a function adapter for Option
type optionFunc func(*Definition)

func (f optionFunc) apply(d *Definition) { f(d) }

// ResolveOption narrows the key used by a resolution.
type ResolveOption interface {
	applyResolve(*resolveConfig)
}

// resolveConfig holds the key parts a caller can set
type resolveConfig struct {
	name string
}

func newResolveConfig(opts []ResolveOption) resolveConfig {
	var cfg resolveConfig
	for _, opt := range opts {
		if opt != nil {
			opt.applyResolve(&cfg)
		}
	}
	return cfg
}

// NameOption sets the disambiguating name. It configures definitions and
// resolutions alike.
type NameOption string

// Name gives a definition a name, or selects a named definition when
// resolving.
//
// Example:
//
//	c.Register(depot.Define[Store](depot.Name("primary"), depot.Constructor(NewPrimary)))
//	store, ok := depot.Resolve[Store](c, depot.Name("primary"))
func Name(name string) NameOption {
	return NameOption(name)
}

func (n NameOption) apply(d *Definition) {
	d.name = string(n)
}

func (n NameOption) applyResolve(cfg *resolveConfig) {
	cfg.name = string(n)
}

// InScope sets the lifetime of a definition. Definitions without a scope get
// the container's default scope when registered.
func InScope(scope *Scope) Option {
	return optionFunc(func(d *Definition) {
		d.scope = scope
	})
}

// ContainerOption configures a Container.
type ContainerOption func(*containerConfig)

// containerConfig holds the settings New applies
type containerConfig struct {
	defaultScope *Scope
	logger       *zap.Logger
	diagnostics  bool
	middleware   []Middleware
}

// WithDefaultScope sets the scope given to definitions registered without one.
// The default is Transient.
func WithDefaultScope(scope *Scope) ContainerOption {
	return func(cfg *containerConfig) {
		if scope != nil {
			cfg.defaultScope = scope
		}
	}
}

// WithLogger sets the logger used for warnings and diagnostics.
func WithLogger(logger *zap.Logger) ContainerOption {
	return func(cfg *containerConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithDiagnostics logs the resolvable keys whenever a resolution fails.
func WithDiagnostics(enabled bool) ContainerOption {
	return func(cfg *containerConfig) {
		cfg.diagnostics = enabled
	}
}

// WithMiddleware installs resolution middleware.
func WithMiddleware(middleware ...Middleware) ContainerOption {
	return func(cfg *containerConfig) {
		cfg.middleware = append(cfg.middleware, middleware...)
	}
}
