package depot

import (
	"slices"
	"sync"
)

// Configuration supplies a batch of definitions. The container calls
// Definitions once per registration and registers every returned
// definition.
type Configuration interface {
	Definitions(c *Container) []*Definition
}

// ConfigurationFunc adapts a function to Configuration.
//
// Example:
//
//	c.RegisterConfiguration(depot.ConfigurationFunc(func(*depot.Container) []*depot.Definition {
//	    return []*depot.Definition{
//	        depot.Define[*Database](depot.Autowire(NewDatabase), depot.InScope(depot.Singleton)),
//	        depot.Define[*Cache](depot.Autowire(NewCache), depot.InScope(depot.Singleton)),
//	    }
//	}))
type ConfigurationFunc func(c *Container) []*Definition

// Definitions implements Configuration.
func (f ConfigurationFunc) Definitions(c *Container) []*Definition {
	return f(c)
}

// Definitions is a fixed list of definitions usable as a Configuration.
type Definitions []*Definition

// Definitions implements Configuration.
func (d Definitions) Definitions(*Container) []*Definition {
	return d
}

// Enumerator hands out the configurations known to the process that match
// a predicate.
type Enumerator interface {
	Enumerate(match func(Configuration) bool) []Configuration
}

// Catalog is an Enumerator that configurations publish themselves into,
// typically from init functions.
type Catalog struct {
	mu             sync.RWMutex
	configurations []Configuration
}

// DefaultCatalog is the process-wide catalog used by Publish.
var DefaultCatalog = &Catalog{}

// Publish adds configurations to the DefaultCatalog.
//
// Example:
//
//	func init() {
//	    depot.Publish(storageConfiguration{})
//	}
func Publish(configurations ...Configuration) {
	DefaultCatalog.Publish(configurations...)
}

// Publish adds configurations to the catalog.
func (cat *Catalog) Publish(configurations ...Configuration) {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	for _, cfg := range configurations {
		if cfg != nil {
			cat.configurations = append(cat.configurations, cfg)
		}
	}
}

// Enumerate returns the published configurations matching match, in
// publication order. A nil match selects all of them.
func (cat *Catalog) Enumerate(match func(Configuration) bool) []Configuration {
	cat.mu.RLock()
	defer cat.mu.RUnlock()

	if match == nil {
		return slices.Clone(cat.configurations)
	}

	var found []Configuration
	for _, cfg := range cat.configurations {
		if match(cfg) {
			found = append(found, cfg)
		}
	}
	return found
}

// Scan registers every configuration e enumerates for match.
func (c *Container) Scan(e Enumerator, match func(Configuration) bool) error {
	if e == nil {
		return nil
	}
	return c.RegisterConfiguration(e.Enumerate(match)...)
}
