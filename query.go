package depot

// DefinitionQuery defines criteria for querying installed keys.
type DefinitionQuery struct {
	// Scope filters by scope name (transient, singleton, singletonWeak, ...).
	// Empty string matches all scopes.
	Scope string

	// Name filters by definition name.
	// Empty string matches all names.
	Name string

	// Kind filters by creation strategy (value, constructor, factory, class).
	// Empty string matches all kinds.
	Kind string

	// Cached filters by whether an instance is currently cached.
	// nil matches all keys.
	Cached *bool
}

// Query returns detailed information about installed keys matching the
// query criteria, sorted by key.
//
// Example:
//
//	// Find all singletons holding an instance right now
//	cached := true
//	results := depot.Query(c, depot.DefinitionQuery{
//	    Scope:  "singleton",
//	    Cached: &cached,
//	})
func Query(c *Container, query DefinitionQuery) []DefinitionInfo {
	var results []DefinitionInfo

	for _, info := range c.Snapshot() {
		if query.Scope != "" && info.Scope != query.Scope {
			continue
		}

		if query.Name != "" && info.Name != query.Name {
			continue
		}

		if query.Kind != "" && info.Kind != query.Kind {
			continue
		}

		// Keys under construction have no known cache state
		if query.Cached != nil && (info.Building || info.Cached != *query.Cached) {
			continue
		}

		results = append(results, info)
	}

	return results
}

// QueryKeys returns the keys matching the query criteria.
// This is more convenient than Query when you only need the keys.
func QueryKeys(c *Container, query DefinitionQuery) []string {
	results := Query(c, query)
	keys := make([]string, len(results))
	for i, info := range results {
		keys[i] = info.Key
	}
	return keys
}

// FindByScope returns all keys installed with a specific scope.
func FindByScope(c *Container, scope *Scope) []DefinitionInfo {
	return Query(c, DefinitionQuery{Scope: scopeName(scope)})
}

// FindByName returns all keys of definitions with a specific name.
func FindByName(c *Container, name string) []DefinitionInfo {
	return Query(c, DefinitionQuery{Name: name})
}

// FindCached returns all keys whose definition holds an instance.
func FindCached(c *Container) []DefinitionInfo {
	cached := true
	return Query(c, DefinitionQuery{Cached: &cached})
}
