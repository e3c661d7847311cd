package depot

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// DefinitionInfo contains diagnostic information about one installed key.
type DefinitionInfo struct {
	Key        string `json:"key" yaml:"key"`
	Capability string `json:"capability" yaml:"capability"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Signature  string `json:"signature,omitempty" yaml:"signature,omitempty"`
	Kind       string `json:"kind" yaml:"kind"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	Scope      string `json:"scope" yaml:"scope"`
	Cached     bool   `json:"cached" yaml:"cached"`
	// Building is set when the definition was locked for construction at
	// the time of the snapshot; Cached is unknown then.
	Building bool `json:"building,omitempty" yaml:"building,omitempty"`
}

type installed struct {
	key   Key
	def   *Definition
	scope string
}

// installed returns every key with its definition, sorted by key.
func (c *Container) installed() []installed {
	c.mu.RLock()
	entries := make([]installed, 0, len(c.objects))
	for key, def := range c.objects {
		entries = append(entries, installed{key: key, def: def, scope: scopeName(def.scope)})
	}
	c.mu.RUnlock()

	slices.SortFunc(entries, func(a, b installed) int {
		return a.key.Compare(b.key)
	})

	return entries
}

// Snapshot returns diagnostic information about every installed key, sorted
// by key. It never waits for a construction in progress.
func (c *Container) Snapshot() []DefinitionInfo {
	entries := c.installed()
	infos := make([]DefinitionInfo, 0, len(entries))

	for _, e := range entries {
		info := DefinitionInfo{
			Key:        e.key.String(),
			Capability: e.key.capability.String(),
			Name:       e.key.name,
			Signature:  string(e.key.args),
			Kind:       e.def.kind.String(),
			Scope:      e.scope,
		}
		if e.def.implType != nil {
			info.Type = typeIdentity(e.def.implType)
		}

		if e.def.mu.TryRLock() {
			_, info.Cached = e.def.cell().Load()
			e.def.mu.RUnlock()
		} else {
			info.Building = true
		}

		infos = append(infos, info)
	}

	return infos
}

// Dump renders every resolvable key and how it is built, one per line,
// sorted by key.
//
//	*app.Cat; "persian": Constructor: () -> *app.Cat, scope: singleton
func (c *Container) Dump() string {
	var b strings.Builder

	for _, e := range c.installed() {
		fmt.Fprintf(&b, "%s: %s, scope: %s\n", e.key, describe(e.key, e.def), e.scope)
	}

	return b.String()
}

// describe names the strategy that resolving key would use.
func describe(key Key, def *Definition) string {
	produced := "?"
	if def.implType != nil {
		produced = typeIdentity(def.implType)
	}

	switch {
	case !key.args.IsZero():
		return fmt.Sprintf("Factory: %s -> %s", key.args, produced)
	case def.kind == KindValue:
		return "Value: " + produced
	case def.constructor != nil:
		return fmt.Sprintf("Constructor: () -> %s", produced)
	case def.class != nil:
		return "Class: cls: " + produced
	case def.factory != nil && def.args.IsZero():
		return fmt.Sprintf("Factory: () -> %s", produced)
	case def.factory != nil:
		return fmt.Sprintf("Factory: %s -> %s", def.args, produced)
	default:
		return "None"
	}
}

func scopeName(s *Scope) string {
	if s == nil {
		return ""
	}
	return s.name
}

func typeName(v any) string {
	return typeIdentity(reflect.TypeOf(v))
}
