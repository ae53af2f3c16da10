package effects

import (
	"fmt"
	"strings"

	"warble/internal/config"
)

// Effect is one entry in the catalog.
type Effect struct {
	ID          string
	DisplayName string
	FilterArgs  string
	CostClass   string
}

// Registry resolves effect identifiers to filter graphs. Lookups are
// read-only after construction, so the registry is safe for concurrent use.
type Registry struct {
	order   []string
	entries map[string]Effect
}

// New builds a registry from the built-in catalog plus configured extras.
// A malformed extra entry fails construction rather than surfacing later as
// a job failure.
func New(extras []config.EffectEntry) (*Registry, error) {
	reg := &Registry{entries: make(map[string]Effect, len(builtin)+len(extras))}
	for _, effect := range builtin {
		reg.add(effect)
	}
	for i, entry := range extras {
		id := strings.ToLower(strings.TrimSpace(entry.ID))
		if id == "" {
			return nil, fmt.Errorf("effects: extra entry %d has no id", i)
		}
		if _, exists := reg.entries[id]; exists {
			return nil, fmt.Errorf("effects: duplicate id %q", id)
		}
		filterArgs := strings.TrimSpace(entry.FilterArgs)
		if filterArgs == "" {
			return nil, fmt.Errorf("effects: entry %q has no filter_args", id)
		}
		displayName := strings.TrimSpace(entry.DisplayName)
		if displayName == "" {
			displayName = id
		}
		costClass := strings.ToLower(strings.TrimSpace(entry.CostClass))
		switch costClass {
		case "":
			costClass = CostLight
		case CostLight, CostHeavy:
		default:
			return nil, fmt.Errorf("effects: entry %q has unknown cost_class %q", id, entry.CostClass)
		}
		reg.add(Effect{ID: id, DisplayName: displayName, FilterArgs: filterArgs, CostClass: costClass})
	}
	return reg, nil
}

func (r *Registry) add(effect Effect) {
	r.order = append(r.order, effect.ID)
	r.entries[effect.ID] = effect
}

// Lookup returns the effect for id.
func (r *Registry) Lookup(id string) (Effect, bool) {
	effect, ok := r.entries[strings.ToLower(strings.TrimSpace(id))]
	return effect, ok
}

// List returns all effects in catalog order.
func (r *Registry) List() []Effect {
	out := make([]Effect, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

// Len reports the number of registered effects.
func (r *Registry) Len() int { return len(r.order) }
