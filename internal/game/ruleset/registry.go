package ruleset

import (
	"fmt"
	"sort"
)

// Registry holds every loaded game variant indexed by ID. It is built once at
// startup and passed explicitly to pool construction and the modifier engine.
//
// A Registry is safe for concurrent reads once registration is complete.
type Registry struct {
	variants map[string]*Variant
}

// NewRegistry returns an empty Registry.
//
// Postcondition: Returns a non-nil *Registry ready to accept registrations.
func NewRegistry() *Registry {
	return &Registry{variants: make(map[string]*Variant)}
}

// Register adds v to the registry.
//
// Precondition: v must be non-nil.
// Postcondition: Variant(v.ID) returns v; returns an ErrConfiguration error if
// v.ID is already registered.
func (r *Registry) Register(v *Variant) error {
	if v == nil {
		panic("ruleset: Registry.Register precondition violated: variant must be non-nil")
	}
	if _, exists := r.variants[v.ID]; exists {
		return fmt.Errorf("%w: variant %q already registered", ErrConfiguration, v.ID)
	}
	r.variants[v.ID] = v
	return nil
}

// Replace adds v to the registry, overwriting any variant with the same ID.
//
// Precondition: v must be non-nil.
func (r *Registry) Replace(v *Variant) {
	if v == nil {
		panic("ruleset: Registry.Replace precondition violated: variant must be non-nil")
	}
	r.variants[v.ID] = v
}

// Variant returns the variant registered under id.
//
// Postcondition: returns an ErrConfiguration error when id is unknown.
func (r *Registry) Variant(id string) (*Variant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown game variant %q", ErrConfiguration, id)
	}
	return v, nil
}

// DieType returns the die type key of variant id.
func (r *Registry) DieType(id, key string) (*DieType, error) {
	v, err := r.Variant(id)
	if err != nil {
		return nil, err
	}
	return v.DieType(key)
}

// IDs returns every registered variant ID in lexical order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.variants))
	for id := range r.variants {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
