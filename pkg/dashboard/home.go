// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

// Reserved home names.
const (
	// DefaultHomeName is the shared home collecting module-provided
	// panes. It always exists (created lazily on first access) and is
	// protected from deletion and rename.
	DefaultHomeName = "Default Home"

	// UserHomeName is the per-user home that collects panes migrated
	// from legacy dashboard config files.
	UserHomeName = "User Home"
)

// Home is a top-level grouping of panes, owned by a user or shared.
type Home struct {
	// ID is the gateway-assigned home id.
	ID int64

	// Name is unique within a user's visible set of homes.
	Name string

	// Owner is the owning username. Empty for shared homes.
	Owner string
}

// IsDefault reports whether this is the protected default home.
func (h *Home) IsDefault() bool {
	return h.Name == DefaultHomeName
}

// HomeRegistry resolves the homes visible to one user, in provider
// order. It is rebuilt per request and holds no mutable provider
// state; creation of new homes goes through the persistence gateway,
// after which the registry must be refreshed to pick up the new id.
type HomeRegistry struct {
	byName map[string]*Home
	order  []string
}

// NewHomeRegistry creates an empty registry.
func NewHomeRegistry() *HomeRegistry {
	return &HomeRegistry{byName: map[string]*Home{}}
}

// Add registers a home. A duplicate name replaces the previous entry
// but keeps its position.
func (r *HomeRegistry) Add(h *Home) {
	if _, ok := r.byName[h.Name]; !ok {
		r.order = append(r.order, h.Name)
	}
	r.byName[h.Name] = h
}

// ByName returns the home with the given name, or a NotFoundError.
func (r *HomeRegistry) ByName(name string) (*Home, error) {
	h, ok := r.byName[name]
	if !ok {
		return nil, NotFound("home", name)
	}
	return h, nil
}

// ByID returns the home with the given id, or a NotFoundError.
func (r *HomeRegistry) ByID(id int64) (*Home, error) {
	for _, name := range r.order {
		if h := r.byName[name]; h.ID == id {
			return h, nil
		}
	}
	return nil, NotFound("home", AssignedID(id).String())
}

// Default returns the first home in provider order, used when no
// explicit home was requested.
func (r *HomeRegistry) Default() (*Home, error) {
	if len(r.order) == 0 {
		return nil, Configurationf("no dashboard homes available")
	}
	return r.byName[r.order[0]], nil
}

// Homes returns all registered homes in provider order.
func (r *HomeRegistry) Homes() []*Home {
	out := make([]*Home, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of registered homes.
func (r *HomeRegistry) Len() int {
	return len(r.order)
}
