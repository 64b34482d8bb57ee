// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

// Pane aggregates dashlets on one page and is displayed as a tab.
//
// Dashlet names are unique within the pane. Insertion order is
// preserved for deterministic iteration; a dashlet added under an
// already-present name replaces the previous one (last writer wins).
type Pane struct {
	// ID identifies the pane. Derived for system and legacy-file
	// panes, assigned for panes created interactively.
	ID EntityID

	// HomeID is the id of the home this pane belongs to.
	HomeID int64

	// Name is the stable key, unique within the home.
	Name string

	// Title is the display label shown on the tab.
	Title string

	// Owner is the owning username. Empty for shared system panes.
	Owner string

	// Disabled hides the pane without deleting it.
	Disabled bool

	// UserWidget marks panes created or customized by a user.
	UserWidget bool

	// OverridesSystem marks a pane whose effective state is a system
	// definition patched by a per-user override row.
	OverridesSystem bool

	dashlets map[string]*Dashlet
	order    []string
}

// NewPane creates an empty pane with the title defaulting to the name.
func NewPane(name string) *Pane {
	return &Pane{
		Name:     name,
		Title:    name,
		dashlets: map[string]*Dashlet{},
	}
}

// HasDashlet reports whether a dashlet with the given name exists.
func (p *Pane) HasDashlet(name string) bool {
	_, ok := p.dashlets[name]
	return ok
}

// HasDashlets reports whether the pane holds any dashlets.
func (p *Pane) HasDashlets() bool {
	return len(p.dashlets) > 0
}

// Dashlet returns the dashlet with the given name, or a NotFoundError.
func (p *Pane) Dashlet(name string) (*Dashlet, error) {
	d, ok := p.dashlets[name]
	if !ok {
		return nil, NotFound("dashlet", name)
	}
	return d, nil
}

// Dashlets returns the pane's dashlets in insertion order.
func (p *Pane) Dashlets() []*Dashlet {
	out := make([]*Dashlet, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.dashlets[name])
	}
	return out
}

// AddDashlet inserts a dashlet. A name collision replaces the previous
// dashlet while keeping its insertion position.
func (p *Pane) AddDashlet(d *Dashlet) *Pane {
	if p.dashlets == nil {
		p.dashlets = map[string]*Dashlet{}
	}
	if _, ok := p.dashlets[d.Name]; !ok {
		p.order = append(p.order, d.Name)
	}
	p.dashlets[d.Name] = d
	return p
}

// AddDashlets inserts the given dashlets, applying the same
// last-writer-replaces policy as AddDashlet.
func (p *Pane) AddDashlets(dashlets []*Dashlet) *Pane {
	for _, d := range dashlets {
		p.AddDashlet(d)
	}
	return p
}

// MergeDashlet folds an incoming dashlet into the pane. An absent name
// is added as-is; a resident dashlet is updated in place, preserving
// its identity so that override rows keyed on the resident id stay
// attached.
func (p *Pane) MergeDashlet(incoming *Dashlet) {
	resident, ok := p.dashlets[incoming.Name]
	if !ok {
		p.AddDashlet(incoming)
		return
	}

	resident.Title = incoming.Title
	resident.URL = incoming.URL
	resident.Disabled = incoming.Disabled
	if incoming.Owner != "" {
		resident.Owner = incoming.Owner
	}
	if incoming.UserWidget {
		resident.UserWidget = true
	}
	if incoming.OverridesSystem {
		resident.OverridesSystem = true
	}
}

// RemoveDashlet drops a dashlet from the in-memory pane. Persistence
// decisions (hard delete vs. disable) are made by the merge engine.
func (p *Pane) RemoveDashlet(name string) error {
	if _, ok := p.dashlets[name]; !ok {
		return NotFound("dashlet", name)
	}
	delete(p.dashlets, name)
	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clone returns a deep copy of the pane and its dashlets.
func (p *Pane) Clone() *Pane {
	c := *p
	c.dashlets = make(map[string]*Dashlet, len(p.dashlets))
	c.order = append([]string(nil), p.order...)
	for name, d := range p.dashlets {
		c.dashlets[name] = d.Clone()
	}
	return &c
}
