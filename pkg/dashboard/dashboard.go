// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

// Dashboard is the merged, render-ready pane tree for one request.
//
// The merge engine reconciles system, database and legacy-file sourced
// panes into this tree; the active-pane resolver then selects one pane
// for rendering. A Dashboard is built per request and discarded at
// request end; it is not safe for concurrent use.
type Dashboard struct {
	ctx   MergeContext
	homes *HomeRegistry

	panes map[string]*Pane
	order []string

	resolver activePaneResolver
}

// New creates an empty dashboard for the given merge context.
func New(ctx MergeContext) *Dashboard {
	return &Dashboard{
		ctx:   ctx,
		homes: NewHomeRegistry(),
		panes: map[string]*Pane{},
	}
}

// Context returns the merge context this dashboard was built under.
func (d *Dashboard) Context() MergeContext {
	return d.ctx
}

// SetActiveHome sets the active-home filter. Must be called before
// panes are merged.
func (d *Dashboard) SetActiveHome(homeID int64) {
	d.ctx.ActiveHomeID = homeID
}

// Homes returns the home registry populated for this request.
func (d *Dashboard) Homes() *HomeRegistry {
	return d.homes
}

// HasPanes reports whether the merged tree holds any panes.
func (d *Dashboard) HasPanes() bool {
	return len(d.panes) > 0
}

// HasPane reports whether a pane with the given name resides in the
// merged tree.
func (d *Dashboard) HasPane(name string) bool {
	_, ok := d.panes[name]
	return ok
}

// Pane returns the resident pane with the given name, or a
// NotFoundError.
func (d *Dashboard) Pane(name string) (*Pane, error) {
	p, ok := d.panes[name]
	if !ok {
		return nil, NotFound("pane", name)
	}
	return p, nil
}

// Panes returns the resident panes in insertion order.
func (d *Dashboard) Panes() []*Pane {
	out := make([]*Pane, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.panes[name])
	}
	return out
}

// AddPane inserts a pane without merge validation. Used for panes
// constructed in-process (e.g. by forms) that have no identity yet.
func (d *Dashboard) AddPane(p *Pane) {
	if _, ok := d.panes[p.Name]; !ok {
		d.order = append(d.order, p.Name)
	}
	d.panes[p.Name] = p
}

// MergePane folds one incoming pane into the resident tree.
//
// A pane lacking its pane id or home id is rejected with a
// ProgrammingError naming the pane and the missing field; the caller
// is expected to continue with the rest of the batch. A pane outside
// the active-home filter is skipped silently.
//
// On a name collision the resident pane keeps its identity: metadata
// is taken from the incoming pane, dashlets are merged add-or-update
// via Pane.MergeDashlet.
func (d *Dashboard) MergePane(incoming *Pane) error {
	if incoming.ID.IsZero() {
		return Programmingf("cannot merge pane %q: pane id not set", incoming.Name)
	}
	if incoming.HomeID == 0 {
		return Programmingf("cannot merge pane %q: home id not set", incoming.Name)
	}
	if d.ctx.HomeFiltered() && incoming.HomeID != d.ctx.ActiveHomeID {
		return nil
	}

	resident, ok := d.panes[incoming.Name]
	if !ok {
		d.AddPane(incoming)
		return nil
	}

	resident.Title = incoming.Title
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
	for _, dl := range incoming.Dashlets() {
		resident.MergeDashlet(dl)
	}
	return nil
}

// RemovePane drops a pane from the in-memory tree. Persistence
// decisions (hard delete vs. disable) are made by the merge engine.
func (d *Dashboard) RemovePane(name string) error {
	if _, ok := d.panes[name]; !ok {
		return Programmingf("cannot remove pane %q: not resident", name)
	}
	delete(d.panes, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// FilterActiveHome enforces the post-merge invariant: when an active
// home is set, the resident tree contains only panes of that home.
func (d *Dashboard) FilterActiveHome() {
	if !d.ctx.HomeFiltered() {
		return
	}

	kept := d.order[:0]
	for _, name := range d.order {
		if d.panes[name].HomeID == d.ctx.ActiveHomeID {
			kept = append(kept, name)
		} else {
			delete(d.panes, name)
		}
	}
	d.order = kept
}
