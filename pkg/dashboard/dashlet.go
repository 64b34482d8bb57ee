// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package dashboard implements the core dashboard domain: the
// Home → Pane → Dashlet hierarchy, deterministic identity derivation,
// the override algebra layered on top of system entities, the merged
// per-request tree and the active-pane resolver.
//
// The package is pure in-memory; all persistence goes through the
// gateway in pkg/store and is orchestrated by the merge engine in
// services/dashboard/services.
package dashboard

// Dashlet is a single embedded view (a url) shown inside a pane.
type Dashlet struct {
	// ID identifies the dashlet. Derived for system and legacy-file
	// dashlets, assigned for dashlets created interactively.
	ID EntityID

	// Name is the stable key, unique within the owning pane.
	Name string

	// Title is the display label.
	Title string

	// URL is the view the dashlet embeds.
	URL string

	// Owner is the owning username. Empty for shared system dashlets.
	Owner string

	// Disabled hides the dashlet without deleting it.
	Disabled bool

	// UserWidget marks dashlets created or customized by a user.
	UserWidget bool

	// OverridesSystem marks a dashlet whose effective state is a
	// system definition patched by a per-user override row.
	OverridesSystem bool
}

// NewDashlet creates a dashlet with the title defaulting to the name.
func NewDashlet(name, url string) *Dashlet {
	return &Dashlet{Name: name, Title: name, URL: url}
}

// Clone returns a copy of the dashlet.
func (d *Dashlet) Clone() *Dashlet {
	c := *d
	return &c
}
