// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

// PaneOverride is a sparse per-user patch on top of a system pane.
// Nil fields fall back to the system defaults.
type PaneOverride struct {
	PaneID EntityID
	HomeID int64
	Owner  string

	// Label replaces the pane title when non-nil.
	Label *string

	// Disabled hides the pane for this user.
	Disabled bool
}

// IsEmpty reports whether the override carries no customization at
// all. An empty override is semantically equivalent to "no override"
// and must be garbage-collected rather than persisted: this rule
// decides whether a clone of a system pane counts as customized or
// reverts to pure system defaults.
func (o *PaneOverride) IsEmpty() bool {
	return o.Label == nil && !o.Disabled
}

// DashletOverride is a sparse per-user patch on top of a system
// dashlet. Nil fields fall back to the system defaults.
type DashletOverride struct {
	DashletID EntityID
	PaneID    EntityID
	Owner     string

	// Label replaces the dashlet title when non-nil.
	Label *string

	// URL replaces the dashlet url when non-nil.
	URL *string

	// Disabled hides the dashlet for this user.
	Disabled bool
}

// IsEmpty reports whether the override carries no customization.
// Same garbage-collection rule as PaneOverride.IsEmpty.
func (o *DashletOverride) IsEmpty() bool {
	return o.Label == nil && o.URL == nil && !o.Disabled
}

// EffectivePane computes the pane a user actually sees: the system
// base patched by their override. The base is never mutated. A nil or
// empty override yields a plain copy of the base.
func EffectivePane(base *Pane, ov *PaneOverride) *Pane {
	eff := base.Clone()
	if ov == nil || ov.IsEmpty() {
		return eff
	}

	if ov.Label != nil {
		eff.Title = *ov.Label
	}
	eff.Disabled = ov.Disabled
	eff.Owner = ov.Owner
	eff.UserWidget = true
	eff.OverridesSystem = true
	return eff
}

// EffectiveDashlet computes the dashlet a user actually sees: the
// system base patched by their override. The base is never mutated.
func EffectiveDashlet(base *Dashlet, ov *DashletOverride) *Dashlet {
	eff := base.Clone()
	if ov == nil || ov.IsEmpty() {
		return eff
	}

	if ov.Label != nil {
		eff.Title = *ov.Label
	}
	if ov.URL != nil {
		eff.URL = *ov.URL
	}
	eff.Disabled = ov.Disabled
	eff.Owner = ov.Owner
	eff.UserWidget = true
	eff.OverridesSystem = true
	return eff
}
