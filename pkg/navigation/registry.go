// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package navigation exposes the system panes contributed by enabled
// modules. The merge engine reads these read-only descriptors and
// persists its own mirror; nothing here touches the database.
package navigation

// SystemDashlet is one module-provided dashlet descriptor.
type SystemDashlet struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// SystemPane is one module-provided pane descriptor.
type SystemPane struct {
	Name     string          `yaml:"name"`
	Label    string          `yaml:"label"`
	Module   string          `yaml:"-"`
	Disabled bool            `yaml:"disabled"`
	Dashlets []SystemDashlet `yaml:"dashlets"`
}

// Provider yields the system panes visible to the dashboard engine.
//
// Implementations must return descriptors that are safe to share
// between requests; the engine treats them as immutable.
type Provider interface {
	SystemPanes() ([]SystemPane, error)
}

// StaticProvider serves a fixed pane list. Used in tests and for
// embedded deployments without a module directory.
type StaticProvider struct {
	Panes []SystemPane
}

// SystemPanes returns the configured panes.
func (p *StaticProvider) SystemPanes() ([]SystemPane, error) {
	return p.Panes, nil
}

var _ Provider = (*StaticProvider)(nil)
