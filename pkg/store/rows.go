// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"github.com/fcolledani-solari/icingaweb2/pkg/dashboard"
)

// Pane sources.
const (
	// SourceSystem marks panes mirrored from module manifests.
	SourceSystem = "system"

	// SourcePrivate marks panes created by a user, interactively or
	// via legacy-file migration.
	SourcePrivate = "private"
)

// HomeRow is one dashboard_home row.
type HomeRow struct {
	ID    int64
	Name  string
	Owner string // empty = shared
}

// PaneRow is one dashboard row.
type PaneRow struct {
	ID       dashboard.EntityID
	HomeID   int64
	Name     string
	Label    string
	Owner    string // empty = shared
	Disabled bool
	Source   string
}

// DashletRow is one dashlet row.
type DashletRow struct {
	ID       dashboard.EntityID
	PaneID   dashboard.EntityID
	Owner    string // empty = shared
	Name     string
	Label    string
	URL      string
	Disabled bool
}

// PaneOverrideRow is one dashboard_override row: a per-user patch on
// a system pane.
type PaneOverrideRow struct {
	PaneID   dashboard.EntityID
	HomeID   int64
	Owner    string
	Label    *string
	Disabled bool
}

// DashletOverrideRow is one dashlet_override row: a per-user patch on
// a system dashlet.
type DashletOverrideRow struct {
	DashletID dashboard.EntityID
	PaneID    dashboard.EntityID
	Owner     string
	Label     *string
	URL       *string
	Disabled  bool
}
