// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package services

import (
	"context"

	"github.com/fcolledani-solari/icingaweb2/pkg/dashboard"
	"github.com/fcolledani-solari/icingaweb2/pkg/store"
)

// RemoveHome deletes a home and everything beneath it. The default
// home is protected: the attempt fails with ErrHomeProtected and
// nothing is deleted.
func (e *Engine) RemoveHome(ctx context.Context, user, name string) error {
	if name == dashboard.DefaultHomeName {
		return dashboard.ErrHomeProtected
	}

	home, err := e.findHome(ctx, user, name)
	if err != nil {
		return err
	}
	if err := e.store.DeleteHome(ctx, home.ID); err != nil {
		return err
	}
	e.log.Info("removed dashboard home", "home", name, "user", user)
	return nil
}

// RenameHome renames a home. The default home cannot be renamed.
func (e *Engine) RenameHome(ctx context.Context, user, name, newName string) error {
	if name == dashboard.DefaultHomeName {
		return dashboard.ErrHomeProtected
	}
	if newName == "" || newName == dashboard.DefaultHomeName {
		return dashboard.Programmingf("invalid home name %q", newName)
	}

	home, err := e.findHome(ctx, user, name)
	if err != nil {
		return err
	}
	return e.store.RenameHome(ctx, home.ID, newName)
}

// RemovePane removes a pane for the user. User-owned panes are hard
// deleted with their dashlets and override rows; shared system panes
// stay in place and are disabled via an override row instead, so
// other users keep seeing them.
func (e *Engine) RemovePane(ctx context.Context, user, homeName, paneName string) error {
	home, pane, err := e.findPane(ctx, user, homeName, paneName)
	if err != nil {
		return err
	}

	if pane.Owner == user && user != "" {
		if err := e.store.DeletePane(ctx, pane.ID); err != nil {
			return err
		}
		e.log.Info("removed pane", "pane", paneName, "home", homeName, "user", user)
		return nil
	}

	return e.store.UpsertPaneOverride(ctx, store.PaneOverrideRow{
		PaneID:   pane.ID,
		HomeID:   home.ID,
		Owner:    user,
		Disabled: true,
	})
}

// RemoveDashlet removes a dashlet for the user. User-owned dashlets
// are hard deleted; shared system dashlets are disabled via an
// override row.
func (e *Engine) RemoveDashlet(ctx context.Context, user, homeName, paneName, dashletName string) error {
	_, pane, err := e.findPane(ctx, user, homeName, paneName)
	if err != nil {
		return err
	}

	dashlet, err := e.store.FindDashlet(ctx, pane.ID, dashletName, user)
	if err != nil {
		return err
	}
	if dashlet == nil {
		return dashboard.NotFound("dashlet", dashletName)
	}

	if dashlet.Owner == user && user != "" {
		return e.store.DeleteDashlet(ctx, dashlet.ID)
	}

	return e.store.UpsertDashletOverride(ctx, store.DashletOverrideRow{
		DashletID: dashlet.ID,
		PaneID:    pane.ID,
		Owner:     user,
		Disabled:  true,
	})
}

// RenamePane renames a pane and optionally moves it to another home,
// creating the target home on demand. A user-owned pane is updated in
// place; updating home_id is what scopes it out of loads of the old
// home. A shared system pane can only be relabeled, through an
// override row, and never moved.
func (e *Engine) RenamePane(ctx context.Context, user, homeName, paneName, newName, newTitle, targetHomeName string) error {
	home, pane, err := e.findPane(ctx, user, homeName, paneName)
	if err != nil {
		return err
	}
	if newName == "" {
		newName = pane.Name
	}
	if newTitle == "" {
		newTitle = newName
	}

	if pane.Owner != user || user == "" {
		if targetHomeName != "" && targetHomeName != homeName {
			return dashboard.Programmingf("cannot move system pane %q between homes", paneName)
		}
		return e.store.UpsertPaneOverride(ctx, store.PaneOverrideRow{
			PaneID: pane.ID,
			HomeID: home.ID,
			Owner:  user,
			Label:  &newTitle,
		})
	}

	target := home
	if targetHomeName != "" && targetHomeName != homeName {
		if targetHomeName == dashboard.DefaultHomeName {
			row, err := e.store.EnsureHome(ctx, targetHomeName, "")
			if err != nil {
				return err
			}
			target = &dashboard.Home{ID: row.ID, Name: row.Name, Owner: row.Owner}
		} else {
			row, err := e.store.EnsureHome(ctx, targetHomeName, user)
			if err != nil {
				return err
			}
			target = &dashboard.Home{ID: row.ID, Name: row.Name, Owner: row.Owner}
		}
	}

	return e.store.RenamePane(ctx, pane.ID, target.ID, newName, newTitle)
}

// CreateDashlet creates a dashlet for the user, running the
// insert-if-absent chain home → pane → dashlet. The target home and
// pane are created on demand; the pane is always user-owned. A
// user-owned dashlet already present under the name is updated
// instead.
func (e *Engine) CreateDashlet(ctx context.Context, user, homeName, paneName, dashletName, title, url string) error {
	if homeName == "" {
		homeName = dashboard.DefaultHomeName
	}
	if title == "" {
		title = dashletName
	}

	home, err := e.ensureHomeFor(ctx, user, homeName)
	if err != nil {
		return err
	}

	pane, err := e.store.FindPane(ctx, home.ID, paneName, user)
	if err != nil {
		return err
	}
	if pane == nil || pane.Owner != user {
		seq, err := e.store.NextID(ctx)
		if err != nil {
			return err
		}
		created, err := e.store.InsertPane(ctx, store.PaneRow{
			ID:     dashboard.AssignedID(seq),
			HomeID: home.ID,
			Name:   paneName,
			Label:  paneName,
			Owner:  user,
			Source: store.SourcePrivate,
		})
		if err != nil {
			return err
		}
		pane = &created
	}

	existing, err := e.store.FindDashlet(ctx, pane.ID, dashletName, user)
	if err != nil {
		return err
	}
	if existing != nil && existing.Owner == user {
		return e.store.UpdateDashlet(ctx, existing.ID, pane.ID, title, url)
	}

	seq, err := e.store.NextID(ctx)
	if err != nil {
		return err
	}
	if err := e.store.InsertDashlet(ctx, store.DashletRow{
		ID:     dashboard.AssignedID(seq),
		PaneID: pane.ID,
		Owner:  user,
		Name:   dashletName,
		Label:  title,
		URL:    url,
	}); err != nil {
		return err
	}
	e.log.Info("created dashlet",
		"dashlet", dashletName, "pane", paneName, "home", homeName, "user", user)
	return nil
}

// UpdateDashlet updates a dashlet's title and url. A user-owned
// dashlet is updated in place; a shared system dashlet gets an
// override row carrying the changes.
func (e *Engine) UpdateDashlet(ctx context.Context, user, homeName, paneName, dashletName, title, url string) error {
	_, pane, err := e.findPane(ctx, user, homeName, paneName)
	if err != nil {
		return err
	}

	dashlet, err := e.store.FindDashlet(ctx, pane.ID, dashletName, user)
	if err != nil {
		return err
	}
	if dashlet == nil {
		return dashboard.NotFound("dashlet", dashletName)
	}

	if dashlet.Owner == user && user != "" {
		if title == "" {
			title = dashlet.Label
		}
		if url == "" {
			url = dashlet.URL
		}
		return e.store.UpdateDashlet(ctx, dashlet.ID, pane.ID, title, url)
	}

	ov := store.DashletOverrideRow{
		DashletID: dashlet.ID,
		PaneID:    pane.ID,
		Owner:     user,
	}
	if title != "" && title != dashlet.Label {
		ov.Label = &title
	}
	if url != "" && url != dashlet.URL {
		ov.URL = &url
	}
	if ov.Label == nil && ov.URL == nil {
		// Nothing differs from the system defaults; an override row
		// would be empty and immediately garbage-collected.
		return nil
	}
	return e.store.UpsertDashletOverride(ctx, ov)
}

// findHome resolves a home name visible to the user: their own row
// first, then the shared one.
func (e *Engine) findHome(ctx context.Context, user, name string) (*dashboard.Home, error) {
	if user != "" {
		row, err := e.store.GetHomeByName(ctx, name, user)
		if err != nil {
			return nil, err
		}
		if row != nil {
			return &dashboard.Home{ID: row.ID, Name: row.Name, Owner: row.Owner}, nil
		}
	}
	row, err := e.store.GetHomeByName(ctx, name, "")
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, dashboard.NotFound("home", name)
	}
	return &dashboard.Home{ID: row.ID, Name: row.Name, Owner: row.Owner}, nil
}

// findPane resolves a home and a pane within it visible to the user.
func (e *Engine) findPane(ctx context.Context, user, homeName, paneName string) (*dashboard.Home, *store.PaneRow, error) {
	home, err := e.findHome(ctx, user, homeName)
	if err != nil {
		return nil, nil, err
	}
	pane, err := e.store.FindPane(ctx, home.ID, paneName, user)
	if err != nil {
		return nil, nil, err
	}
	if pane == nil {
		return nil, nil, dashboard.NotFound("pane", paneName)
	}
	return home, pane, nil
}

// ensureHomeFor returns the home with the given name visible to the
// user, creating a user-owned home when absent. The default home is
// always the shared row.
func (e *Engine) ensureHomeFor(ctx context.Context, user, name string) (*dashboard.Home, error) {
	if name == dashboard.DefaultHomeName {
		row, err := e.store.EnsureHome(ctx, name, "")
		if err != nil {
			return nil, err
		}
		return &dashboard.Home{ID: row.ID, Name: row.Name, Owner: row.Owner}, nil
	}

	home, err := e.findHome(ctx, user, name)
	if err == nil {
		return home, nil
	}
	if !dashboard.IsNotFound(err) {
		return nil, err
	}
	row, err := e.store.EnsureHome(ctx, name, user)
	if err != nil {
		return nil, err
	}
	return &dashboard.Home{ID: row.ID, Name: row.Name, Owner: row.Owner}, nil
}
