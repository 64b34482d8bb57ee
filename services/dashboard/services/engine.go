// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package services implements the merge engine: the orchestration
// layer that reconciles system panes, database rows and legacy INI
// files into one render-ready dashboard tree per request.
//
// # Description
//
// A load runs four phases in order:
//
//  1. loadSystemPanes — mirror module-provided panes into the
//     database under deterministic ids and apply the user's override
//     rows. Skipped when the request targets a non-default home.
//  2. loadUserPanes — load the active home's persisted panes visible
//     to the user (shared rows plus their own).
//  3. loadLegacyDashboards — migrate the user's legacy INI files into
//     the per-user "User Home", idempotently, and load the result.
//  4. mergePanes — fold everything into the request's Dashboard tree,
//     garbage-collecting stray clones and empty override rows on the
//     way.
//
// The engine never retries a failed write; persistence errors abort
// the load. Programming errors from individual panes are logged and
// the batch continues.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/fcolledani-solari/icingaweb2/pkg/dashboard"
	"github.com/fcolledani-solari/icingaweb2/pkg/legacy"
	"github.com/fcolledani-solari/icingaweb2/pkg/navigation"
	"github.com/fcolledani-solari/icingaweb2/pkg/store"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/observability"
)

// Engine reconciles the three pane sources into per-request dashboard
// trees and applies user mutations back to the store.
type Engine struct {
	store   *store.Store
	nav     navigation.Provider
	legacy  string // base directory of legacy INI files, empty disables migration
	log     *slog.Logger
	metrics *observability.DashboardMetrics
}

// NewEngine creates a merge engine. metrics may be nil (disabled).
func NewEngine(st *store.Store, nav navigation.Provider, legacyDir string, log *slog.Logger, metrics *observability.DashboardMetrics) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:   st,
		nav:     nav,
		legacy:  legacyDir,
		log:     log,
		metrics: metrics,
	}
}

// LoadForUser builds the merged dashboard tree for one request.
//
// requestedHome selects the home to render; empty means the first
// visible home. An unknown home name yields a NotFoundError.
func (e *Engine) LoadForUser(ctx context.Context, user, requestedHome string) (*dashboard.Dashboard, error) {
	start := time.Now()
	d, err := e.loadForUser(ctx, user, requestedHome)
	e.metrics.RecordLoad(time.Since(start).Seconds(), err == nil)
	return d, err
}

func (e *Engine) loadForUser(ctx context.Context, user, requestedHome string) (*dashboard.Dashboard, error) {
	d := dashboard.New(dashboard.MergeContext{User: user, RequestedHome: requestedHome})

	if err := e.loadHomes(ctx, d, user); err != nil {
		return nil, err
	}

	active, err := e.resolveActiveHome(d, requestedHome)
	if err != nil {
		return nil, err
	}
	d.SetActiveHome(active.ID)

	var panes []*dashboard.Pane
	if active.IsDefault() {
		system, err := e.loadSystemPanes(ctx, user, active)
		if err != nil {
			return nil, err
		}
		panes = append(panes, system...)
	}

	persisted, err := e.loadUserPanes(ctx, user, active)
	if err != nil {
		return nil, err
	}
	panes = append(panes, persisted...)

	migrated, err := e.loadLegacyDashboards(ctx, d, user)
	if err != nil {
		return nil, err
	}
	panes = append(panes, migrated...)

	if err := e.mergePanes(ctx, d, user, panes); err != nil {
		return nil, err
	}
	d.FilterActiveHome()
	return d, nil
}

// loadHomes populates the request's home registry from the store,
// creating the shared default home on first access.
func (e *Engine) loadHomes(ctx context.Context, d *dashboard.Dashboard, user string) error {
	rows, err := e.store.ListHomes(ctx, user)
	if err != nil {
		return err
	}

	seenDefault := false
	for _, row := range rows {
		if row.Name == dashboard.DefaultHomeName && row.Owner == "" {
			seenDefault = true
		}
		d.Homes().Add(&dashboard.Home{ID: row.ID, Name: row.Name, Owner: row.Owner})
	}

	if !seenDefault {
		row, err := e.store.EnsureHome(ctx, dashboard.DefaultHomeName, "")
		if err != nil {
			return err
		}
		d.Homes().Add(&dashboard.Home{ID: row.ID, Name: row.Name, Owner: row.Owner})
	}
	return nil
}

// resolveActiveHome picks the home the request renders: the explicit
// selection when present, otherwise the first visible home.
func (e *Engine) resolveActiveHome(d *dashboard.Dashboard, requestedHome string) (*dashboard.Home, error) {
	if requestedHome != "" {
		return d.Homes().ByName(requestedHome)
	}
	return d.Homes().Default()
}

// loadSystemPanes mirrors the module-provided panes into the database
// and returns their effective in-memory form for the user: the system
// base patched by the user's override rows. Empty override rows are
// garbage-collected on the way.
func (e *Engine) loadSystemPanes(ctx context.Context, user string, home *dashboard.Home) ([]*dashboard.Pane, error) {
	descriptors, err := e.nav.SystemPanes()
	if err != nil {
		return nil, err
	}

	var panes []*dashboard.Pane
	for _, desc := range descriptors {
		paneID := dashboard.DerivePaneID(dashboard.SystemOwner, home.Name, desc.Name)

		created, err := e.store.UpsertSystemPane(ctx, store.PaneRow{
			ID:       paneID,
			HomeID:   home.ID,
			Name:     desc.Name,
			Label:    desc.Label,
			Disabled: desc.Disabled,
			Source:   store.SourceSystem,
		})
		if err != nil {
			return nil, err
		}
		if created {
			e.log.Debug("mirrored system pane",
				"pane", desc.Name, "module", desc.Module, "id", paneID.String())
		}

		base := dashboard.NewPane(desc.Name)
		base.ID = paneID
		base.HomeID = home.ID
		base.Title = desc.Label
		base.Disabled = desc.Disabled

		for _, dl := range desc.Dashlets {
			dashletID := dashboard.DeriveDashletID(dashboard.SystemOwner, home.Name, desc.Name, dl.Name)
			if _, err := e.store.EnsureDashlet(ctx, store.DashletRow{
				ID:     dashletID,
				PaneID: paneID,
				Name:   dl.Name,
				Label:  dl.Label,
				URL:    dl.URL,
			}); err != nil {
				return nil, err
			}

			dashlet := dashboard.NewDashlet(dl.Name, dl.URL)
			dashlet.ID = dashletID
			dashlet.Title = dl.Label

			effective, err := e.effectiveDashlet(ctx, dashlet, user)
			if err != nil {
				return nil, err
			}
			base.AddDashlet(effective)
		}

		effective, err := e.effectivePane(ctx, base, user)
		if err != nil {
			return nil, err
		}
		panes = append(panes, effective)
	}
	return panes, nil
}

// loadUserPanes loads the active home's persisted panes visible to
// the user. Shared system rows are skipped for the default home: the
// manifest mirror already contributed them with overrides applied.
func (e *Engine) loadUserPanes(ctx context.Context, user string, home *dashboard.Home) ([]*dashboard.Pane, error) {
	rows, err := e.store.ListPanes(ctx, home.ID, user)
	if err != nil {
		return nil, err
	}

	var panes []*dashboard.Pane
	for _, row := range rows {
		if home.IsDefault() && row.Source == store.SourceSystem && row.Owner == "" {
			continue
		}
		pane, err := e.buildPane(ctx, row, user)
		if err != nil {
			return nil, err
		}
		panes = append(panes, pane)
	}
	return panes, nil
}

// buildPane materializes one persisted pane with its dashlets, with
// the user's dashlet override rows applied to shared dashlets.
func (e *Engine) buildPane(ctx context.Context, row store.PaneRow, user string) (*dashboard.Pane, error) {
	pane := dashboard.NewPane(row.Name)
	pane.ID = row.ID
	pane.HomeID = row.HomeID
	pane.Title = row.Label
	pane.Owner = row.Owner
	pane.Disabled = row.Disabled
	pane.UserWidget = row.Owner != ""

	dashlets, err := e.store.ListDashlets(ctx, row.ID, user)
	if err != nil {
		return nil, err
	}
	for _, dr := range dashlets {
		dashlet := dashboard.NewDashlet(dr.Name, dr.URL)
		dashlet.ID = dr.ID
		dashlet.Title = dr.Label
		dashlet.Owner = dr.Owner
		dashlet.Disabled = dr.Disabled
		dashlet.UserWidget = dr.Owner != ""

		if dr.Owner == "" {
			dashlet, err = e.effectiveDashlet(ctx, dashlet, user)
			if err != nil {
				return nil, err
			}
		}
		pane.AddDashlet(dashlet)
	}
	return pane, nil
}

// loadLegacyDashboards migrates the user's legacy INI files into the
// per-user "User Home" and returns the resulting panes. Re-runs are
// idempotent: identities are derived from the file content's name
// path, and rows already present are left alone.
func (e *Engine) loadLegacyDashboards(ctx context.Context, d *dashboard.Dashboard, user string) ([]*dashboard.Pane, error) {
	if e.legacy == "" {
		return nil, nil
	}
	files, err := legacy.ListConfigFilesForUser(e.legacy, user)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	home, err := e.store.EnsureHome(ctx, dashboard.UserHomeName, user)
	if err != nil {
		return nil, err
	}
	d.Homes().Add(&dashboard.Home{ID: home.ID, Name: home.Name, Owner: home.Owner})

	var panes []*dashboard.Pane
	migrated := 0
	for _, file := range files {
		entries, err := legacy.Load(file)
		if err != nil {
			// A malformed file must not take down the whole dashboard.
			e.log.Warn("skipping unreadable legacy dashboard file",
				"file", file, "user", user, "error", err)
			continue
		}

		for _, entry := range entries {
			paneID := dashboard.DerivePaneID(user, home.Name, entry.Name)
			existing, err := e.store.GetPaneByID(ctx, paneID)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				if _, err := e.store.InsertPane(ctx, store.PaneRow{
					ID:       paneID,
					HomeID:   home.ID,
					Name:     entry.Name,
					Label:    entry.Title,
					Owner:    user,
					Disabled: entry.Disabled,
					Source:   store.SourcePrivate,
				}); err != nil {
					return nil, err
				}
				migrated++
			}

			pane := dashboard.NewPane(entry.Name)
			pane.ID = paneID
			pane.HomeID = home.ID
			pane.Title = entry.Title
			pane.Owner = user
			pane.Disabled = entry.Disabled
			pane.UserWidget = true

			for _, dl := range entry.Dashlets {
				dashletID := dashboard.DeriveDashletID(user, home.Name, entry.Name, dl.Name)
				if _, err := e.store.EnsureDashlet(ctx, store.DashletRow{
					ID:       dashletID,
					PaneID:   paneID,
					Owner:    user,
					Name:     dl.Name,
					Label:    dl.Title,
					URL:      dl.URL,
					Disabled: dl.Disabled,
				}); err != nil {
					return nil, err
				}

				dashlet := dashboard.NewDashlet(dl.Name, dl.URL)
				dashlet.ID = dashletID
				dashlet.Title = dl.Title
				dashlet.Owner = user
				dashlet.Disabled = dl.Disabled
				dashlet.UserWidget = true
				pane.AddDashlet(dashlet)
			}
			panes = append(panes, pane)
		}
	}

	if migrated > 0 {
		e.metrics.RecordLegacyMigration(migrated)
		e.log.Info("migrated legacy dashboards",
			"user", user, "panes", migrated, "files", len(files))
	}
	return panes, nil
}

// mergePanes folds the collected panes into the request tree.
//
// Stray clones are garbage-collected first: a user-owned copy of a
// resident shared pane that carries no dashlets and no title change
// is semantically "no customization" and its row is deleted instead
// of merged. Programming errors from individual panes are logged and
// the batch continues.
func (e *Engine) mergePanes(ctx context.Context, d *dashboard.Dashboard, user string, panes []*dashboard.Pane) error {
	for _, pane := range panes {
		if resident, err := d.Pane(pane.Name); err == nil {
			if e.isStrayClone(resident, pane) {
				if err := e.store.DeletePane(ctx, pane.ID); err != nil {
					return err
				}
				e.log.Info("collected stray pane clone",
					"pane", pane.Name, "user", user, "id", pane.ID.String())
				continue
			}
		}

		if err := d.MergePane(pane); err != nil {
			e.log.Error("cannot merge pane", "pane", pane.Name, "error", err)
		}
	}
	return nil
}

// isStrayClone reports whether incoming is a leftover full copy of
// the resident shared pane carrying no customization of its own. Only
// a copy in the same home qualifies: a user pane in another home that
// happens to share name and title is a legitimate pane, not a clone.
func (e *Engine) isStrayClone(resident, incoming *dashboard.Pane) bool {
	return incoming.UserWidget &&
		!resident.UserWidget &&
		incoming.HomeID == resident.HomeID &&
		!incoming.HasDashlets() &&
		incoming.Title == resident.Title &&
		incoming.ID != resident.ID
}

// effectivePane applies the user's pane override row, deleting it
// when it carries no customization.
func (e *Engine) effectivePane(ctx context.Context, base *dashboard.Pane, user string) (*dashboard.Pane, error) {
	row, err := e.store.GetPaneOverride(ctx, base.ID, user)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return base, nil
	}

	ov := &dashboard.PaneOverride{
		PaneID:   row.PaneID,
		HomeID:   row.HomeID,
		Owner:    row.Owner,
		Label:    row.Label,
		Disabled: row.Disabled,
	}
	if ov.IsEmpty() {
		if err := e.store.DeletePaneOverride(ctx, base.ID, user); err != nil {
			return nil, err
		}
		e.metrics.RecordOverrideCollected(observability.KindPane)
		return base, nil
	}

	e.metrics.RecordOverrideApplied(observability.KindPane)
	return dashboard.EffectivePane(base, ov), nil
}

// effectiveDashlet applies the user's dashlet override row, deleting
// it when it carries no customization.
func (e *Engine) effectiveDashlet(ctx context.Context, base *dashboard.Dashlet, user string) (*dashboard.Dashlet, error) {
	row, err := e.store.GetDashletOverride(ctx, base.ID, user)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return base, nil
	}

	ov := &dashboard.DashletOverride{
		DashletID: row.DashletID,
		PaneID:    row.PaneID,
		Owner:     row.Owner,
		Label:     row.Label,
		URL:       row.URL,
		Disabled:  row.Disabled,
	}
	if ov.IsEmpty() {
		if err := e.store.DeleteDashletOverride(ctx, base.ID, user); err != nil {
			return nil, err
		}
		e.metrics.RecordOverrideCollected(observability.KindDashlet)
		return base, nil
	}

	e.metrics.RecordOverrideApplied(observability.KindDashlet)
	return dashboard.EffectiveDashlet(base, ov), nil
}
