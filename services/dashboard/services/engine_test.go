// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcolledani-solari/icingaweb2/pkg/dashboard"
	"github.com/fcolledani-solari/icingaweb2/pkg/navigation"
	"github.com/fcolledani-solari/icingaweb2/pkg/store"
)

var systemPanes = []navigation.SystemPane{
	{
		Name:   "overview",
		Label:  "Overview",
		Module: "monitoring",
		Dashlets: []navigation.SystemDashlet{
			{Name: "hosts", Label: "Host Problems", URL: "/monitoring/hosts"},
			{Name: "services", Label: "Service Problems", URL: "/monitoring/services"},
		},
	},
	{
		Name:   "reporting",
		Label:  "Reporting",
		Module: "reporting",
	},
}

func newTestEngine(t *testing.T, legacyDir string) (*Engine, *store.Store) {
	t.Helper()
	st, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	provider := &navigation.StaticProvider{Panes: systemPanes}
	return NewEngine(st, provider, legacyDir, nil, nil), st
}

func writeLegacyConfig(t *testing.T, baseDir, user, content string) {
	t.Helper()
	dir := filepath.Join(baseDir, user)
	require.NoError(t, os.MkdirAll(dir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dashboard.ini"), []byte(content), 0640))
}

func TestFirstLoadMirrorsSystemPanes(t *testing.T) {
	e, st := newTestEngine(t, "")
	ctx := context.Background()

	d, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	homes := d.Homes().Homes()
	require.Len(t, homes, 1)
	assert.Equal(t, dashboard.DefaultHomeName, homes[0].Name)

	panes := d.Panes()
	require.Len(t, panes, 2)
	assert.Equal(t, "overview", panes[0].Name)
	assert.Equal(t, "Overview", panes[0].Title)
	assert.False(t, panes[0].UserWidget)
	require.Len(t, panes[0].Dashlets(), 2)
	assert.Equal(t, "Host Problems", panes[0].Dashlets()[0].Title)

	// The mirror is persisted under deterministic ids.
	paneID := dashboard.DerivePaneID(dashboard.SystemOwner, dashboard.DefaultHomeName, "overview")
	row, err := st.GetPaneByID(ctx, paneID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, store.SourceSystem, row.Source)
}

func TestSecondLoadIssuesNoInserts(t *testing.T) {
	e, st := newTestEngine(t, "")
	ctx := context.Background()

	_, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	inserts := st.InsertCount()
	d, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	assert.Equal(t, inserts, st.InsertCount(), "reloading unchanged state must not write")
	assert.Len(t, d.Panes(), 2)
}

func TestLoadForSecondUserSharesMirror(t *testing.T) {
	e, st := newTestEngine(t, "")
	ctx := context.Background()

	_, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)
	inserts := st.InsertCount()

	d, err := e.LoadForUser(ctx, "bob", "")
	require.NoError(t, err)
	assert.Len(t, d.Panes(), 2)
	assert.Equal(t, inserts, st.InsertCount(), "the mirror rows are shared, not per user")
}

func TestPaneOverrideApplied(t *testing.T) {
	e, st := newTestEngine(t, "")
	ctx := context.Background()

	_, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	paneID := dashboard.DerivePaneID(dashboard.SystemOwner, dashboard.DefaultHomeName, "overview")
	home, err := st.GetHomeByName(ctx, dashboard.DefaultHomeName, "")
	require.NoError(t, err)

	label := "Alice's Overview"
	require.NoError(t, st.UpsertPaneOverride(ctx, store.PaneOverrideRow{
		PaneID: paneID, HomeID: home.ID, Owner: "alice", Label: &label,
	}))

	d, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)
	pane, err := d.Pane("overview")
	require.NoError(t, err)
	assert.Equal(t, "Alice's Overview", pane.Title)
	assert.True(t, pane.OverridesSystem)
	assert.True(t, pane.UserWidget)

	t.Run("other users unaffected", func(t *testing.T) {
		d, err := e.LoadForUser(ctx, "bob", "")
		require.NoError(t, err)
		pane, err := d.Pane("overview")
		require.NoError(t, err)
		assert.Equal(t, "Overview", pane.Title)
		assert.False(t, pane.OverridesSystem)
	})
}

func TestEmptyPaneOverrideGarbageCollected(t *testing.T) {
	e, st := newTestEngine(t, "")
	ctx := context.Background()

	_, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	paneID := dashboard.DerivePaneID(dashboard.SystemOwner, dashboard.DefaultHomeName, "overview")
	home, err := st.GetHomeByName(ctx, dashboard.DefaultHomeName, "")
	require.NoError(t, err)

	// An override carrying no customization, as left behind by a
	// revert.
	require.NoError(t, st.UpsertPaneOverride(ctx, store.PaneOverrideRow{
		PaneID: paneID, HomeID: home.ID, Owner: "alice",
	}))

	d, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)
	pane, err := d.Pane("overview")
	require.NoError(t, err)
	assert.Equal(t, "Overview", pane.Title)
	assert.False(t, pane.OverridesSystem)

	row, err := st.GetPaneOverride(ctx, paneID, "alice")
	require.NoError(t, err)
	assert.Nil(t, row, "empty override row must be deleted")
}

func TestDashletOverrideAppliedAndCollected(t *testing.T) {
	e, st := newTestEngine(t, "")
	ctx := context.Background()

	_, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	paneID := dashboard.DerivePaneID(dashboard.SystemOwner, dashboard.DefaultHomeName, "overview")
	dashletID := dashboard.DeriveDashletID(dashboard.SystemOwner, dashboard.DefaultHomeName, "overview", "hosts")

	url := "/monitoring/hosts?limit=10"
	require.NoError(t, st.UpsertDashletOverride(ctx, store.DashletOverrideRow{
		DashletID: dashletID, PaneID: paneID, Owner: "alice", URL: &url,
	}))

	d, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)
	pane, err := d.Pane("overview")
	require.NoError(t, err)
	dashlet, err := pane.Dashlet("hosts")
	require.NoError(t, err)
	assert.Equal(t, "/monitoring/hosts?limit=10", dashlet.URL)
	assert.True(t, dashlet.OverridesSystem)

	t.Run("empty row collected", func(t *testing.T) {
		require.NoError(t, st.UpsertDashletOverride(ctx, store.DashletOverrideRow{
			DashletID: dashletID, PaneID: paneID, Owner: "alice",
		}))

		_, err := e.LoadForUser(ctx, "alice", "")
		require.NoError(t, err)

		row, err := st.GetDashletOverride(ctx, dashletID, "alice")
		require.NoError(t, err)
		assert.Nil(t, row)
	})
}

func TestLegacyMigration(t *testing.T) {
	legacyDir := t.TempDir()
	writeLegacyConfig(t, legacyDir, "alice", `[tactical]
title = "Tactical Overview"

[tactical.problems]
url = "/monitoring/list/problems"
`)
	e, st := newTestEngine(t, legacyDir)
	ctx := context.Background()

	d, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	// The per-user home exists now and holds the migrated pane.
	userHome, err := d.Homes().ByName(dashboard.UserHomeName)
	require.NoError(t, err)
	assert.Equal(t, "alice", userHome.Owner)

	// The default home view does not show the migrated pane.
	assert.False(t, d.HasPane("tactical"))

	t.Run("visible under the user home", func(t *testing.T) {
		d, err := e.LoadForUser(ctx, "alice", dashboard.UserHomeName)
		require.NoError(t, err)
		require.True(t, d.HasPane("tactical"))
		pane, err := d.Pane("tactical")
		require.NoError(t, err)
		assert.Equal(t, "Tactical Overview", pane.Title)
		assert.True(t, pane.UserWidget)
		assert.True(t, pane.HasDashlet("problems"))

		// System panes are not mirrored into a non-default home.
		assert.False(t, d.HasPane("overview"))
	})

	t.Run("migration is idempotent", func(t *testing.T) {
		inserts := st.InsertCount()
		_, err := e.LoadForUser(ctx, "alice", "")
		require.NoError(t, err)
		assert.Equal(t, inserts, st.InsertCount())
	})

	t.Run("not visible to other users", func(t *testing.T) {
		d, err := e.LoadForUser(ctx, "bob", "")
		require.NoError(t, err)
		_, err = d.Homes().ByName(dashboard.UserHomeName)
		assert.True(t, dashboard.IsNotFound(err))
	})
}

func TestRequestedHomeUnknown(t *testing.T) {
	e, _ := newTestEngine(t, "")
	_, err := e.LoadForUser(context.Background(), "alice", "No Such Home")
	require.Error(t, err)
	assert.True(t, dashboard.IsNotFound(err))
}

func TestRemoveSystemPaneDisablesViaOverride(t *testing.T) {
	e, st := newTestEngine(t, "")
	ctx := context.Background()

	_, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	require.NoError(t, e.RemovePane(ctx, "alice", dashboard.DefaultHomeName, "overview"))

	// The shared row survives; alice sees the pane disabled.
	paneID := dashboard.DerivePaneID(dashboard.SystemOwner, dashboard.DefaultHomeName, "overview")
	row, err := st.GetPaneByID(ctx, paneID)
	require.NoError(t, err)
	require.NotNil(t, row)

	d, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)
	pane, err := d.Pane("overview")
	require.NoError(t, err)
	assert.True(t, pane.Disabled)

	t.Run("active pane falls back", func(t *testing.T) {
		p, err := d.ActivePane()
		require.NoError(t, err)
		assert.Equal(t, "reporting", p.Name)
		assert.Equal(t, dashboard.ActiveDefault, d.ActivePaneState())
	})

	t.Run("other users unaffected", func(t *testing.T) {
		d, err := e.LoadForUser(ctx, "bob", "")
		require.NoError(t, err)
		pane, err := d.Pane("overview")
		require.NoError(t, err)
		assert.False(t, pane.Disabled)
	})
}

func TestRemoveUserPaneDeletes(t *testing.T) {
	e, st := newTestEngine(t, "")
	ctx := context.Background()

	require.NoError(t, e.CreateDashlet(ctx, "alice", "", "mine", "d1", "D1", "/d1"))

	home, err := st.GetHomeByName(ctx, dashboard.DefaultHomeName, "")
	require.NoError(t, err)
	pane, err := st.FindPane(ctx, home.ID, "mine", "alice")
	require.NoError(t, err)
	require.NotNil(t, pane)

	require.NoError(t, e.RemovePane(ctx, "alice", dashboard.DefaultHomeName, "mine"))

	gone, err := st.GetPaneByID(ctx, pane.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRemoveDefaultHomeProtected(t *testing.T) {
	e, st := newTestEngine(t, "")
	ctx := context.Background()

	_, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	err = e.RemoveHome(ctx, "alice", dashboard.DefaultHomeName)
	assert.ErrorIs(t, err, dashboard.ErrHomeProtected)

	err = e.RenameHome(ctx, "alice", dashboard.DefaultHomeName, "Renamed")
	assert.ErrorIs(t, err, dashboard.ErrHomeProtected)

	home, err := st.GetHomeByName(ctx, dashboard.DefaultHomeName, "")
	require.NoError(t, err)
	assert.NotNil(t, home, "nothing was deleted")
}

func TestRemoveUserHomeCascades(t *testing.T) {
	legacyDir := t.TempDir()
	writeLegacyConfig(t, legacyDir, "alice", "[tactical]\n\n[tactical.d]\nurl = \"/d\"\n")
	e, st := newTestEngine(t, legacyDir)
	ctx := context.Background()

	_, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	require.NoError(t, e.RemoveHome(ctx, "alice", dashboard.UserHomeName))

	home, err := st.GetHomeByName(ctx, dashboard.UserHomeName, "alice")
	require.NoError(t, err)
	assert.Nil(t, home)
}

func TestRenamePaneMovesAcrossHomes(t *testing.T) {
	e, st := newTestEngine(t, "")
	ctx := context.Background()

	require.NoError(t, e.CreateDashlet(ctx, "alice", "", "mine", "d1", "D1", "/d1"))
	require.NoError(t, e.RenamePane(ctx, "alice", dashboard.DefaultHomeName, "mine", "moved", "Moved", "Ops"))

	// The target home was created on demand, owned by alice.
	ops, err := st.GetHomeByName(ctx, "Ops", "alice")
	require.NoError(t, err)
	require.NotNil(t, ops)

	d, err := e.LoadForUser(ctx, "alice", "Ops")
	require.NoError(t, err)
	require.True(t, d.HasPane("moved"))
	pane, err := d.Pane("moved")
	require.NoError(t, err)
	assert.Equal(t, "Moved", pane.Title)
	assert.True(t, pane.HasDashlet("d1"))

	t.Run("gone from the old home", func(t *testing.T) {
		d, err := e.LoadForUser(ctx, "alice", "")
		require.NoError(t, err)
		assert.False(t, d.HasPane("mine"))
		assert.False(t, d.HasPane("moved"))
	})
}

func TestRenameSystemPaneCreatesLabelOverride(t *testing.T) {
	e, st := newTestEngine(t, "")
	ctx := context.Background()

	_, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	require.NoError(t, e.RenamePane(ctx, "alice", dashboard.DefaultHomeName, "overview", "", "Renamed Overview", ""))

	paneID := dashboard.DerivePaneID(dashboard.SystemOwner, dashboard.DefaultHomeName, "overview")
	ov, err := st.GetPaneOverride(ctx, paneID, "alice")
	require.NoError(t, err)
	require.NotNil(t, ov)
	require.NotNil(t, ov.Label)
	assert.Equal(t, "Renamed Overview", *ov.Label)

	t.Run("moving a system pane is rejected", func(t *testing.T) {
		err := e.RenamePane(ctx, "alice", dashboard.DefaultHomeName, "overview", "", "", "Ops")
		assert.True(t, dashboard.IsProgrammingError(err))
	})
}

func TestCreateDashletInExistingUserPane(t *testing.T) {
	e, st := newTestEngine(t, "")
	ctx := context.Background()

	require.NoError(t, e.CreateDashlet(ctx, "alice", "", "mine", "d1", "D1", "/d1"))
	require.NoError(t, e.CreateDashlet(ctx, "alice", "", "mine", "d2", "D2", "/d2"))

	home, err := st.GetHomeByName(ctx, dashboard.DefaultHomeName, "")
	require.NoError(t, err)
	pane, err := st.FindPane(ctx, home.ID, "mine", "alice")
	require.NoError(t, err)
	require.NotNil(t, pane)

	dashlets, err := st.ListDashlets(ctx, pane.ID, "alice")
	require.NoError(t, err)
	assert.Len(t, dashlets, 2)

	t.Run("re-creating updates in place", func(t *testing.T) {
		require.NoError(t, e.CreateDashlet(ctx, "alice", "", "mine", "d1", "D1 v2", "/d1-v2"))
		dashlets, err := st.ListDashlets(ctx, pane.ID, "alice")
		require.NoError(t, err)
		require.Len(t, dashlets, 2)
	})

	t.Run("merged into the tree", func(t *testing.T) {
		d, err := e.LoadForUser(ctx, "alice", "")
		require.NoError(t, err)
		pane, err := d.Pane("mine")
		require.NoError(t, err)
		assert.True(t, pane.UserWidget)
		assert.Equal(t, dashboard.IDAssigned, pane.ID.Kind())
		assert.True(t, pane.HasDashlet("d1"))
		assert.True(t, pane.HasDashlet("d2"))
	})
}

func TestUpdateSystemDashletCreatesOverride(t *testing.T) {
	e, st := newTestEngine(t, "")
	ctx := context.Background()

	_, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	require.NoError(t, e.UpdateDashlet(ctx, "alice", dashboard.DefaultHomeName,
		"overview", "hosts", "", "/monitoring/hosts?acknowledged=0"))

	dashletID := dashboard.DeriveDashletID(dashboard.SystemOwner, dashboard.DefaultHomeName, "overview", "hosts")
	ov, err := st.GetDashletOverride(ctx, dashletID, "alice")
	require.NoError(t, err)
	require.NotNil(t, ov)
	assert.Nil(t, ov.Label)
	require.NotNil(t, ov.URL)
	assert.Equal(t, "/monitoring/hosts?acknowledged=0", *ov.URL)

	t.Run("no-change update writes nothing", func(t *testing.T) {
		require.NoError(t, st.DeleteDashletOverride(ctx, dashletID, "alice"))
		require.NoError(t, e.UpdateDashlet(ctx, "alice", dashboard.DefaultHomeName,
			"overview", "hosts", "Host Problems", "/monitoring/hosts"))
		ov, err := st.GetDashletOverride(ctx, dashletID, "alice")
		require.NoError(t, err)
		assert.Nil(t, ov)
	})
}

func TestRemoveSystemDashletDisablesViaOverride(t *testing.T) {
	e, _ := newTestEngine(t, "")
	ctx := context.Background()

	_, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	require.NoError(t, e.RemoveDashlet(ctx, "alice", dashboard.DefaultHomeName, "overview", "hosts"))

	d, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)
	pane, err := d.Pane("overview")
	require.NoError(t, err)
	dashlet, err := pane.Dashlet("hosts")
	require.NoError(t, err)
	assert.True(t, dashlet.Disabled)

	t.Run("other users unaffected", func(t *testing.T) {
		d, err := e.LoadForUser(ctx, "bob", "")
		require.NoError(t, err)
		pane, err := d.Pane("overview")
		require.NoError(t, err)
		dashlet, err := pane.Dashlet("hosts")
		require.NoError(t, err)
		assert.False(t, dashlet.Disabled)
	})
}

func TestStrayCloneIsCollected(t *testing.T) {
	e, st := newTestEngine(t, "")
	ctx := context.Background()

	_, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	// A leftover full copy of the system pane: user-owned, same
	// title, no dashlets. Old releases wrote these instead of
	// override rows.
	home, err := st.GetHomeByName(ctx, dashboard.DefaultHomeName, "")
	require.NoError(t, err)
	cloneID := dashboard.DerivePaneID("alice", dashboard.DefaultHomeName, "overview")
	_, err = st.InsertPane(ctx, store.PaneRow{
		ID:     cloneID,
		HomeID: home.ID,
		Name:   "overview",
		Label:  "Overview",
		Owner:  "alice",
		Source: store.SourcePrivate,
	})
	require.NoError(t, err)

	d, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	pane, err := d.Pane("overview")
	require.NoError(t, err)
	assert.False(t, pane.UserWidget, "the system pane survives untouched")

	row, err := st.GetPaneByID(ctx, cloneID)
	require.NoError(t, err)
	assert.Nil(t, row, "the stray clone row is deleted")
}

func TestPaneInOtherHomeNamedLikeSystemPaneSurvives(t *testing.T) {
	legacyDir := t.TempDir()
	writeLegacyConfig(t, legacyDir, "alice", "[overview]\ntitle = \"Overview\"\n")
	e, st := newTestEngine(t, legacyDir)
	ctx := context.Background()

	_, err := e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)

	// Same name and title as the system pane, but it lives in the user
	// home: a legitimate pane, not a clone to collect.
	paneID := dashboard.DerivePaneID("alice", dashboard.UserHomeName, "overview")
	row, err := st.GetPaneByID(ctx, paneID)
	require.NoError(t, err)
	require.NotNil(t, row)

	inserts := st.InsertCount()
	_, err = e.LoadForUser(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, inserts, st.InsertCount(), "reload must not re-migrate the pane")

	d, err := e.LoadForUser(ctx, "alice", dashboard.UserHomeName)
	require.NoError(t, err)
	pane, err := d.Pane("overview")
	require.NoError(t, err)
	assert.True(t, pane.UserWidget)
	assert.Equal(t, paneID, pane.ID)
}
