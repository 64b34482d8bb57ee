// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fcolledani-solari/icingaweb2/pkg/dashboard"
)

// GetPaneOverride returns the user's override row for a pane, or nil
// when the pane is uncustomized.
func (s *Store) GetPaneOverride(ctx context.Context, paneID dashboard.EntityID, owner string) (*PaneOverrideRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT dashboard_id, home_id, owner, label, disabled
		FROM dashboard_override
		WHERE dashboard_id = ? AND owner = ?
	`, paneID.String(), owner)

	var o PaneOverrideRow
	var id string
	var label sql.NullString
	err := row.Scan(&id, &o.HomeID, &o.Owner, &label, &o.Disabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan pane override: %w", err)
	}
	o.PaneID = dashboard.ParseID(id)
	if label.Valid {
		o.Label = &label.String
	}
	return &o, nil
}

// UpsertPaneOverride writes the user's override row for a pane,
// replacing any previous customization.
func (s *Store) UpsertPaneOverride(ctx context.Context, o PaneOverrideRow) error {
	var label sql.NullString
	if o.Label != nil {
		label = sql.NullString{String: *o.Label, Valid: true}
	}
	_, err := s.exec(ctx, nil, `
		INSERT INTO dashboard_override (dashboard_id, home_id, owner, label, disabled)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (dashboard_id, owner)
		DO UPDATE SET home_id = excluded.home_id, label = excluded.label,
			disabled = excluded.disabled
	`, o.PaneID.String(), o.HomeID, o.Owner, label, o.Disabled)
	if err != nil {
		return fmt.Errorf("upsert pane override %s: %w", o.PaneID, err)
	}
	return nil
}

// DeletePaneOverride garbage-collects the user's override row for a
// pane.
func (s *Store) DeletePaneOverride(ctx context.Context, paneID dashboard.EntityID, owner string) error {
	_, err := s.exec(ctx, nil, `
		DELETE FROM dashboard_override WHERE dashboard_id = ? AND owner = ?
	`, paneID.String(), owner)
	if err != nil {
		return fmt.Errorf("delete pane override %s: %w", paneID, err)
	}
	return nil
}

// GetDashletOverride returns the user's override row for a dashlet,
// or nil when the dashlet is uncustomized.
func (s *Store) GetDashletOverride(ctx context.Context, dashletID dashboard.EntityID, owner string) (*DashletOverrideRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT dashlet_id, dashboard_id, owner, label, url, disabled
		FROM dashlet_override
		WHERE dashlet_id = ? AND owner = ?
	`, dashletID.String(), owner)

	var o DashletOverrideRow
	var id, paneID string
	var label, url sql.NullString
	err := row.Scan(&id, &paneID, &o.Owner, &label, &url, &o.Disabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan dashlet override: %w", err)
	}
	o.DashletID = dashboard.ParseID(id)
	o.PaneID = dashboard.ParseID(paneID)
	if label.Valid {
		o.Label = &label.String
	}
	if url.Valid {
		o.URL = &url.String
	}
	return &o, nil
}

// UpsertDashletOverride writes the user's override row for a dashlet,
// replacing any previous customization.
func (s *Store) UpsertDashletOverride(ctx context.Context, o DashletOverrideRow) error {
	var label, url sql.NullString
	if o.Label != nil {
		label = sql.NullString{String: *o.Label, Valid: true}
	}
	if o.URL != nil {
		url = sql.NullString{String: *o.URL, Valid: true}
	}
	_, err := s.exec(ctx, nil, `
		INSERT INTO dashlet_override (dashlet_id, dashboard_id, owner, label, url, disabled)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (dashlet_id, owner)
		DO UPDATE SET dashboard_id = excluded.dashboard_id, label = excluded.label,
			url = excluded.url, disabled = excluded.disabled
	`, o.DashletID.String(), o.PaneID.String(), o.Owner, label, url, o.Disabled)
	if err != nil {
		return fmt.Errorf("upsert dashlet override %s: %w", o.DashletID, err)
	}
	return nil
}

// DeleteDashletOverride garbage-collects the user's override row for
// a dashlet.
func (s *Store) DeleteDashletOverride(ctx context.Context, dashletID dashboard.EntityID, owner string) error {
	_, err := s.exec(ctx, nil, `
		DELETE FROM dashlet_override WHERE dashlet_id = ? AND owner = ?
	`, dashletID.String(), owner)
	if err != nil {
		return fmt.Errorf("delete dashlet override %s: %w", dashletID, err)
	}
	return nil
}
