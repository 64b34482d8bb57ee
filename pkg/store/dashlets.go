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

// GetDashletByID returns the dashlet with the given id, or nil when
// absent.
func (s *Store) GetDashletByID(ctx context.Context, id dashboard.EntityID) (*DashletRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, dashboard_id, owner, name, label, url, disabled
		FROM dashlet WHERE id = ?
	`, id.String())
	return scanDashlet(row)
}

// FindDashlet returns the dashlet with the given name visible to the
// user within a pane, or nil when absent.
func (s *Store) FindDashlet(ctx context.Context, paneID dashboard.EntityID, name, user string) (*DashletRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, dashboard_id, owner, name, label, url, disabled
		FROM dashlet
		WHERE dashboard_id = ? AND name = ? AND (owner IS NULL OR owner = ?)
		ORDER BY owner IS NULL
	`, paneID.String(), name, user)
	return scanDashlet(row)
}

// ListDashlets returns the dashlets of one pane visible to the user:
// shared dashlets plus the user's own.
func (s *Store) ListDashlets(ctx context.Context, paneID dashboard.EntityID, user string) ([]DashletRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dashboard_id, owner, name, label, url, disabled
		FROM dashlet
		WHERE dashboard_id = ? AND (owner IS NULL OR owner = ?)
		ORDER BY rowid
	`, paneID.String(), user)
	if err != nil {
		return nil, fmt.Errorf("list dashlets: %w", err)
	}
	defer rows.Close()

	var dashlets []DashletRow
	for rows.Next() {
		var d DashletRow
		var id, paneID string
		var owner sql.NullString
		if err := rows.Scan(&id, &paneID, &owner, &d.Name, &d.Label, &d.URL, &d.Disabled); err != nil {
			return nil, fmt.Errorf("scan dashlet: %w", err)
		}
		d.ID = dashboard.ParseID(id)
		d.PaneID = dashboard.ParseID(paneID)
		d.Owner = fromNull(owner)
		dashlets = append(dashlets, d)
	}
	return dashlets, rows.Err()
}

// EnsureDashlet inserts a dashlet row if its id is absent. Returns
// whether a row was created. A unique-constraint race resolves to the
// concurrently created row, making re-runs of the migration and the
// system mirror idempotent.
func (s *Store) EnsureDashlet(ctx context.Context, d DashletRow) (bool, error) {
	existing, err := s.GetDashletByID(ctx, d.ID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	_, err = s.exec(ctx, nil, `
		INSERT INTO dashlet (id, dashboard_id, owner, name, label, url, disabled)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.ID.String(), d.PaneID.String(), nullable(d.Owner), d.Name, d.Label, d.URL, d.Disabled)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert dashlet %q: %w", d.Name, err)
	}
	return true, nil
}

// InsertDashlet inserts a dashlet created interactively.
func (s *Store) InsertDashlet(ctx context.Context, d DashletRow) error {
	_, err := s.exec(ctx, nil, `
		INSERT INTO dashlet (id, dashboard_id, owner, name, label, url, disabled)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.ID.String(), d.PaneID.String(), nullable(d.Owner), d.Name, d.Label, d.URL, d.Disabled)
	if err != nil {
		return fmt.Errorf("insert dashlet %q: %w", d.Name, err)
	}
	return nil
}

// UpdateDashlet updates a dashlet's pane, label and url.
func (s *Store) UpdateDashlet(ctx context.Context, id, paneID dashboard.EntityID, label, url string) error {
	_, err := s.exec(ctx, nil, `
		UPDATE dashlet SET dashboard_id = ?, label = ?, url = ? WHERE id = ?
	`, paneID.String(), label, url, id.String())
	if err != nil {
		return fmt.Errorf("update dashlet %s: %w", id, err)
	}
	return nil
}

// SetDashletDisabled flips a dashlet's disabled flag.
func (s *Store) SetDashletDisabled(ctx context.Context, id dashboard.EntityID, disabled bool) error {
	_, err := s.exec(ctx, nil,
		`UPDATE dashlet SET disabled = ? WHERE id = ?`, disabled, id.String())
	if err != nil {
		return fmt.Errorf("set dashlet disabled %s: %w", id, err)
	}
	return nil
}

// DeleteDashlet removes a dashlet row and its override rows.
func (s *Store) DeleteDashlet(ctx context.Context, id dashboard.EntityID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete dashlet: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.exec(ctx, tx,
		`DELETE FROM dashlet_override WHERE dashlet_id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete dashlet overrides %s: %w", id, err)
	}
	if _, err := s.exec(ctx, tx,
		`DELETE FROM dashlet WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete dashlet %s: %w", id, err)
	}
	return tx.Commit()
}

func scanDashlet(row *sql.Row) (*DashletRow, error) {
	var d DashletRow
	var id, paneID string
	var owner sql.NullString
	err := row.Scan(&id, &paneID, &owner, &d.Name, &d.Label, &d.URL, &d.Disabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan dashlet: %w", err)
	}
	d.ID = dashboard.ParseID(id)
	d.PaneID = dashboard.ParseID(paneID)
	d.Owner = fromNull(owner)
	return &d, nil
}
