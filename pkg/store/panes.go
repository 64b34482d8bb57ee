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

// GetPaneByID returns the pane with the given id, or nil when absent.
func (s *Store) GetPaneByID(ctx context.Context, id dashboard.EntityID) (*PaneRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, home_id, name, label, owner, disabled, source
		FROM dashboard WHERE id = ?
	`, id.String())
	return scanPane(row)
}

// GetPane returns the pane with the given natural key, or nil when
// absent.
func (s *Store) GetPane(ctx context.Context, homeID int64, name, owner string) (*PaneRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, home_id, name, label, owner, disabled, source
		FROM dashboard
		WHERE home_id = ? AND name = ? AND COALESCE(owner, '') = ?
	`, homeID, name, owner)
	return scanPane(row)
}

// FindPane returns the pane with the given name visible to the user
// within a home (shared or owned), or nil when absent.
func (s *Store) FindPane(ctx context.Context, homeID int64, name, user string) (*PaneRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, home_id, name, label, owner, disabled, source
		FROM dashboard
		WHERE home_id = ? AND name = ? AND (owner IS NULL OR owner = ?)
		ORDER BY owner IS NULL
	`, homeID, name, user)
	return scanPane(row)
}

// ListPanes returns the panes of one home visible to the user: shared
// panes plus the user's own.
func (s *Store) ListPanes(ctx context.Context, homeID int64, user string) ([]PaneRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, home_id, name, label, owner, disabled, source
		FROM dashboard
		WHERE home_id = ? AND (owner IS NULL OR owner = ?)
		ORDER BY rowid
	`, homeID, user)
	if err != nil {
		return nil, fmt.Errorf("list panes: %w", err)
	}
	defer rows.Close()

	var panes []PaneRow
	for rows.Next() {
		p, err := scanPaneFromRows(rows)
		if err != nil {
			return nil, err
		}
		panes = append(panes, *p)
	}
	return panes, rows.Err()
}

// InsertPane inserts a pane row. A unique-constraint violation is
// resolved by re-reading the conflicting row, mirroring EnsureHome.
func (s *Store) InsertPane(ctx context.Context, p PaneRow) (PaneRow, error) {
	_, err := s.exec(ctx, nil, `
		INSERT INTO dashboard (id, home_id, name, label, owner, disabled, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID.String(), p.HomeID, p.Name, p.Label, nullable(p.Owner), p.Disabled, p.Source)
	if err != nil {
		if isUniqueViolation(err) {
			existing, rerr := s.GetPane(ctx, p.HomeID, p.Name, p.Owner)
			if rerr != nil {
				return PaneRow{}, rerr
			}
			if existing != nil {
				return *existing, nil
			}
		}
		return PaneRow{}, fmt.Errorf("insert pane %q: %w", p.Name, err)
	}
	return p, nil
}

// UpsertSystemPane mirrors one module-provided pane into the
// database: insert if the derived id is absent, otherwise update the
// label if it drifted from the manifest. Returns whether a row was
// created.
func (s *Store) UpsertSystemPane(ctx context.Context, p PaneRow) (bool, error) {
	existing, err := s.GetPaneByID(ctx, p.ID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		if _, err := s.InsertPane(ctx, p); err != nil {
			return false, err
		}
		return true, nil
	}

	if existing.Label != p.Label {
		if _, err := s.exec(ctx, nil,
			`UPDATE dashboard SET label = ? WHERE id = ?`,
			p.Label, p.ID.String()); err != nil {
			return false, fmt.Errorf("update pane label %q: %w", p.Name, err)
		}
		s.log.Debug("updated drifted pane label",
			"pane", p.Name, "label", p.Label, "previous", existing.Label)
	}
	return false, nil
}

// RenamePane updates a pane's name, label and home. Moving a pane to
// another home updates home_id, so a load scoped to the old home no
// longer returns it.
func (s *Store) RenamePane(ctx context.Context, id dashboard.EntityID, homeID int64, name, label string) error {
	_, err := s.exec(ctx, nil, `
		UPDATE dashboard SET home_id = ?, name = ?, label = ? WHERE id = ?
	`, homeID, name, label, id.String())
	if err != nil {
		return fmt.Errorf("rename pane %s: %w", id, err)
	}
	return nil
}

// SetPaneDisabled flips a pane's disabled flag.
func (s *Store) SetPaneDisabled(ctx context.Context, id dashboard.EntityID, disabled bool) error {
	_, err := s.exec(ctx, nil,
		`UPDATE dashboard SET disabled = ? WHERE id = ?`, disabled, id.String())
	if err != nil {
		return fmt.Errorf("set pane disabled %s: %w", id, err)
	}
	return nil
}

// DeletePane removes a pane row, its dashlets and all attached
// override rows in one transaction.
func (s *Store) DeletePane(ctx context.Context, id dashboard.EntityID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete pane: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`DELETE FROM dashlet_override WHERE dashboard_id = ?`,
		`DELETE FROM dashlet WHERE dashboard_id = ?`,
		`DELETE FROM dashboard_override WHERE dashboard_id = ?`,
		`DELETE FROM dashboard WHERE id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := s.exec(ctx, tx, stmt, id.String()); err != nil {
			return fmt.Errorf("delete pane %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func scanPane(row *sql.Row) (*PaneRow, error) {
	var p PaneRow
	var id string
	var owner sql.NullString
	err := row.Scan(&id, &p.HomeID, &p.Name, &p.Label, &owner, &p.Disabled, &p.Source)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan pane: %w", err)
	}
	p.ID = dashboard.ParseID(id)
	p.Owner = fromNull(owner)
	return &p, nil
}

func scanPaneFromRows(rows *sql.Rows) (*PaneRow, error) {
	var p PaneRow
	var id string
	var owner sql.NullString
	err := rows.Scan(&id, &p.HomeID, &p.Name, &p.Label, &owner, &p.Disabled, &p.Source)
	if err != nil {
		return nil, fmt.Errorf("scan pane: %w", err)
	}
	p.ID = dashboard.ParseID(id)
	p.Owner = fromNull(owner)
	return &p, nil
}
