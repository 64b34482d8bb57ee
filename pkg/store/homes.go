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
)

// EnsureHome returns the home with the given natural key, creating it
// if absent. The insert-if-absent sequence runs in a transaction; a
// unique-constraint violation means another request created the home
// concurrently, in which case the fresh row is re-read and returned.
func (s *Store) EnsureHome(ctx context.Context, name, owner string) (HomeRow, error) {
	if h, err := s.GetHomeByName(ctx, name, owner); err != nil {
		return HomeRow{}, err
	} else if h != nil {
		return *h, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return HomeRow{}, fmt.Errorf("begin ensure home: %w", err)
	}
	defer tx.Rollback()

	res, err := s.exec(ctx, tx,
		`INSERT INTO dashboard_home (name, owner) VALUES (?, ?)`,
		name, nullable(owner))
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the race; the row exists now.
			tx.Rollback()
			h, rerr := s.GetHomeByName(ctx, name, owner)
			if rerr != nil {
				return HomeRow{}, rerr
			}
			if h == nil {
				return HomeRow{}, fmt.Errorf("ensure home %q: row vanished after conflict", name)
			}
			return *h, nil
		}
		return HomeRow{}, fmt.Errorf("insert home %q: %w", name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return HomeRow{}, fmt.Errorf("home insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return HomeRow{}, fmt.Errorf("commit ensure home: %w", err)
	}

	s.log.Debug("created dashboard home", "name", name, "owner", owner, "id", id)
	return HomeRow{ID: id, Name: name, Owner: owner}, nil
}

// GetHomeByName returns the home with the given natural key, or nil
// when absent.
func (s *Store) GetHomeByName(ctx context.Context, name, owner string) (*HomeRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, owner FROM dashboard_home
		WHERE name = ? AND COALESCE(owner, '') = ?
	`, name, owner)
	return scanHome(row)
}

// GetHomeByID returns the home with the given id, or nil when absent.
func (s *Store) GetHomeByID(ctx context.Context, id int64) (*HomeRow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, owner FROM dashboard_home WHERE id = ?`, id)
	return scanHome(row)
}

// ListHomes returns the homes visible to one user: shared homes plus
// the user's own, in creation order.
func (s *Store) ListHomes(ctx context.Context, user string) ([]HomeRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, owner FROM dashboard_home
		WHERE owner IS NULL OR owner = ?
		ORDER BY id
	`, user)
	if err != nil {
		return nil, fmt.Errorf("list homes: %w", err)
	}
	defer rows.Close()

	var homes []HomeRow
	for rows.Next() {
		var h HomeRow
		var owner sql.NullString
		if err := rows.Scan(&h.ID, &h.Name, &owner); err != nil {
			return nil, fmt.Errorf("scan home: %w", err)
		}
		h.Owner = fromNull(owner)
		homes = append(homes, h)
	}
	return homes, rows.Err()
}

// RenameHome updates a home's name.
func (s *Store) RenameHome(ctx context.Context, id int64, name string) error {
	_, err := s.exec(ctx, nil,
		`UPDATE dashboard_home SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("rename home %d: %w", id, err)
	}
	return nil
}

// DeleteHome removes a home and everything beneath it: dashlet
// overrides, dashlets, pane overrides, panes, then the home row
// itself, all in one transaction.
func (s *Store) DeleteHome(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete home: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`DELETE FROM dashlet_override WHERE dashboard_id IN
			(SELECT id FROM dashboard WHERE home_id = ?)`,
		`DELETE FROM dashlet WHERE dashboard_id IN
			(SELECT id FROM dashboard WHERE home_id = ?)`,
		`DELETE FROM dashboard_override WHERE home_id = ?`,
		`DELETE FROM dashboard WHERE home_id = ?`,
		`DELETE FROM dashboard_home WHERE id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := s.exec(ctx, tx, stmt, id); err != nil {
			return fmt.Errorf("delete home %d: %w", id, err)
		}
	}
	return tx.Commit()
}

func scanHome(row *sql.Row) (*HomeRow, error) {
	var h HomeRow
	var owner sql.NullString
	if err := row.Scan(&h.ID, &h.Name, &owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan home: %w", err)
	}
	h.Owner = fromNull(owner)
	return &h, nil
}
