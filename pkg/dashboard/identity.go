// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
)

// SystemOwner is the fixed owner key used to derive identifiers for
// module-provided entities. Every user resolves a system pane or dashlet
// to the same id, which is what lets per-user override rows attach to
// shared rows instead of copying them.
const SystemOwner = "system"

// IDKind distinguishes how an EntityID was produced.
type IDKind uint8

const (
	// IDUnset is the zero EntityID. Entities with an unset id must not
	// participate in a merge.
	IDUnset IDKind = iota

	// IDDerived ids are content-addressed: a hash over the entity's
	// owner/home/pane[/dashlet] name path. Stable across reloads.
	IDDerived

	// IDAssigned ids come from the persistence gateway's sequence and
	// are used for entities created interactively by a user.
	IDAssigned
)

// EntityID is an opaque identifier for homes' panes and dashlets.
//
// Two kinds coexist: derived (hash) and assigned (sequence). Both are
// compared only by equality; numeric ordering of assigned ids carries
// no meaning and must not be relied upon.
type EntityID struct {
	kind IDKind
	text string
}

// DerivedID wraps a raw hash sum as a derived EntityID.
func DerivedID(sum []byte) EntityID {
	return EntityID{kind: IDDerived, text: hex.EncodeToString(sum)}
}

// AssignedID wraps a gateway-assigned sequence value as an EntityID.
func AssignedID(seq int64) EntityID {
	return EntityID{kind: IDAssigned, text: strconv.FormatInt(seq, 10)}
}

// ParseID reconstructs an EntityID from its persisted text form.
// All-digit values are classified as assigned, everything else as
// derived. An empty string yields the zero id.
func ParseID(s string) EntityID {
	if s == "" {
		return EntityID{}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return EntityID{kind: IDDerived, text: s}
		}
	}
	return EntityID{kind: IDAssigned, text: s}
}

// String returns the persisted text form of the id.
func (id EntityID) String() string {
	return id.text
}

// Kind returns the id's provenance.
func (id EntityID) Kind() IDKind {
	return id.kind
}

// IsZero reports whether the id is unset.
func (id EntityID) IsZero() bool {
	return id.kind == IDUnset
}

// derive hashes a name path into a derived EntityID. Path elements are
// NUL-joined so ("a", "bc") and ("ab", "c") cannot collide.
func derive(parts ...string) EntityID {
	sum := sha1.Sum([]byte(strings.Join(parts, "\x00")))
	return DerivedID(sum[:])
}

// DerivePaneID computes the deterministic id of a pane from its
// owner key, home name and pane name.
func DerivePaneID(ownerKey, homeName, paneName string) EntityID {
	return derive(ownerKey, homeName, paneName)
}

// DeriveDashletID computes the deterministic id of a dashlet from its
// owner key, home name, pane name and dashlet name.
func DeriveDashletID(ownerKey, homeName, paneName, dashletName string) EntityID {
	return derive(ownerKey, homeName, paneName, dashletName)
}
