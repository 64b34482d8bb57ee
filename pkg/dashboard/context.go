// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

// MergeContext carries the request-scoped state a merge operates
// under. It is passed explicitly; nothing in this package reads
// ambient request or session state.
type MergeContext struct {
	// User is the current username. All owner-scoped lookups use it.
	User string

	// RequestedHome is the home name from the request, empty when the
	// request did not select a home explicitly.
	RequestedHome string

	// ActiveHomeID restricts the merged tree to one home when
	// non-zero. Panes of other homes are skipped during the merge and
	// removed by the post-merge filter pass.
	ActiveHomeID int64
}

// HomeFiltered reports whether an active-home filter is in effect.
func (c MergeContext) HomeFiltered() bool {
	return c.ActiveHomeID != 0
}
