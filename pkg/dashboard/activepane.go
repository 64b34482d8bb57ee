// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

// ActivePaneState names the states of the active-pane resolver.
type ActivePaneState int

const (
	// ActiveUnresolved is the initial state before the first access.
	ActiveUnresolved ActivePaneState = iota

	// ActiveFromStickyTab means a previously activated tab decided.
	ActiveFromStickyTab

	// ActiveFromRequestParam means the request's pane parameter decided.
	ActiveFromRequestParam

	// ActiveDefault means the first non-disabled pane was picked.
	ActiveDefault

	// ActiveFailed is the terminal error state: no pane could be
	// determined at all.
	ActiveFailed
)

func (s ActivePaneState) String() string {
	switch s {
	case ActiveUnresolved:
		return "unresolved"
	case ActiveFromStickyTab:
		return "sticky_tab"
	case ActiveFromRequestParam:
		return "request_param"
	case ActiveDefault:
		return "default"
	case ActiveFailed:
		return "error"
	default:
		return "unknown"
	}
}

// activePaneResolver is the per-request tab state machine. Resolution
// happens lazily on first access and is then memoized for the rest of
// the request.
type activePaneResolver struct {
	stickyTab     string
	requestedPane string

	state ActivePaneState
	name  string
	err   error
}

// SetStickyTab records the tab the UI session already had activated.
// Takes precedence over everything else.
func (d *Dashboard) SetStickyTab(name string) {
	d.resolver.stickyTab = name
}

// SetRequestedPane records the request's explicit pane selector.
func (d *Dashboard) SetRequestedPane(name string) {
	d.resolver.requestedPane = name
}

// ActivePaneState returns the resolver state without forcing a
// resolution.
func (d *Dashboard) ActivePaneState() ActivePaneState {
	return d.resolver.state
}

// ActivePane determines the pane to render for this request.
//
// Resolution order: sticky tab, explicit request parameter, first
// non-disabled resident pane. A request parameter naming an
// inexistent pane is a caller bug and yields a ProgrammingError; an
// empty or fully disabled tree yields a ConfigurationError. The
// outcome, success or failure, is memoized: repeated calls within one
// request return the same result without re-resolving.
func (d *Dashboard) ActivePane() (*Pane, error) {
	if d.resolver.state != ActiveUnresolved {
		if d.resolver.err != nil {
			return nil, d.resolver.err
		}
		// The resolved pane may have been removed from the tree since
		// the first resolution.
		if p, ok := d.panes[d.resolver.name]; ok {
			return p, nil
		}
		return nil, Programmingf("active pane %q is no longer part of the dashboard", d.resolver.name)
	}

	r := &d.resolver
	switch {
	case r.stickyTab != "":
		r.name = r.stickyTab
		r.state = ActiveFromStickyTab

	case r.requestedPane != "":
		if !d.HasPane(r.requestedPane) {
			r.state = ActiveFailed
			r.err = Programmingf("tried to activate inexistent pane %q", r.requestedPane)
			return nil, r.err
		}
		r.name = r.requestedPane
		r.state = ActiveFromRequestParam

	default:
		for _, name := range d.order {
			if !d.panes[name].Disabled {
				r.name = name
				r.state = ActiveDefault
				break
			}
		}
	}

	if p, ok := d.panes[r.name]; ok && r.name != "" {
		return p, nil
	}

	r.state = ActiveFailed
	r.err = Configurationf("could not determine active pane")
	return nil, r.err
}
