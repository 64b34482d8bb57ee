// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"github.com/fcolledani-solari/icingaweb2/pkg/dashboard"
)

// DashletResponse is one dashlet in the merged tree.
type DashletResponse struct {
	Name            string `json:"name"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	Disabled        bool   `json:"disabled,omitempty"`
	UserWidget      bool   `json:"user_widget,omitempty"`
	OverridesSystem bool   `json:"overrides_system,omitempty"`
}

// PaneResponse is one pane in the merged tree.
type PaneResponse struct {
	Name            string            `json:"name"`
	Title           string            `json:"title"`
	Disabled        bool              `json:"disabled,omitempty"`
	UserWidget      bool              `json:"user_widget,omitempty"`
	OverridesSystem bool              `json:"overrides_system,omitempty"`
	Dashlets        []DashletResponse `json:"dashlets"`
}

// HomeResponse is one home visible to the user.
type HomeResponse struct {
	Name   string `json:"name"`
	Shared bool   `json:"shared"`
}

// DashboardResponse is the merged dashboard for one request.
//
// ActivePane is empty and Degraded carries a message when no active
// pane could be determined; the tree is still returned so the UI can
// render the home list.
type DashboardResponse struct {
	Homes      []HomeResponse `json:"homes"`
	ActiveHome string         `json:"active_home"`
	ActivePane string         `json:"active_pane,omitempty"`
	Degraded   string         `json:"degraded,omitempty"`
	Panes      []PaneResponse `json:"panes"`
}

// NewDashboardResponse flattens a merged tree into its wire form.
func NewDashboardResponse(d *dashboard.Dashboard, activeHome string) DashboardResponse {
	resp := DashboardResponse{
		ActiveHome: activeHome,
		Panes:      []PaneResponse{},
	}
	for _, h := range d.Homes().Homes() {
		resp.Homes = append(resp.Homes, HomeResponse{
			Name:   h.Name,
			Shared: h.Owner == "",
		})
	}
	for _, p := range d.Panes() {
		pane := PaneResponse{
			Name:            p.Name,
			Title:           p.Title,
			Disabled:        p.Disabled,
			UserWidget:      p.UserWidget,
			OverridesSystem: p.OverridesSystem,
			Dashlets:        []DashletResponse{},
		}
		for _, dl := range p.Dashlets() {
			pane.Dashlets = append(pane.Dashlets, DashletResponse{
				Name:            dl.Name,
				Title:           dl.Title,
				URL:             dl.URL,
				Disabled:        dl.Disabled,
				UserWidget:      dl.UserWidget,
				OverridesSystem: dl.OverridesSystem,
			})
		}
		resp.Panes = append(resp.Panes, pane)
	}
	return resp
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
