// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the HTTP handlers of the dashboard
// service.
//
// Handlers are thin: they bind and validate the request, delegate to
// the merge engine, and translate the engine's error taxonomy to HTTP
// status codes. NotFound maps to 404, the protected-home warning to
// 403, configuration problems degrade the response instead of failing
// it, and everything else is a 500.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fcolledani-solari/icingaweb2/pkg/dashboard"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/datatypes"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/middleware"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/observability"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/services"
)

// StickyTabHeader carries the tab the UI already had activated. It
// takes precedence over the pane query parameter.
const StickyTabHeader = "X-Dashboard-Tab"

// GetDashboard returns the merged dashboard tree for the current
// user.
//
// Query parameters: home selects the home to render, pane the tab to
// activate; the X-Dashboard-Tab header pins the tab across requests.
// An unresolvable active pane yields a degraded 200, not an error:
// the home list is still useful to the UI.
func GetDashboard(engine *services.Engine, metrics *observability.DashboardMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		requestedHome := c.Query("home")

		d, err := engine.LoadForUser(c.Request.Context(), user, requestedHome)
		if err != nil {
			respondError(c, err)
			return
		}

		if pane := c.Query("pane"); pane != "" {
			d.SetRequestedPane(pane)
		}
		// A stale tab naming a pane that is gone falls back to the
		// normal resolution ladder.
		if sticky := c.GetHeader(StickyTabHeader); sticky != "" && d.HasPane(sticky) {
			d.SetStickyTab(sticky)
		}

		resp := datatypes.NewDashboardResponse(d, activeHomeName(d, requestedHome))
		active, err := d.ActivePane()
		metrics.RecordActivePaneResolution(d.ActivePaneState().String())
		switch {
		case err == nil:
			resp.ActivePane = active.Name
		case dashboard.IsConfigurationError(err):
			resp.Degraded = err.Error()
		default:
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// CreateDashlet creates a dashlet, creating the target home and pane
// on demand.
func CreateDashlet(engine *services.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CreateDashletRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		user := middleware.CurrentUser(c)
		err := engine.CreateDashlet(c.Request.Context(), user,
			req.Home, req.Pane, req.Name, req.Title, req.URL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	}
}

// UpdateDashlet updates a dashlet's title and url. Shared system
// dashlets are customized through an override row, user-owned ones
// in place.
func UpdateDashlet(engine *services.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.UpdateDashletRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		user := middleware.CurrentUser(c)
		err := engine.UpdateDashlet(c.Request.Context(), user,
			c.Param("home"), c.Param("pane"), c.Param("dashlet"),
			req.Title, req.URL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RemoveDashlet removes a dashlet: hard delete for the user's own,
// disable-via-override for shared system dashlets.
func RemoveDashlet(engine *services.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		err := engine.RemoveDashlet(c.Request.Context(), user,
			c.Param("home"), c.Param("pane"), c.Param("dashlet"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RemovePane removes a pane: hard delete for the user's own,
// disable-via-override for shared system panes.
func RemovePane(engine *services.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		err := engine.RemovePane(c.Request.Context(), user,
			c.Param("home"), c.Param("pane"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RenamePane renames a pane and optionally moves it to another home.
func RenamePane(engine *services.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.RenamePaneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		user := middleware.CurrentUser(c)
		err := engine.RenamePane(c.Request.Context(), user,
			c.Param("home"), c.Param("pane"),
			req.Name, req.Title, req.TargetHome)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RemoveHome removes a home and everything beneath it. The default
// home is protected.
func RemoveHome(engine *services.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if err := engine.RemoveHome(c.Request.Context(), user, c.Param("home")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RenameHome renames a home. The default home is protected.
func RenameHome(engine *services.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.RenameHomeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		user := middleware.CurrentUser(c)
		err := engine.RenameHome(c.Request.Context(), user, c.Param("home"), req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// respondError maps the engine's error taxonomy to HTTP.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dashboard.ErrHomeProtected):
		c.JSON(http.StatusForbidden, datatypes.ErrorResponse{Error: err.Error()})
	case dashboard.IsNotFound(err):
		c.JSON(http.StatusNotFound, datatypes.ErrorResponse{Error: err.Error()})
	case dashboard.IsProgrammingError(err):
		slog.Error("programming error in dashboard request",
			"request_id", middleware.RequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, datatypes.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("dashboard request failed",
			"request_id", middleware.RequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError,
			datatypes.ErrorResponse{Error: "internal error"})
	}
}

// activeHomeName resolves the name shown as active: the explicit
// request, or the first visible home.
func activeHomeName(d *dashboard.Dashboard, requested string) string {
	if requested != "" {
		return requested
	}
	if h, err := d.Homes().Default(); err == nil {
		return h.Name
	}
	return ""
}
