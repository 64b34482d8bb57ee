// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fcolledani-solari/icingaweb2/services/dashboard/handlers"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/middleware"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/observability"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/services"
)

// SetupRoutes wires the dashboard API onto the router. metrics may be
// nil when metrics are disabled.
func SetupRoutes(router *gin.Engine, engine *services.Engine, metrics *observability.DashboardMetrics) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group; every route is owner-scoped and requires
	// the remote-user identity.
	v1 := router.Group("/v1", middleware.WithRequestID(), middleware.RemoteUser())
	{
		v1.GET("/dashboard", handlers.GetDashboard(engine, metrics))
		v1.POST("/dashlets", handlers.CreateDashlet(engine))

		homes := v1.Group("/homes/:home")
		{
			homes.DELETE("", handlers.RemoveHome(engine))
			homes.POST("/rename", handlers.RenameHome(engine))

			panes := homes.Group("/panes/:pane")
			{
				panes.DELETE("", handlers.RemovePane(engine))
				panes.POST("/rename", handlers.RenamePane(engine))
				panes.PUT("/dashlets/:dashlet", handlers.UpdateDashlet(engine))
				panes.DELETE("/dashlets/:dashlet", handlers.RemoveDashlet(engine))
			}
		}
	}
}
