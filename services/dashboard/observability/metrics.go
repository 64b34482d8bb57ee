// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the dashboard
// service.
//
// # Description
//
// Metrics cover the merge engine's per-request reconciliation work:
//   - Load counters and a load-duration histogram
//   - Override rows applied and garbage-collected, by entity kind
//   - Legacy INI files migrated into the database
//   - Active-pane resolutions by resolution source
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. All operations are
// thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "icingaweb"

// Subsystem for dashboard metrics
const dashboardSubsystem = "dashboard"

// Entity kinds used as metric labels.
const (
	KindPane    = "pane"
	KindDashlet = "dashlet"
)

// DashboardMetrics holds all Prometheus metrics for the merge engine.
// Initialize once at startup via InitMetrics().
type DashboardMetrics struct {
	// LoadsTotal counts dashboard loads by status.
	// Labels: status (success, error)
	LoadsTotal *prometheus.CounterVec

	// LoadDurationSeconds measures the full reconciliation duration of
	// one load, all four phases included.
	LoadDurationSeconds prometheus.Histogram

	// OverridesAppliedTotal counts override rows applied during merges.
	// Labels: kind (pane, dashlet)
	OverridesAppliedTotal *prometheus.CounterVec

	// OverridesCollectedTotal counts empty override rows
	// garbage-collected during merges.
	// Labels: kind (pane, dashlet)
	OverridesCollectedTotal *prometheus.CounterVec

	// LegacyMigrationsTotal counts legacy INI panes migrated into the
	// database.
	LegacyMigrationsTotal prometheus.Counter

	// ActivePaneResolutionsTotal counts active-pane resolutions by
	// source.
	// Labels: source (sticky_tab, request_param, default, error)
	ActivePaneResolutionsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance of DashboardMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *DashboardMetrics

// InitMetrics creates and registers all Prometheus metrics. Call once
// at application startup; a second call panics on duplicate
// registration.
func InitMetrics() *DashboardMetrics {
	DefaultMetrics = &DashboardMetrics{
		LoadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: dashboardSubsystem,
				Name:      "loads_total",
				Help:      "Total dashboard loads by status",
			},
			[]string{"status"},
		),

		LoadDurationSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: dashboardSubsystem,
				Name:      "load_duration_seconds",
				Help:      "Duration of one full dashboard reconciliation",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
		),

		OverridesAppliedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: dashboardSubsystem,
				Name:      "overrides_applied_total",
				Help:      "Override rows applied during merges by entity kind",
			},
			[]string{"kind"},
		),

		OverridesCollectedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: dashboardSubsystem,
				Name:      "overrides_collected_total",
				Help:      "Empty override rows garbage-collected during merges by entity kind",
			},
			[]string{"kind"},
		),

		LegacyMigrationsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: dashboardSubsystem,
				Name:      "legacy_migrations_total",
				Help:      "Legacy INI panes migrated into the database",
			},
		),

		ActivePaneResolutionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: dashboardSubsystem,
				Name:      "active_pane_resolutions_total",
				Help:      "Active-pane resolutions by resolution source",
			},
			[]string{"source"},
		),
	}

	return DefaultMetrics
}

// RecordLoad records one completed dashboard load.
func (m *DashboardMetrics) RecordLoad(seconds float64, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	m.LoadsTotal.WithLabelValues(status).Inc()
	m.LoadDurationSeconds.Observe(seconds)
}

// RecordOverrideApplied records one override row applied to a merged
// entity.
func (m *DashboardMetrics) RecordOverrideApplied(kind string) {
	if m == nil {
		return
	}
	m.OverridesAppliedTotal.WithLabelValues(kind).Inc()
}

// RecordOverrideCollected records one empty override row deleted.
func (m *DashboardMetrics) RecordOverrideCollected(kind string) {
	if m == nil {
		return
	}
	m.OverridesCollectedTotal.WithLabelValues(kind).Inc()
}

// RecordLegacyMigration records legacy panes written to the database.
func (m *DashboardMetrics) RecordLegacyMigration(panes int) {
	if m == nil {
		return
	}
	m.LegacyMigrationsTotal.Add(float64(panes))
}

// RecordActivePaneResolution records how the active pane was decided.
func (m *DashboardMetrics) RecordActivePaneResolution(source string) {
	if m == nil {
		return
	}
	m.ActivePaneResolutionsTotal.WithLabelValues(source).Inc()
}
