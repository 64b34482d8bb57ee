// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command icingaweb runs the dashboard service: the per-user
// reconciliation engine over system panes, database rows and legacy
// INI files, fronted by an HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/fcolledani-solari/icingaweb2/pkg/logging"
	"github.com/fcolledani-solari/icingaweb2/pkg/navigation"
	"github.com/fcolledani-solari/icingaweb2/pkg/store"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/config"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/datatypes"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/observability"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/routes"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/services"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "icingaweb",
		Short:         "Icinga Web dashboard service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd())
	return root
}

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "/etc/icingaweb2/dashboard.yml",
		"path to the service configuration file")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Log.Level),
		LogDir:  cfg.Log.Dir,
		Service: "dashboard",
	})
	defer logger.Close()
	log := logger.Slog()

	st, err := store.Open(store.Config{Path: cfg.Database, Logger: log})
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var provider navigation.Provider = &navigation.StaticProvider{}
	if cfg.ModulesDir != "" {
		mp := navigation.NewModuleProvider(cfg.ModulesDir)
		provider = mp
		if cfg.WatchModules {
			go func() {
				if err := mp.Watch(ctx, log); err != nil && !errors.Is(err, context.Canceled) {
					log.Warn("module manifest watcher stopped", "error", err)
				}
			}()
		}
	}

	metrics := observability.InitMetrics()
	engine := services.NewEngine(st, provider, cfg.LegacyDir, log, metrics)

	if err := datatypes.RegisterValidations(); err != nil {
		return fmt.Errorf("register validations: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	routes.SetupRoutes(router, engine, metrics)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("dashboard service listening", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
