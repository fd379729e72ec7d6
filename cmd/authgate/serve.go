// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/auth"
	authpg "github.com/authgate/authgate/internal/auth/postgres"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/httpapi"
	"github.com/authgate/authgate/internal/logging"
	"github.com/authgate/authgate/internal/observability"
	"github.com/authgate/authgate/internal/store"
)

const shutdownTimeout = 10 * time.Second

// newServeCmd creates the serve subcommand with all flags configured.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication API server",
		Long: `Start the HTTP authentication server and its observability
endpoints, connect to PostgreSQL and serve until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("listen-addr", ":3000", "API listen address")
	cmd.Flags().String("metrics-addr", ":9100", "metrics/health HTTP address")
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	cmd.Flags().String("jwt-secret", "", "session token signing secret")
	cmd.Flags().Duration("token-ttl", auth.DefaultTokenTTL, "session token lifetime")
	cmd.Flags().Duration("cookie-max-age", time.Hour, "session cookie max age")
	cmd.Flags().String("log-format", "json", "log format (json or text)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logging.SetDefault("authgate", version, cfg.LogFormat)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	identities := authpg.NewIdentityRepository(pool)
	hasher := auth.NewArgon2idHasher()

	codec, err := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	service, err := auth.NewServiceWithLogger(identities, hasher, codec, logger)
	if err != nil {
		return err
	}

	obs := observability.NewServer(cfg.MetricsAddr, store.Readiness(pool))
	obsErrCh, err := obs.Start()
	if err != nil {
		return err
	}

	gate := httpapi.NewGate(codec, identities, obs.Metrics(), logger)
	api := httpapi.NewServer(
		httpapi.Config{Addr: cfg.ListenAddr, CookieMaxAge: cfg.CookieMaxAge},
		service, gate, obs.Metrics(), store.Readiness(pool), logger,
	)
	apiErrCh, err := api.Start()
	if err != nil {
		stopServers(nil, obs, logger)
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-apiErrCh:
		if serveErr != nil {
			logger.Error("api server failed", "error", serveErr)
		}
	case serveErr := <-obsErrCh:
		if serveErr != nil {
			logger.Error("observability server failed", "error", serveErr)
		}
	}

	stopServers(api, obs, logger)
	return nil
}

func stopServers(api *httpapi.Server, obs *observability.Server, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if api != nil {
		if err := api.Stop(shutdownCtx); err != nil {
			logger.Warn("api server shutdown failed", "error", err)
		}
	}
	if err := obs.Stop(shutdownCtx); err != nil {
		logger.Warn("observability server shutdown failed", "error", err)
	}
}
