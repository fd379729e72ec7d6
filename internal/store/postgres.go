// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package store provides PostgreSQL connectivity and schema management.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

const (
	connectBackoff     = 500 * time.Millisecond
	connectMaxRetries  = 5
	connectPingTimeout = 3 * time.Second
)

// Connect opens a pgx connection pool and verifies connectivity with a
// retrying ping. The database may still be starting when the service
// boots, so transient ping failures are retried with exponential backoff
// before giving up.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	backoff := retry.WithMaxRetries(connectMaxRetries, retry.NewExponential(connectBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, connectPingTimeout)
		defer cancel()
		if pingErr := pool.Ping(pingCtx); pingErr != nil {
			slog.Debug("database ping failed, retrying", "error", pingErr)
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("STORE_CONNECT_FAILED").With("operation", "ping database").Wrap(err)
	}

	return pool, nil
}

// Readiness returns a probe function reporting whether the pool can
// reach the database. Suitable for a readiness endpoint.
func Readiness(pool *pgxpool.Pool) func() bool {
	return func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), connectPingTimeout)
		defer cancel()
		return pool.Ping(ctx) == nil
	}
}
